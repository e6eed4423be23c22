package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"books-commons/internal/shared"
)

// Client bọc asynq.Client cho các task của service
type Client struct {
	client *asynq.Client
}

func NewClient(redis asynq.RedisConnOpt) *Client {
	return &Client{client: asynq.NewClient(redis)}
}

// EnqueueEnrichBook - TaskID theo book id: một book chỉ có tối đa một task đang chờ
func (c *Client) EnqueueEnrichBook(ctx context.Context, bookID uuid.UUID) error {
	payload, err := json.Marshal(shared.EnrichBookPayload{BookID: bookID.String()})
	if err != nil {
		return fmt.Errorf("marshal enrich payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeCatalogEnrichBook, payload)
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueLow),
		asynq.TaskID("enrich:"+bookID.String()),
		asynq.MaxRetry(5),
		asynq.Timeout(2*time.Minute),
		asynq.Retention(time.Hour),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", shared.TypeCatalogEnrichBook, err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
