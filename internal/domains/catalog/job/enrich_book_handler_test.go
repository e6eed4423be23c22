package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"books-commons/internal/domains/catalog/model"
	catalogService "books-commons/internal/domains/catalog/service"
	"books-commons/internal/shared"
)

// fakeCatalog chỉ implement phần worker dùng
type fakeCatalog struct {
	catalogService.Service
	enrichErr error
	enriched  []uuid.UUID
	swept     int
	sweepErr  error
}

func (f *fakeCatalog) EnrichBook(ctx context.Context, bookID uuid.UUID) error {
	f.enriched = append(f.enriched, bookID)
	return f.enrichErr
}

func (f *fakeCatalog) SweepIncomplete(ctx context.Context) (int, error) {
	return f.swept, f.sweepErr
}

func enrichTask(t *testing.T, bookID string) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(shared.EnrichBookPayload{BookID: bookID})
	require.NoError(t, err)
	return asynq.NewTask(shared.TypeCatalogEnrichBook, payload)
}

func TestEnrichBookHandler(t *testing.T) {
	bookID := uuid.New()

	t.Run("enriches the book from the payload", func(t *testing.T) {
		svc := &fakeCatalog{}
		err := NewEnrichBookHandler(svc).ProcessTask(context.Background(), enrichTask(t, bookID.String()))
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{bookID}, svc.enriched)
	})

	t.Run("deleted book is not retried", func(t *testing.T) {
		svc := &fakeCatalog{enrichErr: model.ErrBookNotFound}
		err := NewEnrichBookHandler(svc).ProcessTask(context.Background(), enrichTask(t, bookID.String()))
		assert.NoError(t, err)
	})

	t.Run("provider failure is retried", func(t *testing.T) {
		svc := &fakeCatalog{enrichErr: errors.New("upstream timeout")}
		err := NewEnrichBookHandler(svc).ProcessTask(context.Background(), enrichTask(t, bookID.String()))
		require.Error(t, err)
		assert.False(t, errors.Is(err, asynq.SkipRetry))
	})

	t.Run("malformed payloads skip retry", func(t *testing.T) {
		svc := &fakeCatalog{}
		h := NewEnrichBookHandler(svc)

		err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeCatalogEnrichBook, []byte("{")))
		assert.ErrorIs(t, err, asynq.SkipRetry)

		err = h.ProcessTask(context.Background(), enrichTask(t, "not-a-uuid"))
		assert.ErrorIs(t, err, asynq.SkipRetry)
		assert.Empty(t, svc.enriched)
	})
}

func TestEnrichSweepHandler(t *testing.T) {
	svc := &fakeCatalog{swept: 3}
	require.NoError(t, NewEnrichSweepHandler(svc).ProcessTask(context.Background(), asynq.NewTask(shared.TypeCatalogEnrichSweep, nil)))

	svc.sweepErr = errors.New("db down")
	assert.Error(t, NewEnrichSweepHandler(svc).ProcessTask(context.Background(), asynq.NewTask(shared.TypeCatalogEnrichSweep, nil)))
}
