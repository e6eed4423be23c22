package repository

import (
	"context"

	"github.com/google/uuid"

	"books-commons/internal/domains/notification/model"
)

// Repository - Notification Sink
type Repository interface {
	// Append ghi một notification, join transaction trong ctx nếu có
	Append(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Notification, error)
	// MarkRead idempotent, ErrNotificationNotFound nếu không thuộc về userID
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}
