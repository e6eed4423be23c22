package service

import (
	"context"

	"github.com/google/uuid"

	"books-commons/internal/domains/notification/model"
	"books-commons/internal/domains/notification/repository"
)

type Service interface {
	ListMine(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo repository.Repository
}

func NewNotificationService(repo repository.Repository) Service {
	return &notificationService{repo: repo}
}

// ListMine - 100 notification mới nhất
func (s *notificationService) ListMine(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	return s.repo.ListByUser(ctx, userID, model.DefaultListLimit)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.repo.MarkRead(ctx, notificationID, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
