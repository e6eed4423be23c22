package service

import (
	"context"

	"github.com/google/uuid"

	"books-commons/internal/domains/review/model"
)

// =====================================================
// REVIEW SERVICE INTERFACE
// =====================================================

type Service interface {
	// CreateReview tạo review của authorID cho bookID
	CreateReview(ctx context.Context, authorID, bookID uuid.UUID, req model.CreateReviewRequest) (*model.Review, error)

	// UpdateReview - chỉ author, người khác nhận ErrReviewNotFound
	UpdateReview(ctx context.Context, authorID, reviewID uuid.UUID, req model.UpdateReviewRequest) (*model.Review, error)

	// DeleteReview - chỉ author, người khác nhận ErrReviewNotFound
	DeleteReview(ctx context.Context, authorID, reviewID uuid.UUID) error

	ListByBook(ctx context.Context, viewerID, bookID uuid.UUID) ([]model.ReviewView, error)

	Feed(ctx context.Context) ([]model.ReviewView, error)
}
