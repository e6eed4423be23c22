package repository

import (
	"context"

	"github.com/google/uuid"

	"books-commons/internal/domains/review/model"
)

// =====================================================
// REVIEW REPOSITORY INTERFACE
// =====================================================

type Repository interface {
	// Create - ErrBookNotFound nếu book_id không tồn tại
	Create(ctx context.Context, review *model.Review) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error)

	// Update ghi rating/body/read_at/visibility, chỉ match khi user_id là author
	Update(ctx context.Context, review *model.Review) error

	// Delete - ErrReviewNotFound nếu không có review của authorID với id này
	Delete(ctx context.Context, id, authorID uuid.UUID) error

	// ListByBook: public + community, cộng review private của viewerID, mới nhất trước
	ListByBook(ctx context.Context, bookID, viewerID uuid.UUID) ([]model.ReviewView, error)

	// Feed: review public/community mới nhất của cả community
	Feed(ctx context.Context, limit int) ([]model.ReviewView, error)
}
