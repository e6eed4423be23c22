package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"books-commons/internal/domains/review/model"
	"books-commons/internal/domains/review/repository"
	"books-commons/internal/shared/apperror"
	"books-commons/pkg/database"
)

type reviewService struct {
	tx      database.Transactor
	reviews repository.Repository
}

func NewReviewService(tx database.Transactor, reviews repository.Repository) Service {
	return &reviewService{tx: tx, reviews: reviews}
}

// =====================================================
// WRITE
// =====================================================

func (s *reviewService) CreateReview(ctx context.Context, authorID, bookID uuid.UUID, req model.CreateReviewRequest) (*model.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	visibility := model.DefaultVisibility
	if req.Visibility != "" {
		visibility = model.Visibility(req.Visibility)
	}

	review := &model.Review{
		ID:         uuid.New(),
		BookID:     bookID,
		UserID:     authorID,
		Rating:     req.Rating,
		Body:       model.NormalizeBody(req.Body),
		ReadAt:     model.ParseReadAt(req.ReadAt),
		Visibility: visibility,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	log.Info().
		Str("review_id", review.ID.String()).
		Str("book_id", bookID.String()).
		Int("rating", review.Rating).
		Msg("Review created")
	return review, nil
}

// UpdateReview - partial update, field không gửi giữ nguyên
func (s *reviewService) UpdateReview(ctx context.Context, authorID, reviewID uuid.UUID, req model.UpdateReviewRequest) (*model.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	return database.WithTransactionResult(ctx, s.tx, func(ctx context.Context) (*model.Review, error) {
		review, err := s.reviews.GetByID(ctx, reviewID)
		if err != nil {
			return nil, err
		}
		if review.UserID != authorID {
			return nil, model.ErrReviewNotFound
		}
		if req.IsEmpty() {
			return review, nil
		}

		if req.Rating != nil {
			review.Rating = *req.Rating
		}
		if req.Body != nil {
			review.Body = model.NormalizeBody(req.Body)
		}
		if req.ReadAt != nil {
			review.ReadAt = model.ParseReadAt(req.ReadAt)
		}
		if req.Visibility != nil {
			review.Visibility = model.Visibility(*req.Visibility)
		}

		if err := s.reviews.Update(ctx, review); err != nil {
			return nil, err
		}
		return review, nil
	})
}

func (s *reviewService) DeleteReview(ctx context.Context, authorID, reviewID uuid.UUID) error {
	if err := s.reviews.Delete(ctx, reviewID, authorID); err != nil {
		return err
	}
	log.Info().Str("review_id", reviewID.String()).Msg("Review deleted")
	return nil
}

// =====================================================
// READ
// =====================================================

func (s *reviewService) ListByBook(ctx context.Context, viewerID, bookID uuid.UUID) ([]model.ReviewView, error) {
	return s.reviews.ListByBook(ctx, bookID, viewerID)
}

func (s *reviewService) Feed(ctx context.Context) ([]model.ReviewView, error) {
	return s.reviews.Feed(ctx, model.FeedLimit)
}
