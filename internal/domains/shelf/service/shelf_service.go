package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"books-commons/internal/domains/shelf/model"
	"books-commons/internal/domains/shelf/repository"
	"books-commons/internal/shared/apperror"
	"books-commons/pkg/database"
)

type shelfService struct {
	tx     database.Transactor
	copies repository.Repository
	loans  OpenLoanChecker
	now    func() time.Time
}

func NewShelfService(tx database.Transactor, copies repository.Repository, loans OpenLoanChecker) Service {
	return &shelfService{tx: tx, copies: copies, loans: loans, now: time.Now}
}

// AddCopy đăng ký ownership một cuốn sách đã có trong catalog.
// Default: status available, condition good.
func (s *shelfService) AddCopy(ctx context.Context, ownerID uuid.UUID, req model.AddCopyRequest) (*model.Copy, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	c := &model.Copy{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		BookID:    uuid.MustParse(req.BookID),
		Status:    model.StatusAvailable,
		Condition: model.ConditionGood,
	}
	if req.Status != "" {
		c.Status = model.CopyStatus(req.Status)
	}
	if req.Condition != "" {
		c.Condition = model.Condition(req.Condition)
	}
	if req.Note != nil {
		c.Note = *req.Note
	}

	if err := s.copies.Create(ctx, c); err != nil {
		return nil, err
	}

	log.Info().
		Str("copy_id", c.ID.String()).
		Str("owner_id", ownerID.String()).
		Str("book_id", c.BookID.String()).
		Msg("Copy registered")
	return c, nil
}

// GetCopy: copy private của người khác trả NotFound, không phải Forbidden
func (s *shelfService) GetCopy(ctx context.Context, viewerID, copyID uuid.UUID) (*model.Copy, error) {
	c, err := s.copies.GetByID(ctx, copyID)
	if err != nil {
		return nil, err
	}
	if !c.VisibleTo(viewerID) {
		return nil, model.ErrCopyNotFound
	}
	return c, nil
}

// UpdateCopy - owner sửa status/condition/note.
// Status không đổi được khi copy đang lent_out hoặc đang có loan mở.
func (s *shelfService) UpdateCopy(ctx context.Context, ownerID, copyID uuid.UUID, req model.UpdateCopyRequest) (*model.Copy, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	var updated *model.Copy
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.lockOwned(ctx, ownerID, copyID)
		if err != nil {
			return err
		}
		if req.IsEmpty() {
			updated = c
			return nil
		}

		if req.Status != nil && model.CopyStatus(*req.Status) != c.Status {
			if c.Status == model.StatusLentOut {
				return model.ErrStatusLocked
			}
			open, err := s.loans.HasOpenLoanForCopy(ctx, c.ID)
			if err != nil {
				return fmt.Errorf("check open loans: %w", err)
			}
			if open {
				return model.ErrStatusLocked
			}
			c.Status = model.CopyStatus(*req.Status)
		}
		if req.Condition != nil {
			c.Condition = model.Condition(*req.Condition)
		}
		if req.Note != nil {
			c.Note = *req.Note
		}

		if err := s.copies.UpdateDetails(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCopy bị chặn khi còn loan requested/approved/active
func (s *shelfService) DeleteCopy(ctx context.Context, ownerID, copyID uuid.UUID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.lockOwned(ctx, ownerID, copyID)
		if err != nil {
			return err
		}
		open, err := s.loans.HasOpenLoanForCopy(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("check open loans: %w", err)
		}
		if open || c.Status == model.StatusLentOut {
			return model.ErrCopyHasOpenLoan
		}
		return s.copies.Delete(ctx, c.ID)
	})
}

func (s *shelfService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]model.ShelfItem, error) {
	return s.copies.ListByOwner(ctx, ownerID, true)
}

func (s *shelfService) ListByOwner(ctx context.Context, viewerID, ownerID uuid.UUID) ([]model.ShelfItem, error) {
	return s.copies.ListByOwner(ctx, ownerID, viewerID == ownerID)
}

// lockOwned lock copy và kiểm tra quyền owner.
// Non-owner không thấy copy private nên nhận NotFound thay vì Forbidden.
func (s *shelfService) lockOwned(ctx context.Context, ownerID, copyID uuid.UUID) (*model.Copy, error) {
	c, err := s.copies.GetByIDForUpdate(ctx, copyID)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != ownerID {
		if !c.VisibleTo(ownerID) {
			return nil, model.ErrCopyNotFound
		}
		return nil, model.ErrNotOwner
	}
	return c, nil
}
