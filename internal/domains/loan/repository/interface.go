package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"books-commons/internal/domains/loan/model"
)

type Repository interface {
	// Create trả ErrCopyAlreadyPending khi copy đã có loan mở (unique index)
	Create(ctx context.Context, loan *model.Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Loan, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Loan, error)
	// UpdateStatus là conditional update: chỉ ghi khi status hiện tại == from,
	// đồng thời set timestamp column tương ứng với `to`.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status, at time.Time) error
	HasOpenLoanForCopy(ctx context.Context, copyID uuid.UUID) (bool, error)
	// ListByParticipant: loans mà member là borrower hoặc owner, mới nhất trước
	ListByParticipant(ctx context.Context, memberID uuid.UUID, status *model.Status) ([]model.Loan, error)
}
