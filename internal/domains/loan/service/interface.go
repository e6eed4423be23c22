package service

import (
	"context"

	"github.com/google/uuid"

	"books-commons/internal/domains/loan/model"
	notificationModel "books-commons/internal/domains/notification/model"
	shelfModel "books-commons/internal/domains/shelf/model"
)

// Service - Loan Lifecycle Manager.
// Mọi transition đều nhận actorID: chỉ owner của copy được approve/reject/handover/return.
type Service interface {
	RequestLoan(ctx context.Context, borrowerID uuid.UUID, req model.CreateLoanRequest) (*model.Loan, error)
	Approve(ctx context.Context, actorID, loanID uuid.UUID) (*model.Loan, error)
	Reject(ctx context.Context, actorID, loanID uuid.UUID) (*model.Loan, error)
	Handover(ctx context.Context, actorID, loanID uuid.UUID) (*model.Loan, error)
	Return(ctx context.Context, actorID, loanID uuid.UUID) (*model.Loan, error)
	Get(ctx context.Context, actorID, loanID uuid.UUID) (*model.Loan, error)
	ListMine(ctx context.Context, actorID uuid.UUID, status *model.Status) ([]model.Loan, error)
}

// CopyStore là phần của shelf repository mà loan cần
type CopyStore interface {
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*shelfModel.Copy, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to shelfModel.CopyStatus) error
}

// NotificationSink - append-only, join transaction trong ctx
type NotificationSink interface {
	Append(ctx context.Context, n *notificationModel.Notification) error
}
