package service

import (
	"context"

	"github.com/google/uuid"

	"books-commons/internal/domains/shelf/model"
)

type Service interface {
	AddCopy(ctx context.Context, ownerID uuid.UUID, req model.AddCopyRequest) (*model.Copy, error)
	GetCopy(ctx context.Context, viewerID, copyID uuid.UUID) (*model.Copy, error)
	UpdateCopy(ctx context.Context, ownerID, copyID uuid.UUID, req model.UpdateCopyRequest) (*model.Copy, error)
	DeleteCopy(ctx context.Context, ownerID, copyID uuid.UUID) error
	ListMine(ctx context.Context, ownerID uuid.UUID) ([]model.ShelfItem, error)
	ListByOwner(ctx context.Context, viewerID, ownerID uuid.UUID) ([]model.ShelfItem, error)
	ExportShelf(ctx context.Context, ownerID uuid.UUID) ([]byte, error)
}

// OpenLoanChecker là phần của loan repository mà shelf cần
type OpenLoanChecker interface {
	HasOpenLoanForCopy(ctx context.Context, copyID uuid.UUID) (bool, error)
}
