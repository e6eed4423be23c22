package repository

import (
	"context"

	"github.com/google/uuid"

	"books-commons/internal/domains/shelf/model"
)

// Repository - Copy Store. Mọi method join transaction trong ctx nếu có.
type Repository interface {
	Create(ctx context.Context, c *model.Copy) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Copy, error)
	// GetByIDForUpdate lock row (SELECT ... FOR UPDATE), chỉ có nghĩa trong transaction
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Copy, error)

	// UpdateStatus chỉ update khi status hiện tại = from, ngược lại ErrCopyStatusChanged
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.CopyStatus) error
	// UpdateDetails ghi status/condition/note do owner sửa
	UpdateDetails(ctx context.Context, c *model.Copy) error
	Delete(ctx context.Context, id uuid.UUID) error

	ListByOwner(ctx context.Context, ownerID uuid.UUID, includePrivate bool) ([]model.ShelfItem, error)
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.Copy, error)

	// AvailabilityByISBN đếm copy không private theo ISBN của book
	AvailabilityByISBN(ctx context.Context, isbns []string) (map[string]model.Availability, error)
}
