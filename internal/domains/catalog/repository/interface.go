package repository

import (
	"context"

	"github.com/google/uuid"

	"books-commons/internal/domains/catalog/model"
)

// Repository - Catalog Store
type Repository interface {
	// SearchText: ILIKE trên title hoặc author, tối đa limit rows
	SearchText(ctx context.Context, query string, limit int) ([]model.Book, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
	// Create insert book; nếu ISBN đã tồn tại thì trả về row cũ với created = false
	Create(ctx context.Context, b *model.Book) (*model.Book, bool, error)
	UpdateMetadata(ctx context.Context, b *model.Book) error
	// ListIncomplete: books có ISBN nhưng thiếu metadata, cũ nhất trước
	ListIncomplete(ctx context.Context, limit int) ([]model.Book, error)
}
