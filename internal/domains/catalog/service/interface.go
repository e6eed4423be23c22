package service

import (
	"context"

	"github.com/google/uuid"

	"books-commons/internal/domains/catalog/model"
	shelfModel "books-commons/internal/domains/shelf/model"
	"books-commons/internal/infrastructure/bookmeta"
)

// Service - Catalog Reconciliation Engine
type Service interface {
	Search(ctx context.Context, query string) ([]model.SearchResult, error)
	LookupByISBN(ctx context.Context, isbn string) (*model.LookupResult, error)
	GetBook(ctx context.Context, viewerID, bookID uuid.UUID) (*model.BookDetail, error)
	CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.LookupResult, error)

	// worker
	EnrichBook(ctx context.Context, bookID uuid.UUID) error
	SweepIncomplete(ctx context.Context) (int, error)
}

// MetadataSource - external providers (thường là bookmeta.CachedProvider bọc Chain)
type MetadataSource interface {
	Lookup(ctx context.Context, isbn string) (*bookmeta.Metadata, error)
	Search(ctx context.Context, query string, limit int) ([]bookmeta.Metadata, error)
}

// CopyStats là phần của shelf repository mà catalog cần
type CopyStats interface {
	AvailabilityByISBN(ctx context.Context, isbns []string) (map[string]shelfModel.Availability, error)
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]shelfModel.Copy, error)
}

// EnrichmentQueue - asynq client
type EnrichmentQueue interface {
	EnqueueEnrichBook(ctx context.Context, bookID uuid.UUID) error
}

// CoverMirror copy ảnh bìa từ provider sang object storage của mình
type CoverMirror interface {
	Mirror(ctx context.Context, bookID uuid.UUID, sourceURL string) (string, error)
	Owns(url string) bool
}
