// Package bookmeta gọi các external bibliographic services (Google Books,
// openBD, Open Library). Mọi provider đều best-effort: caller phải chịu được
// ErrNotFound, lỗi mạng và kết quả thiếu field.
package bookmeta

import (
	"context"
	"errors"
)

var (
	// ErrNotFound - provider trả lời được nhưng không biết ISBN/query này
	ErrNotFound = errors.New("bookmeta: not found")
	// ErrUnsupported - provider không hỗ trợ operation (vd openBD không có search)
	ErrUnsupported = errors.New("bookmeta: operation not supported")
)

// Metadata - record từ external provider. ISBN chưa được normalize.
type Metadata struct {
	ISBN          string   `json:"isbn,omitempty"`
	Title         string   `json:"title"`
	Author        string   `json:"author,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Description   string   `json:"description,omitempty"`
	CoverURL      string   `json:"cover_url,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	Genres        []string `json:"genre,omitempty"`
	Provider      string   `json:"provider"`
}

// Provider - một external metadata source.
// Priority: số nhỏ hơn thắng khi merge field.
type Provider interface {
	Name() string
	Priority() int
	Lookup(ctx context.Context, isbn string) (*Metadata, error)
	Search(ctx context.Context, query string, limit int) ([]Metadata, error)
}
