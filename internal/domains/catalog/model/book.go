package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	shelfModel "books-commons/internal/domains/shelf/model"
)

// Source - nguồn gốc của một search result
type Source string

const (
	SourceInternal Source = "internal"
	SourceExternal Source = "external"
	SourceMixed    Source = "mixed"
)

// Book - CatalogEntry đã lưu trong bảng books.
// ISBN luôn là ISBN-13 đã normalize, hoặc nil.
type Book struct {
	ID            uuid.UUID      `json:"id"`
	ISBN          *string        `json:"isbn"`
	Title         string         `json:"title"`
	Author        string         `json:"author"`
	Publisher     string         `json:"publisher,omitempty"`
	PublishedDate string         `json:"published_date,omitempty"`
	Description   string         `json:"description,omitempty"`
	CoverURL      string         `json:"cover_url,omitempty"`
	PageCount     *int           `json:"page_count,omitempty"`
	Genres        pq.StringArray `json:"genre"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// NeedsEnrichment: có ISBN nhưng thiếu một trong các field mà provider có thể bổ sung
func (b *Book) NeedsEnrichment() bool {
	if b.ISBN == nil {
		return false
	}
	return b.CoverURL == "" || b.PageCount == nil || len(b.Genres) == 0 || b.Publisher == "" || b.Description == ""
}

// SearchResult - một entry trong kết quả searchCatalog.
// ID nil với record external chưa được lưu.
type SearchResult struct {
	ID             *uuid.UUID `json:"id,omitempty"`
	ISBN           *string    `json:"isbn,omitempty"`
	Title          string     `json:"title"`
	Author         string     `json:"author"`
	Publisher      string     `json:"publisher,omitempty"`
	Description    string     `json:"description,omitempty"`
	CoverURL       string     `json:"cover_url,omitempty"`
	PageCount      *int       `json:"page_count,omitempty"`
	Genres         []string   `json:"genre"`
	Source         Source     `json:"source"`
	TotalCount     int        `json:"totalCount"`
	AvailableCount int        `json:"availableCount"`
	MergeKey       string     `json:"-"`
}

// LookupResult - Created = true khi entry vừa được insert từ external provider
type LookupResult struct {
	Book    *Book `json:"book"`
	Created bool  `json:"created"`
}

// BookDetail - GET /books/:id
type BookDetail struct {
	Book         *Book                   `json:"book"`
	Copies       []shelfModel.Copy       `json:"copies"`
	Availability shelfModel.Availability `json:"availability"`
}
