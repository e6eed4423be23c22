package model

import (
	"time"

	"github.com/google/uuid"
)

// Visibility - ai được đọc review
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityCommunity Visibility = "community"
	VisibilityPrivate   Visibility = "private"
)

// DefaultVisibility khi request không gửi visibility
const DefaultVisibility = VisibilityCommunity

// Review - cảm nhận của member về một book, mỗi review thuộc đúng một author
type Review struct {
	ID         uuid.UUID  `json:"id"`
	BookID     uuid.UUID  `json:"book_id"`
	UserID     uuid.UUID  `json:"user_id"`
	Rating     int        `json:"rating"` // 1-5
	Body       *string    `json:"body"`
	ReadAt     *time.Time `json:"read_at"`
	Visibility Visibility `json:"visibility"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ReviewView - review kèm tên author và tiêu đề sách, dùng cho list và feed
type ReviewView struct {
	Review
	AuthorName string `json:"author_name"`
	BookTitle  string `json:"book_title,omitempty"`
}
