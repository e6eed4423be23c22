package model

import (
	"time"

	"github.com/google/uuid"
)

// CopyStatus - trạng thái của một cuốn sách vật lý
type CopyStatus string

const (
	StatusAvailable CopyStatus = "available"
	StatusLentOut   CopyStatus = "lent_out"
	StatusPrivate   CopyStatus = "private"
	StatusReading   CopyStatus = "reading"
)

// IsOwnerSettable: owner chỉ được tự set các status này.
// lent_out chỉ do handover set, và chỉ return mới đưa lent_out về available.
func (s CopyStatus) IsOwnerSettable() bool {
	return s == StatusAvailable || s == StatusPrivate || s == StatusReading
}

func (s CopyStatus) String() string {
	return string(s)
}

type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionGood Condition = "good"
	ConditionFair Condition = "fair"
	ConditionPoor Condition = "poor"
)

func (c Condition) IsValid() bool {
	switch c {
	case ConditionNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// Copy - một bản sách vật lý thuộc về đúng một member (bảng user_books)
type Copy struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	BookID    uuid.UUID  `json:"book_id"`
	Status    CopyStatus `json:"status"`
	Condition Condition  `json:"condition"`
	Note      string     `json:"note"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// VisibleTo: copy private chỉ owner thấy
func (c *Copy) VisibleTo(viewerID uuid.UUID) bool {
	return c.Status != StatusPrivate || c.OwnerID == viewerID
}

// ShelfItem - copy kèm thông tin sách, dùng cho list và export
type ShelfItem struct {
	Copy
	Title    string  `json:"title"`
	Author   string  `json:"author"`
	ISBN     *string `json:"isbn,omitempty"`
	CoverURL string  `json:"cover_url,omitempty"`
}

// Availability - thống kê copy theo ISBN (không tính copy private)
type Availability struct {
	Total     int `json:"total"`
	Available int `json:"available"`
}
