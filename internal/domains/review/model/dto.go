package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// =====================================================
// REQUEST DTOs
// =====================================================

var visibilityRule = validation.In(
	string(VisibilityPublic), string(VisibilityCommunity), string(VisibilityPrivate),
).Error("must be one of public, community, private")

// CreateReviewRequest - POST /books/:id/reviews
type CreateReviewRequest struct {
	Rating     int     `json:"rating"`
	Body       *string `json:"body"`
	ReadAt     *string `json:"readAt"`
	Visibility string  `json:"visibility"`
}

func (r CreateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating, validation.Required, validation.Min(MinRating), validation.Max(MaxRating)),
		validation.Field(&r.Body, validation.RuneLength(0, MaxBodyLength)),
		validation.Field(&r.ReadAt, validation.Date(ReadAtLayout)),
		validation.Field(&r.Visibility, visibilityRule),
	)
}

// UpdateReviewRequest - PATCH /reviews/:id, field nil = không đổi
type UpdateReviewRequest struct {
	Rating     *int    `json:"rating"`
	Body       *string `json:"body"`
	ReadAt     *string `json:"readAt"`
	Visibility *string `json:"visibility"`
}

func (r UpdateReviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating, validation.NilOrNotEmpty, validation.Min(MinRating), validation.Max(MaxRating)),
		validation.Field(&r.Body, validation.RuneLength(0, MaxBodyLength)),
		validation.Field(&r.ReadAt, validation.Date(ReadAtLayout)),
		validation.Field(&r.Visibility, validation.NilOrNotEmpty, visibilityRule),
	)
}

func (r UpdateReviewRequest) IsEmpty() bool {
	return r.Rating == nil && r.Body == nil && r.ReadAt == nil && r.Visibility == nil
}

// =====================================================
// HELPERS
// =====================================================

// NormalizeBody trim body, chuỗi rỗng = không có body
func NormalizeBody(body *string) *string {
	if body == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*body)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ParseReadAt - chuỗi rỗng = xoá ngày đọc. Gọi sau Validate.
func ParseReadAt(raw *string) *time.Time {
	if raw == nil || *raw == "" {
		return nil
	}
	t, err := time.Parse(ReadAtLayout, *raw)
	if err != nil {
		return nil
	}
	return &t
}
