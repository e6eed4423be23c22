package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// CreateBookRequest - member tự đăng ký sách chưa có trong catalog
type CreateBookRequest struct {
	ISBN          *string  `json:"isbn"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Publisher     string   `json:"publisher"`
	PublishedDate string   `json:"published_date"`
	Description   string   `json:"description"`
	CoverURL      string   `json:"cover_url"`
	PageCount     *int     `json:"page_count"`
	Genres        []string `json:"genre"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, 300)),
		validation.Field(&r.Author, validation.RuneLength(0, 200)),
		validation.Field(&r.Publisher, validation.RuneLength(0, 200)),
		validation.Field(&r.PublishedDate, validation.RuneLength(0, 20)),
		validation.Field(&r.Description, validation.RuneLength(0, 5000)),
		validation.Field(&r.CoverURL, is.URL),
		validation.Field(&r.PageCount, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&r.Genres, validation.Length(0, 10), validation.Each(validation.Required, validation.RuneLength(1, 50))),
	)
}
