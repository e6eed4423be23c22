package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// CreateLoanRequest - POST /loans
type CreateLoanRequest struct {
	CopyID  string  `json:"userBookId"`
	Message *string `json:"message"`
}

func (r CreateLoanRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CopyID, validation.Required, is.UUID),
		validation.Field(&r.Message, validation.RuneLength(0, 1000)),
	)
}
