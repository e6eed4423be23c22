package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ownerSettableStatus - lent_out chỉ do handover set, không nhận từ request
var ownerSettableStatus = validation.By(func(value interface{}) error {
	v, isNil := validation.Indirect(value)
	s, _ := v.(string)
	if isNil || s == "" {
		return nil
	}
	if !CopyStatus(s).IsOwnerSettable() {
		return validation.NewError("validation_copy_status", "must be one of available, private, reading")
	}
	return nil
})

var validCondition = validation.By(func(value interface{}) error {
	v, isNil := validation.Indirect(value)
	s, _ := v.(string)
	if isNil || s == "" {
		return nil
	}
	if !Condition(s).IsValid() {
		return validation.NewError("validation_copy_condition", "must be one of new, good, fair, poor")
	}
	return nil
})

// AddCopyRequest - POST /user-books
type AddCopyRequest struct {
	BookID    string  `json:"bookId"`
	Status    string  `json:"status"`
	Condition string  `json:"condition"`
	Note      *string `json:"note"`
}

func (r AddCopyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required, is.UUID),
		validation.Field(&r.Status, ownerSettableStatus),
		validation.Field(&r.Condition, validCondition),
		validation.Field(&r.Note, validation.RuneLength(0, 500)),
	)
}

// UpdateCopyRequest - PATCH /user-books/:id, field nil = không đổi
type UpdateCopyRequest struct {
	Status    *string `json:"status"`
	Condition *string `json:"condition"`
	Note      *string `json:"note"`
}

func (r UpdateCopyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.NilOrNotEmpty, ownerSettableStatus),
		validation.Field(&r.Condition, validation.NilOrNotEmpty, validCondition),
		validation.Field(&r.Note, validation.RuneLength(0, 500)),
	)
}

func (r UpdateCopyRequest) IsEmpty() bool {
	return r.Status == nil && r.Condition == nil && r.Note == nil
}
