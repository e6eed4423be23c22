package model

import "books-commons/internal/shared/apperror"

var (
	ErrCopyNotFound      = apperror.New(apperror.KindNotFound, "SHELF001", "copy not found")
	ErrNotOwner          = apperror.New(apperror.KindForbidden, "SHELF002", "only the owner can modify this copy")
	ErrStatusLocked      = apperror.New(apperror.KindInvalidState, "SHELF003", "copy status is controlled by an open loan")
	ErrCopyHasOpenLoan   = apperror.New(apperror.KindInvalidState, "SHELF004", "copy has a pending or active loan")
	ErrBookNotFound      = apperror.New(apperror.KindNotFound, "SHELF005", "book not found")
	ErrCopyStatusChanged = apperror.New(apperror.KindInvalidState, "SHELF006", "copy status changed concurrently")
)
