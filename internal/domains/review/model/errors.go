package model

import "books-commons/internal/shared/apperror"

// Error codes
var (
	// review của người khác cũng trả NotFound, không lộ sự tồn tại
	ErrReviewNotFound = apperror.New(apperror.KindNotFound, "REV001", "review not found")
	ErrBookNotFound   = apperror.New(apperror.KindNotFound, "REV002", "book not found")
)
