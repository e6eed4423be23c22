package model

import (
	"books-commons/internal/shared/apperror"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrBookNotFound        = apperror.New(apperror.KindNotFound, "CAT001", "book not found")
	ErrInvalidISBN         = apperror.New(apperror.KindValidation, "CAT002", "invalid ISBN")
	ErrMetadataUnavailable = apperror.New(apperror.KindUpstreamUnavailable, "CAT003", "book metadata providers are unavailable")
	ErrMetadataNotFound    = apperror.New(apperror.KindNotFound, "CAT004", "no metadata found for this ISBN")
)
