package model

import "books-commons/internal/shared/apperror"

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrInvalidInviteCode  = apperror.New(apperror.KindValidation, "ACC001", "invalid invite code")
	ErrInviteExpired      = apperror.New(apperror.KindValidation, "ACC002", "invite code expired")
	ErrInviteRequired     = apperror.New(apperror.KindValidation, "ACC003", "invite code is required")
	ErrEmailTaken         = apperror.New(apperror.KindInvalidState, "ACC004", "email already registered")
	ErrInvalidCredentials = apperror.New(apperror.KindUnauthorized, "ACC005", "invalid email or password")
	ErrMemberNotFound     = apperror.New(apperror.KindNotFound, "ACC006", "member not found")
)
