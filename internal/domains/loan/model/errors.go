package model

import (
	"fmt"

	"books-commons/internal/shared/apperror"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrLoanNotFound       = apperror.New(apperror.KindNotFound, "LOAN001", "loan not found")
	ErrInvalidTransition  = apperror.New(apperror.KindInvalidState, "LOAN002", "loan is not in a state that allows this operation")
	ErrCopyUnavailable    = apperror.New(apperror.KindInvalidState, "LOAN003", "copy is not available")
	ErrSelfLoan           = apperror.New(apperror.KindForbidden, "LOAN004", "cannot borrow your own copy")
	ErrNotCopyOwner       = apperror.New(apperror.KindForbidden, "LOAN005", "only the copy owner can perform this operation")
	ErrCopyAlreadyPending = apperror.New(apperror.KindInvalidState, "LOAN006", "copy already has a pending or active loan")
)

// InvalidTransition bọc ErrInvalidTransition kèm status hiện tại,
// errors.Is(err, ErrInvalidTransition) vẫn đúng.
func InvalidTransition(t Transition, current Status) error {
	return &apperror.Error{
		Kind:    apperror.KindInvalidState,
		Code:    ErrInvalidTransition.Code,
		Message: fmt.Sprintf("cannot %s a loan in state %s", t, current),
		Details: map[string]interface{}{"status": current, "transition": t},
		Err:     ErrInvalidTransition,
	}
}
