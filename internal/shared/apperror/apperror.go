// Package apperror định nghĩa error taxonomy dùng chung cho mọi domain.
// Mỗi domain khai báo sentinel errors của riêng nó bằng New(), handler chỉ
// cần nhìn Kind để map sang HTTP status.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindInvalidState        Kind = "INVALID_STATE"
	KindForbidden           Kind = "FORBIDDEN"
	KindValidation          Kind = "VALIDATION_ERROR"
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	KindPartialFailure      Kind = "PARTIAL_FAILURE"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindInternal            Kind = "INTERNAL"
)

// Error là error có phân loại.
// Step chỉ có ý nghĩa với KindPartialFailure: tên sub-step bị fail.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Step    string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New tạo sentinel error. Dùng ở package-level var.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap gắn thêm cause vào một sentinel mà vẫn giữ errors.Is(err, sentinel).
func Wrap(sentinel *Error, cause error) error {
	return &wrapped{sentinel: sentinel, cause: cause}
}

type wrapped struct {
	sentinel *Error
	cause    error
}

func (w *wrapped) Error() string {
	return fmt.Sprintf("%s: %v", w.sentinel.Error(), w.cause)
}

func (w *wrapped) Unwrap() []error {
	return []error{w.sentinel, w.cause}
}

// Validation tạo ValidationError từ lỗi của ozzo-validation (hoặc bất kỳ error nào).
func Validation(err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:    KindValidation,
		Code:    "VALIDATION_ERROR",
		Message: "invalid request",
		Err:     err,
	}
}

// Partial báo một operation nhiều bước đã ghi xong phần authoritative
// nhưng bước phụ thuộc `step` bị fail.
func Partial(step string, err error, details map[string]interface{}) error {
	return &Error{
		Kind:    KindPartialFailure,
		Code:    "PARTIAL_FAILURE",
		Message: fmt.Sprintf("operation partially completed, step %q failed", step),
		Step:    step,
		Details: details,
		Err:     err,
	}
}

// As trả về *Error đầu tiên trong chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf trả về Kind của err, KindInternal nếu err không thuộc taxonomy.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind - err thuộc taxonomy và có đúng kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
