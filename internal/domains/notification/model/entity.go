package model

import (
	"time"

	"github.com/google/uuid"
)

// ================================================
// NOTIFICATION ENTITY
// ================================================

// Type - tag phân loại notification theo loan transition
type Type string

const (
	TypeLoanRequest  Type = "loan_request"
	TypeLoanApproved Type = "loan_approved"
	TypeLoanRejected Type = "loan_rejected"
	TypeLoanReturned Type = "loan_returned"
)

// Default messages hiển thị cho member (app dùng tiếng Nhật)
const (
	MessageLoanRequest  = "貸出リクエストが届きました"
	MessageLoanApproved = "貸出リクエストが承認されました"
	MessageLoanRejected = "貸出リクエストは見送られました"
	MessageLoanReturned = "返却が完了しました。感想を投稿しましょう。"
)

// Notification - append-only, chỉ recipient được đánh dấu đã đọc, không bao giờ xoá
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Type      Type       `json:"type"`
	LoanID    *uuid.UUID `json:"loan_id,omitempty"`
	Message   string     `json:"message"`
	IsRead    bool       `json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
}

// New tạo notification chưa đọc cho recipient
func New(recipient uuid.UUID, t Type, loanID uuid.UUID, message string) *Notification {
	return &Notification{
		ID:      uuid.New(),
		UserID:  recipient,
		Type:    t,
		LoanID:  &loanID,
		Message: message,
	}
}

const DefaultListLimit = 100
