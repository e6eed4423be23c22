package model

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// LOAN STATUS
// =====================================================

// Status - trạng thái loan, chỉ đi tiến:
//
//	requested --approve--> approved --handover--> active --return--> returned
//	requested --reject---> rejected
type Status string

const (
	StatusRequested Status = "requested"
	StatusApproved  Status = "approved"
	StatusActive    Status = "active"
	StatusReturned  Status = "returned"
	StatusRejected  Status = "rejected"
)

// AllStatuses theo thứ tự vòng đời
var AllStatuses = []Status{StatusRequested, StatusApproved, StatusActive, StatusReturned, StatusRejected}

func (s Status) IsValid() bool {
	switch s {
	case StatusRequested, StatusApproved, StatusActive, StatusReturned, StatusRejected:
		return true
	}
	return false
}

// IsTerminal: returned và rejected không còn transition nào
func (s Status) IsTerminal() bool {
	return s == StatusReturned || s == StatusRejected
}

// IsOpen: loan còn giữ copy (requested/approved/active)
func (s Status) IsOpen() bool {
	return s.IsValid() && !s.IsTerminal()
}

func (s Status) String() string {
	return string(s)
}

// CanTransitionTo kiểm tra theo transition table
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitionTable {
		if t.from == s && t.to == next {
			return true
		}
	}
	return false
}

// =====================================================
// TRANSITIONS
// =====================================================

type Transition string

const (
	TransitionApprove  Transition = "approve"
	TransitionReject   Transition = "reject"
	TransitionHandover Transition = "handover"
	TransitionReturn   Transition = "return"
)

var AllTransitions = []Transition{TransitionApprove, TransitionReject, TransitionHandover, TransitionReturn}

type edge struct {
	from Status
	to   Status
}

var transitionTable = map[Transition]edge{
	TransitionApprove:  {from: StatusRequested, to: StatusApproved},
	TransitionReject:   {from: StatusRequested, to: StatusRejected},
	TransitionHandover: {from: StatusApproved, to: StatusActive},
	TransitionReturn:   {from: StatusActive, to: StatusReturned},
}

// From - status bắt buộc trước transition
func (t Transition) From() Status {
	return transitionTable[t].from
}

// To - status sau transition
func (t Transition) To() Status {
	return transitionTable[t].to
}

// AllowedFrom trả về true nếu transition áp dụng được cho loan đang ở status s
func (t Transition) AllowedFrom(s Status) bool {
	e, ok := transitionTable[t]
	return ok && e.from == s
}

// =====================================================
// LOAN ENTITY
// =====================================================

type Loan struct {
	ID          uuid.UUID  `json:"id"`
	CopyID      uuid.UUID  `json:"user_book_id"`
	BorrowerID  uuid.UUID  `json:"borrower_id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Status      Status     `json:"status"`
	Message     string     `json:"message,omitempty"`
	RequestedAt time.Time  `json:"requested_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	LentAt      *time.Time `json:"lent_at,omitempty"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
}

// IsParticipant: borrower hoặc owner
func (l *Loan) IsParticipant(memberID uuid.UUID) bool {
	return l.BorrowerID == memberID || l.OwnerID == memberID
}

// Stamp ghi timestamp tương ứng với status mới
func (l *Loan) Stamp(status Status, at time.Time) {
	l.Status = status
	switch status {
	case StatusApproved:
		l.ApprovedAt = &at
	case StatusActive:
		l.LentAt = &at
	case StatusReturned:
		l.ReturnedAt = &at
	case StatusRejected:
		l.RejectedAt = &at
	}
}
