package model

import (
	"time"

	"github.com/google/uuid"
)

// Member - profile, id trùng với identity id
type Member struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	InvitedBy   *uuid.UUID `json:"invited_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Invitation - mã mời dùng một lần, có hạn
type Invitation struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"`
	UsedBy    *uuid.UUID `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (i *Invitation) IsUsed() bool {
	return i.UsedBy != nil
}

func (i *Invitation) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Các sub-step của Register sau khi identity đã được tạo
const (
	StepCreateProfile     = "create_profile"
	StepConsumeInvitation = "consume_invitation"
)
