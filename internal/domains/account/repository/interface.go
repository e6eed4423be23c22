package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"books-commons/internal/domains/account/model"
)

type MemberRepository interface {
	Create(ctx context.Context, m *model.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Member, error)
}

type InvitationRepository interface {
	// GetByCode trả ErrInvalidInviteCode nếu code không tồn tại
	GetByCode(ctx context.Context, code string) (*model.Invitation, error)
	// Consume là conditional update: chỉ thành công khi invite chưa dùng và chưa hết hạn tại `at`
	Consume(ctx context.Context, id, memberID uuid.UUID, at time.Time) error
}
