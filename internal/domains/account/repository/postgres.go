package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"books-commons/internal/domains/account/model"
	"books-commons/pkg/database"
)

// =====================================================
// MEMBERS
// =====================================================

type memberRepository struct {
	pool *pgxpool.Pool
}

func NewMemberRepository(pool *pgxpool.Pool) MemberRepository {
	return &memberRepository{pool: pool}
}

func (r *memberRepository) Create(ctx context.Context, m *model.Member) error {
	err := database.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO members (id, email, display_name, invited_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, m.ID, m.Email, m.DisplayName, m.InvitedBy).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

func (r *memberRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	var m model.Member
	err := database.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, email, display_name, invited_by, created_at FROM members WHERE id = $1
	`, id).Scan(&m.ID, &m.Email, &m.DisplayName, &m.InvitedBy, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get member %s: %w", id, err)
	}
	return &m, nil
}

// =====================================================
// INVITATIONS
// =====================================================

type invitationRepository struct {
	pool *pgxpool.Pool
}

func NewInvitationRepository(pool *pgxpool.Pool) InvitationRepository {
	return &invitationRepository{pool: pool}
}

func (r *invitationRepository) GetByCode(ctx context.Context, code string) (*model.Invitation, error) {
	var inv model.Invitation
	err := database.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, code, created_by, used_by, used_at, expires_at, created_at
		FROM invitations WHERE code = $1
	`, code).Scan(&inv.ID, &inv.Code, &inv.CreatedBy, &inv.UsedBy, &inv.UsedAt, &inv.ExpiresAt, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrInvalidInviteCode
	}
	if err != nil {
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return &inv, nil
}

func (r *invitationRepository) Consume(ctx context.Context, id, memberID uuid.UUID, at time.Time) error {
	tag, err := database.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE invitations
		SET used_by = $2, used_at = $3
		WHERE id = $1 AND used_by IS NULL AND expires_at > $3
	`, id, memberID, at)
	if err != nil {
		return fmt.Errorf("consume invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// bị dùng bởi request khác giữa lúc validate và lúc consume
		return model.ErrInvalidInviteCode
	}
	return nil
}
