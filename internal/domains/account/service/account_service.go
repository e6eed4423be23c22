package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"books-commons/internal/domains/account/model"
	"books-commons/internal/domains/account/repository"
	"books-commons/internal/infrastructure/identity"
	"books-commons/internal/shared/apperror"
	"books-commons/pkg/database"
)

type accountService struct {
	tx             database.Transactor
	members        repository.MemberRepository
	invitations    repository.InvitationRepository
	identities     IdentityProvider
	tokens         TokenIssuer
	inviteRequired bool
	now            func() time.Time
}

func NewAccountService(
	tx database.Transactor,
	members repository.MemberRepository,
	invitations repository.InvitationRepository,
	identities IdentityProvider,
	tokens TokenIssuer,
	inviteRequired bool,
) Service {
	return &accountService{
		tx:             tx,
		members:        members,
		invitations:    invitations,
		identities:     identities,
		tokens:         tokens,
		inviteRequired: inviteRequired,
		now:            time.Now,
	}
}

// =====================================================
// REGISTER
// =====================================================

func (s *accountService) Register(ctx context.Context, req model.RegisterRequest) (*model.Member, error) {
	req.InviteCode = strings.TrimSpace(req.InviteCode)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	// 1. Invite được kiểm tra trước khi chạm vào identity provider
	inv, err := s.checkInvitation(ctx, req.InviteCode)
	if err != nil {
		return nil, err
	}

	// 2. Identity nằm ngoài transaction của DB
	ident, err := s.identities.CreateIdentity(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return nil, model.ErrEmailTaken
		}
		return nil, fmt.Errorf("create identity: %w", err)
	}

	member := &model.Member{
		ID:          ident.ID,
		Email:       ident.Email,
		DisplayName: req.DisplayName,
	}
	if inv != nil {
		member.InvitedBy = inv.CreatedBy
	}

	// 3. Profile + consume invite: cùng commit hoặc cùng rollback
	step := model.StepCreateProfile
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.members.Create(ctx, member); err != nil {
			return err
		}
		if inv == nil {
			return nil
		}
		step = model.StepConsumeInvitation
		return s.invitations.Consume(ctx, inv.ID, member.ID, s.now().UTC())
	})
	if err != nil {
		return nil, s.compensate(ctx, ident.ID, step, err)
	}

	log.Info().
		Str("member_id", member.ID.String()).
		Bool("invited", inv != nil).
		Msg("Member registered")
	return member, nil
}

// checkInvitation - code rỗng nghĩa là không có invite
func (s *accountService) checkInvitation(ctx context.Context, code string) (*model.Invitation, error) {
	if code == "" {
		if s.inviteRequired {
			return nil, model.ErrInviteRequired
		}
		return nil, nil
	}

	inv, err := s.invitations.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if inv.IsUsed() {
		return nil, model.ErrInvalidInviteCode
	}
	if inv.IsExpired(s.now()) {
		return nil, model.ErrInviteExpired
	}
	return inv, nil
}

// compensate xoá identity vừa tạo (best effort) và luôn trả PartialFailure
// để caller biết identity có thể còn tồn tại.
func (s *accountService) compensate(ctx context.Context, identityID uuid.UUID, step string, cause error) error {
	removed := true
	if err := s.identities.DeleteIdentity(context.WithoutCancel(ctx), identityID); err != nil {
		removed = false
		log.Error().Err(err).
			Str("identity_id", identityID.String()).
			Msg("Failed to remove orphaned identity, needs manual cleanup")
	}

	log.Error().Err(cause).
		Str("identity_id", identityID.String()).
		Str("step", step).
		Bool("identity_removed", removed).
		Msg("Registration partially failed")

	return apperror.Partial(step, cause, map[string]interface{}{
		"identity_id":      identityID.String(),
		"identity_removed": removed,
	})
}

// =====================================================
// LOGIN / PROFILE
// =====================================================

func (s *accountService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	ident, err := s.identities.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	member, err := s.members.GetByID(ctx, ident.ID)
	if err != nil {
		if errors.Is(err, model.ErrMemberNotFound) {
			// identity mồ côi từ một lần đăng ký fail nửa chừng
			log.Warn().Str("identity_id", ident.ID.String()).Msg("Login for identity without profile")
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(member.ID.String(), member.Email)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &model.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Member:      member,
	}, nil
}

func (s *accountService) Me(ctx context.Context, memberID uuid.UUID) (*model.Member, error) {
	return s.members.GetByID(ctx, memberID)
}
