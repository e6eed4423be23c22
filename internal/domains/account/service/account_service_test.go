package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"books-commons/internal/domains/account/model"
	"books-commons/internal/shared/apperror"
	"books-commons/internal/testutil/memstore"
)

type stubTokens struct{}

func (stubTokens) GenerateAccessToken(memberID, email string) (string, time.Time, error) {
	return "token-for-" + memberID, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func newAccountService(store *memstore.Store, inviteRequired bool) Service {
	return NewAccountService(store, store.Members(), store.Invitations(), store.Identities(), stubTokens{}, inviteRequired)
}

func validRequest(code string) model.RegisterRequest {
	return model.RegisterRequest{
		Email:       "Reader@Example.com",
		Password:    "correct-horse",
		DisplayName: "  本の虫  ",
		InviteCode:  code,
	}
}

func TestRegister_WithInvitation(t *testing.T) {
	store := memstore.New()
	inviter := store.AddMember("inviter")
	inv := store.AddInvitation("WELCOME1", &inviter.ID, time.Now().Add(24*time.Hour))
	svc := newAccountService(store, true)

	member, err := svc.Register(context.Background(), validRequest(" WELCOME1 "))
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", member.Email)
	assert.Equal(t, "本の虫", member.DisplayName)
	require.NotNil(t, member.InvitedBy)
	assert.Equal(t, inviter.ID, *member.InvitedBy)

	stored, ok := store.Invitation(inv.ID)
	require.True(t, ok)
	require.NotNil(t, stored.UsedBy)
	assert.Equal(t, member.ID, *stored.UsedBy)
	assert.True(t, store.IdentityExists(member.ID))

	login, err := svc.Login(context.Background(), model.LoginRequest{Email: "reader@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", login.TokenType)
	assert.Equal(t, "token-for-"+member.ID.String(), login.AccessToken)
	assert.Equal(t, member.ID, login.Member.ID)
}

func TestRegister_InvitationChecks(t *testing.T) {
	cases := []struct {
		name           string
		code           string
		inviteRequired bool
		setup          func(s *memstore.Store)
		target         error
	}{
		{name: "missing code when required", code: "", inviteRequired: true, target: model.ErrInviteRequired},
		{name: "unknown code", code: "NOPE1234", inviteRequired: true, target: model.ErrInvalidInviteCode},
		{
			name: "expired code", code: "OLDCODE1", inviteRequired: true,
			setup: func(s *memstore.Store) {
				s.AddInvitation("OLDCODE1", nil, time.Now().Add(-time.Hour))
			},
			target: model.ErrInviteExpired,
		},
		{
			name: "used code", code: "USEDCODE", inviteRequired: true,
			setup: func(s *memstore.Store) {
				inv := s.AddInvitation("USEDCODE", nil, time.Now().Add(time.Hour))
				first := s.AddMember("first")
				require.NoError(t, s.Invitations().Consume(context.Background(), inv.ID, first.ID, time.Now()))
			},
			target: model.ErrInvalidInviteCode,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := memstore.New()
			if tc.setup != nil {
				tc.setup(store)
			}
			identitiesBefore := store.IdentityCount()

			_, err := newAccountService(store, tc.inviteRequired).Register(context.Background(), validRequest(tc.code))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.target))
			assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			// invite sai thì identity provider không bị gọi
			assert.Equal(t, identitiesBefore, store.IdentityCount())
		})
	}
}

func TestRegister_OpenRegistrationWithoutCode(t *testing.T) {
	store := memstore.New()

	member, err := newAccountService(store, false).Register(context.Background(), validRequest(""))
	require.NoError(t, err)
	assert.Nil(t, member.InvitedBy)
	_, ok := store.Member(member.ID)
	assert.True(t, ok)
}

func TestRegister_Validation(t *testing.T) {
	req := validRequest("")
	req.Password = "short"

	_, err := newAccountService(memstore.New(), false).Register(context.Background(), req)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestRegister_EmailTaken(t *testing.T) {
	store := memstore.New()
	svc := newAccountService(store, false)
	_, err := svc.Register(context.Background(), validRequest(""))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validRequest(""))
	assert.True(t, errors.Is(err, model.ErrEmailTaken))
}

func TestRegister_ProfileFailureIsPartial(t *testing.T) {
	store := memstore.New()
	store.FailNext("members.Create", errors.New("connection reset"))

	_, err := newAccountService(store, false).Register(context.Background(), validRequest(""))
	require.Error(t, err)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindPartialFailure, appErr.Kind)
	assert.Equal(t, model.StepCreateProfile, appErr.Step)
	assert.Equal(t, true, appErr.Details["identity_removed"])

	identityID, err := uuid.Parse(appErr.Details["identity_id"].(string))
	require.NoError(t, err)
	assert.False(t, store.IdentityExists(identityID))
	_, exists := store.Member(identityID)
	assert.False(t, exists)
}

func TestRegister_ConsumeFailureRollsBackProfile(t *testing.T) {
	store := memstore.New()
	inv := store.AddInvitation("RACE1234", nil, time.Now().Add(time.Hour))
	store.FailNext("invitations.Consume", model.ErrInvalidInviteCode)

	_, err := newAccountService(store, true).Register(context.Background(), validRequest("RACE1234"))
	require.Error(t, err)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindPartialFailure, appErr.Kind)
	assert.Equal(t, model.StepConsumeInvitation, appErr.Step)

	identityID := uuid.MustParse(appErr.Details["identity_id"].(string))
	_, exists := store.Member(identityID)
	assert.False(t, exists, "profile must roll back with the invitation")

	stored, _ := store.Invitation(inv.ID)
	assert.Nil(t, stored.UsedBy)
}

func TestRegister_CompensationFailureIsReported(t *testing.T) {
	store := memstore.New()
	store.FailNext("members.Create", errors.New("connection reset"))
	store.FailNext("identities.DeleteIdentity", errors.New("provider down"))

	_, err := newAccountService(store, false).Register(context.Background(), validRequest(""))

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindPartialFailure, appErr.Kind)
	assert.Equal(t, false, appErr.Details["identity_removed"])
	assert.Equal(t, 1, store.IdentityCount())
}

func TestLogin(t *testing.T) {
	store := memstore.New()
	svc := newAccountService(store, false)
	member, err := svc.Register(context.Background(), validRequest(""))
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), model.LoginRequest{Email: "reader@example.com", Password: "wrong-password"})
	assert.True(t, errors.Is(err, model.ErrInvalidCredentials))
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))

	me, err := svc.Me(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, me.ID)

	_, err = svc.Me(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, model.ErrMemberNotFound))
}

func TestLogin_IdentityWithoutProfile(t *testing.T) {
	store := memstore.New()
	_, err := store.Identities().CreateIdentity(context.Background(), "orphan@example.com", "password123")
	require.NoError(t, err)

	_, err = newAccountService(store, false).Login(context.Background(), model.LoginRequest{Email: "orphan@example.com", Password: "password123"})
	assert.True(t, errors.Is(err, model.ErrInvalidCredentials))
}
