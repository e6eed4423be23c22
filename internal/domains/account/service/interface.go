package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"books-commons/internal/domains/account/model"
	"books-commons/internal/infrastructure/identity"
)

type Service interface {
	// Register: invite -> identity -> profile + consume invite (1 transaction).
	// Fail sau khi identity đã tạo trả về PartialFailure, không bao giờ là lỗi chung chung.
	Register(ctx context.Context, req model.RegisterRequest) (*model.Member, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
	Me(ctx context.Context, memberID uuid.UUID) (*model.Member, error)
}

// IdentityProvider - external identity store (local bcrypt provider ở production)
type IdentityProvider interface {
	CreateIdentity(ctx context.Context, email, password string) (*identity.Identity, error)
	DeleteIdentity(ctx context.Context, id uuid.UUID) error
	Authenticate(ctx context.Context, email, password string) (*identity.Identity, error)
}

type TokenIssuer interface {
	GenerateAccessToken(memberID, email string) (string, time.Time, error)
}
