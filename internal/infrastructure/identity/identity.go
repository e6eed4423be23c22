// Package identity là Identity provider local: email + bcrypt password
// trong bảng auth_identities. Member profile nằm ở domain account.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"books-commons/pkg/database"
)

var (
	ErrEmailTaken         = errors.New("identity: email already registered")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
)

type Identity struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time
}

type LocalProvider struct {
	pool *pgxpool.Pool
	cost int
}

func NewLocalProvider(pool *pgxpool.Pool, bcryptCost int) *LocalProvider {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &LocalProvider{pool: pool, cost: bcryptCost}
}

// NormalizeEmail - email so sánh không phân biệt hoa thường
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *LocalProvider) CreateIdentity(ctx context.Context, email, password string) (*Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id := &Identity{ID: uuid.New(), Email: NormalizeEmail(email)}
	err = database.Conn(ctx, p.pool).QueryRow(ctx, `
		INSERT INTO auth_identities (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, id.ID, id.Email, string(hash)).Scan(&id.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}
	return id, nil
}

// DeleteIdentity - compensation khi đăng ký fail sau bước tạo identity
func (p *LocalProvider) DeleteIdentity(ctx context.Context, id uuid.UUID) error {
	if _, err := database.Conn(ctx, p.pool).Exec(ctx, `DELETE FROM auth_identities WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete identity %s: %w", id, err)
	}
	return nil
}

func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	var (
		id   Identity
		hash string
	)
	err := database.Conn(ctx, p.pool).QueryRow(ctx, `
		SELECT id, email, password_hash, created_at FROM auth_identities WHERE email = $1
	`, NormalizeEmail(email)).Scan(&id.ID, &id.Email, &hash, &id.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// vẫn chạy bcrypt để thời gian phản hồi không lộ email có tồn tại hay không
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &id, nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("books-commons"), bcrypt.MinCost)
