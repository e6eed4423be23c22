package memstore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"books-commons/internal/infrastructure/identity"
)

var errDuplicateMember = errors.New("memstore: duplicate key value violates unique constraint \"members_pkey\"")

// Identities - identity provider giả, nằm ngoài transaction giống provider thật.
// Password lưu plain text, chỉ dùng trong test.
func (s *Store) Identities() *IdentityProvider {
	return &IdentityProvider{s: s}
}

type IdentityProvider struct {
	s *Store
}

func (p *IdentityProvider) CreateIdentity(ctx context.Context, email, password string) (*identity.Identity, error) {
	if err := p.s.takeFailure("identities.CreateIdentity"); err != nil {
		return nil, err
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	email = identity.NormalizeEmail(email)
	for _, rec := range p.s.identities {
		if rec.email == email {
			return nil, identity.ErrEmailTaken
		}
	}
	rec := identityRecord{id: uuid.New(), email: email, password: password, createdAt: p.s.tick()}
	p.s.identities[rec.id] = rec
	return &identity.Identity{ID: rec.id, Email: rec.email, CreatedAt: rec.createdAt}, nil
}

func (p *IdentityProvider) DeleteIdentity(ctx context.Context, id uuid.UUID) error {
	if err := p.s.takeFailure("identities.DeleteIdentity"); err != nil {
		return err
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	delete(p.s.identities, id)
	return nil
}

func (p *IdentityProvider) Authenticate(ctx context.Context, email, password string) (*identity.Identity, error) {
	if err := p.s.takeFailure("identities.Authenticate"); err != nil {
		return nil, err
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	email = identity.NormalizeEmail(email)
	for _, rec := range p.s.identities {
		if rec.email == email && rec.password == password {
			return &identity.Identity{ID: rec.id, Email: rec.email, CreatedAt: rec.createdAt}, nil
		}
	}
	return nil, identity.ErrInvalidCredentials
}

func (s *Store) takeFailure(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}
