// Package memstore là in-memory store dùng trong test của các service.
// Nó giữ đúng semantics của postgres repositories: conditional update,
// unique constraint, join transaction qua ctx, rollback khi fn trả error.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	accountModel "books-commons/internal/domains/account/model"
	catalogModel "books-commons/internal/domains/catalog/model"
	loanModel "books-commons/internal/domains/loan/model"
	notificationModel "books-commons/internal/domains/notification/model"
	reviewModel "books-commons/internal/domains/review/model"
	shelfModel "books-commons/internal/domains/shelf/model"
)

type txKey struct{}

type identityRecord struct {
	id        uuid.UUID
	email     string
	password  string
	createdAt time.Time
}

// tables là phần dữ liệu nằm trong transaction (snapshot/restore)
type tables struct {
	members       map[uuid.UUID]accountModel.Member
	invitations   map[uuid.UUID]accountModel.Invitation
	books         map[uuid.UUID]catalogModel.Book
	copies        map[uuid.UUID]shelfModel.Copy
	loans         map[uuid.UUID]loanModel.Loan
	notifications []notificationModel.Notification
	reviews       map[uuid.UUID]reviewModel.Review
}

func (t tables) clone() tables {
	c := tables{
		members:       make(map[uuid.UUID]accountModel.Member, len(t.members)),
		invitations:   make(map[uuid.UUID]accountModel.Invitation, len(t.invitations)),
		books:         make(map[uuid.UUID]catalogModel.Book, len(t.books)),
		copies:        make(map[uuid.UUID]shelfModel.Copy, len(t.copies)),
		loans:         make(map[uuid.UUID]loanModel.Loan, len(t.loans)),
		notifications: append([]notificationModel.Notification(nil), t.notifications...),
		reviews:       make(map[uuid.UUID]reviewModel.Review, len(t.reviews)),
	}
	for k, v := range t.members {
		c.members[k] = v
	}
	for k, v := range t.invitations {
		c.invitations[k] = v
	}
	for k, v := range t.books {
		c.books[k] = v
	}
	for k, v := range t.copies {
		c.copies[k] = v
	}
	for k, v := range t.loans {
		c.loans[k] = v
	}
	for k, v := range t.reviews {
		c.reviews[k] = v
	}
	return c
}

// Store - txMu serialize các transaction (tương đương row lock thô),
// mu bảo vệ dữ liệu cho từng thao tác đơn lẻ.
type Store struct {
	txMu sync.Mutex

	mu         sync.Mutex
	data       tables
	identities map[uuid.UUID]identityRecord
	failures   map[string]error
	clock      time.Time
}

func New() *Store {
	return &Store{
		data: tables{
			members:     map[uuid.UUID]accountModel.Member{},
			invitations: map[uuid.UUID]accountModel.Invitation{},
			books:       map[uuid.UUID]catalogModel.Book{},
			copies:      map[uuid.UUID]shelfModel.Copy{},
			loans:       map[uuid.UUID]loanModel.Loan{},
			reviews:     map[uuid.UUID]reviewModel.Review{},
		},
		identities: map[uuid.UUID]identityRecord{},
		failures:   map[string]error{},
		clock:      time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC),
	}
}

// WithinTransaction implements database.Transactor.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

func (s *Store) restore(snapshot tables) {
	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
}

// FailNext làm lần gọi tiếp theo của op (vd "copies.UpdateStatus") trả err.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// begin mở thao tác trên dữ liệu. Write ngoài transaction vẫn phải chờ
// transaction đang chạy, giống autocommit statement chờ row lock.
func (s *Store) begin(ctx context.Context, op string, write bool) (func(), error) {
	inTx := ctx.Value(txKey{}) != nil
	if write && !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	release := func() {
		s.mu.Unlock()
		if write && !inTx {
			s.txMu.Unlock()
		}
	}

	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		release()
		return nil, err
	}
	return release, nil
}

// tick - thời gian tăng dần để ORDER BY created_at có kết quả xác định
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// =====================================================
// SEED HELPERS
// =====================================================

func (s *Store) AddMember(displayName string) accountModel.Member {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	email := fmt.Sprintf("%s@example.com", id.String()[:8])
	at := s.tick()
	s.identities[id] = identityRecord{id: id, email: email, password: "password123", createdAt: at}
	m := accountModel.Member{ID: id, Email: email, DisplayName: displayName, CreatedAt: at}
	s.data.members[id] = m
	return m
}

func (s *Store) AddInvitation(code string, createdBy *uuid.UUID, expiresAt time.Time) accountModel.Invitation {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv := accountModel.Invitation{
		ID:        uuid.New(),
		Code:      code,
		CreatedBy: createdBy,
		ExpiresAt: expiresAt,
		CreatedAt: s.tick(),
	}
	s.data.invitations[inv.ID] = inv
	return inv
}

func (s *Store) AddBook(b catalogModel.Book) catalogModel.Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	at := s.tick()
	b.CreatedAt, b.UpdatedAt = at, at
	s.data.books[b.ID] = b
	return b
}

func (s *Store) AddCopy(ownerID, bookID uuid.UUID, status shelfModel.CopyStatus) shelfModel.Copy {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.tick()
	c := shelfModel.Copy{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		BookID:    bookID,
		Status:    status,
		Condition: shelfModel.ConditionGood,
		CreatedAt: at,
		UpdatedAt: at,
	}
	s.data.copies[c.ID] = c
	return c
}

// =====================================================
// INSPECTION
// =====================================================

func (s *Store) Copy(id uuid.UUID) (shelfModel.Copy, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.copies[id]
	return c, ok
}

func (s *Store) Loan(id uuid.UUID) (loanModel.Loan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.data.loans[id]
	return l, ok
}

func (s *Store) LoanCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.loans)
}

func (s *Store) Book(id uuid.UUID) (catalogModel.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.data.books[id]
	return b, ok
}

func (s *Store) BookCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.books)
}

func (s *Store) Member(id uuid.UUID) (accountModel.Member, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.data.members[id]
	return m, ok
}

func (s *Store) Invitation(id uuid.UUID) (accountModel.Invitation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.data.invitations[id]
	return inv, ok
}

func (s *Store) IdentityExists(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.identities[id]
	return ok
}

func (s *Store) IdentityCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.identities)
}

// NotificationsFor trả về notification của recipient theo thứ tự ghi
func (s *Store) NotificationsFor(userID uuid.UUID) []notificationModel.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []notificationModel.Notification
	for _, n := range s.data.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (s *Store) Review(id uuid.UUID) (reviewModel.Review, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.reviews[id]
	return r, ok
}

func (s *Store) NotificationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.notifications)
}
