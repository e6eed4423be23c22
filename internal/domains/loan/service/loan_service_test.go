package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountModel "books-commons/internal/domains/account/model"
	catalogModel "books-commons/internal/domains/catalog/model"
	"books-commons/internal/domains/loan/model"
	notificationModel "books-commons/internal/domains/notification/model"
	shelfModel "books-commons/internal/domains/shelf/model"
	"books-commons/internal/shared/apperror"
	"books-commons/internal/testutil/memstore"
)

type fixture struct {
	store    *memstore.Store
	svc      Service
	owner    accountModel.Member
	borrower accountModel.Member
	stranger accountModel.Member
	copy     shelfModel.Copy
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	isbn := "9784152098702"
	book := store.AddBook(catalogModel.Book{ISBN: &isbn, Title: "三体", Author: "劉慈欣"})

	f := &fixture{
		store:    store,
		owner:    store.AddMember("u3"),
		borrower: store.AddMember("u2"),
		stranger: store.AddMember("u4"),
	}
	f.copy = store.AddCopy(f.owner.ID, book.ID, shelfModel.StatusAvailable)
	f.svc = NewLoanService(store, store.Loans(), store.Copies(), store.Notifications())
	return f
}

func (f *fixture) request(t *testing.T) *model.Loan {
	t.Helper()
	loan, err := f.svc.RequestLoan(context.Background(), f.borrower.ID, model.CreateLoanRequest{CopyID: f.copy.ID.String()})
	require.NoError(t, err)
	return loan
}

// loanIn đưa một loan mới tới status chỉ định bằng đúng các transition hợp lệ
func (f *fixture) loanIn(t *testing.T, status model.Status) *model.Loan {
	t.Helper()
	ctx := context.Background()
	loan := f.request(t)

	var err error
	switch status {
	case model.StatusRequested:
	case model.StatusRejected:
		loan, err = f.svc.Reject(ctx, f.owner.ID, loan.ID)
	case model.StatusApproved, model.StatusActive, model.StatusReturned:
		loan, err = f.svc.Approve(ctx, f.owner.ID, loan.ID)
		if err == nil && status != model.StatusApproved {
			loan, err = f.svc.Handover(ctx, f.owner.ID, loan.ID)
		}
		if err == nil && status == model.StatusReturned {
			loan, err = f.svc.Return(ctx, f.owner.ID, loan.ID)
		}
	}
	require.NoError(t, err)
	require.Equal(t, status, loan.Status)
	return loan
}

func (f *fixture) copyStatus(t *testing.T) shelfModel.CopyStatus {
	t.Helper()
	c, ok := f.store.Copy(f.copy.ID)
	require.True(t, ok)
	return c.Status
}

func typesOf(list []notificationModel.Notification) []notificationModel.Type {
	out := make([]notificationModel.Type, 0, len(list))
	for _, n := range list {
		out = append(out, n.Type)
	}
	return out
}

// =====================================================
// HAPPY PATH
// =====================================================

func TestLoanLifecycle_FullCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	loan := f.request(t)
	assert.Equal(t, model.StatusRequested, loan.Status)
	assert.Equal(t, f.owner.ID, loan.OwnerID)
	assert.Equal(t, f.copy.ID, loan.CopyID)
	assert.Equal(t, []notificationModel.Type{notificationModel.TypeLoanRequest}, typesOf(f.store.NotificationsFor(f.owner.ID)))

	loan, err := f.svc.Approve(ctx, f.owner.ID, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, loan.Status)
	assert.NotNil(t, loan.ApprovedAt)
	assert.Equal(t, shelfModel.StatusAvailable, f.copyStatus(t))

	loan, err = f.svc.Handover(ctx, f.owner.ID, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, loan.Status)
	assert.NotNil(t, loan.LentAt)
	assert.Equal(t, shelfModel.StatusLentOut, f.copyStatus(t))

	loan, err = f.svc.Return(ctx, f.owner.ID, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReturned, loan.Status)
	assert.NotNil(t, loan.ReturnedAt)
	assert.Equal(t, shelfModel.StatusAvailable, f.copyStatus(t))

	returned := 0
	for _, n := range f.store.NotificationsFor(f.borrower.ID) {
		if n.Type == notificationModel.TypeLoanReturned {
			returned++
			require.NotNil(t, n.LoanID)
			assert.Equal(t, loan.ID, *n.LoanID)
		}
	}
	assert.Equal(t, 1, returned)
	assert.Equal(t,
		[]notificationModel.Type{notificationModel.TypeLoanApproved, notificationModel.TypeLoanReturned},
		typesOf(f.store.NotificationsFor(f.borrower.ID)),
	)

	stored, ok := f.store.Loan(loan.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusReturned, stored.Status)
}

func TestReject_NotifiesBorrowerWithRejectedType(t *testing.T) {
	f := newFixture(t)
	loan := f.request(t)

	loan, err := f.svc.Reject(context.Background(), f.owner.ID, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, loan.Status)
	assert.NotNil(t, loan.RejectedAt)
	assert.Equal(t, []notificationModel.Type{notificationModel.TypeLoanRejected}, typesOf(f.store.NotificationsFor(f.borrower.ID)))
	assert.Equal(t, shelfModel.StatusAvailable, f.copyStatus(t))
}

func TestCopyCanBeRequestedAgainAfterTerminalLoan(t *testing.T) {
	f := newFixture(t)
	f.loanIn(t, model.StatusReturned)

	second := f.request(t)
	assert.Equal(t, model.StatusRequested, second.Status)
}

// =====================================================
// PRECONDITIONS
// =====================================================

func TestTransitions_InvalidStateMatrix(t *testing.T) {
	ops := map[model.Transition]func(Service) transitionFn{
		model.TransitionApprove:  func(s Service) transitionFn { return s.Approve },
		model.TransitionReject:   func(s Service) transitionFn { return s.Reject },
		model.TransitionHandover: func(s Service) transitionFn { return s.Handover },
		model.TransitionReturn:   func(s Service) transitionFn { return s.Return },
	}

	for _, status := range model.AllStatuses {
		for _, tr := range model.AllTransitions {
			if tr.AllowedFrom(status) {
				continue
			}
			t.Run(string(tr)+"_from_"+string(status), func(t *testing.T) {
				f := newFixture(t)
				loan := f.loanIn(t, status)
				copyBefore := f.copyStatus(t)
				notificationsBefore := f.store.NotificationCount()

				_, err := ops[tr](f.svc)(context.Background(), f.owner.ID, loan.ID)
				require.Error(t, err)
				assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))
				assert.True(t, errors.Is(err, model.ErrInvalidTransition))

				stored, _ := f.store.Loan(loan.ID)
				assert.Equal(t, status, stored.Status)
				assert.Equal(t, copyBefore, f.copyStatus(t))
				assert.Equal(t, notificationsBefore, f.store.NotificationCount())
			})
		}
	}
}

type transitionFn func(ctx context.Context, actorID, loanID uuid.UUID) (*model.Loan, error)

func TestTransitions_AuthorityChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	loan := f.request(t)

	// borrower là participant nhưng không phải owner
	_, err := f.svc.Approve(ctx, f.borrower.ID, loan.ID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	// người ngoài không được biết loan tồn tại
	_, err = f.svc.Approve(ctx, f.stranger.ID, loan.ID)
	assert.True(t, errors.Is(err, model.ErrLoanNotFound))

	_, err = f.svc.Get(ctx, f.stranger.ID, loan.ID)
	assert.True(t, errors.Is(err, model.ErrLoanNotFound))

	_, err = f.svc.Approve(ctx, f.owner.ID, uuid.New())
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	stored, _ := f.store.Loan(loan.ID)
	assert.Equal(t, model.StatusRequested, stored.Status)
}

func TestForbiddenBeatsInvalidState(t *testing.T) {
	f := newFixture(t)
	loan := f.loanIn(t, model.StatusReturned)

	_, err := f.svc.Approve(context.Background(), f.borrower.ID, loan.ID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
}

func TestRequestLoan_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("self loan", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.RequestLoan(ctx, f.owner.ID, model.CreateLoanRequest{CopyID: f.copy.ID.String()})
		assert.True(t, errors.Is(err, model.ErrSelfLoan))
		assert.Equal(t, 0, f.store.LoanCount())
	})

	t.Run("copy not available", func(t *testing.T) {
		f := newFixture(t)
		isbn := "9780306406157"
		book := f.store.AddBook(catalogModel.Book{ISBN: &isbn, Title: "Reading"})
		reading := f.store.AddCopy(f.owner.ID, book.ID, shelfModel.StatusReading)

		_, err := f.svc.RequestLoan(ctx, f.borrower.ID, model.CreateLoanRequest{CopyID: reading.ID.String()})
		assert.True(t, errors.Is(err, model.ErrCopyUnavailable))
		assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))
	})

	t.Run("private copy is invisible", func(t *testing.T) {
		f := newFixture(t)
		isbn := "9780306406157"
		book := f.store.AddBook(catalogModel.Book{ISBN: &isbn, Title: "Diary"})
		private := f.store.AddCopy(f.owner.ID, book.ID, shelfModel.StatusPrivate)

		_, err := f.svc.RequestLoan(ctx, f.borrower.ID, model.CreateLoanRequest{CopyID: private.ID.String()})
		assert.True(t, errors.Is(err, shelfModel.ErrCopyNotFound))
	})

	t.Run("unknown copy", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.RequestLoan(ctx, f.borrower.ID, model.CreateLoanRequest{CopyID: uuid.NewString()})
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})

	t.Run("invalid request", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.RequestLoan(ctx, f.borrower.ID, model.CreateLoanRequest{CopyID: "not-a-uuid"})
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})

	t.Run("copy already has an open loan", func(t *testing.T) {
		f := newFixture(t)
		f.request(t)

		_, err := f.svc.RequestLoan(ctx, f.stranger.ID, model.CreateLoanRequest{CopyID: f.copy.ID.String()})
		assert.True(t, errors.Is(err, model.ErrCopyAlreadyPending))
		assert.Equal(t, 1, f.store.LoanCount())
	})
}

// =====================================================
// CONCURRENCY / ATOMICITY
// =====================================================

func TestConcurrentApprove_ExactlyOneSucceeds(t *testing.T) {
	f := newFixture(t)
	loan := f.request(t)

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Approve(context.Background(), f.owner.ID, loan.ID)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, f.store.NotificationsFor(f.borrower.ID), 1)
}

func TestConcurrentRequests_OneOpenLoanPerCopy(t *testing.T) {
	f := newFixture(t)
	borrowers := []accountModel.Member{f.borrower, f.stranger, f.store.AddMember("u5"), f.store.AddMember("u6")}

	var wg sync.WaitGroup
	for _, b := range borrowers {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, _ = f.svc.RequestLoan(context.Background(), id, model.CreateLoanRequest{CopyID: f.copy.ID.String()})
		}(b.ID)
	}
	wg.Wait()

	assert.Equal(t, 1, f.store.LoanCount())
}

func TestReturn_CopyUpdateFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	loan := f.loanIn(t, model.StatusActive)
	notificationsBefore := f.store.NotificationCount()

	f.store.FailNext("copies.UpdateStatus", errors.New("connection reset by peer"))
	_, err := f.svc.Return(context.Background(), f.owner.ID, loan.ID)
	require.Error(t, err)

	stored, _ := f.store.Loan(loan.ID)
	assert.Equal(t, model.StatusActive, stored.Status)
	assert.Nil(t, stored.ReturnedAt)
	assert.Equal(t, shelfModel.StatusLentOut, f.copyStatus(t))
	assert.Equal(t, notificationsBefore, f.store.NotificationCount())
}

func TestApprove_NotificationFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	loan := f.request(t)

	f.store.FailNext("notifications.Append", errors.New("disk full"))
	_, err := f.svc.Approve(context.Background(), f.owner.ID, loan.ID)
	require.Error(t, err)

	stored, _ := f.store.Loan(loan.ID)
	assert.Equal(t, model.StatusRequested, stored.Status)
	assert.Nil(t, stored.ApprovedAt)
}

func TestHandover_CopyChangedConcurrently(t *testing.T) {
	f := newFixture(t)
	loan := f.loanIn(t, model.StatusApproved)

	// owner đổi copy sang reading ngay trước handover
	require.NoError(t, f.store.Copies().UpdateStatus(context.Background(), f.copy.ID, shelfModel.StatusAvailable, shelfModel.StatusReading))

	_, err := f.svc.Handover(context.Background(), f.owner.ID, loan.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))

	stored, _ := f.store.Loan(loan.ID)
	assert.Equal(t, model.StatusApproved, stored.Status)
}

// =====================================================
// QUERIES
// =====================================================

func TestListMine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.loanIn(t, model.StatusRejected)
	open := f.request(t)

	all, err := f.svc.ListMine(ctx, f.owner.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, open.ID, all[0].ID)

	requested := model.StatusRequested
	filtered, err := f.svc.ListMine(ctx, f.borrower.ID, &requested)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, open.ID, filtered[0].ID)

	none, err := f.svc.ListMine(ctx, f.stranger.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	bogus := model.Status("lost")
	_, err = f.svc.ListMine(ctx, f.owner.ID, &bogus)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
