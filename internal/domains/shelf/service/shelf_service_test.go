package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	catalogModel "books-commons/internal/domains/catalog/model"
	loanModel "books-commons/internal/domains/loan/model"
	"books-commons/internal/domains/shelf/model"
	"books-commons/internal/shared/apperror"
	"books-commons/internal/testutil/memstore"
)

func strPtr(s string) *string { return &s }

type shelfFixture struct {
	store *memstore.Store
	svc   Service
	owner uuid.UUID
	other uuid.UUID
	book  catalogModel.Book
}

func newShelfFixture() *shelfFixture {
	store := memstore.New()
	return &shelfFixture{
		store: store,
		svc:   NewShelfService(store, store.Copies(), store.Loans()),
		owner: store.AddMember("owner").ID,
		other: store.AddMember("other").ID,
		book:  store.AddBook(catalogModel.Book{ISBN: strPtr("9784152098702"), Title: "Project Hail Mary", Author: "Andy Weir"}),
	}
}

// openLoan ghi thẳng một loan requested cho copy
func (f *shelfFixture) openLoan(t *testing.T, copyID uuid.UUID) *loanModel.Loan {
	t.Helper()
	loan := &loanModel.Loan{
		ID:         uuid.New(),
		CopyID:     copyID,
		BorrowerID: f.other,
		OwnerID:    f.owner,
		Status:     loanModel.StatusRequested,
	}
	require.NoError(t, f.store.Loans().Create(context.Background(), loan))
	return loan
}

func TestAddCopy_Defaults(t *testing.T) {
	f := newShelfFixture()

	c, err := f.svc.AddCopy(context.Background(), f.owner, model.AddCopyRequest{BookID: f.book.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, model.StatusAvailable, c.Status)
	assert.Equal(t, model.ConditionGood, c.Condition)
	assert.Equal(t, f.owner, c.OwnerID)

	stored, ok := f.store.Copy(c.ID)
	require.True(t, ok)
	assert.Equal(t, c.BookID, stored.BookID)
}

func TestAddCopy_Rejections(t *testing.T) {
	f := newShelfFixture()
	ctx := context.Background()

	_, err := f.svc.AddCopy(ctx, f.owner, model.AddCopyRequest{BookID: f.book.ID.String(), Status: "lent_out"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = f.svc.AddCopy(ctx, f.owner, model.AddCopyRequest{BookID: f.book.ID.String(), Condition: "mint"})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = f.svc.AddCopy(ctx, f.owner, model.AddCopyRequest{BookID: uuid.NewString()})
	assert.True(t, errors.Is(err, model.ErrBookNotFound))
}

func TestGetCopy_PrivateIsNotFoundForOthers(t *testing.T) {
	f := newShelfFixture()
	private := f.store.AddCopy(f.owner, f.book.ID, model.StatusPrivate)

	_, err := f.svc.GetCopy(context.Background(), f.other, private.ID)
	assert.True(t, errors.Is(err, model.ErrCopyNotFound))

	c, err := f.svc.GetCopy(context.Background(), f.owner, private.ID)
	require.NoError(t, err)
	assert.Equal(t, private.ID, c.ID)
}

func TestUpdateCopy(t *testing.T) {
	ctx := context.Background()

	t.Run("owner changes status and note", func(t *testing.T) {
		f := newShelfFixture()
		c := f.store.AddCopy(f.owner, f.book.ID, model.StatusAvailable)

		updated, err := f.svc.UpdateCopy(ctx, f.owner, c.ID, model.UpdateCopyRequest{Status: strPtr("reading"), Note: strPtr("付箋あり")})
		require.NoError(t, err)
		assert.Equal(t, model.StatusReading, updated.Status)

		stored, _ := f.store.Copy(c.ID)
		assert.Equal(t, model.StatusReading, stored.Status)
		assert.Equal(t, "付箋あり", stored.Note)
	})

	t.Run("non owner is forbidden", func(t *testing.T) {
		f := newShelfFixture()
		c := f.store.AddCopy(f.owner, f.book.ID, model.StatusAvailable)

		_, err := f.svc.UpdateCopy(ctx, f.other, c.ID, model.UpdateCopyRequest{Note: strPtr("mine now")})
		assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	})

	t.Run("lent_out cannot be set by owner", func(t *testing.T) {
		f := newShelfFixture()
		c := f.store.AddCopy(f.owner, f.book.ID, model.StatusAvailable)

		_, err := f.svc.UpdateCopy(ctx, f.owner, c.ID, model.UpdateCopyRequest{Status: strPtr("lent_out")})
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})

	t.Run("status locked while lent out", func(t *testing.T) {
		f := newShelfFixture()
		c := f.store.AddCopy(f.owner, f.book.ID, model.StatusLentOut)

		_, err := f.svc.UpdateCopy(ctx, f.owner, c.ID, model.UpdateCopyRequest{Status: strPtr("available")})
		assert.True(t, errors.Is(err, model.ErrStatusLocked))

		stored, _ := f.store.Copy(c.ID)
		assert.Equal(t, model.StatusLentOut, stored.Status)
	})

	t.Run("status locked by open loan, condition is not", func(t *testing.T) {
		f := newShelfFixture()
		c := f.store.AddCopy(f.owner, f.book.ID, model.StatusAvailable)
		f.openLoan(t, c.ID)

		_, err := f.svc.UpdateCopy(ctx, f.owner, c.ID, model.UpdateCopyRequest{Status: strPtr("private")})
		assert.True(t, errors.Is(err, model.ErrStatusLocked))

		updated, err := f.svc.UpdateCopy(ctx, f.owner, c.ID, model.UpdateCopyRequest{Condition: strPtr("fair")})
		require.NoError(t, err)
		assert.Equal(t, model.ConditionFair, updated.Condition)
	})
}

func TestDeleteCopy(t *testing.T) {
	ctx := context.Background()
	f := newShelfFixture()
	c := f.store.AddCopy(f.owner, f.book.ID, model.StatusAvailable)
	loan := f.openLoan(t, c.ID)

	err := f.svc.DeleteCopy(ctx, f.owner, c.ID)
	assert.True(t, errors.Is(err, model.ErrCopyHasOpenLoan))
	_, ok := f.store.Copy(c.ID)
	assert.True(t, ok)

	require.NoError(t, f.store.Loans().UpdateStatus(ctx, loan.ID, loanModel.StatusRequested, loanModel.StatusRejected, loan.RequestedAt))

	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(f.svc.DeleteCopy(ctx, f.other, c.ID)))
	require.NoError(t, f.svc.DeleteCopy(ctx, f.owner, c.ID))
	_, ok = f.store.Copy(c.ID)
	assert.False(t, ok)
}

func TestListByOwner_HidesPrivateFromOthers(t *testing.T) {
	f := newShelfFixture()
	f.store.AddCopy(f.owner, f.book.ID, model.StatusAvailable)
	f.store.AddCopy(f.owner, f.book.ID, model.StatusPrivate)

	mine, err := f.svc.ListMine(context.Background(), f.owner)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := f.svc.ListByOwner(context.Background(), f.other, f.owner)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "Project Hail Mary", theirs[0].Title)
	assert.Equal(t, model.StatusAvailable, theirs[0].Status)
}

func TestExportShelf(t *testing.T) {
	f := newShelfFixture()
	f.store.AddCopy(f.owner, f.book.ID, model.StatusPrivate)

	data, err := f.svc.ExportShelf(context.Background(), f.owner)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Shelf")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "Project Hail Mary", rows[1][0])
	assert.Equal(t, "9784152098702", rows[1][2])
	assert.Equal(t, "private", rows[1][3])
}
