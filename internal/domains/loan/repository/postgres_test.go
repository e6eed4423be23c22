package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"books-commons/internal/domains/loan/model"
)

func TestCreateErrorMapping(t *testing.T) {
	t.Run("open loan constraint -> copy already pending", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: openLoanConstraint}
		err := createError(fmt.Errorf("exec: %w", pgErr))
		assert.ErrorIs(t, err, model.ErrCopyAlreadyPending)
	})

	t.Run("other unique violation stays internal", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "loans_pkey"}
		err := createError(pgErr)
		require.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrCopyAlreadyPending)
		assert.ErrorIs(t, err, pgErr)
	})

	t.Run("foreign key violation", func(t *testing.T) {
		err := createError(&pgconn.PgError{Code: "23503", ConstraintName: "loans_user_book_id_fkey"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrCopyAlreadyPending)
	})

	assert.NoError(t, createError(nil))
}

func TestTransitionResult(t *testing.T) {
	loanID := uuid.New()

	t.Run("row updated", func(t *testing.T) {
		called := false
		err := transitionResult(pgconn.NewCommandTag("UPDATE 1"), func() (*model.Loan, error) {
			called = true
			return nil, nil
		})
		assert.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("zero rows -> invalid transition with current status", func(t *testing.T) {
		err := transitionResult(pgconn.NewCommandTag("UPDATE 0"), func() (*model.Loan, error) {
			return &model.Loan{ID: loanID, Status: model.StatusRejected}, nil
		})
		assert.ErrorIs(t, err, model.ErrInvalidTransition)
		assert.Contains(t, err.Error(), "rejected")
	})

	t.Run("zero rows and loan gone -> not found", func(t *testing.T) {
		err := transitionResult(pgconn.NewCommandTag("UPDATE 0"), func() (*model.Loan, error) {
			return nil, model.ErrLoanNotFound
		})
		assert.ErrorIs(t, err, model.ErrLoanNotFound)
		assert.False(t, errors.Is(err, model.ErrInvalidTransition))
	})
}

// Edge không có trong transition table bị chặn trước khi chạm DB
func TestUpdateStatusRejectsUnknownEdge(t *testing.T) {
	repo := &postgresRepository{}

	err := repo.UpdateStatus(context.Background(), uuid.New(), model.StatusRequested, model.StatusReturned, time.Now())
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	err = repo.UpdateStatus(context.Background(), uuid.New(), model.StatusReturned, model.StatusActive, time.Now())
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}
