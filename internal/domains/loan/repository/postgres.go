package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"books-commons/internal/domains/loan/model"
	"books-commons/pkg/database"
)

const openLoanConstraint = "loans_open_per_copy_key"

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const loanColumns = `id, user_book_id, borrower_id, owner_id, status, message,
	requested_at, approved_at, lent_at, returned_at, rejected_at`

func scanLoan(row pgx.Row) (*model.Loan, error) {
	var l model.Loan
	err := row.Scan(
		&l.ID, &l.CopyID, &l.BorrowerID, &l.OwnerID, &l.Status, &l.Message,
		&l.RequestedAt, &l.ApprovedAt, &l.LentAt, &l.ReturnedAt, &l.RejectedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrLoanNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *postgresRepository) Create(ctx context.Context, loan *model.Loan) error {
	query := `
		INSERT INTO loans (id, user_book_id, borrower_id, owner_id, status, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING requested_at
	`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query,
		loan.ID, loan.CopyID, loan.BorrowerID, loan.OwnerID, loan.Status, loan.Message,
	).Scan(&loan.RequestedAt)
	return createError(err)
}

// createError - loans_open_per_copy_key là chốt chặn cuối cho request song song
func createError(err error) error {
	if err == nil {
		return nil
	}
	if database.IsUniqueViolation(err, openLoanConstraint) {
		return model.ErrCopyAlreadyPending
	}
	return fmt.Errorf("insert loan: %w", err)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	l, err := scanLoan(database.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil && !errors.Is(err, model.ErrLoanNotFound) {
		return nil, fmt.Errorf("get loan %s: %w", id, err)
	}
	return l, err
}

func (r *postgresRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`
	l, err := scanLoan(database.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil && !errors.Is(err, model.ErrLoanNotFound) {
		return nil, fmt.Errorf("lock loan %s: %w", id, err)
	}
	return l, err
}

// timestampColumn - status -> cột timestamp, không nhận input từ ngoài
var timestampColumn = map[model.Status]string{
	model.StatusApproved: "approved_at",
	model.StatusActive:   "lent_at",
	model.StatusReturned: "returned_at",
	model.StatusRejected: "rejected_at",
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status, at time.Time) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%s -> %s: %w", from, to, model.ErrInvalidTransition)
	}
	column, ok := timestampColumn[to]
	if !ok {
		return fmt.Errorf("no timestamp column for status %s", to)
	}

	query := fmt.Sprintf(`
		UPDATE loans
		SET status = $3, %s = $4
		WHERE id = $1 AND status = $2
	`, column)
	tag, err := database.Conn(ctx, r.pool).Exec(ctx, query, id, from, to, at)
	if err != nil {
		return fmt.Errorf("update loan status: %w", err)
	}
	return transitionResult(tag, func() (*model.Loan, error) { return r.GetByID(ctx, id) })
}

// transitionResult - 0 row nghĩa là status đã đổi từ lúc đọc (transaction khác thắng)
func transitionResult(tag pgconn.CommandTag, current func() (*model.Loan, error)) error {
	if tag.RowsAffected() > 0 {
		return nil
	}
	loan, err := current()
	if err != nil {
		return err
	}
	return fmt.Errorf("loan %s is %s: %w", loan.ID, loan.Status, model.ErrInvalidTransition)
}

func (r *postgresRepository) HasOpenLoanForCopy(ctx context.Context, copyID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM loans
			WHERE user_book_id = $1 AND status IN ('requested', 'approved', 'active')
		)
	`
	var exists bool
	if err := database.Conn(ctx, r.pool).QueryRow(ctx, query, copyID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check open loan: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) ListByParticipant(ctx context.Context, memberID uuid.UUID, status *model.Status) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + `
		FROM loans
		WHERE (borrower_id = $1 OR owner_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY requested_at DESC
	`
	var statusArg *string
	if status != nil {
		s := status.String()
		statusArg = &s
	}

	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, memberID, statusArg)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	loans := make([]model.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		loans = append(loans, *l)
	}
	return loans, rows.Err()
}
