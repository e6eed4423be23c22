package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"books-commons/internal/domains/shelf/model"
	"books-commons/pkg/database"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const copyColumns = `id, user_id, book_id, status, condition, note, created_at, updated_at`

func scanCopy(row pgx.Row) (*model.Copy, error) {
	var c model.Copy
	err := row.Scan(&c.ID, &c.OwnerID, &c.BookID, &c.Status, &c.Condition, &c.Note, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCopyNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepository) Create(ctx context.Context, c *model.Copy) error {
	query := `
		INSERT INTO user_books (id, user_id, book_id, status, condition, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query,
		c.ID, c.OwnerID, c.BookID, c.Status, c.Condition, c.Note,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		// 23503 foreign_key_violation: book_id không tồn tại
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return model.ErrBookNotFound
		}
		return fmt.Errorf("insert user_book: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Copy, error) {
	query := `SELECT ` + copyColumns + ` FROM user_books WHERE id = $1`
	c, err := scanCopy(database.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil && !errors.Is(err, model.ErrCopyNotFound) {
		return nil, fmt.Errorf("get user_book %s: %w", id, err)
	}
	return c, err
}

func (r *postgresRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Copy, error) {
	query := `SELECT ` + copyColumns + ` FROM user_books WHERE id = $1 FOR UPDATE`
	c, err := scanCopy(database.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil && !errors.Is(err, model.ErrCopyNotFound) {
		return nil, fmt.Errorf("lock user_book %s: %w", id, err)
	}
	return c, err
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.CopyStatus) error {
	query := `
		UPDATE user_books
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	tag, err := database.Conn(ctx, r.pool).Exec(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("update user_book status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Phân biệt không tồn tại với status đã đổi
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return model.ErrCopyStatusChanged
	}
	return nil
}

func (r *postgresRepository) UpdateDetails(ctx context.Context, c *model.Copy) error {
	// status = 'lent_out' không bao giờ được ghi qua đường này
	query := `
		UPDATE user_books
		SET status = $2, condition = $3, note = $4, updated_at = NOW()
		WHERE id = $1 AND status <> 'lent_out' AND $2 <> 'lent_out'
		RETURNING updated_at
	`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query, c.ID, c.Status, c.Condition, c.Note).Scan(&c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrStatusLocked
	}
	if err != nil {
		return fmt.Errorf("update user_book: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM user_books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user_book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCopyNotFound
	}
	return nil
}

func (r *postgresRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, includePrivate bool) ([]model.ShelfItem, error) {
	query := `
		SELECT ub.id, ub.user_id, ub.book_id, ub.status, ub.condition, ub.note, ub.created_at, ub.updated_at,
		       b.title, b.author, b.isbn, b.cover_url
		FROM user_books ub
		JOIN books b ON b.id = ub.book_id
		WHERE ub.user_id = $1 AND ($2 OR ub.status <> 'private')
		ORDER BY ub.created_at DESC
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, ownerID, includePrivate)
	if err != nil {
		return nil, fmt.Errorf("list shelf: %w", err)
	}
	defer rows.Close()

	items := make([]model.ShelfItem, 0)
	for rows.Next() {
		var it model.ShelfItem
		if err := rows.Scan(
			&it.ID, &it.OwnerID, &it.BookID, &it.Status, &it.Condition, &it.Note, &it.CreatedAt, &it.UpdatedAt,
			&it.Title, &it.Author, &it.ISBN, &it.CoverURL,
		); err != nil {
			return nil, fmt.Errorf("scan shelf item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresRepository) ListByBook(ctx context.Context, bookID uuid.UUID) ([]model.Copy, error) {
	query := `SELECT ` + copyColumns + ` FROM user_books WHERE book_id = $1 ORDER BY created_at`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("list copies of book: %w", err)
	}
	defer rows.Close()

	copies := make([]model.Copy, 0)
	for rows.Next() {
		c, err := scanCopy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan copy: %w", err)
		}
		copies = append(copies, *c)
	}
	return copies, rows.Err()
}

func (r *postgresRepository) AvailabilityByISBN(ctx context.Context, isbns []string) (map[string]model.Availability, error) {
	result := make(map[string]model.Availability, len(isbns))
	if len(isbns) == 0 {
		return result, nil
	}

	query := `
		SELECT b.isbn,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE ub.status = 'available')
		FROM user_books ub
		JOIN books b ON b.id = ub.book_id
		WHERE b.isbn = ANY($1) AND ub.status <> 'private'
		GROUP BY b.isbn
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, isbns)
	if err != nil {
		return nil, fmt.Errorf("count availability: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var isbn string
		var a model.Availability
		if err := rows.Scan(&isbn, &a.Total, &a.Available); err != nil {
			return nil, fmt.Errorf("scan availability: %w", err)
		}
		result[isbn] = a
	}
	return result, rows.Err()
}
