package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"books-commons/internal/domains/review/model"
	"books-commons/pkg/database"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const reviewColumns = `r.id, r.book_id, r.user_id, r.rating, r.body, r.read_at, r.visibility, r.created_at, r.updated_at`

func scanReview(row pgx.Row) (*model.Review, error) {
	var r model.Review
	err := row.Scan(&r.ID, &r.BookID, &r.UserID, &r.Rating, &r.Body, &r.ReadAt, &r.Visibility, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrReviewNotFound
		}
		return nil, err
	}
	return &r, nil
}

// ========================================
// CRUD
// ========================================

func (r *postgresRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (id, book_id, user_id, rating, body, read_at, visibility)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query,
		review.ID, review.BookID, review.UserID, review.Rating, review.Body, review.ReadAt, review.Visibility,
	).Scan(&review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" && pgErr.ConstraintName == "reviews_book_id_fkey" {
			return model.ErrBookNotFound
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews r WHERE r.id = $1`
	review, err := scanReview(database.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil && !errors.Is(err, model.ErrReviewNotFound) {
		return nil, fmt.Errorf("get review %s: %w", id, err)
	}
	return review, err
}

func (r *postgresRepository) Update(ctx context.Context, review *model.Review) error {
	query := `
		UPDATE reviews
		SET rating = $3, body = $4, read_at = $5, visibility = $6, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query,
		review.ID, review.UserID, review.Rating, review.Body, review.ReadAt, review.Visibility,
	).Scan(&review.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrReviewNotFound
		}
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	query := `DELETE FROM reviews WHERE id = $1 AND user_id = $2`

	result, err := database.Conn(ctx, r.pool).Exec(ctx, query, id, authorID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrReviewNotFound
	}
	return nil
}

// ========================================
// LIST
// ========================================

func (r *postgresRepository) ListByBook(ctx context.Context, bookID, viewerID uuid.UUID) ([]model.ReviewView, error) {
	query := `SELECT ` + reviewColumns + `, m.display_name, b.title
		FROM reviews r
		JOIN members m ON m.id = r.user_id
		JOIN books b ON b.id = r.book_id
		WHERE r.book_id = $1
		  AND (r.visibility <> 'private' OR r.user_id = $2)
		ORDER BY r.created_at DESC, r.id
	`
	return r.queryViews(ctx, query, bookID, viewerID)
}

func (r *postgresRepository) Feed(ctx context.Context, limit int) ([]model.ReviewView, error) {
	query := `SELECT ` + reviewColumns + `, m.display_name, b.title
		FROM reviews r
		JOIN members m ON m.id = r.user_id
		JOIN books b ON b.id = r.book_id
		WHERE r.visibility IN ('public', 'community')
		ORDER BY r.created_at DESC, r.id
		LIMIT $1
	`
	return r.queryViews(ctx, query, limit)
}

func (r *postgresRepository) queryViews(ctx context.Context, query string, args ...interface{}) ([]model.ReviewView, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	views := make([]model.ReviewView, 0)
	for rows.Next() {
		var v model.ReviewView
		if err := rows.Scan(
			&v.ID, &v.BookID, &v.UserID, &v.Rating, &v.Body, &v.ReadAt, &v.Visibility, &v.CreatedAt, &v.UpdatedAt,
			&v.AuthorName, &v.BookTitle,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
