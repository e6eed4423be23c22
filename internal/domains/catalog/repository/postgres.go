package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"books-commons/internal/domains/catalog/model"
	"books-commons/internal/shared/utils"
	"books-commons/pkg/database"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const bookColumns = `id, isbn, title, author, publisher, published_date, description,
	cover_url, page_count, genre, created_at, updated_at`

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID, &b.ISBN, &b.Title, &b.Author, &b.Publisher, &b.PublishedDate, &b.Description,
		&b.CoverURL, &b.PageCount, &b.Genres, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, err
	}
	return &b, nil
}

func scanBooks(rows pgx.Rows) ([]model.Book, error) {
	defer rows.Close()
	books := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

func (r *postgresRepository) SearchText(ctx context.Context, query string, limit int) ([]model.Book, error) {
	sql := `SELECT ` + bookColumns + `
		FROM books
		WHERE title ILIKE $1 OR author ILIKE $1
		ORDER BY created_at
		LIMIT $2
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, sql, utils.ContainsPattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return scanBooks(rows)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	b, err := scanBook(database.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
	if err != nil && !errors.Is(err, model.ErrBookNotFound) {
		return nil, fmt.Errorf("get book %s: %w", id, err)
	}
	return b, err
}

func (r *postgresRepository) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	b, err := scanBook(database.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE isbn = $1`, isbn))
	if err != nil && !errors.Is(err, model.ErrBookNotFound) {
		return nil, fmt.Errorf("get book by isbn %s: %w", isbn, err)
	}
	return b, err
}

func (r *postgresRepository) Create(ctx context.Context, b *model.Book) (*model.Book, bool, error) {
	query := `
		INSERT INTO books (id, isbn, title, author, publisher, published_date, description, cover_url, page_count, genre)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (isbn) WHERE isbn IS NOT NULL DO NOTHING
		RETURNING created_at, updated_at
	`
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	genres := b.Genres
	if genres == nil {
		genres = pq.StringArray{}
	}

	err := database.Conn(ctx, r.pool).QueryRow(ctx, query,
		b.ID, b.ISBN, b.Title, b.Author, b.Publisher, b.PublishedDate, b.Description,
		b.CoverURL, b.PageCount, genres,
	).Scan(&b.CreatedAt, &b.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) && b.ISBN != nil {
		// ON CONFLICT DO NOTHING: ISBN đã có, trả về row cũ
		existing, getErr := r.GetByISBN(ctx, *b.ISBN)
		if getErr != nil {
			return nil, false, getErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("insert book: %w", err)
	}
	b.Genres = genres
	return b, true, nil
}

func (r *postgresRepository) UpdateMetadata(ctx context.Context, b *model.Book) error {
	query := `
		UPDATE books
		SET author = $2, publisher = $3, published_date = $4, description = $5,
		    cover_url = $6, page_count = $7, genre = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	genres := b.Genres
	if genres == nil {
		genres = pq.StringArray{}
	}
	err := database.Conn(ctx, r.pool).QueryRow(ctx, query,
		b.ID, b.Author, b.Publisher, b.PublishedDate, b.Description, b.CoverURL, b.PageCount, genres,
	).Scan(&b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrBookNotFound
	}
	if err != nil {
		return fmt.Errorf("update book metadata: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListIncomplete(ctx context.Context, limit int) ([]model.Book, error) {
	query := `SELECT ` + bookColumns + `
		FROM books
		WHERE isbn IS NOT NULL
		  AND (cover_url = '' OR page_count IS NULL OR cardinality(genre) = 0
		       OR publisher = '' OR description = '')
		ORDER BY updated_at
		LIMIT $1
	`
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list incomplete books: %w", err)
	}
	return scanBooks(rows)
}
