package posts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/scottfrazer/blog/internal/db"
)

// Store manages persistence of blog posts.
type Store struct {
	db *db.DB
}

// NewStore creates a new post store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create adds a new post. A zero Date defaults to now.
func (s *Store) Create(ctx context.Context, p Post) (*Post, error) {
	now := time.Now().UTC()
	if p.Date.IsZero() {
		p.Date = now
	}
	p.Date = p.Date.UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (title, date, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		p.Title, p.Date, p.Content, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting post: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading post id: %w", err)
	}
	p.ID = id
	return &p, nil
}

const postColumns = `id, title, date, content, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*Post, error) {
	var p Post
	if err := row.Scan(&p.ID, &p.Title, &p.Date, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get retrieves a post by id. It returns nil, nil when the post does not exist.
func (s *Store) Get(ctx context.Context, id int64) (*Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting post: %w", err)
	}
	return p, nil
}

// Latest returns the post with the most recent date, or nil, nil when there
// are no posts.
func (s *Store) Latest(ctx context.Context) (*Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY date DESC, id DESC LIMIT 1`))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest post: %w", err)
	}
	return p, nil
}

// List returns post summaries, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Summary, error) {
	query := `SELECT id, title, date FROM posts ORDER BY date DESC, id DESC`
	args := []any{}

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Date); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// All returns every post with its body, newest first.
func (s *Store) All(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	var all []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		all = append(all, *p)
	}
	return all, rows.Err()
}

// Update replaces the title, date and content of post p.ID.
func (s *Store) Update(ctx context.Context, p Post) (*Post, error) {
	p.UpdatedAt = time.Now().UTC()
	if p.Date.IsZero() {
		p.Date = p.UpdatedAt
	}
	p.Date = p.Date.UTC()

	result, err := s.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, date = ?, content = ?, updated_at = ? WHERE id = ?`,
		p.Title, p.Date, p.Content, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return nil, fmt.Errorf("updating post %d: %w", p.ID, ErrNotFound)
	}
	return s.Get(ctx, p.ID)
}

// Delete removes a post.
func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("deleting post %d: %w", id, ErrNotFound)
	}
	return nil
}

// Count returns the number of stored posts.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	return count, err
}
