package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/scottfrazer/blog/internal/db"
)

// timeLayout is fixed width so stored timestamps compare as strings.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Store provides access to the audit trail.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

// Log inserts a new audit entry. Empty ID and zero Timestamp are filled in.
func (s *Store) Log(ctx context.Context, entry Entry) (*Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.Timestamp = entry.Timestamp.UTC()

	var postID sql.NullInt64
	if entry.PostID != 0 {
		postID = sql.NullInt64{Int64: entry.PostID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_entries (id, timestamp, action, post_id, summary, client_ip, request_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, formatTime(entry.Timestamp), string(entry.Action), postID,
		entry.Summary, entry.ClientIP, entry.RequestID,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting audit entry: %w", err)
	}
	return &entry, nil
}

// Record logs action on behalf of an HTTP request, taking the client address
// and request id from r. Failures are logged, never returned: the action
// itself has already happened. A nil Store records nothing.
func (s *Store) Record(r *http.Request, action Action, postID int64, summary string) {
	if s == nil {
		return
	}
	_, err := s.Log(r.Context(), Entry{
		Action:    action,
		PostID:    postID,
		Summary:   summary,
		ClientIP:  r.RemoteAddr,
		RequestID: middleware.GetReqID(r.Context()),
	})
	if err != nil {
		logrus.WithError(err).WithField("action", action).Error("audit: record")
	}
}

const selectEntries = `SELECT id, timestamp, action, post_id, summary, client_ip, request_id FROM audit_entries`

// Get retrieves a single audit entry, or nil if there is none with that id.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, selectEntries+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting audit entry %s: %w", id, err)
	}
	return e, nil
}

// QueryFilter controls which audit entries are returned by Query.
type QueryFilter struct {
	Action Action
	PostID int64
	Since  *time.Time
	Until  *time.Time
	Limit  int
	Offset int
}

// Query returns matching audit entries, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.PostID != 0 {
		clauses = append(clauses, "post_id = ?")
		args = append(args, filter.PostID)
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, formatTime(*filter.Since))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, formatTime(*filter.Until))
	}

	query := selectEntries
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// DeleteBefore removes all audit entries older than before and returns how
// many were removed.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM audit_entries WHERE timestamp < ?", formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("deleting old audit entries: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*Entry, error) {
	var (
		e      Entry
		ts     string
		action string
		postID sql.NullInt64
	)
	if err := sc.Scan(&e.ID, &ts, &action, &postID, &e.Summary, &e.ClientIP, &e.RequestID); err != nil {
		return nil, err
	}
	t, err := time.Parse(timeLayout, ts)
	if err != nil {
		return nil, fmt.Errorf("parsing audit timestamp %q: %w", ts, err)
	}
	e.Timestamp = t
	e.Action = Action(action)
	e.PostID = postID.Int64
	return &e, nil
}
