package strava

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/scottfrazer/blog/internal/db"
)

// Store persists activities, laps and the API token. Activities and laps are
// stored as their JSON encoding so new upstream fields survive a resync.
type Store struct {
	db *db.DB
}

// NewStore creates a new activity store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// SaveActivities inserts activities, ignoring ones already stored.
func (s *Store) SaveActivities(ctx context.Context, activities []Activity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range activities {
		value, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encoding activity %d: %w", a.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO strava_activities (id, start_date, value) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING`,
			a.ID, formatDate(a.Date()), string(value),
		); err != nil {
			return fmt.Errorf("saving activity %d: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

// SaveLaps inserts the laps of an activity, ignoring ones already stored.
func (s *Store) SaveLaps(ctx context.Context, activityID int64, laps []Lap) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, lap := range laps {
		value, err := json.Marshal(lap)
		if err != nil {
			return fmt.Errorf("encoding lap %d: %w", lap.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO strava_laps (id, activity_id, value) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING`,
			lap.ID, activityID, string(value),
		); err != nil {
			return fmt.Errorf("saving lap %d: %w", lap.ID, err)
		}
	}
	return tx.Commit()
}

// Laps returns the stored laps of an activity in lap order.
func (s *Store) Laps(ctx context.Context, activityID int64) ([]Lap, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT value FROM strava_laps WHERE activity_id = ? ORDER BY id`, activityID)
	if err != nil {
		return nil, fmt.Errorf("querying laps: %w", err)
	}
	defer rows.Close()

	laps := []Lap{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scanning lap: %w", err)
		}
		var lap Lap
		if err := json.Unmarshal([]byte(value), &lap); err != nil {
			return nil, fmt.Errorf("decoding lap: %w", err)
		}
		laps = append(laps, lap)
	}
	return laps, rows.Err()
}

// MostRecentDate returns the start date of the newest stored activity, or
// the zero time when there are none.
func (s *Store) MostRecentDate(ctx context.Context) (time.Time, error) {
	var latest sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(start_date) FROM strava_activities`).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("querying most recent activity: %w", err)
	}
	if !latest.Valid || latest.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, latest.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing activity date %q: %w", latest.String, err)
	}
	return t, nil
}

// LoadPage returns one page of activities, newest first. Pages start at 1.
func (s *Store) LoadPage(ctx context.Context, page, perPage int) ([]Activity, error) {
	if page < 1 {
		page = 1
	}
	return s.query(ctx,
		`SELECT value FROM strava_activities ORDER BY start_date DESC, id DESC LIMIT ? OFFSET ?`,
		perPage, (page-1)*perPage,
	)
}

// Load returns every activity matching filter, newest first.
func (s *Store) Load(ctx context.Context, filter Filter) ([]Activity, error) {
	var where []string
	var args []any
	if !filter.Start.IsZero() {
		where = append(where, "start_date >= ?")
		args = append(args, formatDate(filter.Start))
	}
	if !filter.End.IsZero() {
		where = append(where, "start_date < ?")
		args = append(args, formatDate(filter.End))
	}

	query := `SELECT value FROM strava_activities`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY start_date DESC, id DESC"
	return s.query(ctx, query, args...)
}

// Count returns the number of stored activities.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM strava_activities`).Scan(&n)
	return n, err
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	activities := []Activity{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		var a Activity
		if err := json.Unmarshal([]byte(value), &a); err != nil {
			return nil, fmt.Errorf("decoding activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// Token returns the stored OAuth token, or nil when the blog has not been
// authorized yet.
func (s *Store) Token(ctx context.Context) (*oauth2.Token, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM strava_token WHERE id = 1`).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal([]byte(value), &tok); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return &tok, nil
}

// SaveToken replaces the stored OAuth token.
func (s *Store) SaveToken(ctx context.Context, tok *oauth2.Token) error {
	value, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO strava_token (id, value, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		string(value), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}
