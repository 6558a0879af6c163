// Package audit keeps a trail of admin actions against the blog.
package audit

import "time"

// Action describes what was done.
type Action string

const (
	ActionLogin         Action = "login"
	ActionLoginFailed   Action = "login_failed"
	ActionLogout        Action = "logout"
	ActionPostCreated   Action = "post_created"
	ActionPostUpdated   Action = "post_updated"
	ActionPostDeleted   Action = "post_deleted"
	ActionPostsImported Action = "posts_imported"
	ActionStravaSynced  Action = "strava_synced"
)

// Entry is a single audit trail record. PostID is zero for actions that
// do not concern one post.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	PostID    int64     `json:"post_id,omitempty"`
	Summary   string    `json:"summary"`
	ClientIP  string    `json:"client_ip,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}
