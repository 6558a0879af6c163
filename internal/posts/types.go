package posts

import (
	"errors"
	"strconv"
	"time"

	"github.com/scottfrazer/blog/internal/content"
)

// ErrNotFound is returned when a post id does not exist.
var ErrNotFound = errors.New("post not found")

// Post is a stored blog post. Content is the raw body in fence markup; see
// content.Segment.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title" validate:"required,max=300"`
	Date      time.Time `json:"date"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Blocks segments the post body.
func (p *Post) Blocks() []content.Block {
	return content.Segment(p.Content)
}

// CacheKey identifies this revision of the post for rendered output.
func (p *Post) CacheKey() string {
	return strconv.FormatInt(p.ID, 10) + ":" + strconv.FormatInt(p.UpdatedAt.UnixNano(), 10)
}

// ListFilter controls which posts to return.
type ListFilter struct {
	Limit  int
	Offset int
}

// Summary is the list view of a post.
type Summary struct {
	ID    int64     `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}
