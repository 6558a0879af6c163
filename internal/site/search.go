package site

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/scottfrazer/blog/internal/content"
	"github.com/scottfrazer/blog/internal/posts"
)

const summaryLength = 200

// SearchEntry represents a single searchable post for the client-side
// search box.
type SearchEntry struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Summary string `json:"summary"`
	Content string `json:"content"`
}

// BuildSearchIndex indexes the prose of each post. Code blocks are left out
// of the searchable text.
func BuildSearchIndex(all []posts.Post) []SearchEntry {
	entries := make([]SearchEntry, 0, len(all))
	for _, p := range all {
		var text []string
		for _, b := range content.Segment(p.Content) {
			if b.Kind == content.Paragraph {
				text = append(text, strings.Join(strings.Fields(b.Text), " "))
			}
		}
		body := strings.Join(text, " ")
		entries = append(entries, SearchEntry{
			Path:    postFile(p.ID),
			Title:   p.Title,
			Date:    p.Date.Format("2006-01-02"),
			Summary: truncate(body, summaryLength),
			Content: body,
		})
	}
	return entries
}

// truncate shortens s to at most n runes, cutting at a word boundary.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	cut := string(r[:n])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}

// WriteSearchIndex writes the search entries as JSON to the given path.
func WriteSearchIndex(entries []SearchEntry, path string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
