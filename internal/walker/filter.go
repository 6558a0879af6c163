package walker

import (
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SkippedDirs are never searched for posts.
var SkippedDirs = []string{"node_modules", "vendor"}

// DraftDirs hold unpublished posts. They are skipped unless Filter.Drafts
// is set.
var DraftDirs = []string{"drafts", "_drafts"}

// Filter selects post source files by slash-separated path relative to the
// walk root. Hidden files and directories never match.
type Filter struct {
	Include []string // empty includes every file
	Exclude []string
	Drafts  bool
}

// SkipDir reports whether the directory name should not be descended into.
func (f Filter) SkipDir(name string) bool {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "."):
		return true
	case slices.Contains(SkippedDirs, lower):
		return true
	case !f.Drafts && slices.Contains(DraftDirs, lower):
		return true
	}
	return false
}

// Match reports whether the file at relPath is a post source.
func (f Filter) Match(relPath string) bool {
	if strings.HasPrefix(path.Base(relPath), ".") {
		return false
	}
	if len(f.Include) > 0 && !matchesAny(relPath, f.Include) {
		return false
	}
	return !matchesAny(relPath, f.Exclude)
}

// matchesAny matches relPath, then its base name, so "*.post" selects posts
// at any depth.
func matchesAny(relPath string, patterns []string) bool {
	base := path.Base(relPath)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, relPath); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
