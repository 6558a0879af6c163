// Package importer creates posts from a directory of post files.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scottfrazer/blog/internal/posts"
	"github.com/scottfrazer/blog/internal/progress"
	"github.com/scottfrazer/blog/internal/walker"
)

// Options selects the files to import.
type Options struct {
	Dir     string
	Include []string
	Exclude []string
	Drafts  bool // also import from draft directories
	DryRun  bool // parse only, create nothing
}

// Result summarizes an import run.
type Result struct {
	Created []posts.Post
	Skipped []string // relative paths of duplicate or empty files
}

// Importer creates posts in store.
type Importer struct {
	store    *posts.Store
	reporter progress.Reporter
	log      logrus.FieldLogger
}

// New returns an Importer. A nil reporter reports nothing.
func New(store *posts.Store, reporter progress.Reporter) *Importer {
	if reporter == nil {
		reporter = progress.Discard{}
	}
	return &Importer{store: store, reporter: reporter, log: logrus.StandardLogger()}
}

// Run imports every matching file under opts.Dir in path order. Files with
// identical content are imported once. A file that fails to parse aborts the
// run before anything after it is created.
func (im *Importer) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := walker.Walk(walker.WalkerConfig{
		RootDir: opts.Dir,
		Include: opts.Include,
		Exclude: opts.Exclude,
		Drafts:  opts.Drafts,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{}
	seen := make(map[string]bool)

	im.reporter.Start(len(files))
	defer im.reporter.Finish()

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		im.reporter.Update(i+1, f.RelPath)

		if seen[f.ContentHash] {
			result.Skipped = append(result.Skipped, f.RelPath)
			continue
		}
		seen[f.ContentHash] = true

		post, err := ParseFile(f)
		if err != nil {
			return result, fmt.Errorf("%s: %w", f.RelPath, err)
		}
		if strings.TrimSpace(post.Content) == "" {
			result.Skipped = append(result.Skipped, f.RelPath)
			continue
		}

		if !opts.DryRun {
			created, err := im.store.Create(ctx, post)
			if err != nil {
				return result, fmt.Errorf("%s: %w", f.RelPath, err)
			}
			post = *created
		}
		im.log.WithFields(logrus.Fields{"file": f.RelPath, "title": post.Title, "dry_run": opts.DryRun}).Info("import: post")
		result.Created = append(result.Created, post)
	}
	return result, nil
}

// ParseFile reads a post file. The title defaults to the file name without
// its extension and the date to the file's modification time.
func ParseFile(f walker.FileInfo) (posts.Post, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return posts.Post{}, fmt.Errorf("reading file: %w", err)
	}
	meta, body, err := SplitFrontMatter(data)
	if err != nil {
		return posts.Post{}, err
	}

	post := posts.Post{
		Title:   strings.TrimSpace(meta.Title),
		Content: strings.TrimSpace(body),
		Date:    f.ModTime.UTC().Truncate(time.Second),
	}
	if post.Title == "" {
		base := filepath.Base(f.RelPath)
		post.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if meta.Date != "" {
		if post.Date, err = ParseDate(meta.Date); err != nil {
			return posts.Post{}, err
		}
	}
	return post, nil
}
