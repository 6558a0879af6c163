// Package site exports the blog as a static HTML site.
package site

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/scottfrazer/blog/internal/posts"
	"github.com/scottfrazer/blog/internal/render"
)

// SiteGenerator renders every stored post into a static site.
type SiteGenerator struct {
	Store     *posts.Store
	Renderer  *render.Renderer
	OutputDir string
	Title     string
}

// NewSiteGenerator creates a SiteGenerator writing to outputDir.
func NewSiteGenerator(store *posts.Store, renderer *render.Renderer, outputDir, title string) *SiteGenerator {
	return &SiteGenerator{
		Store:     store,
		Renderer:  renderer,
		OutputDir: outputDir,
		Title:     title,
	}
}

type postPage struct {
	SiteTitle string
	Post      posts.Post
	Content   template.HTML
	Newer     *PostLink
	Older     *PostLink
}

type indexPage struct {
	SiteTitle string
	Latest    *postPage
	Archive   []ArchiveYear
	Count     int
}

var (
	postTmpl  = template.Must(template.New("post").Funcs(templateFuncs).Parse(layoutTemplate + postTemplate))
	indexTmpl = template.Must(template.New("index").Funcs(templateFuncs).Parse(layoutTemplate + indexTemplate))
)

func postFile(id int64) string {
	return "post-" + strconv.FormatInt(id, 10) + ".html"
}

// Generate builds the full static site. Returns the number of post pages
// written.
func (g *SiteGenerator) Generate(ctx context.Context) (int, error) {
	all, err := g.Store.All(ctx)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(filepath.Join(g.OutputDir, "style.css"), []byte(cssContent), 0o644); err != nil {
		return 0, err
	}
	if err := os.WriteFile(filepath.Join(g.OutputDir, "script.js"), []byte(jsContent), 0o644); err != nil {
		return 0, err
	}
	if err := WriteSearchIndex(BuildSearchIndex(all), filepath.Join(g.OutputDir, "search-index.json")); err != nil {
		return 0, fmt.Errorf("writing search index: %w", err)
	}

	// all is newest first.
	pages := make([]*postPage, len(all))
	for i, p := range all {
		html, err := g.Renderer.Post(p.CacheKey(), p.Content)
		if err != nil {
			return 0, fmt.Errorf("rendering post %d: %w", p.ID, err)
		}
		pages[i] = &postPage{SiteTitle: g.Title, Post: p, Content: template.HTML(html)}
		if i > 0 {
			pages[i].Newer = &PostLink{ID: all[i-1].ID, Title: all[i-1].Title, Href: postFile(all[i-1].ID)}
		}
		if i < len(all)-1 {
			pages[i].Older = &PostLink{ID: all[i+1].ID, Title: all[i+1].Title, Href: postFile(all[i+1].ID)}
		}
	}

	for _, page := range pages {
		if err := writeTemplate(postTmpl, filepath.Join(g.OutputDir, postFile(page.Post.ID)), page); err != nil {
			return 0, fmt.Errorf("writing post %d: %w", page.Post.ID, err)
		}
	}

	index := indexPage{SiteTitle: g.Title, Archive: BuildArchive(all), Count: len(all)}
	if len(pages) > 0 {
		index.Latest = pages[0]
	}
	if err := writeTemplate(indexTmpl, filepath.Join(g.OutputDir, "index.html"), index); err != nil {
		return 0, fmt.Errorf("writing index: %w", err)
	}

	logrus.WithFields(logrus.Fields{"dir": g.OutputDir, "posts": len(pages)}).Info("site: generated")
	return len(pages), nil
}

func writeTemplate(tmpl *template.Template, path string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tmpl.ExecuteTemplate(f, "layout", data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
