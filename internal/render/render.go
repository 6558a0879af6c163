// Package render turns segmented post content into HTML. Paragraphs are
// emitted as escaped text; code blocks go through goldmark's fenced code
// path so chroma can highlight them by language.
package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/scottfrazer/blog/internal/cache"
	"github.com/scottfrazer/blog/internal/content"
)

// DefaultStyle matches the colour scheme the front end has always used.
const DefaultStyle = "solarized-dark"

// Renderer converts blocks to HTML.
type Renderer struct {
	md    goldmark.Markdown
	style string
	cache cache.Cache
	ttl   time.Duration
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithCache stores rendered post HTML in c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(r *Renderer) {
		r.cache = c
		r.ttl = ttl
	}
}

// New creates a Renderer highlighting code with the named chroma style.
// Unknown style names fall back to DefaultStyle.
func New(style string, opts ...Option) *Renderer {
	if _, ok := styles.Registry[style]; !ok {
		style = DefaultStyle
	}
	r := &Renderer{style: style}
	r.md = goldmark.New(
		goldmark.WithExtensions(
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
			),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Style returns the chroma style in use.
func (r *Renderer) Style() string { return r.style }

// Markdown returns the intermediate markdown document for blocks.
func (r *Renderer) Markdown(blocks []content.Block) string {
	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		switch block.Kind {
		case content.Code:
			writeFence(&b, block)
		default:
			writeParagraph(&b, block.Text)
		}
	}
	return b.String()
}

// HTML renders blocks to an HTML fragment.
func (r *Renderer) HTML(blocks []content.Block) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(r.Markdown(blocks)), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

// Post segments a post body and renders it. When a cache is configured the
// result is stored under key; callers should make key change whenever the
// body does.
func (r *Renderer) Post(key, body string) (string, error) {
	if r.cache != nil && key != "" {
		if cached, found, err := r.cache.Get(cache.Key("html", key)); err == nil && found {
			return cached, nil
		}
	}

	out, err := r.HTML(content.Segment(body))
	if err != nil {
		return "", err
	}

	if r.cache != nil && key != "" {
		// A cache write failure only costs a re-render.
		_ = r.cache.Set(cache.Key("html", key), out, r.ttl)
	}
	return out, nil
}

// writeParagraph writes text as a single-line HTML block so that markdown
// syntax inside it is never interpreted.
func writeParagraph(b *strings.Builder, text string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = html.EscapeString(line)
	}
	b.WriteString("<p>")
	b.WriteString(strings.Join(lines, "<br>"))
	b.WriteString("</p>\n")
}

// writeFence writes a fenced code block whose fence is longer than any
// backtick run in the code.
func writeFence(b *strings.Builder, block content.Block) {
	fence := strings.Repeat("`", max(3, longestRun(block.Text, '`')+1))
	b.WriteString(fence)
	b.WriteString(infoString(block.Language))
	b.WriteString("\n")
	b.WriteString(block.Text)
	b.WriteString("\n")
	b.WriteString(fence)
	b.WriteString("\n")
}

// infoString reduces a declared language to a single fence-safe word.
func infoString(lang string) string {
	fields := strings.Fields(strings.ReplaceAll(lang, "`", ""))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func longestRun(s string, c byte) int {
	longest, cur := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			cur++
			longest = max(longest, cur)
		} else {
			cur = 0
		}
	}
	return longest
}
