package importer

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Meta is the optional YAML front matter at the top of a post file:
//
//	---
//	title: Marathon recap
//	date: 2023-10-08
//	---
type Meta struct {
	Title string `yaml:"title"`
	Date  string `yaml:"date"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses a front matter date. Dates without a zone are UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// SplitFrontMatter separates front matter from the post body. Files without
// a leading "---" line have no front matter and are returned whole.
func SplitFrontMatter(data []byte) (Meta, string, error) {
	var meta Meta
	data = bytes.TrimPrefix(data, []byte("\uFEFF"))
	normalized := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return meta, string(data), nil
	}
	rest := normalized[len("---\n"):]

	var header, body []byte
	if bytes.HasPrefix(rest, []byte("---\n")) || bytes.Equal(rest, []byte("---")) {
		body = bytes.TrimPrefix(rest[3:], []byte("\n"))
	} else {
		end := bytes.Index(rest, []byte("\n---\n"))
		switch {
		case end >= 0:
			header, body = rest[:end], rest[end+len("\n---\n"):]
		case bytes.HasSuffix(rest, []byte("\n---")):
			header = rest[:len(rest)-len("\n---")]
		default:
			return meta, "", fmt.Errorf("front matter is not terminated")
		}
	}

	if err := yaml.Unmarshal(header, &meta); err != nil {
		return meta, "", fmt.Errorf("parsing front matter: %w", err)
	}
	return meta, string(body), nil
}
