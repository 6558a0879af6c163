package site

import (
	"sort"
	"time"

	"github.com/scottfrazer/blog/internal/posts"
)

// ArchiveYear groups post links under a year, newest month first.
type ArchiveYear struct {
	Year   int
	Months []ArchiveMonth
}

// ArchiveMonth lists the posts of one month, newest first.
type ArchiveMonth struct {
	Month time.Month
	Posts []PostLink
}

// PostLink is a post as it appears in navigation.
type PostLink struct {
	ID    int64
	Title string
	Date  time.Time
	Href  string
}

// BuildArchive groups posts by year and month. The input order does not
// matter.
func BuildArchive(all []posts.Post) []ArchiveYear {
	links := make([]PostLink, 0, len(all))
	for _, p := range all {
		links = append(links, PostLink{ID: p.ID, Title: p.Title, Date: p.Date, Href: postFile(p.ID)})
	}
	sort.SliceStable(links, func(i, j int) bool {
		if !links[i].Date.Equal(links[j].Date) {
			return links[i].Date.After(links[j].Date)
		}
		return links[i].ID > links[j].ID
	})

	var years []ArchiveYear
	for _, l := range links {
		y, m := l.Date.Year(), l.Date.Month()
		if len(years) == 0 || years[len(years)-1].Year != y {
			years = append(years, ArchiveYear{Year: y})
		}
		year := &years[len(years)-1]
		if len(year.Months) == 0 || year.Months[len(year.Months)-1].Month != m {
			year.Months = append(year.Months, ArchiveMonth{Month: m})
		}
		month := &year.Months[len(year.Months)-1]
		month.Posts = append(month.Posts, l)
	}
	return years
}
