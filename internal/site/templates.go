package site

import (
	"html/template"
	"time"
)

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("January 2, 2006") },
	"iso":  func(t time.Time) string { return t.Format("2006-01-02") },
}

// layoutTemplate wraps every page. Pages define "title" and "body".
const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{template "title" .}}</title>
  <link rel="stylesheet" href="style.css">
</head>
<body>
  <header class="site-header">
    <a class="site-title" href="index.html">{{.SiteTitle}}</a>
    <input type="search" id="search-input" placeholder="Search posts..." autocomplete="off">
    <div class="search-results" id="search-results"></div>
  </header>
  <main class="content">
{{template "body" .}}
  </main>
  <script src="script.js"></script>
</body>
</html>
{{end}}`

const postTemplate = `{{define "title"}}{{.Post.Title}} | {{.SiteTitle}}{{end}}
{{define "body"}}    <article class="post">
      <h1>{{.Post.Title}}</h1>
      <time datetime="{{iso .Post.Date}}">{{date .Post.Date}}</time>
      <div class="post-body">
{{.Content}}
      </div>
    </article>
    <nav class="post-nav">
      {{with .Newer}}<a class="newer" href="{{.Href}}">&larr; {{.Title}}</a>{{end}}
      {{with .Older}}<a class="older" href="{{.Href}}">{{.Title}} &rarr;</a>{{end}}
    </nav>{{end}}`

const indexTemplate = `{{define "title"}}{{.SiteTitle}}{{end}}
{{define "body"}}{{with .Latest}}    <article class="post latest">
      <h1><a href="post-{{.Post.ID}}.html">{{.Post.Title}}</a></h1>
      <time datetime="{{iso .Post.Date}}">{{date .Post.Date}}</time>
      <div class="post-body">
{{.Content}}
      </div>
    </article>
{{else}}    <p class="empty">No posts yet.</p>
{{end}}    <section class="archive">
      <h2>Archive ({{.Count}})</h2>
{{range .Archive}}      <h3>{{.Year}}</h3>
{{range .Months}}      <h4>{{.Month}}</h4>
      <ul>
{{range .Posts}}        <li><a href="{{.Href}}">{{.Title}}</a> <time datetime="{{iso .Date}}">{{iso .Date}}</time></li>
{{end}}      </ul>
{{end}}{{end}}    </section>{{end}}`

const cssContent = `:root {
  --bg: #fdf6e3;
  --fg: #073642;
  --muted: #93a1a1;
  --accent: #268bd2;
  --code-bg: #002b36;
}

@media (prefers-color-scheme: dark) {
  :root {
    --bg: #002b36;
    --fg: #eee8d5;
    --muted: #657b83;
  }
}

body {
  margin: 0;
  background: var(--bg);
  color: var(--fg);
  font: 18px/1.6 Georgia, "Times New Roman", serif;
}

a { color: var(--accent); text-decoration: none; }
a:hover { text-decoration: underline; }

.site-header {
  position: relative;
  display: flex;
  align-items: center;
  justify-content: space-between;
  max-width: 46rem;
  margin: 0 auto;
  padding: 1.5rem 1rem;
}

.site-title { font-size: 1.4rem; font-weight: bold; }

#search-input {
  font: inherit;
  font-size: 0.9rem;
  padding: 0.3rem 0.6rem;
  border: 1px solid var(--muted);
  border-radius: 4px;
  background: transparent;
  color: inherit;
}

.search-results {
  position: absolute;
  right: 1rem;
  top: 4rem;
  width: 22rem;
  background: var(--bg);
  border: 1px solid var(--muted);
  display: none;
  z-index: 10;
}
.search-results.open { display: block; }
.search-results a { display: block; padding: 0.5rem 0.75rem; }
.search-results small { display: block; color: var(--muted); }

.content { max-width: 46rem; margin: 0 auto; padding: 0 1rem 4rem; }

.post time, .archive time { color: var(--muted); font-size: 0.85rem; }
.post-body p { margin: 1rem 0; }
.post-body pre {
  background: var(--code-bg);
  padding: 1rem;
  overflow-x: auto;
  border-radius: 4px;
  font-size: 0.85rem;
  line-height: 1.4;
}

.post-nav { display: flex; justify-content: space-between; margin-top: 3rem; }
.archive ul { list-style: none; padding-left: 0; }
.archive h4 { margin-bottom: 0.25rem; color: var(--muted); }
`

// jsContent filters search-index.json as the reader types.
const jsContent = `(function() {
  var input = document.getElementById("search-input");
  var results = document.getElementById("search-results");
  var index = null;

  function load(cb) {
    if (index) return cb(index);
    fetch("search-index.json")
      .then(function(r) { return r.json(); })
      .then(function(data) { index = data || []; cb(index); })
      .catch(function() { index = []; cb(index); });
  }

  function render(matches) {
    results.innerHTML = "";
    matches.slice(0, 10).forEach(function(e) {
      var a = document.createElement("a");
      a.href = e.path;
      a.textContent = e.title;
      var s = document.createElement("small");
      s.textContent = e.date + " " + e.summary;
      a.appendChild(s);
      results.appendChild(a);
    });
    results.classList.toggle("open", matches.length > 0);
  }

  input.addEventListener("input", function() {
    var q = input.value.trim().toLowerCase();
    if (!q) { render([]); return; }
    load(function(entries) {
      render(entries.filter(function(e) {
        return e.title.toLowerCase().indexOf(q) >= 0 || e.content.toLowerCase().indexOf(q) >= 0;
      }));
    });
  });
})();
`
