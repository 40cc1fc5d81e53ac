package inkwell

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestBuildWritesSiteTree(t *testing.T) {
	app := newTestApp(t, nil)
	writeTree(t, app.Config.StaticDir, map[string]string{"favicon.svg": "<svg/>"})

	out := afero.NewMemMapFs()
	if err := afero.WriteFile(out, "/stale.html", []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := app.Build(context.Background(), out)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := map[string]string{
		"/index.html":             "home|inkwell|third,second",
		"/blog/index.html":        "list|blog|/blog/|1/2|third,second",
		"/blog/page/2/index.html": "list|blog|/blog/|2/2|first",
		"/blog/first/index.html":  "post|first|",
		"/blog/second/index.html": "post|second|",
		"/blog/third/index.html":  "post|third|",
		"/tags/index.html":        "tags|go=2,web=2",
		"/tags/go/index.html":     "list|#go|/tags/go/|1/1|second,first",
		"/tags/web/index.html":    "list|#web|/tags/web/|1/1|third,second",
		"/about/index.html":       "page|about|/about/",
		"/404.html":               "not found",
		"/feed.xml":               "<rss",
		"/sitemap.xml":            "<urlset",
		"/robots.txt":             "Sitemap: https://inkwell.dev/sitemap.xml",
		"/public/style.css":       ":root",
		"/public/favicon.svg":     "<svg/>",
	}
	for name, prefix := range want {
		b, err := afero.ReadFile(out, name)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if !strings.Contains(string(b), prefix) {
			t.Errorf("%s = %q, want it to contain %q", name, b, prefix)
		}
	}

	for _, absent := range []string{"/blog/wip/index.html", "/blog/untagged/index.html", "/blog/page/1/index.html", "/stale.html"} {
		if ok, _ := afero.Exists(out, absent); ok {
			t.Errorf("%s should not exist", absent)
		}
	}

	if report.Pages != 11 {
		t.Errorf("report.Pages = %d, want 11", report.Pages)
	}
	if report.Files != 16 {
		t.Errorf("report.Files = %d, want 16", report.Files)
	}
	if report.Bytes == 0 {
		t.Error("report.Bytes = 0")
	}
}

func TestBuildIncludesDraftsWhenListed(t *testing.T) {
	app := newTestApp(t, func(c *Config) { c.Site.Site.ListDrafts = true })
	out := afero.NewMemMapFs()
	if _, err := app.Build(context.Background(), out); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if ok, _ := afero.Exists(out, "/blog/wip/index.html"); !ok {
		t.Error("draft not exported with listDrafts set")
	}
	feed, err := afero.ReadFile(out, "/feed.xml")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(feed), "/blog/wip/") {
		t.Error("feed lists a draft")
	}
}

func TestBuildKeepsTagListingsUnderTags(t *testing.T) {
	app := newTestApp(t, nil)
	writeTree(t, app.Config.ContentDir, map[string]string{
		"posts/dots.md": "---\ntitle: Dots\ndate: 2024-06-01\ntags: [\"..\"]\n---\nx",
		"posts/ci.md":   "---\ntitle: CI\ndate: 2024-06-02\ntags: [\"ci/cd\", \"a,b\"]\n---\nx",
	})
	report, err := app.Reindex(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var dotsSkipped bool
	for _, s := range report.Skipped {
		if s.Path == "posts/dots.md" {
			dotsSkipped = true
		}
	}
	if !dotsSkipped {
		t.Errorf("Skipped = %+v, want posts/dots.md", report.Skipped)
	}

	out := afero.NewMemMapFs()
	if _, err := app.Build(context.Background(), out); err != nil {
		t.Fatalf("Build: %v", err)
	}
	home, err := afero.ReadFile(out, "/index.html")
	if err != nil || !strings.HasPrefix(string(home), "home|") {
		t.Errorf("/index.html = %q, %v", home, err)
	}
	want := map[string]string{
		"/tags/ci-cd/index.html": "list|#ci-cd|/tags/ci-cd/|1/1|ci",
		"/tags/a/index.html":     "list|#a|/tags/a/|1/1|ci",
		"/tags/b/index.html":     "list|#b|/tags/b/|1/1|ci",
	}
	for name, body := range want {
		if b, err := afero.ReadFile(out, name); err != nil || string(b) != body {
			t.Errorf("%s = %q, %v, want %q", name, b, err, body)
		}
	}
	if ok, _ := afero.Exists(out, "/tags/ci/cd/index.html"); ok {
		t.Error("tag with a slash produced a nested listing")
	}
}

func TestBuildCopiesProcessedImages(t *testing.T) {
	app := newTestApp(t, nil)
	writeTree(t, filepath.Join(app.Config.ContentDir, "images"), map[string]string{"notes.txt": "hi"})
	if _, err := app.Reindex(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(app.imageDir, "notes.txt")); err != nil {
		t.Fatalf("image dir not populated: %v", err)
	}

	out := afero.NewMemMapFs()
	if _, err := app.Build(context.Background(), out); err != nil {
		t.Fatal(err)
	}
	b, err := afero.ReadFile(out, "/images/notes.txt")
	if err != nil || string(b) != "hi" {
		t.Errorf("images/notes.txt = %q, %v", b, err)
	}
}

func TestIndexFile(t *testing.T) {
	tests := map[string]string{
		"/":             "/index.html",
		"/blog/":        "/blog/index.html",
		"/blog/page/2/": "/blog/page/2/index.html",
		"/tags/go/":     "/tags/go/index.html",
	}
	for in, want := range tests {
		if got := indexFile(in); got != want {
			t.Errorf("indexFile(%q) = %q, want %q", in, got, want)
		}
	}
}
