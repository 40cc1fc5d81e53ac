package inkwell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/inkwell/content"
	"github.com/eringen/inkwell/site"
)

// text renders a plain-text component; the stub views below use it so
// tests can assert on what each view was given.
func text(format string, args ...any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, format, args...)
		return err
	})
}

func slugs(posts []content.Post) string {
	s := make([]string, len(posts))
	for i, p := range posts {
		s[i] = p.Slug
	}
	return strings.Join(s, ",")
}

func stubViews() ViewFuncs {
	return ViewFuncs{
		Home: func(_ site.Config, meta site.PageMeta, posts []content.Post) templ.Component {
			return text("home|%s|%s", meta.Title, slugs(posts))
		},
		List: func(_ site.Config, meta site.PageMeta, heading string, page content.Page, base string) templ.Component {
			return text("list|%s|%s|%d/%d|%s", heading, base, page.Number, page.TotalPages, slugs(page.Posts))
		},
		Post: func(_ site.Config, meta site.PageMeta, post content.Post, related []content.Post) templ.Component {
			return text("post|%s|%s|%s|related=%s", post.Slug, meta.Title, meta.Description, slugs(related))
		},
		Tags: func(_ site.Config, _ site.PageMeta, tags []content.TagCount) templ.Component {
			parts := make([]string, len(tags))
			for i, t := range tags {
				parts[i] = fmt.Sprintf("%s=%d", t.Name, t.Count)
			}
			return text("tags|%s", strings.Join(parts, ","))
		},
		Page: func(_ site.Config, meta site.PageMeta, page content.Post) templ.Component {
			return text("page|%s|%s", page.Slug, meta.Path)
		},
		NotFound:    func(site.Config) templ.Component { return text("not found") },
		ServerError: func(site.Config) templ.Component { return text("server error") },
		AdminLogin: func(_ site.Config, showError bool, _ string) templ.Component {
			return text("login|error=%t", showError)
		},
		AdminDashboard: func(_ site.Config, posts []content.Post, skipped []content.Skipped, msg, _ string) templ.Component {
			return text("dashboard|%s|skipped=%d|%s", slugs(posts), len(skipped), msg)
		},
	}
}

// testContent is a small site: three tagged posts, one draft, one post
// without tags and one page.
var testContent = map[string]string{
	"posts/first.md": `---
title: First
date: 2024-01-01
tags: [go]
---
The first post.`,
	"posts/second.md": `---
title: Second
description: Second post.
date: 2024-02-01
tags: [go, web]
---
The second post.`,
	"posts/third.md": `---
title: Third
date: 2024-03-01
tags: web
---
The third post.`,
	"posts/wip.md": `---
title: Work in progress
date: 2024-04-01
tags: [go]
draft: true
---
Not yet.`,
	"posts/untagged.md": `---
title: Untagged
date: 2024-05-01
---
No tags, never listed.`,
	"pages/about.md": `---
title: About
---
About this blog.`,
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// newTestApp opens an App over testContent in a temp dir. mutate may
// adjust the config before the App is opened.
func newTestApp(t *testing.T, mutate func(*Config)) *App {
	t.Helper()
	dir := t.TempDir()
	writeTree(t, filepath.Join(dir, "content"), testContent)

	cfg := Config{
		ContentDir:   filepath.Join(dir, "content"),
		StaticDir:    filepath.Join(dir, "static"),
		OutputDir:    filepath.Join(dir, "public"),
		DatabasePath: filepath.Join(dir, "data", "blog.db"),
		PostCacheTTL: time.Minute,
	}
	cfg.Site = site.Default()
	cfg.Site.PageSize = 2
	if mutate != nil {
		mutate(&cfg)
	}

	app := New(cfg, stubViews())
	if err := app.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

func TestOpenIndexesContent(t *testing.T) {
	app := newTestApp(t, nil)

	report := app.LastIndex()
	if report.Posts != 4 {
		t.Errorf("Posts = %d, want 4", report.Posts)
	}
	if report.Drafts != 1 {
		t.Errorf("Drafts = %d, want 1", report.Drafts)
	}
	if report.Pages != 1 {
		t.Errorf("Pages = %d, want 1", report.Pages)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Path != "posts/untagged.md" {
		t.Fatalf("Skipped = %+v, want posts/untagged.md", report.Skipped)
	}
	if _, ok := app.Pages()["about"]; !ok {
		t.Errorf("about page missing from %v", app.Pages())
	}
}

func TestReindexPicksUpChanges(t *testing.T) {
	app := newTestApp(t, nil)
	ctx := context.Background()

	writeTree(t, app.Config.ContentDir, map[string]string{
		"posts/fourth.md": "---\ntitle: Fourth\ndate: 2024-06-01\ntags: [go]\n---\nNew.",
	})
	if err := os.Remove(filepath.Join(app.Config.ContentDir, "posts", "first.md")); err != nil {
		t.Fatal(err)
	}
	if _, err := app.Reindex(ctx); err != nil {
		t.Fatalf("Reindex: %v", err)
	}

	posts, err := app.Cache.ListPosts(ctx, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := slugs(posts), "fourth,third,second"; got != want {
		t.Errorf("posts = %s, want %s", got, want)
	}
}

func TestReindexSkipsUndecodableImage(t *testing.T) {
	app := newTestApp(t, nil)
	ctx := context.Background()

	// Warm the cache so a stale read would show.
	if _, err := app.Cache.ListPosts(ctx, "", false); err != nil {
		t.Fatal(err)
	}
	writeTree(t, app.Config.ContentDir, map[string]string{
		"posts/fresh.md":  "---\ntitle: Fresh\ndate: 2024-06-01\ntags: [go]\n---\nNew.",
		"images/bad.jpg": "not a jpeg",
	})
	report, err := app.Reindex(ctx)
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	var found bool
	for _, s := range report.Skipped {
		if s.Path == "images/bad.jpg" && errors.Is(s.Err, ErrUndecodableImage) {
			found = true
		}
	}
	if !found {
		t.Errorf("Skipped = %+v, want images/bad.jpg", report.Skipped)
	}

	posts, err := app.Cache.ListPosts(ctx, "", false)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := slugs(posts), "fresh,third,second,first"; got != want {
		t.Errorf("cache = %s, want %s", got, want)
	}
	if got := app.LastIndex().Posts; got != 5 {
		t.Errorf("LastIndex().Posts = %d, want 5", got)
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := Config{DatabasePath: filepath.Join(t.TempDir(), "blog.db")}
	cfg.Site = site.Default()
	cfg.Site.Site.URL = "not a url"

	app := New(cfg, stubViews())
	defer app.Close()
	if err := app.Open(context.Background()); err == nil {
		t.Fatal("expected Open to fail on invalid site URL")
	}
}
