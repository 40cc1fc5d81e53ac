package inkwell

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/eringen/inkwell/content"
)

// IndexReport summarizes a Reindex run.
type IndexReport struct {
	Posts   int
	Drafts  int
	Pages   int
	Images  int
	Skipped []content.Skipped
}

// Reindex reloads posts and pages from the content directory, refreshes
// processed images, replaces the store contents and invalidates the cache.
// Files that break a content rule and undecodable images are reported, not
// fatal.
func (a *App) Reindex(ctx context.Context) (IndexReport, error) {
	a.indexMu.Lock()
	defer a.indexMu.Unlock()

	fsys := os.DirFS(a.Config.ContentDir)

	res, err := content.LoadPosts(ctx, fsys, a.Config.PostsDir())
	if err != nil {
		return IndexReport{}, fmt.Errorf("inkwell: load posts: %w", err)
	}
	pages, skippedPages, err := content.LoadPages(fsys, a.Config.PagesDir())
	if err != nil {
		return IndexReport{}, fmt.Errorf("inkwell: load pages: %w", err)
	}
	images, skippedImages, err := ProcessImages(ctx, fsys, a.Config.ImagesDir(), afero.NewOsFs(), a.imageDir, a.Config.MaxImageWidth)
	if err != nil {
		return IndexReport{}, fmt.Errorf("inkwell: process images: %w", err)
	}
	if err := a.Store.ReplacePosts(ctx, res.Posts); err != nil {
		return IndexReport{}, fmt.Errorf("inkwell: index posts: %w", err)
	}
	a.Cache.Invalidate()

	report := IndexReport{
		Posts:   len(res.Posts),
		Pages:   len(pages),
		Images:  len(images),
		Skipped: append(append(res.Skipped, skippedPages...), skippedImages...),
	}
	for _, p := range res.Posts {
		if p.Draft {
			report.Drafts++
		}
	}
	for _, s := range report.Skipped {
		ev := a.Log.Warn()
		if errors.Is(s.Err, content.ErrNoTags) {
			ev = a.Log.Debug()
		}
		ev.Str("path", s.Path).Err(s.Err).Msg("content skipped")
	}

	a.mu.Lock()
	a.pages = pages
	a.report = report
	a.mu.Unlock()

	a.Log.Info().
		Int("posts", report.Posts).
		Int("drafts", report.Drafts).
		Int("pages", report.Pages).
		Int("images", report.Images).
		Int("skipped", len(report.Skipped)).
		Msg("content indexed")
	return report, nil
}
