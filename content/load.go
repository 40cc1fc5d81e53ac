package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Skipped records a content file that was not loaded and why.
type Skipped struct {
	Path string
	Err  error
}

// Result is the outcome of loading a content directory.
type Result struct {
	Posts   []Post
	Skipped []Skipped
}

// LoadPosts parses every markdown file under dir. Files that break a
// content rule (no front-matter, no tags, bad YAML, duplicate slug) are
// reported in Result.Skipped; read failures abort the load. A missing dir
// yields an empty result. Posts are returned newest first.
func LoadPosts(ctx context.Context, fsys fs.FS, dir string) (Result, error) {
	paths, err := markdownFiles(fsys, dir)
	if err != nil {
		return Result{}, err
	}

	type outcome struct {
		post Post
		err  error
	}
	outcomes := make([]outcome, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, p)
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			post, err := Parse(bytes.NewReader(data), p)
			if err == nil {
				err = post.Validate()
			}
			outcomes[i] = outcome{post: post, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var res Result
	seen := make(map[string]string)
	for i, o := range outcomes {
		if o.err != nil {
			res.Skipped = append(res.Skipped, Skipped{Path: paths[i], Err: o.err})
			continue
		}
		if prev, ok := seen[o.post.Slug]; ok {
			res.Skipped = append(res.Skipped, Skipped{
				Path: paths[i],
				Err:  fmt.Errorf("%w %q (already used by %s)", ErrDuplicateSlug, o.post.Slug, prev),
			})
			continue
		}
		seen[o.post.Slug] = paths[i]
		res.Posts = append(res.Posts, o.post)
	}
	SortByDate(res.Posts)
	return res, nil
}

// LoadPages parses standalone pages under dir, keyed by slug.
func LoadPages(fsys fs.FS, dir string) (map[string]Post, []Skipped, error) {
	paths, err := markdownFiles(fsys, dir)
	if err != nil {
		return nil, nil, err
	}
	pages := make(map[string]Post, len(paths))
	var skipped []Skipped
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", p, err)
		}
		page, err := ParsePage(bytes.NewReader(data), p)
		if err == nil && page.Slug == "" {
			err = ErrEmptySlug
		}
		if err != nil {
			skipped = append(skipped, Skipped{Path: p, Err: err})
			continue
		}
		if prev, ok := pages[page.Slug]; ok {
			skipped = append(skipped, Skipped{
				Path: p,
				Err:  fmt.Errorf("%w %q (already used by %s)", ErrDuplicateSlug, page.Slug, prev.SourcePath),
			})
			continue
		}
		pages[page.Slug] = page
	}
	return pages, skipped, nil
}

// markdownFiles lists .md and .markdown files under dir in lexical order,
// skipping hidden files and directories.
func markdownFiles(fsys fs.FS, dir string) ([]string, error) {
	if _, err := fs.Stat(fsys, dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var paths []string
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if p != dir && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(path.Ext(name)) {
		case ".md", ".markdown":
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return paths, nil
}
