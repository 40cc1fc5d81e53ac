package inkwell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/inkwell/content"
)

// BuildReport summarizes a static export.
type BuildReport struct {
	Pages    int           // HTML documents written
	Files    int           // Every file written, pages included
	Bytes    int64         // Total bytes written
	Duration time.Duration // Wall time of the build
}

type buildJob struct {
	path   string
	render func(ctx context.Context) ([]byte, error)
}

// Build exports the whole site into out, which should be rooted at the
// output directory. Existing contents of out are removed first. Drafts
// are exported only when the site lists drafts.
func (a *App) Build(ctx context.Context, out afero.Fs) (BuildReport, error) {
	start := time.Now()
	if err := clearFs(out); err != nil {
		return BuildReport{}, fmt.Errorf("inkwell: clear output: %w", err)
	}

	jobs, err := a.buildJobs(ctx)
	if err != nil {
		return BuildReport{}, fmt.Errorf("inkwell: plan build: %w", err)
	}

	var (
		pages, files atomic.Int64
		written      atomic.Int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			b, err := job.render(gctx)
			if err != nil {
				return fmt.Errorf("%s: %w", job.path, err)
			}
			if err := writeFile(out, job.path, b); err != nil {
				return err
			}
			if path.Ext(job.path) == ".html" {
				pages.Add(1)
			}
			files.Add(1)
			written.Add(int64(len(b)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BuildReport{}, fmt.Errorf("inkwell: build: %w", err)
	}

	n, size, err := copyTree(os.DirFS(a.Config.StaticDir), out, "/public")
	if err != nil {
		return BuildReport{}, fmt.Errorf("inkwell: copy static: %w", err)
	}
	files.Add(n)
	written.Add(size)

	n, size, err = copyTree(os.DirFS(a.imageDir), out, "/images")
	if err != nil {
		return BuildReport{}, fmt.Errorf("inkwell: copy images: %w", err)
	}
	files.Add(n)
	written.Add(size)

	report := BuildReport{
		Pages:    int(pages.Load()),
		Files:    int(files.Load()),
		Bytes:    written.Load(),
		Duration: time.Since(start),
	}
	a.Log.Info().
		Int("pages", report.Pages).
		Int("files", report.Files).
		Str("size", humanize.Bytes(uint64(report.Bytes))).
		Dur("took", report.Duration).
		Msg("site built")
	return report, nil
}

// buildJobs lists every generated file of the site.
func (a *App) buildJobs(ctx context.Context) ([]buildJob, error) {
	drafts := a.Config.Site.Site.ListDrafts
	cfg := a.Config.Site

	posts, err := a.Cache.ListPosts(ctx, "", drafts)
	if err != nil {
		return nil, err
	}
	tags, err := a.Cache.ListTags(ctx, drafts)
	if err != nil {
		return nil, err
	}
	published, err := a.Cache.ListPosts(ctx, "", false)
	if err != nil {
		return nil, err
	}
	publishedTags, err := a.Cache.ListTags(ctx, false)
	if err != nil {
		return nil, err
	}

	var jobs []buildJob
	page := func(urlPath string, view func(context.Context) (templ.Component, error)) {
		jobs = append(jobs, buildJob{
			path: indexFile(urlPath),
			render: func(ctx context.Context) ([]byte, error) {
				cmp, err := view(ctx)
				if err != nil {
					return nil, err
				}
				return renderBytes(ctx, cmp)
			},
		})
	}
	listing := func(base, tag string, total int) {
		for n := 1; n <= content.PageCount(total, cfg.PageSize); n++ {
			n := n
			page(content.PageLink(base, n), func(ctx context.Context) (templ.Component, error) {
				return a.listView(ctx, tag, n, drafts)
			})
		}
	}

	page("/", func(ctx context.Context) (templ.Component, error) { return a.homeView(ctx, drafts) })
	listing("/blog/", "", len(posts))
	for _, p := range posts {
		p := p
		page(p.Link(), func(ctx context.Context) (templ.Component, error) { return a.postView(ctx, p.Slug, drafts) })
	}
	page("/tags/", func(ctx context.Context) (templ.Component, error) { return a.tagsView(ctx, drafts) })
	for _, t := range tags {
		// Tag names are single path segments; see content.NormalizeTag.
		listing("/tags/"+t.Name+"/", t.Name, t.Count)
	}
	for _, slug := range a.pageSlugs() {
		slug := slug
		page(PagePath(slug), func(context.Context) (templ.Component, error) { return a.pageView(slug) })
	}

	jobs = append(jobs,
		buildJob{path: "/404.html", render: func(ctx context.Context) ([]byte, error) {
			return renderBytes(ctx, a.Views.NotFound(cfg))
		}},
		buildJob{path: "/feed.xml", render: func(context.Context) ([]byte, error) {
			var buf bytes.Buffer
			err := writeRSS(&buf, cfg, published)
			return buf.Bytes(), err
		}},
		buildJob{path: "/sitemap.xml", render: func(context.Context) ([]byte, error) {
			var buf bytes.Buffer
			err := writeSitemap(&buf, cfg, published, publishedTags, a.pageSlugs())
			return buf.Bytes(), err
		}},
		buildJob{path: "/robots.txt", render: func(context.Context) ([]byte, error) {
			return []byte(robotsTxt(cfg.Site.URL)), nil
		}},
		buildJob{path: "/public/style.css", render: func(context.Context) ([]byte, error) {
			return EmbeddedAssets.ReadFile("embedded/style.css")
		}},
	)
	return jobs, nil
}

// indexFile maps a directory-style URL path to its index.html in the output.
func indexFile(urlPath string) string {
	return path.Join(urlPath, "index.html")
}

func writeFile(fsys afero.Fs, name string, data []byte) error {
	if err := fsys.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fsys, name, data, 0o644)
}

// copyTree copies every regular file of src into dir of dst. A missing
// source yields no files.
func copyTree(src fs.FS, dst afero.Fs, dir string) (files, size int64, err error) {
	err = fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "." && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(src, p)
		if err != nil {
			return err
		}
		if err := writeFile(dst, path.Join(dir, p), data); err != nil {
			return err
		}
		files++
		size += int64(len(data))
		return nil
	})
	return files, size, err
}

// clearFs removes everything below the root of fsys.
func clearFs(fsys afero.Fs) error {
	entries, err := afero.ReadDir(fsys, "/")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := fsys.RemoveAll(path.Join("/", e.Name())); err != nil {
			return err
		}
	}
	return nil
}
