// Package scaffold provides the embedded templates used by `inkwell new`.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/afero"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

const siteRoot = "templates/site"

// SiteData holds the variables passed to the site templates.
type SiteData struct {
	Name  string
	Title string
	URL   string
	Date  string
}

// PostData holds the variables passed to the post template.
type PostData struct {
	Title string
	Date  string
	Tags  []string
	Draft bool
}

// NewSiteData returns SiteData for a site named name, dated today.
func NewSiteData(name, title string) SiteData {
	return SiteData{
		Name:  name,
		Title: title,
		URL:   "https://example.com",
		Date:  time.Now().Format("2006-01-02"),
	}
}

// WriteSite renders the site templates into dir of dst and returns the
// created file paths. Existing files are never overwritten.
func WriteSite(dst afero.Fs, dir string, data SiteData) ([]string, error) {
	var created []string
	err := fs.WalkDir(Templates, siteRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, siteRoot), "/")
		out := path.Join(dir, strings.TrimSuffix(rel, ".tmpl"))
		if d.IsDir() {
			return dst.MkdirAll(out, 0o755)
		}
		b, err := render(p, data)
		if err != nil {
			return err
		}
		if err := writeNew(dst, out, b); err != nil {
			return err
		}
		created = append(created, out)
		return nil
	})
	return created, err
}

// RenderPost renders a new post file.
func RenderPost(data PostData) ([]byte, error) {
	return render("templates/post.md.tmpl", data)
}

// WritePost renders a post into name of dst. It fails if name exists.
func WritePost(dst afero.Fs, name string, data PostData) error {
	b, err := RenderPost(data)
	if err != nil {
		return err
	}
	if err := dst.MkdirAll(path.Dir(name), 0o755); err != nil {
		return err
	}
	return writeNew(dst, name, b)
}

func render(name string, data any) ([]byte, error) {
	src, err := Templates.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	tmpl, err := template.New(path.Base(name)).Funcs(template.FuncMap{
		"join": strings.Join,
	}).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func writeNew(dst afero.Fs, name string, b []byte) error {
	if ok, err := afero.Exists(dst, name); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%s: %w", name, fs.ErrExist)
	}
	return afero.WriteFile(dst, name, b, 0o644)
}
