// Package views renders inkwell pages with html/template and exposes them
// as templ components, so the server and the static builder can treat
// them like any other component.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/eringen/inkwell/content"
	"github.com/eringen/inkwell/markdown"
	"github.com/eringen/inkwell/site"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages holds one template set per page, each sharing the layout.
var pages = mustParse(templateFS)

var funcs = template.FuncMap{
	"pageLink":    content.PageLink,
	"tagPath":     tagPath,
	"readingTime": markdown.ReadingTime,
	"since":       humanize.Time,
	"year":        func() int { return time.Now().Year() },
}

func mustParse(fsys fs.FS) map[string]*template.Template {
	base := template.Must(template.New("base").Funcs(funcs).ParseFS(fsys, "templates/layout.html"))
	names, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		panic(err)
	}
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		file := path.Base(name)
		if file == "layout.html" {
			continue
		}
		t := template.Must(template.Must(base.Clone()).ParseFS(fsys, name))
		out[file] = t.Lookup(file)
	}
	return out
}

// data is the value every page template executes with.
type data struct {
	Site site.Config
	Meta site.PageMeta
	Menu []site.MenuLink

	JSONLD template.JS

	Heading  string
	BasePath string
	Posts    []content.Post
	Page     content.Page
	Post     content.Post
	Body     template.HTML
	Related  []content.Post
	Tags     []content.TagCount

	ShowError bool
	CSRFToken string
	Message   string
	Skipped   []content.Skipped
}

func newData(cfg site.Config, meta site.PageMeta) data {
	return data{
		Site: cfg,
		Meta: meta,
		Menu: cfg.Nav.Menu(meta.Path),
	}
}

func render(name string, d data) templ.Component {
	t, ok := pages[name]
	if !ok {
		return errorComponent(fmt.Errorf("views: no template %q", name))
	}
	return templ.FromGoHTML(t, d)
}

func errorComponent(err error) templ.Component {
	return templ.ComponentFunc(func(context.Context, io.Writer) error { return err })
}

// Home lists the newest posts.
func Home(cfg site.Config, meta site.PageMeta, posts []content.Post) templ.Component {
	d := newData(cfg, meta)
	d.Posts = posts
	d.JSONLD = WebsiteJSONLD(cfg.Site)
	return render("home.html", d)
}

// List renders one page of a paginated listing rooted at basePath.
func List(cfg site.Config, meta site.PageMeta, heading string, page content.Page, basePath string) templ.Component {
	d := newData(cfg, meta)
	d.Heading = heading
	d.Page = page
	d.BasePath = basePath
	return render("list.html", d)
}

// Post renders a single post with its related posts.
func Post(cfg site.Config, meta site.PageMeta, post content.Post, related []content.Post) templ.Component {
	body, err := markdown.HTML(post.Body)
	if err != nil {
		return errorComponent(fmt.Errorf("views: render %s: %w", post.Slug, err))
	}
	d := newData(cfg, meta)
	d.Post = post
	d.Body = body
	d.Related = related
	d.JSONLD = BlogPostingJSONLD(cfg.Site, meta, post)
	return render("post.html", d)
}

// Tags lists every tag with its post count.
func Tags(cfg site.Config, meta site.PageMeta, tags []content.TagCount) templ.Component {
	d := newData(cfg, meta)
	d.Tags = tags
	return render("tags.html", d)
}

// Page renders a standalone page such as /about/.
func Page(cfg site.Config, meta site.PageMeta, page content.Post) templ.Component {
	body, err := markdown.HTML(page.Body)
	if err != nil {
		return errorComponent(fmt.Errorf("views: render %s: %w", page.Slug, err))
	}
	d := newData(cfg, meta)
	d.Post = page
	d.Body = body
	return render("page.html", d)
}

// NotFound is the 404 page.
func NotFound(cfg site.Config) templ.Component {
	d := newData(cfg, site.PageMeta{Title: "Not found · " + cfg.Site.Title, Description: cfg.Site.Description})
	return render("404.html", d)
}

// ServerError is the 500 page.
func ServerError(cfg site.Config) templ.Component {
	d := newData(cfg, site.PageMeta{Title: "Error · " + cfg.Site.Title, Description: cfg.Site.Description})
	return render("500.html", d)
}

// AdminLogin is the admin password form.
func AdminLogin(cfg site.Config, showError bool, csrfToken string) templ.Component {
	d := newData(cfg, site.PageMeta{Title: "Admin · " + cfg.Site.Title, Path: "/admin/"})
	d.ShowError = showError
	d.CSRFToken = csrfToken
	return render("admin_login.html", d)
}

// AdminDashboard lists every indexed post and the files the last index skipped.
func AdminDashboard(cfg site.Config, posts []content.Post, skipped []content.Skipped, message, csrfToken string) templ.Component {
	d := newData(cfg, site.PageMeta{Title: "Admin · " + cfg.Site.Title, Path: "/admin/"})
	d.Posts = posts
	d.Skipped = skipped
	d.Message = message
	d.CSRFToken = csrfToken
	return render("admin_dashboard.html", d)
}
