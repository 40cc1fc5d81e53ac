package inkwell

import (
	"context"
	"errors"
	"sort"

	"github.com/a-h/templ"

	"github.com/eringen/inkwell/content"
	"github.com/eringen/inkwell/markdown"
)

// relatedLimit caps the related posts shown under a post.
const relatedLimit = 3

// descriptionLength is the excerpt length used when a post has no description.
const descriptionLength = 160

// The view builders below assemble components from the cache. The server
// and the static builder share them so both render identical pages.

func (a *App) homeView(ctx context.Context, drafts bool) (templ.Component, error) {
	posts, err := a.Cache.ListPosts(ctx, "", drafts)
	if err != nil {
		return nil, err
	}
	if n := a.Config.Site.PageSize; len(posts) > n {
		posts = posts[:n]
	}
	meta := a.pageMeta("", "", "/", "website")
	return a.Views.Home(a.Config.Site, meta, posts), nil
}

// listView renders page n of the blog listing, or of a tag listing when tag
// is set. An unknown tag or page yields ErrNotFound.
func (a *App) listView(ctx context.Context, tag string, n int, drafts bool) (templ.Component, error) {
	tag = content.NormalizeTag(tag)
	posts, err := a.Cache.ListPosts(ctx, tag, drafts)
	if err != nil {
		return nil, err
	}
	base, heading := "/blog/", "blog"
	if tag != "" {
		if len(posts) == 0 {
			return nil, ErrNotFound
		}
		base, heading = TagPath(tag), "#"+tag
	}
	page, err := content.Paginate(posts, a.Config.Site.PageSize, n)
	if err != nil {
		if errors.Is(err, content.ErrPageOutOfRange) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	title := heading
	if n > 1 {
		title = heading + " (page " + itoa(n) + ")"
	}
	meta := a.pageMeta(title, "", content.PageLink(base, n), "website")
	return a.Views.List(a.Config.Site, meta, heading, page, base), nil
}

func (a *App) postView(ctx context.Context, slug string, drafts bool) (templ.Component, error) {
	post, err := a.Cache.GetPost(ctx, slug, drafts)
	if err != nil {
		return nil, err
	}
	posts, err := a.Cache.ListPosts(ctx, "", drafts)
	if err != nil {
		return nil, err
	}
	desc := post.Description
	if desc == "" {
		desc = markdown.Excerpt(post.Body, descriptionLength)
	}
	meta := a.pageMeta(post.Title, desc, post.Link(), "article")
	return a.Views.Post(a.Config.Site, meta, post, content.Related(post, posts, relatedLimit)), nil
}

func (a *App) tagsView(ctx context.Context, drafts bool) (templ.Component, error) {
	tags, err := a.Cache.ListTags(ctx, drafts)
	if err != nil {
		return nil, err
	}
	meta := a.pageMeta("tags", "", "/tags/", "website")
	return a.Views.Tags(a.Config.Site, meta, tags), nil
}

func (a *App) pageView(slug string) (templ.Component, error) {
	a.mu.RLock()
	page, ok := a.pages[slug]
	a.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	meta := a.pageMeta(page.Title, page.Description, PagePath(slug), "website")
	return a.Views.Page(a.Config.Site, meta, page), nil
}

// pageSlugs returns the standalone page slugs in sorted order.
func (a *App) pageSlugs() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	slugs := make([]string, 0, len(a.pages))
	for s := range a.pages {
		slugs = append(slugs, s)
	}
	sort.Strings(slugs)
	return slugs
}
