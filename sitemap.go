package inkwell

import (
	"encoding/xml"
	"io"

	"github.com/eringen/inkwell/content"
	"github.com/eringen/inkwell/site"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// writeSitemap lists the home page, the blog and tag indexes, every post,
// every tag listing and every standalone page.
func writeSitemap(w io.Writer, cfg site.Config, posts []content.Post, tags []content.TagCount, pages []string) error {
	base := cfg.Site.URL
	urls := []sitemapURL{
		{Loc: absURL(base, "/")},
		{Loc: absURL(base, "/blog/")},
		{Loc: absURL(base, "/tags/")},
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     absURL(base, p.Link()),
			LastMod: p.DateString(),
		})
	}
	for _, t := range tags {
		urls = append(urls, sitemapURL{Loc: absURL(base, TagPath(t.Name))})
	}
	for _, slug := range pages {
		urls = append(urls, sitemapURL{Loc: absURL(base, PagePath(slug))})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(sitemap)
}
