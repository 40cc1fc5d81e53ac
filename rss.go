package inkwell

import (
	"encoding/xml"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/eringen/inkwell/content"
	"github.com/eringen/inkwell/markdown"
	"github.com/eringen/inkwell/site"
)

// feedLimit caps the number of items in feed.xml.
const feedLimit = 20

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        rssGUID  `xml:"guid"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// postGUID derives a stable feed GUID from the post URL.
func postGUID(postURL string) string {
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(postURL)).String()
}

// writeRSS writes an RSS 2.0 feed of posts, which must be sorted newest
// first and exclude drafts.
func writeRSS(w io.Writer, cfg site.Config, posts []content.Post) error {
	base := cfg.Site.URL
	if len(posts) > feedLimit {
		posts = posts[:feedLimit]
	}
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := absURL(base, p.Link())
		desc := p.Description
		if desc == "" {
			desc = markdown.Excerpt(p.Body, descriptionLength)
		}
		item := rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: desc,
			Author:      p.Author,
			Categories:  p.Tags,
			GUID:        rssGUID{Value: postGUID(postURL)},
		}
		if !p.Date.IsZero() {
			item.PubDate = p.Date.Format(time.RFC1123Z)
		}
		items = append(items, item)
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Site.Title,
			Link:        BuildURL(base),
			Description: cfg.Site.Description,
			Items:       items,
		},
	}
	if len(posts) > 0 && !posts[0].Date.IsZero() {
		feed.Channel.LastBuildDate = posts[0].Date.Format(time.RFC1123Z)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(feed)
}
