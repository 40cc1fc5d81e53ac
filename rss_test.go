package inkwell

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"testing"

	"github.com/eringen/inkwell/content"
	"github.com/eringen/inkwell/site"
)

func TestWriteRSS(t *testing.T) {
	cfg := site.Default()
	posts := []content.Post{
		{Slug: "newer", Title: "Newer", Description: "Fresh.", Date: day("2024-02-01"), Tags: []string{"go"}, Author: "Ada"},
		{Slug: "older", Title: "Older", Body: "Body text used as the summary.", Tags: []string{"misc"}},
	}

	var buf bytes.Buffer
	if err := writeRSS(&buf, cfg, posts); err != nil {
		t.Fatalf("writeRSS: %v", err)
	}

	var feed rssXML
	if err := xml.Unmarshal(buf.Bytes(), &feed); err != nil {
		t.Fatalf("feed is not valid XML: %v\n%s", err, buf.String())
	}
	if feed.Version != "2.0" || feed.Channel.Title != cfg.Site.Title {
		t.Errorf("channel = %+v", feed.Channel)
	}
	if len(feed.Channel.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(feed.Channel.Items))
	}

	first := feed.Channel.Items[0]
	if first.Link != "https://inkwell.dev/blog/newer/" {
		t.Errorf("Link = %q", first.Link)
	}
	if first.PubDate != "Thu, 01 Feb 2024 00:00:00 +0000" {
		t.Errorf("PubDate = %q", first.PubDate)
	}
	if first.GUID.Value != postGUID(first.Link) || first.GUID.IsPermaLink {
		t.Errorf("GUID = %+v", first.GUID)
	}
	if !strings.HasPrefix(first.GUID.Value, "urn:uuid:") {
		t.Errorf("GUID %q is not a urn:uuid", first.GUID.Value)
	}

	second := feed.Channel.Items[1]
	if second.Description != "Body text used as the summary." {
		t.Errorf("Description = %q, want excerpt of body", second.Description)
	}
	if second.PubDate != "" {
		t.Errorf("undated post PubDate = %q, want empty", second.PubDate)
	}
}

func TestPostGUIDIsStable(t *testing.T) {
	a := postGUID("https://inkwell.dev/blog/a/")
	if a != postGUID("https://inkwell.dev/blog/a/") {
		t.Error("GUID changed between calls")
	}
	if a == postGUID("https://inkwell.dev/blog/b/") {
		t.Error("different URLs share a GUID")
	}
}

func TestWriteRSSCapsItems(t *testing.T) {
	var posts []content.Post
	for i := 0; i < feedLimit+5; i++ {
		posts = append(posts, content.Post{Slug: fmt.Sprintf("p%d", i), Title: "P", Tags: []string{"t"}})
	}
	var buf bytes.Buffer
	if err := writeRSS(&buf, site.Default(), posts); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "<item>"); n != feedLimit {
		t.Errorf("items = %d, want %d", n, feedLimit)
	}
}

func TestWriteSitemap(t *testing.T) {
	posts := []content.Post{{Slug: "hello", Date: day("2024-01-02"), Tags: []string{"go"}}}
	tags := []content.TagCount{{Name: "go", Count: 1}}

	var buf bytes.Buffer
	if err := writeSitemap(&buf, site.Default(), posts, tags, []string{"about"}); err != nil {
		t.Fatal(err)
	}
	var set sitemapURLSet
	if err := xml.Unmarshal(buf.Bytes(), &set); err != nil {
		t.Fatal(err)
	}
	var locs []string
	for _, u := range set.URLs {
		locs = append(locs, u.Loc)
	}
	want := []string{
		"https://inkwell.dev/",
		"https://inkwell.dev/blog/",
		"https://inkwell.dev/tags/",
		"https://inkwell.dev/blog/hello/",
		"https://inkwell.dev/tags/go/",
		"https://inkwell.dev/about/",
	}
	if strings.Join(locs, " ") != strings.Join(want, " ") {
		t.Errorf("locs = %v, want %v", locs, want)
	}
	if set.URLs[3].LastMod != "2024-01-02" {
		t.Errorf("LastMod = %q", set.URLs[3].LastMod)
	}
}

func TestRobotsTxt(t *testing.T) {
	got := robotsTxt("https://inkwell.dev")
	for _, want := range []string{"User-agent: *", "Disallow: /admin/", "Sitemap: https://inkwell.dev/sitemap.xml"} {
		if !strings.Contains(got, want) {
			t.Errorf("robots.txt missing %q:\n%s", want, got)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://inkwell.dev", nil, "https://inkwell.dev"},
		{"https://inkwell.dev", []string{"blog", "post"}, "https://inkwell.dev/blog/post/"},
		{"https://inkwell.dev/sub", []string{"blog"}, "https://inkwell.dev/sub/blog/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestTagPath(t *testing.T) {
	if got := TagPath("c++"); got != "/tags/c++/" {
		t.Errorf("TagPath(c++) = %q", got)
	}
	if got := TagPath("two words"); got != "/tags/two%20words/" {
		t.Errorf("TagPath(two words) = %q", got)
	}
}
