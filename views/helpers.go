package views

import (
	"encoding/json"
	"html/template"
	"strings"

	"github.com/eringen/inkwell/content"
	"github.com/eringen/inkwell/site"
)

func tagPath(tag string) string {
	return content.TagPath(tag)
}

// WebsiteJSONLD produces a Schema.org WebSite JSON-LD block.
func WebsiteJSONLD(m site.Metadata) template.JS {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     m.Title,
		"url":      strings.TrimRight(m.URL, "/") + "/",
	}
	if m.Description != "" {
		data["description"] = m.Description
	}
	if m.GithubURL != "" {
		data["sameAs"] = []string{m.GithubURL}
	}
	return marshalJS(data)
}

// BlogPostingJSONLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJSONLD(m site.Metadata, meta site.PageMeta, post content.Post) template.JS {
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    post.Title,
		"description": meta.Description,
		"url":         meta.URL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  m.Title,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   meta.URL,
		},
	}
	if d := post.DateString(); d != "" {
		data["datePublished"] = d
	}
	if post.Author != "" {
		author := map[string]string{"@type": "Person", "name": post.Author}
		if post.AuthorTwitter != "" {
			author["url"] = "https://twitter.com/" + post.AuthorTwitter
		}
		data["author"] = author
	}
	if len(post.Tags) > 0 {
		data["keywords"] = strings.Join(post.Tags, ", ")
	}
	return marshalJS(data)
}

func marshalJS(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return template.JS(b)
}
