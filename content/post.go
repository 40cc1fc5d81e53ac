// Package content parses blog posts and pages from markdown files with a
// YAML front-matter block, and provides the listing operations the
// renderer needs: draft filtering, tag sets, ordering, related posts and
// pagination.
package content

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoTags marks a post without tags. Such posts are not rendered.
	ErrNoTags = errors.New("post has no tags")

	// ErrNoFrontMatter marks a post file without a front-matter block.
	ErrNoFrontMatter = errors.New("missing front-matter")

	// ErrDuplicateSlug marks a file whose slug is already taken.
	ErrDuplicateSlug = errors.New("duplicate slug")

	// ErrEmptySlug marks a file whose name and slug field produce no slug.
	ErrEmptySlug = errors.New("empty slug")
)

// yamlFormat decodes front-matter with yaml.v3 so Date and Tags can use
// node-level unmarshalers.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Post is a parsed content file. Pages share the type; for them Tags may
// be empty.
type Post struct {
	Slug          string
	Title         string
	Description   string
	Tags          []string
	Author        string
	AuthorTwitter string
	Date          time.Time
	Draft         bool
	Body          string
	SourcePath    string
}

// Link returns the root-relative URL of the post.
func (p Post) Link() string {
	return "/blog/" + p.Slug + "/"
}

// DateString formats the post date as YYYY-MM-DD, or "" when undated.
func (p Post) DateString() string {
	if p.Date.IsZero() {
		return ""
	}
	return p.Date.Format("2006-01-02")
}

// HasTag reports whether the post carries tag (case-insensitive).
func (p Post) HasTag(tag string) bool {
	tag = NormalizeTag(tag)
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks the rules a post must satisfy to be rendered.
func (p Post) Validate() error {
	if p.Slug == "" {
		return ErrEmptySlug
	}
	if len(p.Tags) == 0 {
		return ErrNoTags
	}
	return nil
}

type frontMatter struct {
	Title         string `yaml:"title"`
	Description   string `yaml:"description"`
	Tags          Tags   `yaml:"tags"`
	Author        string `yaml:"author"`
	AuthorTwitter string `yaml:"authorTwitter"`
	Date          Date   `yaml:"date"`
	Draft         bool   `yaml:"draft"`
	Slug          string `yaml:"slug"`
}

// Parse reads a post. The front-matter block is required.
func Parse(r io.Reader, name string) (Post, error) {
	var fm frontMatter
	body, err := frontmatter.MustParse(r, &fm, yamlFormat)
	if err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return Post{}, ErrNoFrontMatter
		}
		return Post{}, fmt.Errorf("front-matter: %w", err)
	}
	return fm.post(name, body), nil
}

// ParsePage reads a standalone page. Front-matter is optional.
func ParsePage(r io.Reader, name string) (Post, error) {
	var fm frontMatter
	body, err := frontmatter.Parse(r, &fm, yamlFormat)
	if err != nil {
		return Post{}, fmt.Errorf("front-matter: %w", err)
	}
	return fm.post(name, body), nil
}

func (fm frontMatter) post(name string, body []byte) Post {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	slug := Slugify(fm.Slug)
	if slug == "" {
		slug = Slugify(base)
	}
	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = titleFromName(base)
	}
	return Post{
		Slug:          slug,
		Title:         title,
		Description:   strings.TrimSpace(fm.Description),
		Tags:          []string(fm.Tags),
		Author:        strings.TrimSpace(fm.Author),
		AuthorTwitter: strings.TrimPrefix(strings.TrimSpace(fm.AuthorTwitter), "@"),
		Date:          fm.Date.Time,
		Draft:         fm.Draft,
		Body:          string(body),
		SourcePath:    name,
	}
}

func titleFromName(base string) string {
	words := strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return cases.Title(language.English).String(strings.TrimSpace(words))
}

// Tags is a normalized tag set: trimmed, lowercased, de-duplicated, in
// first-occurrence order. It decodes from a YAML list or a comma-separated
// string; list entries are split on commas as well.
type Tags []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Tags) UnmarshalYAML(n *yaml.Node) error {
	var raw []string
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag != "!!null" {
			raw = strings.Split(n.Value, ",")
		}
	case yaml.SequenceNode:
		var items []string
		if err := n.Decode(&items); err != nil {
			return err
		}
		for _, item := range items {
			raw = append(raw, strings.Split(item, ",")...)
		}
	default:
		return fmt.Errorf("tags: expected a list or a string (line %d)", n.Line)
	}
	*t = NormalizeTags(raw)
	return nil
}

// NormalizeTags applies NormalizeTag to every entry and drops empties and
// duplicates.
func NormalizeTags(raw []string) Tags {
	seen := make(map[string]struct{}, len(raw))
	var out Tags
	for _, r := range raw {
		tag := NormalizeTag(r)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// NormalizeTag lowercases and trims a tag. Path separators become "-",
// control characters are dropped and a tag made only of dots is empty, so
// a tag is always a single path segment.
func NormalizeTag(t string) string {
	t = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '-'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, t)
	t = strings.ToLower(strings.TrimSpace(t))
	if strings.Trim(t, ".") == "" {
		return ""
	}
	return t
}

// TagPath returns the root-relative listing path of a tag.
func TagPath(tag string) string {
	return "/tags/" + url.PathEscape(tag) + "/"
}

// Date is a front-matter timestamp accepting the common date layouts.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(n *yaml.Node) error {
	v := strings.TrimSpace(n.Value)
	if v == "" || n.Tag == "!!null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := ParseDate(v)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	d.Time = t
	return nil
}

// ParseDate parses s with the first matching supported layout.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q, use YYYY-MM-DD or RFC 3339", s)
}

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
