// Package markdown renders post bodies to HTML and derives plain-text
// views of them (excerpts, reading time).
package markdown

import (
	"bytes"
	"html/template"
	"io"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	xhtml "golang.org/x/net/html"
)

// wordsPerMinute is the reading speed used by ReadingTime.
const wordsPerMinute = 200

// md is safe for concurrent use. Raw HTML in the source is dropped and
// dangerous link schemes are neutralised by goldmark.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Footnote),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		gmhtml.WithXHTML(),
	),
)

// Render writes the HTML form of src to w.
func Render(w io.Writer, src string) error {
	return md.Convert([]byte(src), w)
}

// HTML returns the rendered form of src, ready to embed in html/template.
func HTML(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := Render(&buf, src); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// PlainText strips tags from an HTML fragment and collapses whitespace.
func PlainText(fragment string) string {
	z := xhtml.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case xhtml.StartTagToken:
			name, _ := z.TagName()
			if isHidden(string(name)) {
				skip++
			}
			b.WriteByte(' ')
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			if isHidden(string(name)) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case xhtml.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isHidden(tag string) bool {
	return tag == "script" || tag == "style"
}

// Excerpt renders src and returns at most maxRunes runes of its text,
// cut on a word boundary with an ellipsis when shortened.
func Excerpt(src string, maxRunes int) string {
	var buf bytes.Buffer
	if err := Render(&buf, src); err != nil {
		return ""
	}
	text := PlainText(buf.String())
	runes := []rune(text)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return text
	}
	cut := string(runes[:maxRunes])
	if i := strings.LastIndexFunc(cut, unicode.IsSpace); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRightFunc(cut, unicode.IsPunct) + "…"
}

// ReadingTime estimates minutes needed to read src. It is at least 1.
func ReadingTime(src string) int {
	var buf bytes.Buffer
	if err := Render(&buf, src); err != nil {
		return 1
	}
	words := len(strings.Fields(PlainText(buf.String())))
	return max(1, (words+wordsPerMinute-1)/wordsPerMinute)
}
