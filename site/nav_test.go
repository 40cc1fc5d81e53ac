package site

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMenuTwoEntries(t *testing.T) {
	nav := MustNavMap(
		NavEntry{Key: "home", NavItem: NavItem{Path: "/", Title: "home"}},
		NavEntry{Key: "blog", NavItem: NavItem{Path: "/blog", Title: "blog"}},
	)
	links := nav.Menu("/")
	require.Len(t, links, 2)
	assert.Equal(t, "home", links[0].Label)
	assert.Equal(t, "/", links[0].Href)
	assert.Equal(t, "blog", links[1].Label)
	assert.Equal(t, "/blog", links[1].Href)
}

func TestMenuActive(t *testing.T) {
	tests := []struct {
		path   string
		active string
	}{
		{"/", "home"},
		{"/blog/", "blog"},
		{"/blog/page/2/", "blog"},
		{"/blog/hello-world/", "blog"},
		{"/tags/go/", "tags"},
		{"/about/", "about"},
		{"/blogroll/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		var got string
		for _, l := range NavItems.Menu(tt.path) {
			if l.Active {
				got = l.Key
			}
		}
		assert.Equal(t, tt.active, got, "path %q", tt.path)
	}
}

func TestNewNavMapDuplicateKey(t *testing.T) {
	_, err := NewNavMap(
		NavEntry{Key: "home", NavItem: NavItem{Path: "/"}},
		NavEntry{Key: "home", NavItem: NavItem{Path: "/home"}},
	)
	assert.True(t, errors.Is(err, ErrDuplicateNavKey))
}

func TestNavMapAccessorsReturnCopies(t *testing.T) {
	keys := NavItems.Keys()
	keys[0] = "mutated"
	assert.Equal(t, "home", NavItems.Keys()[0])

	entries := NavItems.Entries()
	entries[0].Path = "/mutated"
	item, ok := NavItems.Get("home")
	require.True(t, ok)
	assert.Equal(t, "/", item.Path)
}

func TestNavMapJSONKeepsOrder(t *testing.T) {
	src := `{"zeta":{"path":"/z","title":"z"},"alpha":{"path":"/a","title":"a"}}`
	var m NavMap
	require.NoError(t, json.Unmarshal([]byte(src), &m))
	assert.Equal(t, []string{"zeta", "alpha"}, m.Keys())

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, src, string(out))
}

func TestNavMapJSONDuplicateKey(t *testing.T) {
	var m NavMap
	err := json.Unmarshal([]byte(`{"a":{"path":"/"},"a":{"path":"/x"}}`), &m)
	assert.True(t, errors.Is(err, ErrDuplicateNavKey))
}

func TestNavMapYAMLForms(t *testing.T) {
	mapping := "nav:\n  blog:\n    path: /blog\n    title: blog\n  home:\n    path: /\n    title: home\n"
	sequence := "nav:\n  - key: blog\n    path: /blog\n    title: blog\n  - key: home\n    path: /\n    title: home\n"

	for _, src := range []string{mapping, sequence} {
		var doc struct {
			Nav NavMap `yaml:"nav"`
		}
		require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
		assert.Equal(t, []string{"blog", "home"}, doc.Nav.Keys())
		item, _ := doc.Nav.Get("home")
		assert.Equal(t, NavItem{Path: "/", Title: "home"}, item)
	}
}

func TestNavMapYAMLRejectsScalar(t *testing.T) {
	var doc struct {
		Nav NavMap `yaml:"nav"`
	}
	assert.Error(t, yaml.Unmarshal([]byte("nav: home\n"), &doc))
}
