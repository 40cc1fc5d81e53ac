package site

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// NavItem is a single navigation menu entry.
type NavItem struct {
	Path  string `json:"path" yaml:"path" mapstructure:"path"`
	Title string `json:"title" yaml:"title" mapstructure:"title"`
}

// NavEntry pairs a NavItem with its symbolic key.
type NavEntry struct {
	Key string
	NavItem
}

// NavMap maps short symbolic keys ("home", "blog") to navigation items.
// Keys are unique and insertion order is the order the menu is rendered in.
// A NavMap is immutable once built; accessors return copies.
type NavMap struct {
	keys  []string
	items map[string]NavItem
}

// NewNavMap builds a NavMap from entries in display order.
func NewNavMap(entries ...NavEntry) (NavMap, error) {
	m := NavMap{
		keys:  make([]string, 0, len(entries)),
		items: make(map[string]NavItem, len(entries)),
	}
	for _, e := range entries {
		if err := m.add(e.Key, e.NavItem); err != nil {
			return NavMap{}, err
		}
	}
	return m, nil
}

// MustNavMap is like NewNavMap but panics on duplicate keys.
func MustNavMap(entries ...NavEntry) NavMap {
	m, err := NewNavMap(entries...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *NavMap) add(key string, item NavItem) error {
	if m.items == nil {
		m.items = make(map[string]NavItem)
	}
	if _, ok := m.items[key]; ok {
		return fmt.Errorf("site: nav key %q: %w", key, ErrDuplicateNavKey)
	}
	m.keys = append(m.keys, key)
	m.items[key] = item
	return nil
}

// Len returns the number of entries.
func (m NavMap) Len() int { return len(m.keys) }

// Keys returns the keys in display order.
func (m NavMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Get returns the item stored under key.
func (m NavMap) Get(key string) (NavItem, bool) {
	item, ok := m.items[key]
	return item, ok
}

// Entries returns every entry in display order.
func (m NavMap) Entries() []NavEntry {
	out := make([]NavEntry, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, NavEntry{Key: k, NavItem: m.items[k]})
	}
	return out
}

// MenuLink is one rendered link of the navigation menu.
type MenuLink struct {
	Key    string
	Label  string
	Href   string
	Active bool
}

// Menu returns the links a renderer emits for the navigation, in display
// order. A link is active when activePath is its path or lies beneath it;
// the root path only matches itself.
func (m NavMap) Menu(activePath string) []MenuLink {
	links := make([]MenuLink, 0, len(m.keys))
	for _, e := range m.Entries() {
		links = append(links, MenuLink{
			Key:    e.Key,
			Label:  e.Title,
			Href:   e.Path,
			Active: isActive(e.Path, activePath),
		})
	}
	return links
}

func isActive(itemPath, activePath string) bool {
	if activePath == "" {
		return false
	}
	if itemPath == "/" {
		return activePath == "/"
	}
	base := strings.TrimSuffix(itemPath, "/")
	return activePath == base || strings.HasPrefix(activePath, base+"/")
}

// MarshalJSON encodes the map as a JSON object with keys in display order.
func (m NavMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.items[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the document's key order.
func (m *NavMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = NavMap{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("site: nav must be a JSON object, got %v", tok)
	}
	out := NavMap{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var item NavItem
		if err := dec.Decode(&item); err != nil {
			return fmt.Errorf("site: nav %q: %w", key, err)
		}
		if err := out.add(key, item); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// MarshalYAML encodes the map as a YAML mapping in display order.
func (m NavMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.keys {
		var v yaml.Node
		if err := v.Encode(m.items[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&v,
		)
	}
	return node, nil
}

// UnmarshalYAML accepts either a mapping of key to item, or a sequence of
// items each carrying a "key" field. Document order is kept in both forms.
func (m *NavMap) UnmarshalYAML(value *yaml.Node) error {
	out := NavMap{}
	switch value.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := value.Content[i].Value
			var item NavItem
			if err := value.Content[i+1].Decode(&item); err != nil {
				return fmt.Errorf("site: nav %q: %w", key, err)
			}
			if err := out.add(key, item); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for _, n := range value.Content {
			var e struct {
				Key   string `yaml:"key"`
				Path  string `yaml:"path"`
				Title string `yaml:"title"`
			}
			if err := n.Decode(&e); err != nil {
				return err
			}
			if err := out.add(e.Key, NavItem{Path: e.Path, Title: e.Title}); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("site: nav must be a mapping or a sequence (line %d)", value.Line)
	}
	*m = out
	return nil
}
