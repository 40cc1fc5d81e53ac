package content

import (
	"sort"
)

// SortByDate orders posts newest first. Ties are broken by slug and
// undated posts go last.
func SortByDate(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		switch {
		case a.Date.IsZero() != b.Date.IsZero():
			return b.Date.IsZero()
		case !a.Date.Equal(b.Date):
			return a.Date.After(b.Date)
		default:
			return a.Slug < b.Slug
		}
	})
}

// Visible returns the posts a listing shows. Drafts are kept only when
// includeDrafts is set.
func Visible(posts []Post, includeDrafts bool) []Post {
	if includeDrafts {
		return posts
	}
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if !p.Draft {
			out = append(out, p)
		}
	}
	return out
}

// WithTag returns the posts carrying tag. An empty tag returns posts as is.
func WithTag(posts []Post, tag string) []Post {
	if NormalizeTag(tag) == "" {
		return posts
	}
	var out []Post
	for _, p := range posts {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// TagCount is a tag and the number of posts carrying it.
type TagCount struct {
	Name  string
	Count int
}

// CountTags returns every tag used by posts, sorted by name.
func CountTags(posts []Post) []TagCount {
	counts := make(map[string]int)
	for _, p := range posts {
		for _, t := range p.Tags {
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, TagCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Related finds posts that share at least one tag with current, most
// shared tags first. A limit of zero or less returns all of them.
func Related(current Post, posts []Post, limit int) []Post {
	tagSet := make(map[string]struct{}, len(current.Tags))
	for _, t := range current.Tags {
		tagSet[NormalizeTag(t)] = struct{}{}
	}
	type scored struct {
		post   Post
		shared int
	}
	var candidates []scored
	for _, p := range posts {
		if p.Slug == current.Slug {
			continue
		}
		n := 0
		for _, t := range p.Tags {
			if _, ok := tagSet[NormalizeTag(t)]; ok {
				n++
			}
		}
		if n > 0 {
			candidates = append(candidates, scored{post: p, shared: n})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].shared > candidates[j].shared
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	related := make([]Post, len(candidates))
	for i, c := range candidates {
		related[i] = c.post
	}
	return related
}
