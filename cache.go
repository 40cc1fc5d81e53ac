package inkwell

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/inkwell/content"
)

// PostCache is an in-memory cache of every indexed post (drafts included)
// with a TTL. Draft and tag filtering happen on the cached slice.
type PostCache struct {
	mu      sync.RWMutex
	posts   []content.Post
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

func (c *PostCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPosts(ctx)
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []content.Post{}
	}
	c.posts = posts
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns the cached posts after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]content.Post, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return c.posts, nil
}

// ListPosts returns posts newest first, optionally filtered by tag.
func (c *PostCache) ListPosts(ctx context.Context, tag string, includeDrafts bool) ([]content.Post, error) {
	posts, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	return content.WithTag(content.Visible(posts, includeDrafts), tag), nil
}

// ListTags returns every tag of the visible posts with its count.
func (c *PostCache) ListTags(ctx context.Context, includeDrafts bool) ([]content.TagCount, error) {
	posts, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	return content.CountTags(content.Visible(posts, includeDrafts)), nil
}

// GetPost returns a single post by slug from the cache.
func (c *PostCache) GetPost(ctx context.Context, slug string, includeDrafts bool) (content.Post, error) {
	posts, err := c.ensureLoaded(ctx)
	if err != nil {
		return content.Post{}, err
	}
	for _, p := range posts {
		if p.Slug == slug && (includeDrafts || !p.Draft) {
			return p, nil
		}
	}
	return content.Post{}, ErrNotFound
}
