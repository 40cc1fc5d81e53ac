package inkwell

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/eringen/inkwell/content"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test_blog.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func seedPosts() []content.Post {
	return []content.Post{
		{Slug: "alpha", Title: "Alpha", Date: day("2024-01-15"), Tags: []string{"go", "testing"}, Body: "# Alpha", Author: "Ada", AuthorTwitter: "ada"},
		{Slug: "beta", Title: "Beta", Date: day("2024-02-01"), Tags: []string{"go"}, Body: "Beta body"},
		{Slug: "gamma", Title: "Gamma", Tags: []string{"misc"}, Body: "Undated"},
		{Slug: "delta", Title: "Delta", Date: day("2024-03-01"), Tags: []string{"go"}, Draft: true},
	}
}

func findPost(posts []content.Post, slug string) (content.Post, bool) {
	for _, p := range posts {
		if p.Slug == slug {
			return p, true
		}
	}
	return content.Post{}, false
}

func TestReplaceAndListPosts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if err := s.ReplacePosts(ctx, seedPosts()); err != nil {
		t.Fatalf("ReplacePosts failed: %v", err)
	}

	posts, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if got, want := slugs(posts), "delta,beta,alpha,gamma"; got != want {
		t.Errorf("ListPosts = %q, want %q", got, want)
	}

	got, _ := findPost(posts, "alpha")
	want := seedPosts()[0]
	if got.Title != want.Title || got.Body != want.Body || got.Author != want.Author || got.AuthorTwitter != want.AuthorTwitter {
		t.Errorf("alpha = %+v, want %+v", got, want)
	}
	if !got.Date.Equal(want.Date) {
		t.Errorf("Date = %v, want %v", got.Date, want.Date)
	}
	if !reflect.DeepEqual(got.Tags, want.Tags) {
		t.Errorf("Tags = %v, want %v", got.Tags, want.Tags)
	}
	if delta, _ := findPost(posts, "delta"); !delta.Draft {
		t.Error("delta.Draft = false, want true")
	}
}

func TestListPostsKeepsDateOffset(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	east := time.FixedZone("", 5*60*60)
	posts := []content.Post{
		// 2023-12-31T20:00Z, earlier than late despite the later local date.
		{Slug: "early", Tags: []string{"a"}, Date: time.Date(2024, 1, 1, 1, 0, 0, 0, east)},
		{Slug: "late", Tags: []string{"a"}, Date: time.Date(2023, 12, 31, 22, 0, 0, 0, time.UTC)},
	}
	if err := s.ReplacePosts(ctx, posts); err != nil {
		t.Fatal(err)
	}
	got, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if slugs(got) != "late,early" {
		t.Errorf("order = %q, want late,early", slugs(got))
	}
	early, _ := findPost(got, "early")
	if early.DateString() != "2024-01-01" {
		t.Errorf("DateString = %q, want 2024-01-01", early.DateString())
	}
	if _, off := early.Date.Zone(); off != 5*60*60 {
		t.Errorf("offset = %d, want %d", off, 5*60*60)
	}
}

func TestNewStoreRebuildsOldSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blog.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE posts (slug TEXT PRIMARY KEY, date TEXT NOT NULL)`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()
	if err := s.ReplacePosts(context.Background(), seedPosts()); err != nil {
		t.Fatalf("ReplacePosts on rebuilt schema: %v", err)
	}
}

func TestReplacePostsDropsOldRows(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if err := s.ReplacePosts(ctx, seedPosts()); err != nil {
		t.Fatal(err)
	}
	if err := s.ReplacePosts(ctx, seedPosts()[:1]); err != nil {
		t.Fatal(err)
	}
	posts, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := slugs(posts); got != "alpha" {
		t.Errorf("after replace = %q, want alpha", got)
	}
}

func TestReplacePostsRollsBackOnDuplicate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	if err := s.ReplacePosts(ctx, seedPosts()); err != nil {
		t.Fatal(err)
	}
	dup := []content.Post{{Slug: "x", Tags: []string{"a"}}, {Slug: "x", Tags: []string{"a"}}}
	if err := s.ReplacePosts(ctx, dup); err == nil {
		t.Fatal("expected duplicate slug to fail")
	}
	posts, err := s.ListPosts(ctx)
	if err != nil || len(posts) != 4 {
		t.Errorf("after failed replace: %d posts, %v; want original 4", len(posts), err)
	}
}

func TestJoinAndParseTags(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"go"}, ",go,"},
		{[]string{"go", "web"}, ",go,web,"},
	}
	for _, tt := range tests {
		got := joinTags(tt.in)
		if got != tt.want {
			t.Errorf("joinTags(%v) = %q, want %q", tt.in, got, tt.want)
		}
		if back := parseTags(got); !reflect.DeepEqual(back, tt.in) {
			t.Errorf("parseTags(%q) = %v, want %v", got, back, tt.in)
		}
	}
}
