package inkwell

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/inkwell/content"
)

// ErrNotFound is returned when a requested post or page does not exist.
var ErrNotFound = errors.New("inkwell: not found")

// Store wraps a SQLite database holding the post index built from the
// content directory.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the server read while a reindex writes; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// schemaVersion is stored in PRAGMA user_version. The posts table is a
// derived index, so an older schema is dropped and rebuilt by the next
// ReplacePosts.
const schemaVersion = 2

func (s *Store) ensureSchema() error {
	var version int
	if err := s.db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}
	if version != schemaVersion {
		if _, err := s.db.Exec(`DROP TABLE IF EXISTS posts`); err != nil {
			return err
		}
	}
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    author TEXT NOT NULL,
    author_twitter TEXT NOT NULL,
    date TEXT NOT NULL,
    date_utc TEXT NOT NULL,
    tags TEXT NOT NULL,
    body TEXT NOT NULL,
    draft INTEGER NOT NULL DEFAULT 0,
    source_path TEXT NOT NULL
);
PRAGMA user_version = ` + strconv.Itoa(schemaVersion) + `;
`)
	return err
}

// ReplacePosts swaps the whole index for posts in a single transaction.
func (s *Store) ReplacePosts(ctx context.Context, posts []content.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM posts`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO posts (slug, title, description, author, author_twitter, date, date_utc, tags, body, draft, source_path) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range posts {
		draft := 0
		if p.Draft {
			draft = 1
		}
		if _, err := stmt.ExecContext(ctx, p.Slug, p.Title, p.Description, p.Author, p.AuthorTwitter,
			formatDate(p.Date), formatDate(p.Date.UTC()), joinTags(p.Tags), p.Body, draft, p.SourcePath); err != nil {
			return fmt.Errorf("insert %s: %w", p.Slug, err)
		}
	}
	return tx.Commit()
}

const postColumns = `slug, title, description, author, author_twitter, date, tags, body, draft, source_path`

// ListPosts returns every indexed post, drafts included, newest first;
// undated posts come last.
func (s *Store) ListPosts(ctx context.Context) ([]content.Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY date_utc = '' ASC, date_utc DESC, slug ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []content.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(r rowScanner) (content.Post, error) {
	var p content.Post
	var date, tags string
	var draft int
	if err := r.Scan(&p.Slug, &p.Title, &p.Description, &p.Author, &p.AuthorTwitter,
		&date, &tags, &p.Body, &draft, &p.SourcePath); err != nil {
		return content.Post{}, err
	}
	if date != "" {
		t, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return content.Post{}, fmt.Errorf("post %s: bad stored date %q: %w", p.Slug, date, err)
		}
		p.Date = t
	}
	p.Tags = parseTags(tags)
	p.Draft = draft == 1
	return p, nil
}

// formatDate encodes t as RFC 3339, keeping its offset. Values converted
// to UTC first sort lexically in chronological order.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// joinTags encodes tags as ",a,b,". Tags never contain commas.
func joinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "," + strings.Join(tags, ",") + ","
}

// parseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func parseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	return strings.Split(tagString, ",")
}
