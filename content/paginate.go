package content

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrPageOutOfRange is returned for a page number outside 1..TotalPages.
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrInvalidPageSize is returned for a non-positive page size.
	ErrInvalidPageSize = errors.New("page size must be positive")
)

// Page is one slice of a paginated listing. Numbers are 1-based.
type Page struct {
	Number     int
	TotalPages int
	TotalPosts int
	Size       int
	Posts      []Post
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// Prev returns the previous page number.
func (p Page) Prev() int { return p.Number - 1 }

// Next returns the following page number.
func (p Page) Next() int { return p.Number + 1 }

// PageCount returns the number of pages needed for total posts. There is
// always at least one page.
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Paginate returns page number of posts split into pages of size. Page 1
// always exists, even for an empty listing.
func Paginate(posts []Post, size, number int) (Page, error) {
	if size <= 0 {
		return Page{}, ErrInvalidPageSize
	}
	total := PageCount(len(posts), size)
	if number < 1 || number > total {
		return Page{}, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, number, total)
	}
	start := (number - 1) * size
	end := min(start+size, len(posts))
	return Page{
		Number:     number,
		TotalPages: total,
		TotalPosts: len(posts),
		Size:       size,
		Posts:      posts[start:end],
	}, nil
}

// PageLink returns the path of page n of a listing rooted at base, e.g.
// "/blog/" for page 1 and "/blog/page/2/" for page 2.
func PageLink(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "page/" + strconv.Itoa(n) + "/"
}
