package query

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidPage is returned for a page number that is malformed or lies
// past the last page.  Handlers answer it with 404.
var ErrInvalidPage = errors.New("invalid page")

// Pager describes page-number pagination for one resource.
type Pager struct {
	DefaultSize int    // page size used when the client does not ask for one
	MaxSize     int    // upper bound for a client supplied page size
	SizeParam   string // query parameter carrying the page size
}

// OrderPager paginates order lists: 4 per page, up to 100 on request.
var OrderPager = Pager{DefaultSize: 4, MaxSize: 100, SizeParam: "page_size"}

// PageParams is a resolved page request.
type PageParams struct {
	Page int
	Size int
}

// Params resolves the raw "page" and page size values.  An empty page means
// the first page; anything else that is not a positive integer is
// ErrInvalidPage.  A malformed size falls back to the default and an
// oversized one is clamped to MaxSize.
func (p Pager) Params(rawPage, rawSize string) (PageParams, error) {
	out := PageParams{Page: 1, Size: p.DefaultSize}
	if s := strings.TrimSpace(rawPage); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return PageParams{}, ErrInvalidPage
		}
		out.Page = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(rawSize)); err == nil && n > 0 {
		out.Size = n
	}
	if p.MaxSize > 0 && out.Size > p.MaxSize {
		out.Size = p.MaxSize
	}
	return out, nil
}

// Limit is the SQL LIMIT for the page.
func (pp PageParams) Limit() int { return pp.Size }

// Offset is the SQL OFFSET for the page.
func (pp PageParams) Offset() int { return (pp.Page - 1) * pp.Size }

// Check reports ErrInvalidPage when the page lies past the last page of
// total items.  The first page is always valid, even when empty.
func (pp PageParams) Check(total int) error {
	if pp.Page > 1 && pp.Offset() >= total {
		return ErrInvalidPage
	}
	return nil
}

// Links builds the absolute next/previous URLs for the page, keeping every
// other query parameter of u.  A missing link is returned as nil.
func (pp PageParams) Links(u *url.URL, total int) (next, previous *string) {
	if pp.Offset()+pp.Size < total {
		s := pageURL(u, pp.Page+1)
		next = &s
	}
	if pp.Page > 1 {
		s := pageURL(u, pp.Page-1)
		previous = &s
	}
	return next, previous
}

func pageURL(u *url.URL, page int) string {
	cp := *u
	q := cp.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	cp.RawQuery = q.Encode()
	return cp.String()
}
