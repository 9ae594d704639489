package pagination

import (
	"fmt"
	"math"
	"net/url"
	"strconv"

	"foodgram/pkg/lib/urlparser"
)

const (
	// DefaultLimit is the page size when ?limit is not provided.
	DefaultLimit = 6
	// MaxLimit caps how many rows one page can request.
	MaxLimit = 100
	// MaxPage keeps page*limit within int.
	MaxPage = math.MaxInt / MaxLimit
)

// Params holds page-number pagination inputs (?page=N&limit=M).
type Params struct {
	Page  int
	Limit int
}

// Page is the envelope returned by every paginated endpoint.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// FromQuery parses page and limit, normalizing out-of-range values.
func FromQuery(values url.Values) (Params, error) {
	page, err := urlparser.QueryInt(values, "page", 1)
	if err != nil {
		return Params{}, err
	}
	if page > MaxPage {
		return Params{}, fmt.Errorf("%w: page must be at most %d", urlparser.ErrInvalidParam, MaxPage)
	}
	limit, err := urlparser.QueryInt(values, "limit", DefaultLimit)
	if err != nil {
		return Params{}, err
	}
	return Params{Page: page, Limit: limit}.Normalize(), nil
}

func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Params) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

// NewPage builds the envelope; next/previous links keep every other query
// parameter of reqURL intact.
func NewPage[T any](results []T, count int, p Params, reqURL *url.URL) Page[T] {
	p = p.Normalize()
	if results == nil {
		results = []T{}
	}

	page := Page[T]{Count: count, Results: results}
	if reqURL == nil {
		return page
	}

	if p.Page*p.Limit < count {
		next := withPage(reqURL, p.Page+1)
		page.Next = &next
	}
	if p.Page > 1 {
		prev := withPage(reqURL, p.Page-1)
		page.Previous = &prev
	}

	return page
}

func withPage(u *url.URL, n int) string {
	cp := *u
	q := cp.Query()
	if n <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	cp.RawQuery = q.Encode()
	return cp.String()
}
