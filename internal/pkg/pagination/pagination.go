// Package pagination implements page/limit slicing with the
// {count, next, previous, results} envelope.
package pagination

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

// MaxPage bounds the page number so offsets stay far from int overflow.
const MaxPage = 1 << 20

type Params struct {
	Page  int
	Limit int
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Parse reads page and limit; invalid or missing values fall back to page 1
// and defaultLimit. Page is capped at MaxPage and limit at maxLimit.
func Parse(c *gin.Context, defaultLimit, maxLimit int) Params {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return Params{Page: page, Limit: limit}
}

type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// New builds the envelope; next and previous keep every other query
// parameter of the current request.
func New[T any](c *gin.Context, p Params, total int64, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	out := Page[T]{Count: total, Results: results}
	if int64(p.Page*p.Limit) < total {
		next := pageURL(c, p.Page+1)
		out.Next = &next
	}
	if p.Page > 1 {
		prev := pageURL(c, p.Page-1)
		out.Previous = &prev
	}
	return out
}

func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	q := c.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}
