package handler

import (
	"math"
	"net/url"
	"strconv"

	"foodgram/internal/microservices/http-api/dto"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// maxPage keeps (page-1)*limit inside int32 so the offset never overflows.
const maxPage = math.MaxInt32 / maxPageSize

type pageParams struct {
	Page  int
	Limit int
}

// parsePage reads ?page= and ?limit=. Missing or malformed values fall back to the
// first page and the default size; limit is capped at maxPageSize and page at maxPage.
func parsePage(c *gin.Context, defaultSize int) pageParams {
	p := pageParams{Page: 1, Limit: defaultSize}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if p.Page > maxPage {
		p.Page = maxPage
	}
	return p
}

// newPage builds the envelope with absolute next/previous links that keep the
// other query parameters of the request.
func newPage[T any](c *gin.Context, p pageParams, total int64, results []T) dto.PageResponse[T] {
	if results == nil {
		results = []T{}
	}
	resp := dto.PageResponse[T]{Count: total, Results: results}
	if int64(p.Page*p.Limit) < total {
		link := pageLink(c, p.Page+1)
		resp.Next = &link
	}
	if p.Page > 1 {
		link := pageLink(c, p.Page-1)
		resp.Previous = &link
	}
	return resp
}

func pageLink(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}

	q := c.Request.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	return u.String()
}
