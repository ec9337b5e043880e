package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		query string
		want  pageParams
	}{
		{"", pageParams{Page: 1, Limit: 6}},
		{"page=3&limit=10", pageParams{Page: 3, Limit: 10}},
		{"page=0&limit=-1", pageParams{Page: 1, Limit: 6}},
		{"page=abc&limit=xyz", pageParams{Page: 1, Limit: 6}},
		{"limit=500", pageParams{Page: 1, Limit: maxPageSize}},
		{"page=99999999999&limit=100", pageParams{Page: maxPage, Limit: maxPageSize}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/api/recipes/?"+tt.query, nil)

			assert.Equal(t, tt.want, parsePage(c, 6))
		})
	}
}

func TestNewPage_KeepsFiltersAndScheme(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/recipes/?tags=lunch&page=2&limit=1", nil)
	c.Request.Header.Set("X-Forwarded-Proto", "https")

	page := newPage(c, pageParams{Page: 2, Limit: 1}, 3, []int{42})

	require.NotNil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "https://example.com/api/recipes/?limit=1&page=3&tags=lunch", *page.Next)
	assert.Equal(t, "https://example.com/api/recipes/?limit=1&tags=lunch", *page.Previous)
	assert.Equal(t, []int{42}, page.Results)
}

func TestNewPage_LastPage(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/users/", nil)

	page := newPage[int](c, pageParams{Page: 1, Limit: 6}, 0, nil)

	assert.Nil(t, page.Next)
	assert.Nil(t, page.Previous)
	assert.NotNil(t, page.Results)
	assert.Empty(t, page.Results)
}
