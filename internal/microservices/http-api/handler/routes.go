package handler

import (
	"net/http"
	"strconv"

	"foodgram/internal/microservices/http-api/middleware"

	"github.com/gin-gonic/gin"
)

// Guards are the authentication middlewares handlers attach per route.
type Guards struct {
	Required gin.HandlerFunc
	Optional gin.HandlerFunc
}

// viewerID is the authenticated user id, or 0 for an anonymous request.
func viewerID(c *gin.Context) int64 {
	id, _ := middleware.CurrentUserID(c)
	return id
}

// requireUser returns the authenticated user id or writes 401.
func requireUser(c *gin.Context) (int64, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return 0, false
	}
	return id, true
}

// pathID parses a positive integer path parameter or writes 404.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return id, true
}
