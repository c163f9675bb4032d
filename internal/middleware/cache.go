package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// CacheControl marks successful GET responses cacheable by the browser
// for maxAge seconds. Everything else is no-store.
func CacheControl(maxAge int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet && maxAge > 0 {
			c.Header("Cache-Control", "private, max-age="+strconv.Itoa(maxAge))
			c.Header("Vary", "Authorization")
		} else {
			c.Header("Cache-Control", "no-store")
		}
		c.Next()
	}
}

// NoStore keeps live data such as the schedule out of every cache.
func NoStore() gin.HandlerFunc {
	return CacheControl(0)
}
