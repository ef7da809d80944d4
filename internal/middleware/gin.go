package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Gin adapts a net/http middleware to Gin. When the middleware answers
// the request itself the rest of the chain is skipped.
func Gin(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		passed := false

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})

		mw(next).ServeHTTP(c.Writer, c.Request)

		if !passed {
			c.Writer.WriteHeaderNow()
			c.Abort()
		}
	}
}
