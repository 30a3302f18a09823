package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rangga11268/siakad-smp-sub000/pkg/response"
)

// BodyLimit caps request bodies at maxBytes (1<<20 = 1MB).
// ICS uploads go through the same limit, so size it for the largest calendar file.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
