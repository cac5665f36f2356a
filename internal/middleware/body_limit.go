package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodyLimit borne la taille du corps de requête.
func BodyLimit(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}
