package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireContentType rejects bodies of any other media type on writes.
func RequireContentType(mediaType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			ct := c.GetHeader("Content-Type")
			// allow parameters such as "; charset=utf-8" or "; boundary=..."
			if ct == "" || !strings.HasPrefix(strings.ToLower(ct), mediaType) {
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
					"error": gin.H{
						"code":    "unsupported_media_type",
						"message": "Content-Type must be " + mediaType,
					},
				})
				return
			}
		}
		c.Next()
	}
}

func RequireJSON() gin.HandlerFunc {
	return RequireContentType("application/json")
}

func RequireMultipart() gin.HandlerFunc {
	return RequireContentType("multipart/form-data")
}
