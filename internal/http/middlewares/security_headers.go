package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	defaultCSP = "default-src 'none'"
	// printable reports carry inline styles and an embedded QR data URI
	reportCSP = "default-src 'none'; base-uri 'none'; frame-ancestors 'self'; img-src data:; style-src 'unsafe-inline'"
)

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("X-XSS-Protection", "0")
		if strings.HasSuffix(c.Request.URL.Path, "/report") {
			c.Header("X-Frame-Options", "SAMEORIGIN")
			c.Header("Content-Security-Policy", reportCSP)
		} else {
			c.Header("X-Frame-Options", "DENY")
			c.Header("Content-Security-Policy", defaultCSP)
		}
		c.Next()
	}
}
