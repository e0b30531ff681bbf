package middlewares

import (
	"net/http"
	"slices"
	"strings"

	"github.com/farmchainx/dashboard/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through when the session role is any of
// the given roles.
func RequireRole(allowed ...user.Role) gin.HandlerFunc {
	names := make([]string, 0, len(allowed))
	for _, r := range allowed {
		names = append(names, string(r))
	}
	message := strings.Join(names, " or ") + " role required"

	return func(c *gin.Context) {
		s, ok := SessionFromContext(c)

		if !ok || s.User.Role == "" {
			abortUnauthorized(c, "unauthorized", "Missing identity context")
			return
		}
		if !slices.Contains(allowed, s.User.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": message,
				},
			})
			return
		}
		c.Next()
	}
}
