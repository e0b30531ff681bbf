package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/farmchainx/dashboard/internal/auth"
	"github.com/farmchainx/dashboard/internal/session"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifySession(token string) (*auth.Claims, error)
}

type SessionAuth struct {
	jwt      TokenVerifier
	sessions session.Store
}

func NewSessionAuth(jwt TokenVerifier, sessions session.Store) *SessionAuth {
	return &SessionAuth{jwt: jwt, sessions: sessions}
}

// TokenFromRequest prefers the Authorization header and falls back to the
// session cookie.
func TokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	if raw, err := c.Cookie(SessionCookie); err == nil {
		return raw
	}
	return ""
}

func (m *SessionAuth) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := TokenFromRequest(c)
		if raw == "" {
			abortUnauthorized(c, "unauthorized", "Missing session token")
			return
		}

		claims, err := m.jwt.VerifySession(raw)
		if err != nil {
			abortUnauthorized(c, "unauthorized", "Invalid or expired session token")
			return
		}

		s, err := m.sessions.Current(c.Request.Context(), claims.SessionID)
		if err != nil {
			if errors.Is(err, session.ErrNotLoggedIn) {
				abortUnauthorized(c, "session_expired", "Session expired. Please log in again.")
				return
			}
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": gin.H{
					"code":    "session_unavailable",
					"message": "Session store unavailable",
				},
			})
			return
		}

		c.Set(CtxClaims, claims)
		c.Set(CtxSession, s)

		c.Next()
	}
}

// OptionalSession attaches the session when one is presented and never
// aborts.
func (m *SessionAuth) OptionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := TokenFromRequest(c); raw != "" {
			if claims, err := m.jwt.VerifySession(raw); err == nil {
				c.Set(CtxClaims, claims)
				if s, err := m.sessions.Current(c.Request.Context(), claims.SessionID); err == nil {
					c.Set(CtxSession, s)
				}
			}
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// Optional helpers so handlers don't need to know the magic keys.

func SessionFromContext(c *gin.Context) (session.Session, bool) {
	v, ok := c.Get(CtxSession)
	if !ok {
		return session.Session{}, false
	}
	s, ok := v.(session.Session)
	return s, ok
}

func ClaimsFromContext(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	s, ok := SessionFromContext(c)
	if !ok || s.User.ID == "" {
		return "", false
	}
	return s.User.ID, true
}
