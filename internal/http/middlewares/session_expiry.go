package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/farmchainx/dashboard/internal/apiclient"
	"github.com/farmchainx/dashboard/internal/session"
	"github.com/gin-gonic/gin"
)

// SessionCloser drops per-session state such as the cached dashboard.
type SessionCloser interface {
	Close(sessionID string)
}

// EndSessionOnExpiry logs the session out once a handler reports that the
// backend rejected its token. Handlers either call EndSession before
// writing their response or record the error with ctx.Error.
func EndSessionOnExpiry(sessions session.Store, closer SessionCloser, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var once sync.Once
		end := func() {
			once.Do(func() {
				s, ok := SessionFromContext(c)
				if !ok {
					return
				}

				ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 2*time.Second)
				defer cancel()
				if err := sessions.Logout(ctx, s.ID); err != nil {
					slog.Default().WarnContext(ctx, "logout after auth expiry failed", "err", err)
				}

				if closer != nil {
					closer.Close(s.ID)
				}
				ClearSessionCookie(c, secureCookie)
			})
		}
		c.Set(ctxEndSession, end)

		c.Next()

		for _, e := range c.Errors {
			if errors.Is(e.Err, apiclient.ErrAuthExpired) {
				end()
				return
			}
		}
	}
}

// EndSession runs the expiry logout for this request, if the route has
// one. Call it before the response is written so the cookie is cleared.
func EndSession(c *gin.Context) {
	v, ok := c.Get(ctxEndSession)
	if !ok {
		return
	}
	if end, ok := v.(func()); ok {
		end()
	}
}

func SetSessionCookie(c *gin.Context, raw string, expiresAt time.Time, secure bool) {
	maxAge := int(time.Until(expiresAt).Seconds())

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, raw, maxAge, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}
