package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/farmchainx/dashboard/internal/apiclient"
	"github.com/farmchainx/dashboard/internal/auth"
	"github.com/farmchainx/dashboard/internal/domain/user"
	"github.com/farmchainx/dashboard/internal/http/middlewares"
	"github.com/farmchainx/dashboard/internal/session"
	"github.com/gin-gonic/gin"
)

// AccountAPI is the unauthenticated part of the backend.
type AccountAPI interface {
	Login(ctx context.Context, email, password string) (apiclient.LoginResponse, error)
	Register(ctx context.Context, name, email, password string, role user.Role) (apiclient.RegisterResponse, error)
}

// SessionCloser forgets per-session gateway state on logout.
type SessionCloser interface {
	Close(sessionID string)
}

type AuthHandler struct {
	api          AccountAPI
	sessions     session.Store
	jwt          *auth.Manager
	closer       SessionCloser
	secureCookie bool
}

func NewAuthHandler(api AccountAPI, sessions session.Store, jwtManager *auth.Manager, closer SessionCloser, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		api:          api,
		sessions:     sessions,
		jwt:          jwtManager,
		closer:       closer,
		secureCookie: secureCookie,
	}
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      user.User `json:"user"`
	Redirect  string    `json:"redirect"`
	Message   string    `json:"message,omitempty"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	resp, err := h.api.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	sid := auth.NewSessionID()

	if err := h.sessions.Login(ctx.Request.Context(), sid, resp.User, resp.Token); err != nil {
		RespondInternal(ctx, "Could not create session")
		return
	}

	raw, expiresAt, err := h.jwt.IssueSession(sid, resp.User.ID, string(resp.User.Role))
	if err != nil {
		_ = h.sessions.Logout(ctx.Request.Context(), sid)
		RespondInternal(ctx, "Could not create session")
		return
	}

	middlewares.SetSessionCookie(ctx, raw, expiresAt, h.secureCookie)

	ctx.JSON(http.StatusOK, sessionResponse{
		Token:     raw,
		ExpiresAt: expiresAt,
		User:      resp.User,
		Redirect:  resp.User.Role.DashboardPath(),
		Message:   resp.Message,
	})
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	role, err := user.ParseRole(req.Role)
	if err != nil {
		RespondBadRequest(ctx, "Invalid request body", gin.H{
			"fields": []FieldError{{Field: "role", Rule: "oneof", Message: "must be a known role"}},
		})
		return
	}

	resp, err := h.api.Register(ctx.Request.Context(), req.Name, req.Email, req.Password, role)
	if err != nil {
		RespondErr(ctx, err)
		return
	}

	msg := resp.Message
	if msg == "" {
		msg = "Registration successful! Please log in."
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":  msg,
		"user":     resp,
		"redirect": "/login",
	})
}

// Logout is idempotent: an unknown or expired session still clears the
// cookie and answers 204.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	if claims, ok := middlewares.ClaimsFromContext(ctx); ok {
		if err := h.sessions.Logout(ctx.Request.Context(), claims.SessionID); err != nil {
			RespondInternal(ctx, "Could not end session")
			return
		}
		if h.closer != nil {
			h.closer.Close(claims.SessionID)
		}
	}

	middlewares.ClearSessionCookie(ctx, h.secureCookie)
	ctx.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	s, ok := middlewares.SessionFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":     s.User,
		"redirect": s.User.Role.DashboardPath(),
	})
}
