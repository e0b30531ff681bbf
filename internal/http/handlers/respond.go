package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/farmchainx/dashboard/internal/apiclient"
	"github.com/farmchainx/dashboard/internal/dashboard"
	"github.com/farmchainx/dashboard/internal/domain/product"
	"github.com/farmchainx/dashboard/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// RespondErr maps domain and upstream failures onto the error envelope and
// records err on the gin context. An expired backend token ends the session
// before the response goes out.
func RespondErr(ctx *gin.Context, err error) {
	_ = ctx.Error(err)

	var verr *dashboard.ValidationError
	if errors.As(err, &verr) {
		RespondBadRequest(ctx, verr.Message, gin.H{
			"fields": []FieldError{{Field: verr.Field, Rule: verr.Rule, Message: verr.Message}},
		})
		return
	}

	if errors.Is(err, product.ErrNotFound) {
		RespondNotFound(ctx, "Product not found")
		return
	}

	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case apiclient.KindAuthExpired:
			middlewares.EndSession(ctx)
			RespondError(ctx, http.StatusUnauthorized, "session_expired", apiErr.Message, gin.H{"redirect": "/login"})
		case apiclient.KindNetworkUnreachable:
			RespondError(ctx, http.StatusBadGateway, "upstream_unreachable", apiErr.Message, nil)
		default:
			status := apiErr.Status
			if status >= 500 || status < 400 {
				status = http.StatusBadGateway
			}
			RespondError(ctx, status, "upstream_error", apiErr.Message, gin.H{"upstreamStatus": apiErr.Status})
		}
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		RespondError(ctx, http.StatusGatewayTimeout, "upstream_timeout", "Upstream did not answer in time", nil)
		return
	}

	RespondInternal(ctx, "Something went wrong")
}
