package middlewares

// gin context keys
const (
	CtxRequestID = "request_id"
	CtxSession   = "auth.session"
	CtxClaims    = "auth.claims"

	ctxEndSession = "auth.end_session"
)

// SessionCookie carries the signed gateway session token.
const SessionCookie = "fcx_session"
