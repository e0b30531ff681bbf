package apiclient

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNetworkUnreachable Kind = "network_unreachable"
	KindHTTP               Kind = "http_error"
	KindAuthExpired        Kind = "auth_expired"
)

const cannotConnectMessage = "Cannot connect to server. Please check if the backend is running."

// Error is what every failed round trip turns into. Compare kinds with
// errors.Is against the sentinels below.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	cause   error
}

var (
	ErrNetworkUnreachable = &Error{Kind: KindNetworkUnreachable}
	ErrHTTP               = &Error{Kind: KindHTTP}
	ErrAuthExpired        = &Error{Kind: KindAuthExpired}
)

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// MetricClass labels upstream error metrics.
func (e *Error) MetricClass() string {
	return string(e.Kind)
}

func networkError(op string, cause error) *Error {
	return &Error{
		Kind:    KindNetworkUnreachable,
		Op:      op,
		Message: cannotConnectMessage,
		cause:   cause,
	}
}

func statusError(op string, kind Kind, status int, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Status:  status,
		Message: message,
	}
}
