package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Observer wraps every upstream call; *observability.Prom satisfies it.
type Observer interface {
	ObserveUpstream(op string, fn func() error) error
}

type noopObserver struct{}

func (noopObserver) ObserveUpstream(_ string, fn func() error) error { return fn() }

// Client is a single-shot HTTP client for one upstream service. There is no
// retry, no response caching and no client-side timeout; cancellation comes
// from the caller's context.
type Client struct {
	rc    *resty.Client
	token string
	log   *slog.Logger
	obs   Observer
}

type Option func(*Client)

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

func WithObserver(obs Observer) Option {
	return func(c *Client) {
		if obs != nil {
			c.obs = obs
		}
	}
}

// WithHTTPClient swaps the underlying transport (tests use httptest servers).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.rc = resty.NewWithClient(hc)
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		rc:  resty.New(),
		log: slog.Default(),
		obs: noopObserver{},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.rc.SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetRetryCount(0).
		SetLogger(restyLogger{log: c.log})

	return c
}

// WithToken returns a copy bound to a bearer token; the transport is shared.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

type File struct {
	Field       string
	Name        string
	ContentType string
	Reader      io.Reader
}

type Multipart struct {
	Fields map[string]string
	File   *File
}

// Options describe one request. JSON and Multipart are mutually exclusive.
type Options struct {
	Op        string
	JSON      any
	Multipart *Multipart
	Query     url.Values
}

type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r *Response) IsJSON() bool {
	return isJSON(r.Header.Get("Content-Type"))
}

func (r *Response) Decode(out any) error {
	if !r.IsJSON() {
		return fmt.Errorf("decode response: content-type %q is not json", r.Header.Get("Content-Type"))
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) Request(ctx context.Context, method, endpoint string, opts Options) (*Response, error) {
	op := opts.Op
	if op == "" {
		op = method + " " + endpoint
	}

	if opts.JSON != nil && opts.Multipart != nil {
		return nil, errors.New("apiclient: request cannot carry both json and multipart bodies")
	}

	var out *Response

	err := c.obs.ObserveUpstream(op, func() error {
		var err error
		out, err = c.do(ctx, method, endpoint, op, opts)
		return err
	})

	if err != nil {
		c.log.DebugContext(ctx, "upstream call failed", "op", op, "method", method, "endpoint", endpoint, "err", err)
		return nil, err
	}

	c.log.DebugContext(ctx, "upstream call", "op", op, "method", method, "endpoint", endpoint, "status", out.Status)
	return out, nil
}

func (c *Client) do(ctx context.Context, method, endpoint, op string, opts Options) (*Response, error) {
	req := c.rc.R().SetContext(ctx)

	if c.token != "" {
		req.SetAuthToken(c.token)
	}

	if opts.Query != nil {
		req.SetQueryParamsFromValues(opts.Query)
	}

	switch {
	case opts.JSON != nil:
		body, err := json.Marshal(opts.JSON)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", op, err)
		}
		req.SetHeader("Content-Type", "application/json").SetBody(body)

	case opts.Multipart != nil:
		// resty picks the boundary and sets the multipart content type
		req.SetMultipartFormData(opts.Multipart.Fields)
		if f := opts.Multipart.File; f != nil && f.Reader != nil {
			ct := f.ContentType
			if ct == "" {
				ct = "application/octet-stream"
			}
			req.SetMultipartField(f.Field, f.Name, ct, f.Reader)
		}
	}

	resp, err := req.Execute(method, endpoint)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return nil, networkError(op, err)
	}

	out := &Response{
		Status: resp.StatusCode(),
		Header: resp.Header(),
		Body:   resp.Body(),
	}

	if !out.IsJSON() {
		if !resp.IsSuccess() {
			if out.Status == http.StatusUnauthorized && c.token != "" {
				return nil, statusError(op, KindAuthExpired, out.Status, "Session expired. Please log in again.")
			}
			return nil, statusError(op, KindHTTP, out.Status, fmt.Sprintf("HTTP error! status: %d", out.Status))
		}
		return out, nil
	}

	if !resp.IsSuccess() {
		msg := serverMessage(out.Body)
		if msg == "" {
			msg = fmt.Sprintf("API error: %d", out.Status)
		}

		// a 401 only means "expired" when we presented a token
		if out.Status == http.StatusUnauthorized && c.token != "" {
			return nil, statusError(op, KindAuthExpired, out.Status, msg)
		}
		return nil, statusError(op, KindHTTP, out.Status, msg)
	}

	return out, nil
}

func serverMessage(body []byte) string {
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	// error is usually a string, but some gateways nest {code,message}
	if len(payload.Error) > 0 {
		var s string
		if err := json.Unmarshal(payload.Error, &s); err == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}

	return payload.Message
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

type restyLogger struct {
	log *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug(fmt.Sprintf(format, v...), "component", "resty")
}
