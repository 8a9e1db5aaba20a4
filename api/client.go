// Package api is the thin client over the storefront REST API. Every
// request passes a connectivity pre-check and every failure comes back as
// an *apperr.Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront/apperr"
)

// DefaultTimeout bounds connect plus response.
const DefaultTimeout = 5 * time.Second

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Checker    Checker
	Tokens     TokenSource
	HTTPClient *http.Client
	Logger     *slog.Logger
	Now        func() time.Time
}

// Client talks to the storefront API.
type Client struct {
	base    *url.URL
	http    *http.Client
	checker Checker
	tokens  TokenSource
	logger  *slog.Logger
	now     func() time.Time
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	c := &Client{
		base:    base,
		http:    opts.HTTPClient,
		checker: opts.Checker,
		tokens:  opts.Tokens,
		logger:  opts.Logger,
		now:     opts.Now,
	}
	if c.http == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.checker == nil {
		c.checker = AlwaysOnline
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// SetTokenSource installs the source of bearer tokens after construction.
func (c *Client) SetTokenSource(ts TokenSource) { c.tokens = ts }

type request struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   any
}

// do sends req and decodes a 2xx body into out (when non-nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	// request interceptor: fail fast when offline
	if !c.checker.Online(ctx) {
		return apperr.Connectivity(apperr.MsgOffline, "", nil)
	}

	u := c.base.JoinPath(req.path)
	q := u.Query()
	for k, vs := range req.query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("_t", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(b)
	}

	hreq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", req.method, req.path, err)
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")
	for k, vs := range req.header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			hreq.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(hreq)
	if err != nil {
		c.logger.Warn("request failed", "method", req.method, "path", req.path, "error", err)
		return transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return transportError(err)
	}
	c.logger.Debug("request done", "method", req.method, "path", req.path,
		"status", resp.StatusCode, "duration", time.Since(start))

	// response interceptor: normalize error statuses
	if resp.StatusCode >= http.StatusBadRequest {
		e := apperr.HTTP(resp.StatusCode, fieldErrors(raw))
		c.logger.Info("api error response", "method", req.method, "path", req.path,
			"status", e.Status, "message", e.Message)
		return e
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &apperr.Error{Kind: apperr.KindHTTP, Status: resp.StatusCode, Message: apperr.MsgUnexpected, Err: err}
	}
	return nil
}

// transportError maps a failure without a response to the connectivity kind,
// keeping timeouts distinguishable.
func transportError(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return apperr.Connectivity(apperr.MsgTimeout, apperr.CodeTimeout, err)
	}
	return apperr.Connectivity(apperr.MsgNoResponse, apperr.CodeNoResponse, err)
}

// fieldErrors pulls the "errors" map out of an error body. Values may be a
// list of messages or a single message.
func fieldErrors(raw []byte) map[string][]string {
	var body struct {
		Errors map[string]json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Errors) == 0 {
		return nil
	}
	out := make(map[string][]string, len(body.Errors))
	for field, v := range body.Errors {
		var list []string
		if err := json.Unmarshal(v, &list); err == nil {
			out[field] = list
			continue
		}
		var one string
		if err := json.Unmarshal(v, &one); err == nil {
			out[field] = []string{one}
		}
	}
	return out
}
