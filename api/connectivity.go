package api

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"
)

// Checker answers "is the device online" before every request.
type Checker interface {
	Online(ctx context.Context) bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) bool

func (f CheckerFunc) Online(ctx context.Context) bool { return f(ctx) }

// AlwaysOnline skips the pre-flight check.
var AlwaysOnline Checker = CheckerFunc(func(context.Context) bool { return true })

// HostChecker treats the device as online when a TCP connection to the API
// host can be opened.
type HostChecker struct {
	Addr    string
	Timeout time.Duration
}

// NewHostChecker derives host:port from the API base URL.
func NewHostChecker(baseURL string, timeout time.Duration) (*HostChecker, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", baseURL)
	}
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HostChecker{Addr: net.JoinHostPort(u.Hostname(), port), Timeout: timeout}, nil
}

func (h *HostChecker) Online(ctx context.Context) bool {
	d := net.Dialer{Timeout: h.Timeout}
	conn, err := d.DialContext(ctx, "tcp", h.Addr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
