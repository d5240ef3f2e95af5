// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"
)

const (
	// DefaultTimeout bounds a request when the configuration leaves it unset.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRedirects is the redirect limit used when none is configured.
	DefaultMaxRedirects = 10
)

// StatusError reports a response whose status code is outside 2xx.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// NewClient returns an http.Client bounded by timeout that follows at most
// maxRedirects redirects. Zero values select the defaults.
func NewClient(timeout time.Duration, maxRedirects int) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

// Do issues a GET for rawURL carrying only the given User-Agent header and
// returns the response whatever its status. The request is bound to ctx.
func Do(ctx context.Context, client *http.Client, rawURL, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	return resp, nil
}

// CheckStatus returns a *StatusError when resp is outside 2xx.
func CheckStatus(resp *http.Response, rawURL string) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	return nil
}

// Get is Do for callers that only want a successful body. A non-2xx
// response is closed and reported as a *StatusError; on success the caller
// owns the response body.
func Get(ctx context.Context, client *http.Client, rawURL, userAgent string) (*http.Response, error) {
	resp, err := Do(ctx, client, rawURL, userAgent)
	if err != nil {
		return nil, err
	}
	if err := CheckStatus(resp, rawURL); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// IsTimeout reports whether err was caused by a request or connection
// deadline: the client timeout, a context deadline, or a net.Error that
// says it timed out.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
