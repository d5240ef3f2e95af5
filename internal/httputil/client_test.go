// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_SendsUserAgentAndFollowsRedirects(t *testing.T) {
	var gotUA string
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, "done")
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, err := Get(context.Background(), NewClient(time.Second, 0), ts.URL+"/start", "grey-lit-test/1.0")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "done", string(body))
	assert.Equal(t, "grey-lit-test/1.0", gotUA)
}

func TestGet_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	_, err := Get(context.Background(), NewClient(time.Second, 0), ts.URL+"/missing.pdf", "ua")
	require.Error(t, err)

	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
	assert.False(t, IsTimeout(err))
}

func TestDo_ReturnsErrorStatusResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "slow down")
	}))
	defer ts.Close()

	resp, err := Do(context.Background(), NewClient(time.Second, 0), ts.URL, "ua")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "slow down", string(body))

	var serr *StatusError
	require.True(t, errors.As(CheckStatus(resp, ts.URL), &serr))
	assert.Equal(t, http.StatusTooManyRequests, serr.StatusCode)
}

func TestGet_TooManyRedirects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path, http.StatusFound)
	}))
	defer ts.Close()

	_, err := Get(context.Background(), NewClient(time.Second, 2), ts.URL+"/loop", "ua")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped after 2 redirects")
}

func TestGet_ClientTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	_, err := Get(context.Background(), NewClient(50*time.Millisecond, 0), ts.URL, "ua")
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestGet_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Get(ctx, NewClient(time.Minute, 0), ts.URL, "ua")
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestGet_InvalidURL(t *testing.T) {
	_, err := Get(context.Background(), NewClient(0, 0), "://bad", "ua")
	require.Error(t, err)
	assert.False(t, IsTimeout(err))
}

func TestIsTimeout(t *testing.T) {
	assert.False(t, IsTimeout(nil))
	assert.False(t, IsTimeout(errors.New("boom")))
	assert.True(t, IsTimeout(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(0, 0)
	assert.Equal(t, DefaultTimeout, c.Timeout)
	assert.NotNil(t, c.CheckRedirect)
}
