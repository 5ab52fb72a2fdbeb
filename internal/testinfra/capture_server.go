// Agenda - Local Job and Task Persistence Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agenda

package testinfra

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Capture is one recorded request.
type Capture struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
}

// CaptureServer records incoming requests and answers with Status.
type CaptureServer struct {
	Server *httptest.Server

	status   atomic.Int32
	mu       sync.Mutex
	captures []Capture
}

// NewCaptureServer starts a capture server answering 200 until SetStatus
// says otherwise. It closes on test cleanup.
func NewCaptureServer(t testing.TB) *CaptureServer {
	t.Helper()

	cs := &CaptureServer{}
	cs.status.Store(http.StatusOK)
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()

		cs.mu.Lock()
		cs.captures = append(cs.captures, Capture{
			Method:  r.Method,
			Path:    r.URL.Path,
			Headers: r.Header.Clone(),
			Body:    body,
		})
		cs.mu.Unlock()

		w.WriteHeader(int(cs.status.Load()))
	}))
	t.Cleanup(cs.Server.Close)
	return cs
}

// URL returns the server base URL.
func (c *CaptureServer) URL() string {
	return c.Server.URL
}

// SetStatus changes the status code returned from now on.
func (c *CaptureServer) SetStatus(code int) {
	c.status.Store(int32(code))
}

// Captures returns a copy of every recorded request.
func (c *CaptureServer) Captures() []Capture {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Capture, len(c.captures))
	copy(out, c.captures)
	return out
}

// WaitForCaptures polls until at least n requests arrived or timeout passes.
func (c *CaptureServer) WaitForCaptures(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		count := len(c.captures)
		c.mu.Unlock()
		if count >= n {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}
