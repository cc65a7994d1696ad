// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resource

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// responseWriter wraps http.ResponseWriter to capture the status code and to
// prevent "superfluous response.WriteHeader call" errors. The dispatcher uses
// Written() to detect plugs and raw handlers that terminated the request.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	size       int64
	written    bool
}

// WriteHeader captures the status code and suppresses duplicate calls.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.ResponseWriter.WriteHeader(code)
		rw.written = true
	}
}

// Write captures the response size and marks the response as written.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.written = true
	}
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)
	return n, err
}

// StatusCode returns the HTTP status code, defaulting to 200.
func (rw *responseWriter) StatusCode() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}
	return rw.statusCode
}

// Size returns the number of response body bytes written so far.
func (rw *responseWriter) Size() int64 {
	return rw.size
}

// Written reports whether headers or body have been written.
func (rw *responseWriter) Written() bool {
	return rw.written
}

// Flush implements http.Flusher when the underlying writer supports it.
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Context carries a single request through the compiled dispatch chain.
//
// A fresh Context is created per request and per controller; sub-resource
// dispatchers receive their own. It is not safe for use after the request
// completes and must not be retained by handlers.
type Context struct {
	// Request is the inbound request. Its URL path may have been rewritten
	// once by trailing-slash normalization before plugs run.
	Request *http.Request

	// Response is the wrapped response writer.
	Response http.ResponseWriter

	// routePath is the portion of the path this controller still has to
	// match. For a root controller it is the full request path; for a
	// sub-resource it is the continuation handed down by the parent.
	routePath string

	// version is the tag matched by the controller's version gate, if any.
	version string
}

// newContext builds a Context for one dispatch pass.
func newContext(w http.ResponseWriter, req *http.Request, routePath string) *Context {
	return &Context{
		Request:   req,
		Response:  &responseWriter{ResponseWriter: w},
		routePath: routePath,
	}
}

// RoutePath returns the path remainder this controller is matching against.
// It differs from Request.URL.Path when the controller is mounted below a
// prefix or reached through a sub-resource forward.
func (c *Context) RoutePath() string {
	return c.routePath
}

// Version returns the version tag the request matched, or "" when the
// controller is not version-gated.
func (c *Context) Version() string {
	return c.version
}

// Written reports whether a response has been started.
func (c *Context) Written() bool {
	if rw, ok := c.Response.(*responseWriter); ok {
		return rw.Written()
	}
	return false
}

// Status writes the status code with no body.
func (c *Context) Status(code int) {
	c.Response.WriteHeader(code)
}

// Header sets a response header.
func (c *Context) Header(key, value string) {
	c.Response.Header().Set(key, value)
}

// JSON writes obj as a JSON response with the given status code.
//
// The body is encoded to a buffer first so an encoding failure never leaves a
// half-written response behind.
func (c *Context) JSON(code int, obj any) error {
	if c.Response == nil {
		return ErrContextResponseNil
	}

	var buf strings.Builder
	buf.Grow(256)
	if err := json.NewEncoder(&buf).Encode(obj); err != nil {
		return fmt.Errorf("JSON encoding failed for type %T: %w", obj, err)
	}

	c.Response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.Response.WriteHeader(code)
	_, err := c.Response.Write([]byte(buf.String()))
	return err
}

// String writes a plain text response with the given status code.
func (c *Context) String(code int, value string) error {
	if c.Response == nil {
		return ErrContextResponseNil
	}

	c.Response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Response.WriteHeader(code)
	_, err := c.Response.Write([]byte(value))
	return err
}

// Stringf writes a formatted plain text response.
func (c *Context) Stringf(code int, format string, values ...any) error {
	return c.String(code, fmt.Sprintf(format, values...))
}

// NoContent writes a 204 response.
func (c *Context) NoContent() {
	c.Status(http.StatusNoContent)
}

// statusCode returns the response status, defaulting to 200.
func (c *Context) statusCode() int {
	if rw, ok := c.Response.(*responseWriter); ok {
		return rw.StatusCode()
	}
	return http.StatusOK
}
