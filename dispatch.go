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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// Dispatcher is a compiled controller: a single composed dispatch function
// over the routes, plugs, sub-resources, and policies declared on the
// Controller. It is immutable and safe for concurrent use; it holds no
// per-request state.
type Dispatcher struct {
	dispatch routeFunc
	version  string
	onError  ErrorHandler
	renderer Renderer

	obs         ObservabilityRecorder
	diagnostics DiagnosticHandler
	logger      *slog.Logger

	timeouts  *serverTimeouts
	enableH2C bool
}

// Dispatch runs the request through the compiled chain and reports the
// outcome:
//
//   - (false, nil): route-miss, no route (or the version gate) matched and
//     the caller decides what happens next;
//   - (true, nil): handled, including failures resolved by a bound error
//     handler, whose output is the final response;
//   - (true, err): a plug, handler, or renderer failed and no error handler
//     is bound; the failure propagates unmodified.
//
// "Did not handle" and "handled with an error" are deliberately distinct
// outcomes: a miss composes with whatever surrounds this controller, an
// error does not fall through to further routes.
func (d *Dispatcher) Dispatch(w http.ResponseWriter, req *http.Request) (bool, error) {
	return d.dispatchPath(w, req, req.URL.Path)
}

// dispatchPath dispatches with an explicit path remainder. Sub-resource
// forwards enter here with the continuation produced by the parent's match.
func (d *Dispatcher) dispatchPath(w http.ResponseWriter, req *http.Request, path string) (handled bool, err error) {
	if d.obs != nil {
		ctx, state := d.obs.OnRequestStart(req.Context(), req)
		req = req.WithContext(ctx)
		if state != nil {
			rw := &responseWriter{ResponseWriter: w}
			w = rw
			defer func() {
				d.obs.OnRequestEnd(ctx, state, rw, handled, err)
			}()
		}
	}

	c := newContext(w, req, path)

	if d.version != "" {
		// Version gate covers the entire subtree, sub-resources and
		// not-found fallback included. A mismatch is a route-miss.
		if req.Header.Get(VersionHeader) != d.version {
			return false, nil
		}
		c.version = d.version
	}

	return d.run(c)
}

// run executes the dispatch chain inside the controller's error boundary.
// Any failure raised during matching, plug execution, handler execution, or
// rendering (including a recovered panic) is resolved exactly once here.
func (d *Dispatcher) run(c *Context) (handled bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.emit(DiagRecoveredPanic, "panic recovered during dispatch", map[string]any{
				"panic": fmt.Sprint(r), "path": c.Request.URL.Path,
			})
			handled, err = d.boundary(c, fmt.Errorf("%w: %v", ErrHandlerPanic, r))
		}
	}()

	handled, err = d.dispatch(c)
	if err != nil {
		handled, err = d.boundary(c, err)
	}
	return handled, err
}

// boundary resolves a failure: failures escaping a sub-controller pass
// through untouched, everything else goes to the bound error handler. With
// no handler the failure propagates unmodified. After the boundary runs, no
// further route is attempted.
func (d *Dispatcher) boundary(c *Context, err error) (bool, error) {
	var sub *subFailure
	if errors.As(err, &sub) {
		return true, sub.err
	}
	if d.onError != nil {
		d.onError(c, err)
		return true, nil
	}
	return true, err
}

// ServeHTTP adapts the dispatcher to http.Handler: a route-miss becomes a
// 404 and a propagated failure becomes a 500 (unless the handler already
// started a response), logged and reported as a diagnostic.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	rw := &responseWriter{ResponseWriter: w}

	handled, err := d.Dispatch(rw, req)
	switch {
	case err != nil:
		d.logger.Error("unhandled dispatch failure",
			"method", req.Method, "path", req.URL.Path, "error", err)
		d.emit(DiagUnhandledError, "unhandled dispatch failure", map[string]any{
			"method": req.Method, "path": req.URL.Path, "error": err.Error(),
		})
		if !rw.Written() {
			http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	case !handled:
		http.NotFound(rw, req)
	}
}

// emit sends a diagnostic event if a handler is configured.
func (d *Dispatcher) emit(kind DiagnosticKind, msg string, fields map[string]any) {
	if d.diagnostics != nil {
		d.diagnostics.OnDiagnostic(DiagnosticEvent{Kind: kind, Message: msg, Fields: fields})
	}
}
