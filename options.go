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
	"io"
	"log/slog"
	"net/http"
	"time"

	"rivaas.dev/resource/introspect"
)

// noopLogger is a singleton no-op logger used when no logger is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the singleton no-op logger.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// CompileOption configures infrastructure concerns of a compiled dispatcher:
// introspection, rendering, diagnostics, observability, logging, and serving.
// Routing behavior itself is declared on the Controller.
type CompileOption func(*compileConfig)

// compileConfig collects resolved compile options.
type compileConfig struct {
	name        string
	registry    *introspect.Registry
	renderer    Renderer
	diagnostics DiagnosticHandler
	obs         ObservabilityRecorder
	logger      *slog.Logger
	timeouts    *serverTimeouts
	enableH2C   bool
}

func newCompileConfig(opts []CompileOption) *compileConfig {
	cfg := &compileConfig{
		registry: introspect.Default,
		renderer: defaultRenderer,
		logger:   noopLogger,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// defaultRenderer writes a value handler's result as a 200 JSON body.
func defaultRenderer(c *Context, v any) error {
	return c.JSON(http.StatusOK, v)
}

// WithName names the controller in the introspection registry. Controllers
// compiled without a name are recorded as anonymous.
func WithName(name string) CompileOption {
	return func(cfg *compileConfig) {
		cfg.name = name
	}
}

// WithRegistry directs introspection entries to a specific registry instead
// of the process-wide introspect.Default. Useful for tests and for embedding
// multiple applications in one process.
func WithRegistry(reg *introspect.Registry) CompileOption {
	return func(cfg *compileConfig) {
		if reg != nil {
			cfg.registry = reg
		}
	}
}

// WithRenderer replaces the response conversion applied to value handler
// results. The default renders a 200 JSON body.
//
// Example:
//
//	resource.WithRenderer(func(c *resource.Context, v any) error {
//	    return c.JSON(http.StatusCreated, v)
//	})
func WithRenderer(r Renderer) CompileOption {
	return func(cfg *compileConfig) {
		if r != nil {
			cfg.renderer = r
		}
	}
}

// WithDiagnostics sets a diagnostic handler. Diagnostic events are optional;
// the dispatcher behaves identically whether they are collected or not.
//
// Example with logging:
//
//	handler := resource.DiagnosticHandlerFunc(func(e resource.DiagnosticEvent) {
//	    slog.Warn(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	d := ct.MustCompile(resource.WithDiagnostics(handler))
func WithDiagnostics(handler DiagnosticHandler) CompileOption {
	return func(cfg *compileConfig) {
		cfg.diagnostics = handler
	}
}

// WithObservability wraps the compiled dispatch in an observability recorder
// (see NewOTelRecorder for the OpenTelemetry-backed implementation).
func WithObservability(rec ObservabilityRecorder) CompileOption {
	return func(cfg *compileConfig) {
		cfg.obs = rec
	}
}

// WithLogger sets the slog logger used by ServeHTTP's failure path. The
// default discards everything.
func WithLogger(logger *slog.Logger) CompileOption {
	return func(cfg *compileConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithServerTimeouts configures the HTTP server timeouts used by Serve and
// ServeTLS. These guard against slowloris-style resource exhaustion.
//
// Defaults (if not set):
//
//	ReadHeaderTimeout: 5s
//	ReadTimeout:       15s
//	WriteTimeout:      30s
//	IdleTimeout:       60s
func WithServerTimeouts(readHeader, read, write, idle time.Duration) CompileOption {
	return func(cfg *compileConfig) {
		cfg.timeouts = &serverTimeouts{
			readHeader: readHeader,
			read:       read,
			write:      write,
			idle:       idle,
		}
	}
}

// WithH2C enables HTTP/2 cleartext for Serve. Only use in development or
// behind a trusted load balancer; never on a public listener without TLS.
func WithH2C(enable bool) CompileOption {
	return func(cfg *compileConfig) {
		cfg.enableH2C = enable
	}
}
