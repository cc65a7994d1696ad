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

// DiagnosticEvent is an informational event emitted during compilation or
// dispatch. Collecting them is optional; the dispatcher behaves identically
// whether a handler is installed or not.
type DiagnosticEvent struct {
	Kind    DiagnosticKind
	Message string
	Fields  map[string]any // Structured context
}

// DiagnosticKind categorizes diagnostic events.
type DiagnosticKind string

const (
	// Compile-time diagnostics
	DiagRouteCompiled DiagnosticKind = "route_compiled"
	DiagVersionGate   DiagnosticKind = "version_gate"
	DiagSubMounted    DiagnosticKind = "sub_resource_mounted"

	// Request-time diagnostics
	DiagRecoveredPanic DiagnosticKind = "panic_recovered"
	DiagUnhandledError DiagnosticKind = "unhandled_error"
)

// DiagnosticHandler receives diagnostic events. Implementations may log,
// emit metrics, add trace events, or ignore them.
type DiagnosticHandler interface {
	OnDiagnostic(DiagnosticEvent)
}

// DiagnosticHandlerFunc is a function adapter for DiagnosticHandler.
type DiagnosticHandlerFunc func(DiagnosticEvent)

func (f DiagnosticHandlerFunc) OnDiagnostic(e DiagnosticEvent) {
	f(e)
}
