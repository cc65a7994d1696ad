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

// Package introspect collects descriptions of compiled resource controllers
// for documentation and debugging.
//
// The resource compiler writes one ControllerInfo per compilation: the
// (method, template) pairs it bound, whether a not-found fallback exists, the
// version gate, the key token, and any sub-resource forwards. The registry is
// write-once-per-controller and append-only; it is never consulted at request
// time.
//
// Controllers are typically compiled in parallel during application bootstrap,
// so all writes go through a single mutex.
package introspect

import (
	"fmt"
	"strings"
	"sync"
)

// PathEntry is one compiled (method, path template) binding.
type PathEntry struct {
	Method   string
	Template string
}

// Forward describes a sub-resource mount: requests matching From are
// forwarded to a nested dispatcher mounted at Via.
type Forward struct {
	From string
	Via  string
}

// ControllerInfo describes one compiled controller.
type ControllerInfo struct {
	Name     string
	Paths    []PathEntry
	NotFound bool
	Version  string
	Key      string
	Forwards []Forward
}

// Registry accumulates controller descriptions. The zero value is not usable;
// use NewRegistry or the package-level Default.
type Registry struct {
	mu          sync.Mutex
	controllers []*ControllerInfo
}

// Default is the process-wide registry used when no explicit registry is
// configured at compile time.
var Default = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Begin starts recording a new controller and returns its Recorder.
// The controller becomes visible in Controllers immediately; entries appear
// as the compiler records them.
func (r *Registry) Begin(name string) *Recorder {
	info := &ControllerInfo{Name: name}

	r.mu.Lock()
	r.controllers = append(r.controllers, info)
	r.mu.Unlock()

	return &Recorder{reg: r, info: info}
}

// Controllers returns a snapshot of all recorded controllers.
func (r *Registry) Controllers() []ControllerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ControllerInfo, 0, len(r.controllers))
	for _, info := range r.controllers {
		snap := *info
		snap.Paths = append([]PathEntry(nil), info.Paths...)
		snap.Forwards = append([]Forward(nil), info.Forwards...)
		out = append(out, snap)
	}
	return out
}

// Reset removes all recorded controllers. Intended for tests.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.controllers = nil
	r.mu.Unlock()
}

// Render returns a human-readable table of all recorded controllers, one
// line per binding. Useful for startup logging.
func (r *Registry) Render() string {
	var b strings.Builder
	for _, info := range r.Controllers() {
		name := info.Name
		if name == "" {
			name = "(anonymous)"
		}
		fmt.Fprintf(&b, "%s", name)
		if info.Version != "" {
			fmt.Fprintf(&b, " [version %s]", info.Version)
		}
		if info.Key != "" {
			fmt.Fprintf(&b, " [key %s]", info.Key)
		}
		b.WriteByte('\n')

		for _, p := range info.Paths {
			fmt.Fprintf(&b, "  %-7s %s\n", p.Method, p.Template)
		}
		for _, f := range info.Forwards {
			fmt.Fprintf(&b, "  FORWARD %s -> %s\n", f.From, f.Via)
		}
		if info.NotFound {
			fmt.Fprintf(&b, "  *       (not found fallback)\n")
		}
	}
	return b.String()
}

// Recorder records entries for a single controller. Recorders are created by
// Registry.Begin and serialize all writes through the registry's mutex.
type Recorder struct {
	reg  *Registry
	info *ControllerInfo
}

// AddPath records a compiled (method, template) binding.
func (rec *Recorder) AddPath(method, template string) {
	rec.reg.mu.Lock()
	rec.info.Paths = append(rec.info.Paths, PathEntry{Method: method, Template: template})
	rec.reg.mu.Unlock()
}

// SetNotFound records that the controller carries a not-found fallback.
func (rec *Recorder) SetNotFound() {
	rec.reg.mu.Lock()
	rec.info.NotFound = true
	rec.reg.mu.Unlock()
}

// SetVersion records the controller's version gate.
func (rec *Recorder) SetVersion(tag string) {
	rec.reg.mu.Lock()
	rec.info.Version = tag
	rec.reg.mu.Unlock()
}

// SetKey records the placeholder token of the controller's key type.
func (rec *Recorder) SetKey(token string) {
	rec.reg.mu.Lock()
	rec.info.Key = token
	rec.reg.mu.Unlock()
}

// Forward records a sub-resource mount.
func (rec *Recorder) Forward(from, via string) {
	rec.reg.mu.Lock()
	rec.info.Forwards = append(rec.info.Forwards, Forward{From: from, Via: via})
	rec.reg.mu.Unlock()
}
