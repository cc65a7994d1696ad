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

// Handler is a value handler for a key-less action. The returned value is
// passed through the dispatcher's renderer (JSON by default); a non-nil error
// is delivered to the error boundary.
type Handler func(c *Context) (any, error)

// KeyHandler is a value handler for a key-ful action. The key is extracted
// from the path, already parsed to the controller's key type.
type KeyHandler[K any] func(c *Context, key K) (any, error)

// RawHandler is a terminal handler for a key-less action: it writes the
// response itself and the renderer is bypassed entirely. Returning Skip
// signals "did not handle"; dispatch falls through to the next route.
type RawHandler func(c *Context) error

// RawKeyHandler is the terminal counterpart of KeyHandler.
type RawKeyHandler[K any] func(c *Context, key K) error

// Plug is middleware that runs between a successful route match and the
// action's handler. Plugs run in declaration order. A plug stops the chain by
// writing a response (the request counts as handled) or by returning a
// non-nil error (delivered to the error boundary).
type Plug func(c *Context) error

// ErrorHandler receives failures raised by plugs, handlers, or the renderer.
// Its output (whatever it writes to the context) is the final response for
// the request; no further route is attempted afterwards.
//
// A context cancellation surfacing as a handler error is delivered here like
// any other failure; handlers that must distinguish it can test the error
// with errors.Is(err, context.Canceled).
type ErrorHandler func(c *Context, err error)

// Renderer converts a value handler's result into a response. The default
// renderer writes the value as a 200 JSON body.
type Renderer func(c *Context, v any) error

// binding is one action's handler slot. Exactly one of the four fields is
// set; the raw-vs-value choice is fixed at binding time, never inferred from
// the runtime value.
type binding[K any] struct {
	value    Handler
	keyValue KeyHandler[K]
	raw      RawHandler
	keyRaw   RawKeyHandler[K]
}

func (b binding[K]) bound() bool {
	return b.value != nil || b.keyValue != nil || b.raw != nil || b.keyRaw != nil
}
