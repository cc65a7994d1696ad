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

// Controller is the accumulating description of one REST resource: which of
// the nine actions are wired, the key type K, per-action plugs, sub-resource
// mounts, and the error/not-found/version policy.
//
// Controller is a value type. Every mutator returns a new value and never
// touches shared state, so a partially configured controller can be reused as
// a template:
//
//	base := resource.New[int64]().Plug(auth, resource.All()...)
//	users := base.Index(listUsers).Show(showUser)
//	posts := base.Index(listPosts)
//
// A controller does no routing itself; Compile consumes the final value and
// produces the immutable Dispatcher.
type Controller[K any] struct {
	bindings [numActions]binding[K]
	notFound RawHandler
	onError  ErrorHandler

	// plugs are stored newest-first per action; the compiler reverses each
	// list so plugs execute in declaration order.
	plugs [numActions][]Plug

	subs     []subMount[K]
	version  string
	foldCase bool
}

// subMount is one sub-resource binding: requests matching /<key><path> are
// delegated to the dispatcher produced by mount(key).
type subMount[K any] struct {
	path  string
	mount func(key K) *Dispatcher
}

// New returns an empty controller for resources keyed by K.
//
// K must be one of: bool, Char, string, int32, int64, uint64, float64, or
// uuid.UUID, or None for controllers that bind only key-less actions. The
// key type decides the path segment syntax for key-ful actions ("/%d" for
// int64 keys, "/%O" for UUIDs, and so on) and is validated by Compile.
func New[K any]() Controller[K] {
	return Controller[K]{}
}

// Index binds the Index action (GET /) to a value handler.
// Binding the same action twice keeps only the last handler.
func (ct Controller[K]) Index(h Handler) Controller[K] {
	ct.bindings[ActionIndex] = binding[K]{value: h}
	return ct
}

// IndexRaw binds the Index action to a terminal handler that writes the
// response itself.
func (ct Controller[K]) IndexRaw(h RawHandler) Controller[K] {
	ct.bindings[ActionIndex] = binding[K]{raw: h}
	return ct
}

// Show binds the Show action (GET /<key>) to a value handler.
func (ct Controller[K]) Show(h KeyHandler[K]) Controller[K] {
	ct.bindings[ActionShow] = binding[K]{keyValue: h}
	return ct
}

// ShowRaw binds the Show action to a terminal handler.
func (ct Controller[K]) ShowRaw(h RawKeyHandler[K]) Controller[K] {
	ct.bindings[ActionShow] = binding[K]{keyRaw: h}
	return ct
}

// Add binds the Add action (GET /add) to a value handler.
func (ct Controller[K]) Add(h Handler) Controller[K] {
	ct.bindings[ActionAdd] = binding[K]{value: h}
	return ct
}

// AddRaw binds the Add action to a terminal handler.
func (ct Controller[K]) AddRaw(h RawHandler) Controller[K] {
	ct.bindings[ActionAdd] = binding[K]{raw: h}
	return ct
}

// Edit binds the Edit action (GET /<key>/edit) to a value handler.
func (ct Controller[K]) Edit(h KeyHandler[K]) Controller[K] {
	ct.bindings[ActionEdit] = binding[K]{keyValue: h}
	return ct
}

// EditRaw binds the Edit action to a terminal handler.
func (ct Controller[K]) EditRaw(h RawKeyHandler[K]) Controller[K] {
	ct.bindings[ActionEdit] = binding[K]{keyRaw: h}
	return ct
}

// Create binds the Create action (POST /) to a value handler.
func (ct Controller[K]) Create(h Handler) Controller[K] {
	ct.bindings[ActionCreate] = binding[K]{value: h}
	return ct
}

// CreateRaw binds the Create action to a terminal handler.
func (ct Controller[K]) CreateRaw(h RawHandler) Controller[K] {
	ct.bindings[ActionCreate] = binding[K]{raw: h}
	return ct
}

// Update binds the Update action to a value handler. Update is reachable via
// both PUT /<key> and POST /<key>.
func (ct Controller[K]) Update(h KeyHandler[K]) Controller[K] {
	ct.bindings[ActionUpdate] = binding[K]{keyValue: h}
	return ct
}

// UpdateRaw binds the Update action to a terminal handler.
func (ct Controller[K]) UpdateRaw(h RawKeyHandler[K]) Controller[K] {
	ct.bindings[ActionUpdate] = binding[K]{keyRaw: h}
	return ct
}

// Patch binds the Patch action (PATCH /<key>) to a value handler.
func (ct Controller[K]) Patch(h KeyHandler[K]) Controller[K] {
	ct.bindings[ActionPatch] = binding[K]{keyValue: h}
	return ct
}

// PatchRaw binds the Patch action to a terminal handler.
func (ct Controller[K]) PatchRaw(h RawKeyHandler[K]) Controller[K] {
	ct.bindings[ActionPatch] = binding[K]{keyRaw: h}
	return ct
}

// Delete binds the Delete action (DELETE /<key>) to a value handler.
func (ct Controller[K]) Delete(h KeyHandler[K]) Controller[K] {
	ct.bindings[ActionDelete] = binding[K]{keyValue: h}
	return ct
}

// DeleteRaw binds the Delete action to a terminal handler.
func (ct Controller[K]) DeleteRaw(h RawKeyHandler[K]) Controller[K] {
	ct.bindings[ActionDelete] = binding[K]{keyRaw: h}
	return ct
}

// DeleteAll binds the DeleteAll action (DELETE /) to a value handler.
func (ct Controller[K]) DeleteAll(h Handler) Controller[K] {
	ct.bindings[ActionDeleteAll] = binding[K]{value: h}
	return ct
}

// DeleteAllRaw binds the DeleteAll action to a terminal handler.
func (ct Controller[K]) DeleteAllRaw(h RawHandler) Controller[K] {
	ct.bindings[ActionDeleteAll] = binding[K]{raw: h}
	return ct
}

// NotFound sets the terminal fallback tried after every route missed.
// Returning Skip from the fallback leaves the request unhandled.
func (ct Controller[K]) NotFound(h RawHandler) Controller[K] {
	ct.notFound = h
	return ct
}

// OnError sets the error handler for the controller's error boundary.
//
// Without an error handler, failures propagate unmodified out of Dispatch.
// Sub-resources carry their own boundary and never inherit the parent's
// handler.
func (ct Controller[K]) OnError(h ErrorHandler) Controller[K] {
	ct.onError = h
	return ct
}

// Version gates the whole compiled subtree (sub-resources and not-found
// fallback included) on the request's X-API-Version header equaling tag
// exactly. A mismatch is a route-miss, not an error.
func (ct Controller[K]) Version(tag string) Controller[K] {
	ct.version = tag
	return ct
}

// CaseInsensitive makes literal path segments match regardless of case.
// Key segments are unaffected.
func (ct Controller[K]) CaseInsensitive() Controller[K] {
	ct.foldCase = true
	return ct
}

// Sub mounts a nested dispatcher under /<key><path>. The mount function
// receives the extracted key and returns the dispatcher for that member's
// sub-resource; the remaining path is delegated to it.
//
//	comments := func(postID int64) *resource.Dispatcher {
//	    return resource.New[int64]().
//	        Index(listComments(postID)).
//	        MustCompile()
//	}
//	posts = posts.Sub("/comments", comments)
//
// The path must start with '/'. Mounting a sub-resource requires a supported
// key type; both are validated by Compile.
func (ct Controller[K]) Sub(path string, mount func(key K) *Dispatcher) Controller[K] {
	subs := make([]subMount[K], len(ct.subs), len(ct.subs)+1)
	copy(subs, ct.subs)
	ct.subs = append(subs, subMount[K]{path: path, mount: mount})
	return ct
}

// Plug inserts middleware before the handlers of the listed actions. Plugs
// declared first run first. Actions without a bound handler simply never run
// their plugs.
//
// Use All() for the standard eight-action set (Patch excluded) or
// AllWithPatch() to cover Patch too.
func (ct Controller[K]) Plug(p Plug, actions ...Action) Controller[K] {
	for _, a := range actions {
		if a >= numActions {
			continue
		}
		// Prepend into a fresh slice so sibling controller values derived
		// from the same base never observe this declaration.
		next := make([]Plug, 0, len(ct.plugs[a])+1)
		next = append(next, p)
		next = append(next, ct.plugs[a]...)
		ct.plugs[a] = next
	}
	return ct
}
