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
	"net/http"
	"slices"

	"rivaas.dev/resource/match"
)

// VersionHeader is the request header inspected by version-gated controllers.
const VersionHeader = "X-API-Version"

// methodGroups fixes which actions each HTTP method dispatches to, in
// precedence order. Within a group the first matching route wins, so Add
// ("/add") is tried before Show ("/%s") even when the key type would happily
// parse "add".
var methodGroups = []struct {
	method  string
	actions []Action
}{
	{http.MethodGet, []Action{ActionAdd, ActionIndex, ActionEdit, ActionShow}},
	{http.MethodPost, []Action{ActionCreate, ActionUpdate}},
	{http.MethodPatch, []Action{ActionPatch}},
	{http.MethodPut, []Action{ActionUpdate}},
	{http.MethodDelete, []Action{ActionDeleteAll, ActionDelete}},
}

// canonicalMethod is the method an action is reported under in the
// introspection registry. Update compiles into both POST and PUT groups but
// is recorded once, under PUT.
func canonicalMethod(a Action) string {
	switch a {
	case ActionIndex, ActionShow, ActionAdd, ActionEdit:
		return http.MethodGet
	case ActionCreate:
		return http.MethodPost
	case ActionUpdate:
		return http.MethodPut
	case ActionPatch:
		return http.MethodPatch
	default:
		return http.MethodDelete
	}
}

// actionPattern returns the path template for an action given the key token.
func actionPattern(a Action, token string) string {
	switch a {
	case ActionAdd:
		return "/add"
	case ActionEdit:
		return "/" + token + "/edit"
	case ActionShow, ActionUpdate, ActionPatch, ActionDelete:
		return "/" + token
	default:
		return "/"
	}
}

// Compile consumes the controller and produces its immutable Dispatcher,
// recording the compiled paths in the introspection registry.
//
// Configuration errors (an unsupported key type used by a key-ful action, a
// sub-resource path not starting with '/', a sub-resource mounted without key
// support) fail Compile immediately and never reach the error handler.
//
// The controller value is not mutated and may be compiled again (each call
// records a fresh introspection entry).
func (ct Controller[K]) Compile(opts ...CompileOption) (*Dispatcher, error) {
	cfg := newCompileConfig(opts)

	needKey := false
	for a := Action(0); a < numActions; a++ {
		if a.Keyed() && ct.bindings[a].bound() {
			needKey = true
			break
		}
	}

	kind := match.KindInvalid
	if needKey || len(ct.subs) > 0 {
		k, err := keyKindFor[K]()
		if err != nil {
			if !needKey {
				// Only sub-resources demanded the key: name the real problem.
				return nil, fmt.Errorf("%w: %v", ErrSubWithoutKey, err)
			}
			return nil, err
		}
		kind = k
	}

	for _, s := range ct.subs {
		if s.path == "" || s.path[0] != '/' {
			return nil, fmt.Errorf("%w: %q", ErrSubPathMalformed, s.path)
		}
	}

	d := &Dispatcher{
		version:     ct.version,
		onError:     ct.onError,
		renderer:    cfg.renderer,
		obs:         cfg.obs,
		diagnostics: cfg.diagnostics,
		logger:      cfg.logger,
		timeouts:    cfg.timeouts,
		enableH2C:   cfg.enableH2C,
	}

	var routes []routeFunc
	for _, g := range methodGroups {
		var group []routeFunc
		for _, a := range g.actions {
			if !ct.bindings[a].bound() {
				continue
			}
			group = append(group, ct.buildRoute(a, kind, d))
		}
		if len(group) > 0 {
			routes = append(routes, methodGuard(g.method, choose(group...)))
		}
	}

	for _, s := range ct.subs {
		routes = append(routes, buildSub(s, kind, ct.foldCase))
	}

	if ct.notFound != nil {
		nf := ct.notFound
		routes = append(routes, func(c *Context) (bool, error) {
			return invokeRaw(c, nf)
		})
	}

	if len(routes) > 0 {
		d.dispatch = choose(routes...)
	} else {
		d.dispatch = func(*Context) (bool, error) { return false, nil }
	}

	ct.record(cfg, d, kind)

	return d, nil
}

// MustCompile is like Compile but panics on configuration errors. Intended
// for static controller definitions wired at startup.
func (ct Controller[K]) MustCompile(opts ...CompileOption) *Dispatcher {
	d, err := ct.Compile(opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// record writes the compiled shape to the introspection registry and emits
// compile-time diagnostics.
func (ct Controller[K]) record(cfg *compileConfig, d *Dispatcher, kind match.Kind) {
	rec := cfg.registry.Begin(cfg.name)

	for a := Action(0); a < numActions; a++ {
		if !ct.bindings[a].bound() {
			continue
		}
		pattern := actionPattern(a, kind.Token())
		rec.AddPath(canonicalMethod(a), pattern)
		d.emit(DiagRouteCompiled, "route compiled", map[string]any{
			"action": a.String(), "method": canonicalMethod(a), "template": pattern,
		})
	}

	if kind != match.KindInvalid {
		rec.SetKey(kind.Token())
	}
	if ct.version != "" {
		rec.SetVersion(ct.version)
		d.emit(DiagVersionGate, "subtree gated on version header", map[string]any{
			"header": VersionHeader, "version": ct.version,
		})
	}
	for _, s := range ct.subs {
		from := "/" + kind.Token() + s.path
		rec.Forward(from, s.path)
		d.emit(DiagSubMounted, "sub-resource mounted", map[string]any{"from": from})
	}
	if ct.notFound != nil {
		rec.SetNotFound()
	}
}

// buildRoute compiles one bound action into a route branch: path match, plug
// chain in declaration order, then the handler.
func (ct Controller[K]) buildRoute(a Action, kind match.Kind, d *Dispatcher) routeFunc {
	b := ct.bindings[a]

	// Plugs accumulate newest-first in the registry; execution order is
	// declaration order.
	plugs := slices.Clone(ct.plugs[a])
	slices.Reverse(plugs)

	final := func(c *Context) (bool, error) {
		if b.raw != nil {
			return invokeRaw(c, b.raw)
		}
		return invokeValue(c, d.renderer, b.value)
	}

	switch {
	case a.Keyed():
		tpl := match.MustParse(actionPattern(a, kind.Token()))
		return func(c *Context) (bool, error) {
			params, ok := tpl.Match(c.routePath, ct.foldCase)
			if !ok {
				return false, nil
			}
			key := keyFromParam[K](kind, params[0])
			return runPlugs(c, plugs, func(c *Context) (bool, error) {
				if b.keyRaw != nil {
					return invokeRaw(c, func(c *Context) error { return b.keyRaw(c, key) })
				}
				return invokeValue(c, d.renderer, func(c *Context) (any, error) { return b.keyValue(c, key) })
			})
		}

	case a == ActionAdd:
		tpl := match.MustParse("/add")
		return func(c *Context) (bool, error) {
			if _, ok := tpl.Match(c.routePath, ct.foldCase); !ok {
				return false, nil
			}
			return runPlugs(c, plugs, final)
		}

	default:
		// Bare collection path (Index, Create, DeleteAll) with trailing-slash
		// normalization: a bare continuation (no trailing slash, no deeper
		// segment) is rewritten to "/" exactly once, and the request URL path
		// gains the slash in place. Paths with a deeper segment are left
		// alone. The rewrite happens before plugs run, so plugs and handlers
		// observe the slashed form of whatever path the dispatcher was
		// handed (the continuation for a sub-resource, the stripped path
		// under http.StripPrefix).
		return func(c *Context) (bool, error) {
			if c.routePath == "" {
				c.routePath = "/"
				c.Request.URL.Path += "/"
			}
			if c.routePath != "/" {
				return false, nil
			}
			return runPlugs(c, plugs, final)
		}
	}
}

// buildSub compiles one sub-resource mount: match /<key><path>, build the
// member's dispatcher from the extracted key, and delegate the continuation.
func buildSub[K any](s subMount[K], kind match.Kind, fold bool) routeFunc {
	tpl := match.MustParse("/" + kind.Token() + s.path)

	return func(c *Context) (bool, error) {
		params, rest, ok := tpl.MatchPrefix(c.routePath, fold)
		if !ok {
			return false, nil
		}

		sub := s.mount(keyFromParam[K](kind, params[0]))
		if sub == nil {
			return true, fmt.Errorf("%w: %s", ErrNilSubDispatcher, s.path)
		}

		handled, err := sub.dispatchPath(c.Response, c.Request, rest)
		if err != nil {
			// The sub-controller's own boundary already ran; the parent's
			// error handler must not see this failure.
			return handled, &subFailure{err: err}
		}
		return handled, nil
	}
}

// invokeRaw runs a terminal handler. Skip means the route did not handle the
// request and dispatch falls through.
func invokeRaw(c *Context, h RawHandler) (bool, error) {
	err := h(c)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, Skip):
		return false, nil
	default:
		return true, err
	}
}

// invokeValue runs a value handler and feeds its result to the renderer.
func invokeValue(c *Context, render Renderer, h Handler) (bool, error) {
	v, err := h(c)
	if err != nil {
		return true, err
	}
	if err := render(c, v); err != nil {
		return true, err
	}
	return true, nil
}

// subFailure marks a failure that escaped a sub-controller's boundary, so the
// parent boundary propagates it instead of handling it again.
type subFailure struct {
	err error
}

func (e *subFailure) Error() string { return e.err.Error() }
func (e *subFailure) Unwrap() error { return e.err }
