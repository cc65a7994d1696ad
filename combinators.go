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

// routeFunc is one candidate branch in the compiled dispatch chain. It
// reports whether it handled the request; a non-nil error is terminal and is
// resolved by the controller's error boundary.
type routeFunc func(c *Context) (handled bool, err error)

// choose tries each branch in order and stops at the first one that handles
// the request or fails. The order is fixed at compile time; this is what
// makes "/add" win over the key-ful Show pattern.
func choose(routes ...routeFunc) routeFunc {
	if len(routes) == 1 {
		return routes[0]
	}
	return func(c *Context) (bool, error) {
		for _, r := range routes {
			handled, err := r(c)
			if handled || err != nil {
				return handled, err
			}
		}
		return false, nil
	}
}

// methodGuard runs next only for requests with the given HTTP method.
func methodGuard(method string, next routeFunc) routeFunc {
	return func(c *Context) (bool, error) {
		if c.Request.Method != method {
			return false, nil
		}
		return next(c)
	}
}

// runPlugs executes the plug chain in declaration order, then the final
// branch. A plug that writes a response terminates the chain and the request
// counts as handled; a plug error is terminal and goes to the error boundary.
func runPlugs(c *Context, plugs []Plug, final routeFunc) (bool, error) {
	for _, p := range plugs {
		if err := p(c); err != nil {
			return true, err
		}
		if c.Written() {
			return true, nil
		}
	}
	return final(c)
}
