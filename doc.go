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

// Package resource compiles declarative REST resource controllers into HTTP
// dispatchers.
//
// A Controller describes one resource: which of the nine standard actions
// (Index, Show, Add, Edit, Create, Update, Patch, Delete, DeleteAll) are
// wired, the key type that identifies a member in the path, per-action
// middleware ("plugs"), nested sub-resources, and the version/error/
// not-found policy. Compile turns that description into a single immutable
// dispatch function with fixed route precedence, trailing-slash
// normalization, typed key extraction, and a per-controller error boundary,
// plus introspection entries describing the compiled paths.
//
// Example:
//
//	users := resource.New[int64]().
//	    Index(func(c *resource.Context) (any, error) {
//	        return store.ListUsers(c.Request.Context())
//	    }).
//	    Show(func(c *resource.Context, id int64) (any, error) {
//	        return store.GetUser(c.Request.Context(), id)
//	    }).
//	    Plug(requireAuth, resource.All()...).
//	    OnError(func(c *resource.Context, err error) {
//	        c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
//	    })
//
//	d, err := users.Compile(resource.WithName("users"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	http.Handle("/users/", http.StripPrefix("/users", d))
//
// The key type parameter fixes the path syntax for key-ful actions: int64
// keys match "/%d" segments, uuid.UUID keys match canonical UUIDs, and so
// on. Controllers without key-ful actions can use resource.None.
//
// Compiled dispatchers hold no shared mutable state: the controller value is
// consumed at compile time and each request runs on its own Context.
package resource
