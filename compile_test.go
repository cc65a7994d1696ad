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

//go:build !integration

package resource

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/resource/introspect"
)

// perform runs one request through the dispatcher's http.Handler adapter.
func perform(d *Dispatcher, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

// testRegistry compiles with a private introspection registry so tests do
// not pollute the process-wide default.
func testRegistry() CompileOption {
	return WithRegistry(introspect.NewRegistry())
}

func echoAction(name string) Handler {
	return func(c *Context) (any, error) {
		return map[string]string{"action": name}, nil
	}
}

func TestDispatchPrecedence(t *testing.T) {
	var got string

	d, err := New[string]().
		Index(func(c *Context) (any, error) {
			got = "index"
			return nil, nil
		}).
		Add(func(c *Context) (any, error) {
			got = "add"
			return nil, nil
		}).
		Show(func(c *Context, key string) (any, error) {
			got = "show:" + key
			return nil, nil
		}).
		Edit(func(c *Context, key string) (any, error) {
			got = "edit:" + key
			return nil, nil
		}).
		Compile(testRegistry())
	require.NoError(t, err)

	tests := []struct {
		path string
		want string
	}{
		// "add" parses as a string key, but the Add route is tried first.
		{"/add", "add"},
		{"/", "index"},
		{"/alice/edit", "edit:alice"},
		{"/alice", "show:alice"},
	}

	for _, tt := range tests {
		got = ""
		rec := perform(d, http.MethodGet, tt.path)
		assert.Equal(t, http.StatusOK, rec.Code, "GET %s", tt.path)
		assert.Equal(t, tt.want, got, "GET %s", tt.path)
	}
}

func TestTrailingSlashNormalization(t *testing.T) {
	var sawURLPath string
	var sawRoutePath string

	d := New[None]().
		Index(func(c *Context) (any, error) {
			return "ok", nil
		}).
		Plug(func(c *Context) error {
			sawURLPath = c.Request.URL.Path
			sawRoutePath = c.RoutePath()
			return nil
		}, ActionIndex).
		MustCompile(testRegistry())

	t.Run("bare path without slash is rewritten before plugs", func(t *testing.T) {
		// StripPrefix hands the dispatcher the stripped path "", which
		// normalizes to "/". The stripped-off prefix is the mux's business;
		// plugs observe the slashed form of the path the dispatcher received.
		sawURLPath, sawRoutePath = "", ""
		rec := httptest.NewRecorder()
		h := http.StripPrefix("/users", d)
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/", sawURLPath, "plug must observe the normalized URL path")
		assert.Equal(t, "/", sawRoutePath)
	})

	t.Run("already-slashed path is left alone", func(t *testing.T) {
		sawURLPath, sawRoutePath = "", ""
		rec := httptest.NewRecorder()
		h := http.StripPrefix("/users", d)
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/", sawURLPath)
	})

	t.Run("does not fire for nested paths", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h := http.StripPrefix("/users", d)
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/42", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestBindingOverwrite(t *testing.T) {
	first := false
	second := false

	d := New[None]().
		Index(func(c *Context) (any, error) {
			first = true
			return nil, nil
		}).
		Index(func(c *Context) (any, error) {
			second = true
			return nil, nil
		}).
		MustCompile(testRegistry())

	perform(d, http.MethodGet, "/")

	assert.False(t, first, "overwritten handler must not run")
	assert.True(t, second)
}

func TestMethodGroups(t *testing.T) {
	var got string
	mark := func(name string) Handler {
		return func(c *Context) (any, error) {
			got = name
			return nil, nil
		}
	}
	markKey := func(name string) KeyHandler[int64] {
		return func(c *Context, key int64) (any, error) {
			got = name
			return nil, nil
		}
	}

	d := New[int64]().
		Index(mark("index")).
		Create(mark("create")).
		DeleteAll(mark("delete_all")).
		Show(markKey("show")).
		Update(markKey("update")).
		Patch(markKey("patch")).
		Delete(markKey("delete")).
		MustCompile(testRegistry())

	tests := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/", "index"},
		{http.MethodPost, "/", "create"},
		{http.MethodDelete, "/", "delete_all"},
		{http.MethodGet, "/7", "show"},
		{http.MethodPut, "/7", "update"},
		{http.MethodPost, "/7", "update"}, // Update is reachable via POST too
		{http.MethodPatch, "/7", "patch"},
		{http.MethodDelete, "/7", "delete"},
	}

	for _, tt := range tests {
		got = ""
		rec := perform(d, tt.method, tt.path)
		assert.Equal(t, http.StatusOK, rec.Code, "%s %s", tt.method, tt.path)
		assert.Equal(t, tt.want, got, "%s %s", tt.method, tt.path)
	}
}

func TestTypedKeyExtraction(t *testing.T) {
	t.Run("int64", func(t *testing.T) {
		var got int64
		d := New[int64]().
			Show(func(c *Context, key int64) (any, error) {
				got = key
				return nil, nil
			}).
			MustCompile(testRegistry())

		assert.Equal(t, http.StatusOK, perform(d, http.MethodGet, "/42").Code)
		assert.Equal(t, int64(42), got)

		assert.Equal(t, http.StatusNotFound, perform(d, http.MethodGet, "/abc").Code)
		assert.Equal(t, http.StatusNotFound, perform(d, http.MethodGet, "/4.2").Code)
	})

	t.Run("uuid", func(t *testing.T) {
		want := uuid.MustParse("0530b425-5f0b-47f8-9450-533348fc8e30")

		var got uuid.UUID
		d := New[uuid.UUID]().
			Show(func(c *Context, key uuid.UUID) (any, error) {
				got = key
				return nil, nil
			}).
			MustCompile(testRegistry())

		assert.Equal(t, http.StatusOK, perform(d, http.MethodGet, "/"+want.String()).Code)
		assert.Equal(t, want, got)

		assert.Equal(t, http.StatusNotFound, perform(d, http.MethodGet, "/not-a-uuid").Code)
	})

	t.Run("bool", func(t *testing.T) {
		var got bool
		d := New[bool]().
			Show(func(c *Context, key bool) (any, error) {
				got = key
				return nil, nil
			}).
			MustCompile(testRegistry())

		assert.Equal(t, http.StatusOK, perform(d, http.MethodGet, "/true").Code)
		assert.True(t, got)

		assert.Equal(t, http.StatusNotFound, perform(d, http.MethodGet, "/yes").Code)
	})

	t.Run("char", func(t *testing.T) {
		var got Char
		d := New[Char]().
			Show(func(c *Context, key Char) (any, error) {
				got = key
				return nil, nil
			}).
			MustCompile(testRegistry())

		assert.Equal(t, http.StatusOK, perform(d, http.MethodGet, "/x").Code)
		assert.Equal(t, Char('x'), got)

		assert.Equal(t, http.StatusNotFound, perform(d, http.MethodGet, "/xy").Code)
	})
}

func TestPlugOrderingAndScoping(t *testing.T) {
	var trace []string
	plug := func(name string) Plug {
		return func(c *Context) error {
			trace = append(trace, name)
			return nil
		}
	}

	d := New[int64]().
		Index(func(c *Context) (any, error) {
			trace = append(trace, "index")
			return nil, nil
		}).
		Show(func(c *Context, key int64) (any, error) {
			trace = append(trace, "show")
			return nil, nil
		}).
		Create(func(c *Context) (any, error) {
			trace = append(trace, "create")
			return nil, nil
		}).
		Plug(plug("first"), ActionIndex, ActionShow).
		Plug(plug("second"), ActionIndex, ActionShow).
		MustCompile(testRegistry())

	t.Run("declaration order before the handler", func(t *testing.T) {
		trace = nil
		perform(d, http.MethodGet, "/")
		assert.Equal(t, []string{"first", "second", "index"}, trace)

		trace = nil
		perform(d, http.MethodGet, "/7")
		assert.Equal(t, []string{"first", "second", "show"}, trace)
	})

	t.Run("unlisted actions run without plugs", func(t *testing.T) {
		trace = nil
		perform(d, http.MethodPost, "/")
		assert.Equal(t, []string{"create"}, trace)
	})
}

func TestPlugTermination(t *testing.T) {
	handlerRan := false

	d := New[None]().
		Index(func(c *Context) (any, error) {
			handlerRan = true
			return nil, nil
		}).
		Plug(func(c *Context) error {
			c.Status(http.StatusTeapot)
			return nil
		}, ActionIndex).
		MustCompile(testRegistry())

	rec := perform(d, http.MethodGet, "/")

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.False(t, handlerRan, "handler must not run after a plug terminates the request")
}

func TestVersionGate(t *testing.T) {
	d := New[None]().
		Index(echoAction("index")).
		NotFound(func(c *Context) error {
			return c.String(http.StatusNotFound, "custom fallback")
		}).
		Version("v2").
		MustCompile(testRegistry())

	t.Run("matching header dispatches", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(VersionHeader, "v2")
		rec := httptest.NewRecorder()

		handled, err := d.Dispatch(rec, req)
		require.NoError(t, err)
		assert.True(t, handled)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header is a route-miss, not an error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handled, err := d.Dispatch(rec, req)
		require.NoError(t, err)
		assert.False(t, handled, "version mismatch must fall through past the not-found fallback too")
	})

	t.Run("mismatched header is a route-miss", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(VersionHeader, "v1")
		rec := httptest.NewRecorder()

		handled, err := d.Dispatch(rec, req)
		require.NoError(t, err)
		assert.False(t, handled)
	})

	t.Run("context exposes the matched version", func(t *testing.T) {
		var saw string
		vd := New[None]().
			Index(func(c *Context) (any, error) {
				saw = c.Version()
				return nil, nil
			}).
			Version("v3").
			MustCompile(testRegistry())

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(VersionHeader, "v3")
		vd.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "v3", saw)
	})
}

func TestErrorBoundary(t *testing.T) {
	boom := errors.New("boom")

	t.Run("bound error handler produces the response", func(t *testing.T) {
		d := New[int64]().
			Show(func(c *Context, key int64) (any, error) {
				return nil, boom
			}).
			OnError(func(c *Context, err error) {
				c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
			}).
			MustCompile(testRegistry())

		req := httptest.NewRequest(http.MethodGet, "/7", nil)
		rec := httptest.NewRecorder()

		handled, err := d.Dispatch(rec, req)
		require.NoError(t, err)
		assert.True(t, handled)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.JSONEq(t, `{"error":"boom"}`, rec.Body.String())
	})

	t.Run("without a handler the failure propagates unmodified", func(t *testing.T) {
		d := New[int64]().
			Show(func(c *Context, key int64) (any, error) {
				return nil, boom
			}).
			MustCompile(testRegistry())

		req := httptest.NewRequest(http.MethodGet, "/7", nil)
		rec := httptest.NewRecorder()

		handled, err := d.Dispatch(rec, req)
		assert.True(t, handled)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("plug failures reach the boundary", func(t *testing.T) {
		var got error
		d := New[None]().
			Index(echoAction("index")).
			Plug(func(c *Context) error {
				return boom
			}, ActionIndex).
			OnError(func(c *Context, err error) {
				got = err
				c.Status(http.StatusInternalServerError)
			}).
			MustCompile(testRegistry())

		perform(d, http.MethodGet, "/")
		assert.ErrorIs(t, got, boom)
	})

	t.Run("panics are recovered into the boundary", func(t *testing.T) {
		var got error
		d := New[None]().
			Index(func(c *Context) (any, error) {
				panic("wild panic")
			}).
			OnError(func(c *Context, err error) {
				got = err
				c.Status(http.StatusInternalServerError)
			}).
			MustCompile(testRegistry())

		rec := perform(d, http.MethodGet, "/")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.ErrorIs(t, got, ErrHandlerPanic)
		assert.Contains(t, got.Error(), "wild panic")
	})

	t.Run("ServeHTTP turns a propagated failure into a 500", func(t *testing.T) {
		d := New[None]().
			Index(func(c *Context) (any, error) {
				return nil, boom
			}).
			MustCompile(testRegistry())

		rec := perform(d, http.MethodGet, "/")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestRawHandlers(t *testing.T) {
	t.Run("raw handler bypasses the renderer", func(t *testing.T) {
		d := New[None]().
			IndexRaw(func(c *Context) error {
				return c.String(http.StatusAccepted, "raw body")
			}).
			MustCompile(testRegistry())

		rec := perform(d, http.MethodGet, "/")

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "raw body", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	})

	t.Run("Skip falls through to the not-found fallback", func(t *testing.T) {
		d := New[None]().
			IndexRaw(func(c *Context) error {
				return Skip
			}).
			NotFound(func(c *Context) error {
				return c.String(http.StatusNotFound, "fallback")
			}).
			MustCompile(testRegistry())

		rec := perform(d, http.MethodGet, "/")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "fallback", rec.Body.String())
	})

	t.Run("Skip from the fallback leaves the request unhandled", func(t *testing.T) {
		d := New[None]().
			NotFound(func(c *Context) error {
				return Skip
			}).
			MustCompile(testRegistry())

		req := httptest.NewRequest(http.MethodGet, "/nope", nil)
		handled, err := d.Dispatch(httptest.NewRecorder(), req)
		require.NoError(t, err)
		assert.False(t, handled)
	})
}

func TestDefaultRenderer(t *testing.T) {
	d := New[None]().
		Index(func(c *Context) (any, error) {
			return map[string]any{"users": []string{"alice", "bob"}}, nil
		}).
		MustCompile(testRegistry())

	rec := perform(d, http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"users":["alice","bob"]}`, rec.Body.String())
}

func TestCustomRenderer(t *testing.T) {
	d := New[None]().
		Create(func(c *Context) (any, error) {
			return map[string]string{"id": "1"}, nil
		}).
		MustCompile(testRegistry(), WithRenderer(func(c *Context, v any) error {
			return c.JSON(http.StatusCreated, v)
		}))

	rec := perform(d, http.MethodPost, "/")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCaseInsensitive(t *testing.T) {
	d := New[int64]().
		Add(echoAction("add")).
		Edit(func(c *Context, key int64) (any, error) {
			return "edit", nil
		}).
		CaseInsensitive().
		MustCompile(testRegistry())

	assert.Equal(t, http.StatusOK, perform(d, http.MethodGet, "/ADD").Code)
	assert.Equal(t, http.StatusOK, perform(d, http.MethodGet, "/7/EDIT").Code)
}

func TestConfigurationErrors(t *testing.T) {
	t.Run("unsupported key type", func(t *testing.T) {
		type weird struct{ X int }

		_, err := New[weird]().
			Show(func(c *Context, key weird) (any, error) { return nil, nil }).
			Compile(testRegistry())

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedKeyType)
		assert.Contains(t, err.Error(), "weird")
	})

	t.Run("key-less controllers reject key-ful bindings at compile time", func(t *testing.T) {
		_, err := New[None]().
			Show(func(c *Context, key None) (any, error) { return nil, nil }).
			Compile(testRegistry())

		assert.ErrorIs(t, err, ErrUnsupportedKeyType)
	})

	t.Run("malformed sub path", func(t *testing.T) {
		_, err := New[int64]().
			Sub("comments", func(key int64) *Dispatcher { return nil }).
			Compile(testRegistry())

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSubPathMalformed)
		assert.Contains(t, err.Error(), "comments")
	})

	t.Run("sub mount without key support", func(t *testing.T) {
		_, err := New[None]().
			Index(echoAction("index")).
			Sub("/comments", func(key None) *Dispatcher { return nil }).
			Compile(testRegistry())

		assert.ErrorIs(t, err, ErrSubWithoutKey)
	})

	t.Run("MustCompile panics", func(t *testing.T) {
		assert.Panics(t, func() {
			New[None]().
				Sub("/comments", func(key None) *Dispatcher { return nil }).
				MustCompile(testRegistry())
		})
	})
}

func TestIntrospectionRoundTrip(t *testing.T) {
	reg := introspect.NewRegistry()

	_, err := New[int64]().
		Index(echoAction("index")).
		Show(func(c *Context, key int64) (any, error) { return nil, nil }).
		Create(echoAction("create")).
		NotFound(func(c *Context) error { return Skip }).
		Version("v1").
		Plug(func(c *Context) error { return nil }, All()...).
		Plug(func(c *Context) error { return nil }, ActionIndex).
		Compile(WithRegistry(reg), WithName("users"))
	require.NoError(t, err)

	infos := reg.Controllers()
	require.Len(t, infos, 1)

	info := infos[0]
	assert.Equal(t, "users", info.Name)
	assert.Len(t, info.Paths, 3, "one path entry per bound action, independent of plug count")
	assert.True(t, info.NotFound)
	assert.Equal(t, "v1", info.Version)
	assert.Equal(t, "%d", info.Key)
	assert.Contains(t, info.Paths, introspect.PathEntry{Method: http.MethodGet, Template: "/"})
	assert.Contains(t, info.Paths, introspect.PathEntry{Method: http.MethodGet, Template: "/%d"})
	assert.Contains(t, info.Paths, introspect.PathEntry{Method: http.MethodPost, Template: "/"})
}

func TestControllerValueSemantics(t *testing.T) {
	var trace []string
	plug := func(name string) Plug {
		return func(c *Context) error {
			trace = append(trace, name)
			return nil
		}
	}

	base := New[None]().
		Index(func(c *Context) (any, error) {
			trace = append(trace, "index")
			return nil, nil
		}).
		Plug(plug("base"), ActionIndex)

	a := base.Plug(plug("a"), ActionIndex)
	b := base.Plug(plug("b"), ActionIndex)

	trace = nil
	perform(a.MustCompile(testRegistry()), http.MethodGet, "/")
	assert.Equal(t, []string{"base", "a", "index"}, trace)

	trace = nil
	perform(b.MustCompile(testRegistry()), http.MethodGet, "/")
	assert.Equal(t, []string{"base", "b", "index"}, trace, "sibling controllers must not share plug state")
}

func TestDiagnostics(t *testing.T) {
	var events []DiagnosticEvent
	handler := DiagnosticHandlerFunc(func(e DiagnosticEvent) {
		events = append(events, e)
	})

	d := New[int64]().
		Index(echoAction("index")).
		Show(func(c *Context, key int64) (any, error) { return nil, nil }).
		Version("v1").
		MustCompile(testRegistry(), WithDiagnostics(handler))

	kinds := make(map[DiagnosticKind]int)
	for _, e := range events {
		kinds[e.Kind]++
	}
	assert.Equal(t, 2, kinds[DiagRouteCompiled])
	assert.Equal(t, 1, kinds[DiagVersionGate])

	// A recovered panic at request time emits a diagnostic too. Compiling pd
	// emits its own compile-time events, so the slice is cleared afterwards to
	// observe the request-time ones alone.
	pd := New[None]().
		Index(func(c *Context) (any, error) { panic("boom") }).
		OnError(func(c *Context, err error) { c.Status(http.StatusInternalServerError) }).
		MustCompile(testRegistry(), WithDiagnostics(handler))
	events = nil

	pd.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, events)
	assert.Equal(t, DiagRecoveredPanic, events[0].Kind)

	_ = d
}
