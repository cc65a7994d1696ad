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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rivaas.dev/resource/introspect"
)

func TestSubDelegation(t *testing.T) {
	var gotPost int64
	var gotComment int64
	var sawURLPath string

	comments := func(postID int64) *Dispatcher {
		return New[int64]().
			Index(func(c *Context) (any, error) {
				gotPost = postID
				gotComment = 0
				sawURLPath = c.Request.URL.Path
				return "list", nil
			}).
			Show(func(c *Context, id int64) (any, error) {
				gotPost = postID
				gotComment = id
				return "one", nil
			}).
			MustCompile(testRegistry())
	}

	posts := New[int64]().
		Show(func(c *Context, id int64) (any, error) {
			return "post", nil
		}).
		Sub("/comments", comments).
		MustCompile(testRegistry())

	t.Run("continuation path reaches the child's keyed route", func(t *testing.T) {
		rec := perform(posts, http.MethodGet, "/7/comments/42")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(7), gotPost)
		assert.Equal(t, int64(42), gotComment)
	})

	t.Run("empty continuation normalizes to the child's index", func(t *testing.T) {
		rec := perform(posts, http.MethodGet, "/7/comments")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(7), gotPost)
		assert.Equal(t, int64(0), gotComment)
		// The request URL is not stripped on the way down, so the in-place
		// normalization extends the full path.
		assert.Equal(t, "/7/comments/", sawURLPath)
	})

	t.Run("member routes still win on their own paths", func(t *testing.T) {
		rec := perform(posts, http.MethodGet, "/7")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `"post"`, rec.Body.String())
	})

	t.Run("child miss surfaces as a miss", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/7/comments/not-a-number/x", nil)
		handled, err := posts.Dispatch(httptest.NewRecorder(), req)
		require.NoError(t, err)
		assert.False(t, handled)
	})
}

func TestSubErrorIsolation(t *testing.T) {
	boom := errors.New("child boom")

	t.Run("child boundary handles its own failures", func(t *testing.T) {
		child := func(key int64) *Dispatcher {
			return New[None]().
				Index(func(c *Context) (any, error) {
					return nil, boom
				}).
				OnError(func(c *Context, err error) {
					c.String(http.StatusConflict, "child handled")
				}).
				MustCompile(testRegistry())
		}

		parentHandled := false
		parent := New[int64]().
			Sub("/items", child).
			OnError(func(c *Context, err error) {
				parentHandled = true
			}).
			MustCompile(testRegistry())

		rec := perform(parent, http.MethodGet, "/7/items")

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "child handled", rec.Body.String())
		assert.False(t, parentHandled, "parent boundary must not see a failure the child resolved")
	})

	t.Run("child failure bypasses the parent's error handler", func(t *testing.T) {
		child := func(key int64) *Dispatcher {
			return New[None]().
				Index(func(c *Context) (any, error) {
					return nil, boom
				}).
				MustCompile(testRegistry())
		}

		parentHandled := false
		parent := New[int64]().
			Sub("/items", child).
			OnError(func(c *Context, err error) {
				parentHandled = true
			}).
			MustCompile(testRegistry())

		req := httptest.NewRequest(http.MethodGet, "/7/items", nil)
		handled, err := parent.Dispatch(httptest.NewRecorder(), req)

		assert.True(t, handled)
		assert.ErrorIs(t, err, boom)
		assert.False(t, parentHandled, "child failures propagate without entering the parent's boundary")
	})

	t.Run("nil child dispatcher is a failure, not a miss", func(t *testing.T) {
		parent := New[int64]().
			Sub("/items", func(key int64) *Dispatcher { return nil }).
			MustCompile(testRegistry())

		req := httptest.NewRequest(http.MethodGet, "/7/items", nil)
		handled, err := parent.Dispatch(httptest.NewRecorder(), req)

		assert.True(t, handled)
		assert.ErrorIs(t, err, ErrNilSubDispatcher)
	})
}

func TestSubVersionGate(t *testing.T) {
	// The parent's gate covers the subtree; the child needs no gate of its own.
	child := func(key int64) *Dispatcher {
		return New[None]().
			Index(func(c *Context) (any, error) { return "ok", nil }).
			MustCompile(testRegistry())
	}

	parent := New[int64]().
		Sub("/items", child).
		Version("v2").
		MustCompile(testRegistry())

	req := httptest.NewRequest(http.MethodGet, "/7/items", nil)
	handled, err := parent.Dispatch(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.False(t, handled, "gated parent must not forward unversioned requests")

	req.Header.Set(VersionHeader, "v2")
	handled, err = parent.Dispatch(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.True(t, handled)
}

func TestSubIntrospection(t *testing.T) {
	reg := introspect.NewRegistry()

	child := func(key int64) *Dispatcher {
		return New[None]().
			Index(func(c *Context) (any, error) { return nil, nil }).
			MustCompile(testRegistry())
	}

	_, err := New[int64]().
		Show(func(c *Context, id int64) (any, error) { return nil, nil }).
		Sub("/comments", child).
		Compile(WithRegistry(reg), WithName("posts"))
	require.NoError(t, err)

	infos := reg.Controllers()
	require.Len(t, infos, 1)
	require.Len(t, infos[0].Forwards, 1)
	assert.Equal(t, introspect.Forward{From: "/%d/comments", Via: "/comments"}, infos[0].Forwards[0])
}
