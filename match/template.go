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

package match

import (
	"fmt"
	"strings"
)

// segment is one element of a parsed template: either a literal or a typed
// placeholder.
type segment struct {
	literal string
	kind    Kind
	param   bool
}

// Template is a parsed path pattern such as "/%d/edit" or "/add".
//
// Templates are immutable after Parse and safe for concurrent use.
type Template struct {
	pattern  string
	segments []segment
}

// Parse parses a path pattern into a Template.
//
// The pattern must start with '/'. Each '/'-separated segment is either a
// placeholder token (see Kind) or a literal. An unrecognized "%" segment is an
// error rather than a literal, since silently treating it as one would mask
// a misspelled token.
//
// Example:
//
//	tpl, err := match.Parse("/%d/edit")
//	// tpl matches "/42/edit", extracting int64(42); rejects "/abc/edit".
func Parse(pattern string) (*Template, error) {
	if pattern == "" || pattern[0] != '/' {
		return nil, fmt.Errorf("%w: %q", ErrEmptyTemplate, pattern)
	}

	t := &Template{pattern: pattern}
	for part := range strings.SplitSeq(pattern[1:], "/") {
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "%") {
			kind, ok := kindForToken(part)
			if !ok {
				return nil, fmt.Errorf("%w: %q in %q", ErrUnknownToken, part, pattern)
			}
			t.segments = append(t.segments, segment{kind: kind, param: true})
			continue
		}
		t.segments = append(t.segments, segment{literal: part})
	}

	return t, nil
}

// MustParse is like Parse but panics on error. It is intended for patterns
// assembled from validated kinds.
func MustParse(pattern string) *Template {
	t, err := Parse(pattern)
	if err != nil {
		panic(err)
	}
	return t
}

// Pattern returns the original pattern string.
func (t *Template) Pattern() string {
	return t.pattern
}

// NumParams returns the number of placeholder segments in the template.
func (t *Template) NumParams() int {
	n := 0
	for _, seg := range t.segments {
		if seg.param {
			n++
		}
	}
	return n
}

// MatchPrefix matches the template against the leading segments of path and
// returns the parsed placeholder values and the unmatched remainder.
//
// The remainder is either empty (the template consumed the whole path) or a
// suffix beginning with '/' that a caller can delegate further, which is how
// sub-resource mounts receive their continuation path.
//
// When fold is true, literal segments are compared case-insensitively.
// Placeholder segments are unaffected: their syntax already decides case
// (UUID hex is case-insensitive by definition, strings are matched verbatim).
func (t *Template) MatchPrefix(path string, fold bool) (params []any, rest string, ok bool) {
	p := path
	for _, seg := range t.segments {
		if len(p) == 0 || p[0] != '/' {
			return nil, "", false
		}
		p = p[1:]

		end := strings.IndexByte(p, '/')
		var part string
		if end < 0 {
			part, p = p, ""
		} else {
			part, p = p[:end], p[end:]
		}

		if seg.param {
			v, err := seg.kind.Parse(part)
			if err != nil {
				return nil, "", false
			}
			params = append(params, v)
			continue
		}

		if fold {
			if !strings.EqualFold(part, seg.literal) {
				return nil, "", false
			}
		} else if part != seg.literal {
			return nil, "", false
		}
	}

	return params, p, true
}

// Match matches the template against the entire path: it succeeds only when
// no remainder is left after the final segment.
func (t *Template) Match(path string, fold bool) (params []any, ok bool) {
	params, rest, ok := t.MatchPrefix(path, fold)
	if !ok || rest != "" {
		return nil, false
	}
	return params, true
}
