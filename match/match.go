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

// Package match provides the low-level path matching primitives used by the
// resource compiler: typed placeholder kinds and path templates.
//
// A template is a fixed sequence of path segments, each either a literal
// ("add", "edit") or a typed placeholder identified by a token:
//
//	%b  bool       "true" or "false"
//	%c  char       a single character
//	%s  string     any non-empty segment
//	%i  int32      base-10, 32-bit signed
//	%d  int64      base-10, 64-bit signed
//	%f  float64    decimal floating point
//	%O  uuid       RFC 4122 canonical form (36 chars, hyphenated)
//	%u  uint64     base-10, 64-bit unsigned
//
// A placeholder matches a segment only if the segment parses as the declared
// kind, so "/users/42" matches "/%i" while "/users/abc" does not.
package match

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	// ErrUnknownToken is returned when a template contains an unrecognized
	// placeholder token.
	ErrUnknownToken = errors.New("match: unknown placeholder token")

	// ErrEmptyTemplate is returned when a template pattern is empty or does
	// not start with '/'.
	ErrEmptyTemplate = errors.New("match: template must start with '/'")
)

// Kind identifies the type of a path placeholder.
type Kind uint8

const (
	// KindInvalid is the zero Kind. It matches nothing.
	KindInvalid Kind = iota

	// KindBool matches "true" or "false".
	KindBool

	// KindChar matches a single character.
	KindChar

	// KindString matches any non-empty segment.
	KindString

	// KindInt32 matches a base-10 32-bit signed integer.
	KindInt32

	// KindInt64 matches a base-10 64-bit signed integer.
	KindInt64

	// KindFloat matches a decimal floating point number.
	KindFloat

	// KindUUID matches an RFC 4122 UUID in canonical hyphenated form.
	KindUUID

	// KindUint64 matches a base-10 64-bit unsigned integer.
	KindUint64
)

// Token returns the placeholder token for the kind, e.g. "%d" for KindInt64.
func (k Kind) Token() string {
	switch k {
	case KindBool:
		return "%b"
	case KindChar:
		return "%c"
	case KindString:
		return "%s"
	case KindInt32:
		return "%i"
	case KindInt64:
		return "%d"
	case KindFloat:
		return "%f"
	case KindUUID:
		return "%O"
	case KindUint64:
		return "%u"
	default:
		return "%!"
	}
}

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat:
		return "float64"
	case KindUUID:
		return "uuid"
	case KindUint64:
		return "uint64"
	default:
		return "invalid"
	}
}

// kindForToken maps a placeholder token back to its Kind.
func kindForToken(tok string) (Kind, bool) {
	switch tok {
	case "%b":
		return KindBool, true
	case "%c":
		return KindChar, true
	case "%s":
		return KindString, true
	case "%i":
		return KindInt32, true
	case "%d":
		return KindInt64, true
	case "%f":
		return KindFloat, true
	case "%O":
		return KindUUID, true
	case "%u":
		return KindUint64, true
	default:
		return KindInvalid, false
	}
}

// Parse parses a single path segment according to the kind.
//
// The concrete type of the returned value depends on the kind: bool, rune,
// string, int32, int64, float64, uuid.UUID, or uint64. Parsing is strict: a
// segment that does not fully conform to the kind's syntax is rejected, so
// "4.2" is not an int and a 32-character unhyphenated UUID is not a UUID.
func (k Kind) Parse(s string) (any, error) {
	if s == "" {
		return nil, fmt.Errorf("match: empty segment for %s", k)
	}

	switch k {
	case KindBool:
		switch s {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("match: %q is not a bool", s)

	case KindChar:
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError || size != len(s) {
			return nil, fmt.Errorf("match: %q is not a single character", s)
		}
		return r, nil

	case KindString:
		return s, nil

	case KindInt32:
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("match: %q is not an int32: %w", s, err)
		}
		return int32(v), nil

	case KindInt64:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("match: %q is not an int64: %w", s, err)
		}
		return v, nil

	case KindFloat:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("match: %q is not a float64: %w", s, err)
		}
		return v, nil

	case KindUUID:
		// Canonical form only: 32 hex digits plus 4 hyphens. uuid.Parse also
		// accepts braced, URN, and compact forms, which path segments must not.
		if len(s) != 36 {
			return nil, fmt.Errorf("match: %q is not a canonical UUID", s)
		}
		v, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("match: %q is not a UUID: %w", s, err)
		}
		return v, nil

	case KindUint64:
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("match: %q is not a uint64: %w", s, err)
		}
		return v, nil

	default:
		return nil, fmt.Errorf("match: cannot parse with invalid kind")
	}
}
