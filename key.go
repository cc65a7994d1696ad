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
	"fmt"

	"github.com/google/uuid"

	"rivaas.dev/resource/match"
)

// Char is the key type for single-character resource keys. It is a distinct
// type rather than a bare rune so that it can be told apart from int32
// controllers, which share rune's underlying type.
type Char rune

// None is the key type for controllers that bind only key-less actions.
// A Controller[None] cannot bind key-ful actions or mount sub-resources.
type None struct{}

// keyKindFor maps the controller's key type parameter to its path placeholder
// kind. Any type outside the supported set is a configuration error, reported
// when the controller is compiled rather than at request time.
func keyKindFor[K any]() (match.Kind, error) {
	var zero K
	switch any(zero).(type) {
	case bool:
		return match.KindBool, nil
	case Char:
		return match.KindChar, nil
	case string:
		return match.KindString, nil
	case int32:
		return match.KindInt32, nil
	case int64:
		return match.KindInt64, nil
	case float64:
		return match.KindFloat, nil
	case uuid.UUID:
		return match.KindUUID, nil
	case uint64:
		return match.KindUint64, nil
	default:
		return match.KindInvalid, fmt.Errorf("%w: %T", ErrUnsupportedKeyType, zero)
	}
}

// keyFromParam converts a value produced by match.Kind.Parse into the
// controller's key type. The kind has already been validated against K by
// keyKindFor, so the assertions cannot fail.
func keyFromParam[K any](kind match.Kind, v any) K {
	if kind == match.KindChar {
		return any(Char(v.(rune))).(K)
	}
	return v.(K)
}
