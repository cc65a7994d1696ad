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

import "errors"

// Skip is returned by a raw handler (or the not-found fallback) to signal
// that it did not handle the request. Dispatch continues with the next
// candidate route; if none remains, the request is reported as unhandled.
var Skip = errors.New("resource: skip")

var (
	// ErrUnsupportedKeyType indicates that the controller's key type parameter
	// is not one of the supported kinds (bool, Char, string, int32, int64,
	// uint64, float64, uuid.UUID).
	ErrUnsupportedKeyType = errors.New("unsupported resource key type")

	// ErrSubPathMalformed indicates that a sub-resource path does not start
	// with '/'.
	ErrSubPathMalformed = errors.New("sub-resource path must start with '/'")

	// ErrSubWithoutKey indicates that a sub-resource was mounted on a
	// controller whose key type cannot appear in a path.
	ErrSubWithoutKey = errors.New("sub-resource mounted without key support")

	// ErrNilSubDispatcher indicates that a sub-resource mount function
	// returned a nil dispatcher for an extracted key.
	ErrNilSubDispatcher = errors.New("sub-resource mount returned nil dispatcher")

	// ErrHandlerPanic wraps a panic recovered from a plug or handler before
	// it is delivered to the error boundary.
	ErrHandlerPanic = errors.New("panic in handler")

	// ErrContextResponseNil indicates that the context response writer is nil.
	ErrContextResponseNil = errors.New("context response is nil")
)
