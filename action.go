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

import "slices"

// Action identifies one of the nine standard resource operations.
//
// Actions split into key-less operations on the collection (Index, Add,
// Create, DeleteAll) and key-ful operations on a single member (Show, Edit,
// Update, Patch, Delete). Key-ful actions require the controller's key type
// to appear as a path segment.
type Action uint8

const (
	// ActionIndex lists the collection: GET /.
	ActionIndex Action = iota

	// ActionShow fetches one member: GET /<key>.
	ActionShow

	// ActionAdd renders the creation form: GET /add.
	ActionAdd

	// ActionEdit renders the edit form: GET /<key>/edit.
	ActionEdit

	// ActionCreate creates a member: POST /.
	ActionCreate

	// ActionUpdate replaces a member: PUT /<key> (also reachable via POST).
	ActionUpdate

	// ActionPatch partially updates a member: PATCH /<key>.
	ActionPatch

	// ActionDelete removes one member: DELETE /<key>.
	ActionDelete

	// ActionDeleteAll removes the collection: DELETE /.
	ActionDeleteAll

	numActions
)

// String returns the lowercase name of the action.
func (a Action) String() string {
	switch a {
	case ActionIndex:
		return "index"
	case ActionShow:
		return "show"
	case ActionAdd:
		return "add"
	case ActionEdit:
		return "edit"
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionPatch:
		return "patch"
	case ActionDelete:
		return "delete"
	case ActionDeleteAll:
		return "delete_all"
	default:
		return "unknown"
	}
}

// Keyed reports whether the action operates on a single member and therefore
// requires a key segment in its path.
func (a Action) Keyed() bool {
	switch a {
	case ActionShow, ActionEdit, ActionUpdate, ActionPatch, ActionDelete:
		return true
	default:
		return false
	}
}

// All returns the standard action set used by Plug and Except shorthand:
// every action except Patch.
//
// Patch is excluded deliberately: controllers that accept PATCH usually want
// its middleware declared explicitly rather than swept in by a catch-all.
// Use AllWithPatch to include it.
func All() []Action {
	return []Action{
		ActionIndex, ActionShow, ActionAdd, ActionEdit,
		ActionCreate, ActionUpdate, ActionDelete, ActionDeleteAll,
	}
}

// AllWithPatch returns all nine actions, including Patch.
func AllWithPatch() []Action {
	return append(All(), ActionPatch)
}

// Except returns All minus the given actions. Order of the exclusions does
// not matter and duplicates are harmless.
//
// Except(All()...) returns an empty set.
func Except(actions ...Action) []Action {
	out := make([]Action, 0, numActions)
	for _, a := range All() {
		if !slices.Contains(actions, a) {
			out = append(out, a)
		}
	}
	return out
}
