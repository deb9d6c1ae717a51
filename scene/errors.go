// SPDX-License-Identifier: Unlicense OR MIT

package scene

import "errors"

// errRoleLockedTransition is returned by Store.SetRole when a Lock-role
// surface attempts to transition to any other role (spec.md §4.2: "Role
// reassignment is legal except Lock → *, which is rejected").
var errRoleLockedTransition = errors.New("scene: cannot reassign role of a lock surface")

// IsLockedRoleTransition reports whether err is the protocol-error
// sentinel for an illegal Lock → * role transition, so §7 error-handling
// code can map it to a protocol error on the surface's object without
// string-matching.
func IsLockedRoleTransition(err error) bool {
	return errors.Is(err, errRoleLockedTransition)
}
