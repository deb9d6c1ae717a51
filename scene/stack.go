// SPDX-License-Identifier: Unlicense OR MIT

package scene

// Stack is the compositor's ordered list of mapped surfaces, front (index
// 0, topmost) to back (spec.md §3 "Compositor: ordered list of mapped
// Surfaces (front-to-back)"). Both scene.Store.Raise and the shell's
// stacking policy (panels above toplevels above backgrounds) mutate it
// through this type, which only enforces the invariant in spec.md §8: "For
// every mapped Surface S: S appears exactly once in the compositor surface
// list."
type Stack struct {
	order []*Surface
}

// NewStack returns an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// Len returns the number of mapped surfaces.
func (st *Stack) Len() int { return len(st.order) }

// Top returns the topmost surface, or nil if the stack is empty.
func (st *Stack) Top() *Surface {
	if len(st.order) == 0 {
		return nil
	}
	return st.order[0]
}

// At returns the surface at the given front-to-back index.
func (st *Stack) At(i int) *Surface { return st.order[i] }

// IndexOf returns the index of s, or -1 if s is not mapped.
func (st *Stack) IndexOf(s *Surface) int {
	for i, o := range st.order {
		if o == s {
			return i
		}
	}
	return -1
}

// Insert places s at the given front-to-back index, removing any prior
// occurrence of s first so the "exactly once" invariant always holds.
func (st *Stack) Insert(s *Surface, index int) {
	st.Remove(s)
	if index < 0 {
		index = 0
	}
	if index > len(st.order) {
		index = len(st.order)
	}
	st.order = append(st.order, nil)
	copy(st.order[index+1:], st.order[index:])
	st.order[index] = s
}

// InsertFront is shorthand for Insert(s, 0) — the common "map on top" case.
func (st *Stack) InsertFront(s *Surface) {
	st.Insert(s, 0)
}

// InsertBack appends s as the bottommost surface.
func (st *Stack) InsertBack(s *Surface) {
	st.Insert(s, len(st.order))
}

// Raise moves s to the front of the stack. A no-op if s is not mapped.
func (st *Stack) Raise(s *Surface) {
	if st.IndexOf(s) < 0 {
		return
	}
	st.Insert(s, 0)
}

// Remove unlinks s from the stack. A no-op if s is not present.
func (st *Stack) Remove(s *Surface) {
	i := st.IndexOf(s)
	if i < 0 {
		return
	}
	st.order = append(st.order[:i], st.order[i+1:]...)
}

// Walk visits surfaces top-to-bottom, stopping early if f returns false.
func (st *Stack) Walk(f func(*Surface) bool) {
	for _, s := range st.order {
		if !f(s) {
			return
		}
	}
}

// WalkReverse visits surfaces bottom-to-top, stopping early if f returns
// false.
func (st *Stack) WalkReverse(f func(*Surface) bool) {
	for i := len(st.order) - 1; i >= 0; i-- {
		if !f(st.order[i]) {
			return
		}
	}
}

// Snapshot returns a copy of the current front-to-back order, safe to
// retain across mutations of st (used by the lock/unlock hide/restore
// machinery in package shell).
func (st *Stack) Snapshot() []*Surface {
	out := make([]*Surface, len(st.order))
	copy(out, st.order)
	return out
}
