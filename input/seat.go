// SPDX-License-Identifier: Unlicense OR MIT

package input

import "wlcore.dev/scene"

// Grab is the polymorphic interface spec.md §4.7 describes as a "tagged
// variant": {Motion-default, Move, Resize(edges), Drag, Menu/Popup}. This
// package only implements the default motion grab; Move/Resize live in
// package shell and Drag lives in package datadevice, each satisfying this
// interface so Seat can hold exactly one without depending on either
// package (spec.md §9 "inline into the seat" is approximated here as one
// interface-valued field rather than a heap slice of variants, which is
// the closest a statically-typed host language gets without a manual sum
// type).
type Grab interface {
	OnMotion(time uint32, x, y float32)
	OnButton(time uint32, b Button, s ButtonState)
	OnEnd(time uint32)
}

// DataSourceRef is the minimal capability Seat needs from package
// datadevice's Source type: enough to cancel a prior selection/drag
// source without datadevice depending on input, or input depending on
// datadevice.
type DataSourceRef interface {
	// Cancelled is called when the seat drops its reference to the
	// source (a new selection replaces it, or the seat is torn down).
	Cancelled()
}

// Seat is the compositor's pointer+keyboard state (spec.md §3 "Input
// (seat)"). spec.md's non-goal excludes multi-seat; package compositor
// nonetheless keeps a slice of Seats to match the literal data model, but
// only ever populates it with one.
type Seat struct {
	PointerX, PointerY   float32
	PointerFocus         *scene.Surface
	PointerFocusTime     uint32
	KeyboardFocus        *scene.Surface
	PressedKeys          []Key
	Modifiers            ModMask

	ActiveGrab Grab
	GrabButton Button
	GrabTime   uint32

	HotspotX, HotspotY int
	CursorSprite       *scene.Surface

	Selection  DataSourceRef
	DragSource DataSourceRef
	DragFocus  *scene.Surface

	pointerFocusTok  scene.DestroyToken
	keyboardFocusTok scene.DestroyToken
	grabTargetTok    scene.DestroyToken
}

// NewSeat returns a Seat with no focus and no active grab.
func NewSeat() *Seat {
	return &Seat{}
}

// pressKey appends k to the pressed-keys list if not already present.
func (seat *Seat) pressKey(k Key) {
	for _, p := range seat.PressedKeys {
		if p == k {
			return
		}
	}
	seat.PressedKeys = append(seat.PressedKeys, k)
}

// releaseKey removes k from the pressed-keys list by swap-with-last
// (spec.md §4.7 "remove on release by swap-with-last").
func (seat *Seat) releaseKey(k Key) {
	for i, p := range seat.PressedKeys {
		if p == k {
			last := len(seat.PressedKeys) - 1
			seat.PressedKeys[i] = seat.PressedKeys[last]
			seat.PressedKeys = seat.PressedKeys[:last]
			return
		}
	}
}
