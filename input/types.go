// SPDX-License-Identifier: Unlicense OR MIT

// Package input implements the C7 input router: motion/button/key
// delivery, pointer-focus picking, keyboard focus, grabs and key/button
// bindings (spec.md §4.7). It depends on scene (for Surface/Stack) and
// output (for per-axis pointer clamping) but not on shell or datadevice;
// those packages instead implement small interfaces defined here
// (Activator, Client) so input stays the leaf of that dependency edge.
package input

// Key is an abstract keycode. The concrete numbering (evdev, xkb, …) is
// the input-device driver's concern (§6, out of scope); this package only
// needs key identity for the pressed-keys list and binding matches.
type Key uint32

// Button is an abstract pointer button code (e.g. BTN_LEFT).
type Button uint32

// ButtonState is the up/down state of a button event.
type ButtonState uint8

const (
	Released ButtonState = iota
	Pressed
)

// KeyState is the up/down state of a key event.
type KeyState uint8

const (
	KeyReleased KeyState = iota
	KeyPressed
)

// ModMask is a bitmask of modifier keys held down.
type ModMask uint8

const (
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

// Well-known modifier keycodes recognized by Router.Key when updating the
// modifier mask (spec.md §4.7 "Ctrl/Alt/Super keys map to modifier bits").
// A real keymap (XKB, out of scope per §6) may use different raw codes;
// the router is configured with a translation table so it isn't tied to
// one numbering.
type ModifierKeys struct {
	Ctrl, Alt, Super, Shift Key
}
