// SPDX-License-Identifier: Unlicense OR MIT

package input

// Handler is invoked when a Binding matches. data is the "capability
// reference" spec.md §3 describes ("abstractly: a capability reference")
// in place of a raw user-data pointer.
type Handler func(seat *Seat, time uint32, data any)

// Binding is the triple (key, button, modifier-mask) mapped to a handler
// (spec.md §3 "Binding"). Exactly one of Key/Button is meaningful per
// binding; the zero Key/Button value (0) never matches a real key or
// button code, so leaving the other field zero is how a caller says
// "this is a key binding" vs. "this is a button binding".
type Binding struct {
	Key     Key
	Button  Button
	Mods    ModMask
	Handler Handler
	Data    any
}

// matchesKey reports whether this binding fires for a key-press event.
func (b Binding) matchesKey(k Key, mods ModMask) bool {
	return b.Key != 0 && b.Key == k && b.Mods == mods
}

// matchesButton reports whether this binding fires for a button-press
// event.
func (b Binding) matchesButton(btn Button, mods ModMask) bool {
	return b.Button != 0 && b.Button == btn && b.Mods == mods
}
