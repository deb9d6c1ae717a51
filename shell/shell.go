// SPDX-License-Identifier: Unlicense OR MIT

// Package shell implements the C8 shell policy: surface roles, stacking,
// move/resize modal grabs, and the lock/unlock state machine coordinated
// with an external shell helper (spec.md §4.8). Two reference shells are
// provided: Desktop and Tablet.
package shell

import (
	"wlcore.dev/input"
	"wlcore.dev/scene"
)

// Shell is the capability the core consumes (spec.md §4.8): "map(surface,
// w, h), configure(surface, x, y, w, h), activate(surface, seat, time),
// lock(), unlock(), set_selection_focus(selection, surface, time),
// attach(surface)". The single polymorphic map() is split into one method
// per role here: a real protocol dispatcher already knows which role
// request (set_toplevel/set_transient/set_fullscreen/...) it is relaying,
// so encoding that as separate methods avoids a role-tagged union
// parameter purely to satisfy a generic signature.
type Shell interface {
	MapToplevel(s *scene.Surface, w, h int)
	MapTransient(s *scene.Surface, parent *scene.Surface, dx, dy, w, h int)
	MapFullscreen(s *scene.Surface, w, h int)
	MapPanel(s *scene.Surface, w, h int)
	MapBackground(s *scene.Surface, w, h int)

	Configure(s *scene.Surface, x, y, w, h int)
	Activate(s *scene.Surface, seat *input.Seat, time uint32)
	Lock()
	Unlock()
	SetSelectionFocus(selection input.DataSourceRef, s *scene.Surface, time uint32)
	Attach(s *scene.Surface)
}

// Helper is the external shell-helper process capability: spec.md §4.8
// describes lock() as "requests a lock surface from its helper by
// emitting a prepare event"; Helper.Prepare is that event and
// Helper.Connected reports whether the helper process is still alive
// (spec.md: "if the helper has disconnected, immediately restores hidden
// surfaces").
type Helper interface {
	Prepare()
	Connected() bool
}

// SelectionBroadcaster is implemented by package datadevice: Activate
// calls it so a keyboard-focus change also broadcasts the current
// selection (spec.md §4.9 "on the next keyboard-focus change broadcast a
// data-offer to the focused client"), without shell importing datadevice.
type SelectionBroadcaster interface {
	BroadcastSelection(s *scene.Surface, time uint32)
}

// Animator is an optional capability a Shell implementation can satisfy so
// the compositor root can step a running tweener (Desktop's lock/unlock
// fade, Tablet's zoom) each repaint tick without depending on the concrete
// shell type. The core checks for it with a type assertion, the same
// pattern render.Renderer uses for its optional Overlay field. Animate
// reports whether the animation is still running, i.e. whether the core
// needs to schedule another repaint to show the next frame.
type Animator interface {
	Animate(timeMS uint32) (running bool)
}

// MoveResizer is an optional capability satisfied by shells that support
// the move/resize bindings (shell.c's move_binding/resize_binding): the
// default compositor bindings type-assert for it so a shell with no
// concept of user-driven repositioning (e.g. Tablet) simply doesn't wire
// the binding, rather than Shell requiring every implementation to define
// it.
type MoveResizer interface {
	BeginMove(s *scene.Surface, seat *input.Seat, button input.Button, time uint32)
	BeginResize(s *scene.Surface, seat *input.Seat, edges int, button input.Button, time uint32) error
}

// MenuKeyHandler is an optional capability satisfied by shells that
// distinguish a long-press from a short-press of one designated key
// (Tablet's switcher/home toggle, spec.md §4.8). The compositor root
// intercepts both edges of the configured menu key before they reach
// input.Router.Key (so neither clients nor bindings see them) and feeds
// them here, since a Binding only ever sees a single press edge.
type MenuKeyHandler interface {
	HandleMenuKey(pressed bool, timeMS uint32)
}
