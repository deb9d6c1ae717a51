// SPDX-License-Identifier: Unlicense OR MIT

package compositor

import (
	"wlcore.dev/input"
	"wlcore.dev/scene"
	"wlcore.dev/shell"
)

// Linux evdev button codes, matching the literal values
// original_source/compositor/shell.c's wlsc_shell_init registers its
// move/resize bindings with: `wlsc_compositor_add_binding(ec, 0,
// BTN_LEFT, MODIFIER_SUPER, move_binding, shell)` and the BTN_MIDDLE
// equivalent for resize.
const (
	BtnLeft   input.Button = 0x110
	BtnMiddle input.Button = 0x112
)

// Config collects the bindable key/button codes DefaultBindings wires up.
// Zero-value fields disable that binding (input.Key/Button's zero value
// never matches a real code, per package input's Binding doc).
type Config struct {
	// VTSwitchKeys maps a key code to the VT number Backend.SwitchVT is
	// called with (e.g. a Ctrl+Alt+F1..F8 binding table). Nil disables
	// VT-switch bindings.
	VTSwitchKeys map[input.Key]int
	ZoomKey      input.Key
	ShutdownKey  input.Key
}

// moveResizeTarget reports whether s is a binding-eligible surface:
// shell.c's move_binding/resize_binding both bail out early for panels,
// backgrounds and fullscreen surfaces.
func moveResizeTarget(s *scene.Surface) bool {
	switch s.Role {
	case scene.RolePanel, scene.RoleBackground, scene.RoleFullscreen:
		return false
	default:
		return true
	}
}

// DefaultBindings registers the compositor's stock key/button bindings on
// every one of c's seats: move/resize (grounded verbatim on shell.c),
// plus VT-switch, zoom and shutdown bindings justified in SPEC_FULL.md's
// "Binding registration helpers" from spec.md §6's CLI-exit language and
// compositor.h's add_binding signature, since the retrieved source has no
// DRM-backend file to ground them on directly.
func (c *Compositor) DefaultBindings(cfg Config) {
	mr, hasMoveResize := c.Shell.(shell.MoveResizer)

	for _, r := range c.Seats {
		if hasMoveResize {
			r.AddBinding(input.Binding{
				Button: BtnLeft, Mods: input.ModSuper,
				Handler: func(seat *input.Seat, time uint32, _ any) {
					s := seat.PointerFocus
					if s == nil || !moveResizeTarget(s) {
						return
					}
					mr.BeginMove(s, seat, BtnLeft, time)
				},
			})
			r.AddBinding(input.Binding{
				Button: BtnMiddle, Mods: input.ModSuper,
				Handler: func(seat *input.Seat, time uint32, _ any) {
					s := seat.PointerFocus
					if s == nil || !moveResizeTarget(s) {
						return
					}
					edges := resizeEdges(s, seat.PointerX, seat.PointerY)
					mr.BeginResize(s, seat, edges, BtnMiddle, time)
				},
			})
		}

		for key, vt := range cfg.VTSwitchKeys {
			vt := vt
			r.AddBinding(input.Binding{
				Key: key, Mods: input.ModCtrl | input.ModAlt,
				Handler: func(_ *input.Seat, _ uint32, _ any) {
					if c.Backend != nil {
						c.Backend.SwitchVT(vt)
					}
				},
			})
		}

		if cfg.ZoomKey != 0 {
			r.AddBinding(input.Binding{
				Key: cfg.ZoomKey,
				Handler: func(_ *input.Seat, _ uint32, _ any) {
					// Forwards to an optional backend capability, the
					// same way VTSwitchKeys forwards to SwitchVT: the
					// zoom magnifier itself is a backend/output concern
					// (no component here owns a "magnified output"
					// notion), so the binding only calls the hook if the
					// configured Backend implements it.
					if z, ok := c.Backend.(interface{ ToggleZoom() }); ok {
						z.ToggleZoom()
					}
				},
			})
		}

		if cfg.ShutdownKey != 0 {
			r.AddBinding(input.Binding{
				Key: cfg.ShutdownKey, Mods: input.ModCtrl | input.ModAlt,
				Handler: func(_ *input.Seat, _ uint32, _ any) {
					if c.Backend != nil {
						c.Backend.Destroy()
					}
				},
			})
		}
	}
}

// resizeEdges derives the resize edge mask from the grab position
// relative to the target's rectangle thirds
// (original_source/compositor/shell.c:resize_binding): the surface is
// divided into left/middle/right thirds on X and top/middle/bottom thirds
// on Y; the middle third on either axis contributes no edge bit.
func resizeEdges(s *scene.Surface, px, py float32) int {
	var edges int
	x := int(px) - s.X
	if x < s.W/3 {
		edges |= shell.EdgeLeft
	} else if x >= 2*s.W/3 {
		edges |= shell.EdgeRight
	}
	y := int(py) - s.Y
	if y < s.H/3 {
		edges |= shell.EdgeTop
	} else if y >= 2*s.H/3 {
		edges |= shell.EdgeBottom
	}
	return edges
}
