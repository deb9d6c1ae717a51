// SPDX-License-Identifier: Unlicense OR MIT

package datadevice

import (
	"wlcore.dev/input"
	"wlcore.dev/scene"
)

// dragGrab implements input.Grab for an in-flight drag-and-drop
// operation: it tracks its own focus via Router.Pick independently of
// the seat's (frozen, per the general grab rule) pointer focus, emitting
// enter/leave/motion with the source's MIME types, and a drop on grab end
// (spec.md §4.9 "installs a drag grab that does focus-tracking (via
// pick_surface) and emits enter/leave/motion with offer IDs ... On grab
// end: emit drop to the current drag-focus; unref the source").
type dragGrab struct {
	manager *Manager
	source  *Source
	icon    *scene.Surface
	focus   *scene.Surface
}

func (g *dragGrab) OnMotion(time uint32, x, y float32) {
	hit := g.manager.router.Pick(x, y)
	if hit != g.focus {
		if g.focus != nil {
			g.manager.client.DragLeave(g.focus, time)
		}
		g.focus = hit
		g.manager.seat.DragFocus = hit
		if hit != nil {
			g.manager.client.DragEnter(hit, time, x, y, g.source.MimeTypes)
		}
	} else if hit != nil {
		g.manager.client.DragMotion(hit, time, x, y)
	}
	if g.icon != nil {
		g.icon.X, g.icon.Y = int(x), int(y)
	}
}

func (g *dragGrab) OnButton(time uint32, b input.Button, s input.ButtonState) {}

func (g *dragGrab) OnEnd(time uint32) {
	if g.focus != nil {
		g.manager.client.Drop(g.focus, time)
	}
	g.manager.seat.DragFocus = nil
	g.manager.seat.DragSource = nil
	g.source.Unref()
}
