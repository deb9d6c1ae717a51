// SPDX-License-Identifier: Unlicense OR MIT

package shell

import (
	"errors"

	"wlcore.dev/input"
	"wlcore.dev/scene"
)

// Resize edge bitmask (spec.md §4.8 "parameterized by an edge bitmask {L=1,
// R=2, T=4, B=8}").
const (
	EdgeLeft   = 1
	EdgeRight  = 2
	EdgeTop    = 4
	EdgeBottom = 8
)

// ErrInvalidEdges reports an illegal resize edge mask: 0, >15, L|R, or T|B
// together (spec.md §4.8 "illegal masks are 0, >15, L|R, T|B").
var ErrInvalidEdges = errors.New("shell: invalid resize edge mask")

func validEdges(edges int) error {
	if edges == 0 || edges > 15 {
		return ErrInvalidEdges
	}
	if edges&(EdgeLeft|EdgeRight) == EdgeLeft|EdgeRight {
		return ErrInvalidEdges
	}
	if edges&(EdgeTop|EdgeBottom) == EdgeTop|EdgeBottom {
		return ErrInvalidEdges
	}
	return nil
}

// configurer is the scene.Store subset a grab needs to reposition its
// target (spec.md §4.8 "the shell emits a configure event").
type configurer interface {
	Configure(s *scene.Surface, x, y, w, h int)
}

// moveGrab implements input.Grab for the move modal grab (spec.md §4.8
// "Move grab: dx = surface.x − grab.x, dy = surface.y − grab.y; motion
// updates surface to (grab.x+dx, grab.y+dy) via configure").
type moveGrab struct {
	store            configurer
	target           *scene.Surface
	grabX, grabY     float32
	startX, startY   int
}

func newMoveGrab(store configurer, target *scene.Surface, pointerX, pointerY float32) *moveGrab {
	return &moveGrab{store: store, target: target, grabX: pointerX, grabY: pointerY, startX: target.X, startY: target.Y}
}

func (g *moveGrab) OnMotion(time uint32, x, y float32) {
	dx := int(x - g.grabX)
	dy := int(y - g.grabY)
	g.store.Configure(g.target, g.startX+dx, g.startY+dy, g.target.W, g.target.H)
}
func (g *moveGrab) OnButton(time uint32, b input.Button, s input.ButtonState) {}
func (g *moveGrab) OnEnd(time uint32)                                        {}

// resizeGrab implements input.Grab for the resize modal grab.
type resizeGrab struct {
	store                    configurer
	target                   *scene.Surface
	edges                    int
	grabX, grabY             float32
	startX, startY, startW, startH int
}

func newResizeGrab(store configurer, target *scene.Surface, edges int, pointerX, pointerY float32) (*resizeGrab, error) {
	if err := validEdges(edges); err != nil {
		return nil, err
	}
	return &resizeGrab{
		store: store, target: target, edges: edges,
		grabX: pointerX, grabY: pointerY,
		startX: target.X, startY: target.Y, startW: target.W, startH: target.H,
	}, nil
}

func (g *resizeGrab) OnMotion(time uint32, x, y float32) {
	dx := int(x - g.grabX)
	dy := int(y - g.grabY)
	nx, ny, nw, nh := g.startX, g.startY, g.startW, g.startH
	if g.edges&EdgeLeft != 0 {
		nx = g.startX + dx
		nw = g.startW - dx
	} else if g.edges&EdgeRight != 0 {
		nw = g.startW + dx
	}
	if g.edges&EdgeTop != 0 {
		ny = g.startY + dy
		nh = g.startH - dy
	} else if g.edges&EdgeBottom != 0 {
		nh = g.startH + dy
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	g.store.Configure(g.target, nx, ny, nw, nh)
}
func (g *resizeGrab) OnButton(time uint32, b input.Button, s input.ButtonState) {}
func (g *resizeGrab) OnEnd(time uint32)                                        {}
