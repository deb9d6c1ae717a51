// SPDX-License-Identifier: Unlicense OR MIT

// Package output implements the C4 output set: zero or more display
// devices, each with fixed screen geometry, a derived projection matrix,
// and the per-output damage history and repaint-state flags the
// compositor loop (package compositor, C5) reads and writes every tick.
package output

import (
	"log"

	"wlcore.dev/geom"
	"wlcore.dev/scene"
)

// Backend is the subset of backend hooks owned by one Output: preparing
// and presenting a frame, and negotiating direct scanout / hardware-cursor
// fast paths with the renderer (spec.md §6 "Backend interface", scoped
// per-output since a multi-output compositor may mix backend drivers,
// e.g. one DRM connector plus a nested window).
type Backend interface {
	PrepareRender()
	Present()
	// PrepareScanoutSurface asks the backend to scan s out directly
	// instead of compositing it; nil on success.
	PrepareScanoutSurface(s *scene.Surface) error
	// SetHardwareCursor asks the backend to display tex as the hardware
	// cursor at the given hotspot; nil on success.
	SetHardwareCursor(hotspotX, hotspotY int, tex uint32) error
}

// Mode is an output's currently active display mode.
type Mode struct {
	Width, Height int
	RefreshMilliHz int
}

// Output is a rendering destination (spec.md §3 "Output", §4.4).
type Output struct {
	X, Y, W, H int
	Flip       bool
	Matrix     geom.Mat4

	PreviousDamage geom.Region
	RepaintNeeded  bool
	Finished       bool

	Background *scene.Surface
	Mode       *Mode
	Backend    Backend
}

// New creates an Output with the given screen-space rectangle and flip
// orientation, and computes its initial projection (spec.md §4.4). The
// Finished flag starts true: the first repaint tick must not wait on a
// "previous present" that never happened.
func New(x, y, w, h int, flip bool, backend Backend) *Output {
	o := &Output{X: x, Y: y, W: w, H: h, Flip: flip, Finished: true, Backend: backend}
	o.updateProjection()
	return o
}

// Bounds implements scene.OutputRef.
func (o *Output) Bounds() geom.Rect {
	return geom.Rectangle(o.X, o.Y, o.W, o.H)
}

// updateProjection rebuilds o.Matrix per spec.md §4.4: translate by
// −(x+w/2, y+h/2, 0), then scale by (2/w, (flip ? −1 : 1)·2/h, 1), so
// client screen coordinates map to normalized device coordinates with the
// correct vertical orientation.
func (o *Output) updateProjection() {
	cx := float32(o.X) + float32(o.W)/2
	cy := float32(o.Y) + float32(o.H)/2
	sy := float32(2) / float32(o.H)
	if o.Flip {
		sy = -sy
	}
	sx := float32(2) / float32(o.W)
	m := geom.Scale4(sx, sy, 1)
	m.Mul(geom.Translate4(-cx, -cy, 0))
	o.Matrix = m
}

// Damager is implemented by the compositor root so Move can schedule
// repaint of the old rectangle without output depending on package
// compositor.
type Damager interface {
	Damage(r geom.Rect)
}

// Set is the C4 output set: the live Output list plus assignment of
// surfaces to an output by position.
type Set struct {
	outputs []*Output
	damager Damager
}

// NewSet returns an empty output set that schedules damage through d.
func NewSet(d Damager) *Set {
	return &Set{damager: d}
}

// Add registers o with the set (spec.md §3 "Outputs added ... by the
// backend").
func (s *Set) Add(o *Output) {
	s.outputs = append(s.outputs, o)
}

// Remove unregisters o. Per spec.md §3, removal must migrate surfaces
// assigned to o and cancel fullscreen assignments; that surface-level
// work is done by the compositor root (which has the stack), using
// AssignFor to re-pick an output for each migrated surface. Remove itself
// only unlinks o from the set.
func (s *Set) Remove(o *Output) {
	for i, out := range s.outputs {
		if out == o {
			s.outputs = append(s.outputs[:i], s.outputs[i+1:]...)
			return
		}
	}
}

// All returns the live outputs in registration order.
func (s *Set) All() []*Output {
	return s.outputs
}

// First returns the first registered output, or nil if the set is empty.
func (s *Set) First() *Output {
	if len(s.outputs) == 0 {
		return nil
	}
	return s.outputs[0]
}

// AssignFor returns the output whose rectangle contains (x, y), per
// spec.md §4.4 "point-in-rectangle test against (surface.x, surface.y)".
// On no match it defaults to the first output and logs, exactly as spec'd;
// it returns nil only when the set itself is empty.
func (s *Set) AssignFor(x, y int) *Output {
	for _, o := range s.outputs {
		if o.Bounds().In(geom.Point{X: x, Y: y}) {
			return o
		}
	}
	if len(s.outputs) == 0 {
		return nil
	}
	log.Printf("output: (%d,%d) matched no output, defaulting to output 0", x, y)
	return s.outputs[0]
}

// Move relocates o to a new screen-space rectangle: damages the old
// rectangle, recomputes the projection, and rebinds any background
// surface's geometry to the new rectangle (spec.md §4.4).
func (s *Set) Move(o *Output, x, y int) {
	old := o.Bounds()
	s.damager.Damage(old)
	o.X, o.Y = x, y
	o.updateProjection()
	if bg := o.Background; bg != nil {
		bg.X, bg.Y = x, y
	}
	s.damager.Damage(o.Bounds())
}

// ClampToOutputs clamps (x, y) to the union of every output rectangle, per
// axis independently, snapping to the nearest edge on an axis that falls
// outside every output (spec.md §4.7 "motion" clamp rule). If the set is
// empty the point is returned unchanged.
func (s *Set) ClampToOutputs(x, y float32) (float32, float32) {
	if len(s.outputs) == 0 {
		return x, y
	}
	minX, minY := float32(s.outputs[0].X), float32(s.outputs[0].Y)
	maxX, maxY := minX+float32(s.outputs[0].W), minY+float32(s.outputs[0].H)
	for _, o := range s.outputs[1:] {
		if float32(o.X) < minX {
			minX = float32(o.X)
		}
		if float32(o.Y) < minY {
			minY = float32(o.Y)
		}
		if r := float32(o.X + o.W); r > maxX {
			maxX = r
		}
		if b := float32(o.Y + o.H); b > maxY {
			maxY = b
		}
	}
	switch {
	case x < minX:
		x = minX
	case x > maxX:
		x = maxX
	}
	switch {
	case y < minY:
		y = minY
	case y > maxY:
		y = maxY
	}
	return x, y
}
