// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"wlcore.dev/geom"
	"wlcore.dev/output"
	"wlcore.dev/scene"
)

// CursorSprite is one seat's pointer cursor, tracked by package input and
// handed to the renderer each tick so it can be skipped when the backend
// has taken it over as a hardware cursor (spec.md §4.6 step 7).
type CursorSprite struct {
	Surface          *scene.Surface
	HardwareAccepted bool
}

// Stats records what a Repaint call actually drew, so tests can assert the
// overdraw-elimination property in spec.md §8 by counting rectangles
// instead of pixels.
type Stats struct {
	OpaqueQuads      int
	TranslucentQuads int
	BackgroundQuads  int
	ScannedOut       bool
}

// Renderer is the C6 renderer driver.
type Renderer struct {
	dev Device

	// Overlay is an optional surface drawn above the stack and below
	// cursor sprites (spec.md §4.6 step 7); e.g. a lock-fade or a
	// screenshot flash. Nil when unset.
	Overlay *scene.Surface
}

// New returns a Renderer that issues draw calls to dev.
func New(dev Device) *Renderer {
	return &Renderer{dev: dev}
}

// Repaint implements spec.md §4.6: given out and the screen-space region
// totalDamage that must be redrawn, walks stack and issues draw calls.
func (rn *Renderer) Repaint(out *output.Output, stack *scene.Stack, cursors []CursorSprite, totalDamage geom.Region) Stats {
	var stats Stats

	// 1. Prepare render (backend hook).
	out.Backend.PrepareRender()

	// 2. Upload projection uniform; texture unit 0 binding is implicit in
	// Device.Draw (shader details are out of scope, spec.md §1).
	rn.dev.BindProjection(out.Matrix)

	// 3. Fullscreen scanout fast path.
	if top := stack.Top(); top != nil &&
		top.Role == scene.RoleFullscreen &&
		top.Fullscreen == scene.OutputRef(out) &&
		top.Visual == scene.VisualOpaqueRGB {
		if err := out.Backend.PrepareScanoutSurface(top); err == nil {
			stats.ScannedOut = true
			return stats
		}
	}

	remaining := totalDamage

	// 4. Front-to-back opaque pass.
	stack.Walk(func(s *scene.Surface) bool {
		if s.Visual != scene.VisualOpaqueRGB {
			return true
		}
		clip := remaining.IntersectRect(s.Rect())
		if clip.IsEmpty() {
			return true
		}
		rn.drawSurface(s, clip, BlendOpaque)
		stats.OpaqueQuads += len(clip.Rects())
		remaining = remaining.Subtract(clip)
		return true
	})

	// 5. Background.
	if bg := out.Background; bg != nil {
		clip := remaining.IntersectRect(bg.Rect())
		if !clip.IsEmpty() {
			rn.drawSurface(bg, clip, BlendOpaque)
			stats.BackgroundQuads += len(clip.Rects())
		}
	} else if !remaining.IsEmpty() {
		rn.dev.ClearRegion(remaining, 0, 0, 0, 1)
	}

	// 6. Back-to-front translucent pass.
	stack.WalkReverse(func(s *scene.Surface) bool {
		if s.Visual == scene.VisualOpaqueRGB {
			remaining = remaining.UnionRect(s.Rect())
			return true
		}
		clip := remaining.IntersectRect(s.Rect())
		if clip.IsEmpty() {
			return true
		}
		rn.drawSurface(s, clip, BlendFor(s.Visual))
		stats.TranslucentQuads += len(clip.Rects())
		return true
	})

	// 7. Overlay, then cursor sprites not claimed by the backend.
	if rn.Overlay != nil {
		clip := totalDamage.IntersectRect(rn.Overlay.Rect())
		if !clip.IsEmpty() {
			rn.drawSurface(rn.Overlay, clip, BlendFor(rn.Overlay.Visual))
		}
	}
	for _, c := range cursors {
		if c.HardwareAccepted || c.Surface == nil {
			continue
		}
		rn.drawSurface(c.Surface, geom.RegionOf(c.Surface.Rect()), BlendFor(c.Surface.Visual))
	}

	out.Backend.Present()
	return stats
}

// drawSurface issues one Quad per rectangle in clip, computing UVs as
// (sx−surface.x)/w, (sy−surface.y)/h (spec.md §4.6 "Draw primitive").
func (rn *Renderer) drawSurface(s *scene.Surface, clip geom.Region, blend Blend) {
	w, h := float32(s.W), float32(s.H)
	if w == 0 || h == 0 {
		return
	}
	clip.ForEach(func(r geom.Rect) {
		rn.dev.Draw(Quad{
			Dst: r,
			UVMin: UV{
				X: float32(r.Min.X-s.X) / w,
				Y: float32(r.Min.Y-s.Y) / h,
			},
			UVMax: UV{
				X: float32(r.Max.X-s.X) / w,
				Y: float32(r.Max.Y-s.Y) / h,
			},
			Tex:   s.Texture,
			Blend: blend,
		})
	})
}
