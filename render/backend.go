// SPDX-License-Identifier: Unlicense OR MIT

// Package render implements the C6 renderer driver: given an output and a
// screen-space damage region, it walks the compositor stack and issues
// draw calls through the Device interface. Per spec.md §1 the rendering
// pipeline itself — shader details — is out of scope; this package only
// describes which rectangles get drawn, in which order, with which blend
// state, matching the teacher's separation of gpu/backend.go (the device
// contract) from the shader/rasterizer internals that implement it.
package render

import (
	"errors"

	"wlcore.dev/geom"
	"wlcore.dev/scene"
)

// BlendFactor mirrors the handful of GL blend factors spec.md §4.6 names.
type BlendFactor uint8

const (
	BlendOne BlendFactor = iota
	BlendZero
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
)

// Blend is a draw's blend state.
type Blend struct {
	Enabled  bool
	Src, Dst BlendFactor
}

// Blend policy by visual (spec.md §4.6 "Blending policy by visual").
var (
	BlendOpaque        = Blend{Enabled: false}
	BlendPremultiplied = Blend{Enabled: true, Src: BlendOne, Dst: BlendOneMinusSrcAlpha}
	BlendStraight      = Blend{Enabled: true, Src: BlendSrcAlpha, Dst: BlendOneMinusSrcAlpha}
)

// BlendFor returns the blend state for a surface visual.
func BlendFor(v scene.Visual) Blend {
	switch v {
	case scene.VisualOpaqueRGB:
		return BlendOpaque
	case scene.VisualPremultipliedARGB:
		return BlendPremultiplied
	default:
		return BlendStraight
	}
}

// UV is a pair of normalized surface-local texture coordinates.
type UV struct{ X, Y float32 }

// Quad is one draw call: a screen-space destination rectangle, textured
// from tex using per-corner UV computed as (sx−surface.x)/w, (sy−surface.y)/h
// (spec.md §4.6 "Draw primitive"), with the given blend state. Each Quad
// becomes two triangles (six indices, four vertices) in the backend.
type Quad struct {
	Dst        geom.Rect
	UVMin, UVMax UV
	Tex        uint32
	Blend      Blend
}

// Device is the backend GPU context shared across all outputs: texture
// and resource lifetime plus the draw primitives the Renderer issues per
// output. §6 "Backend interface"'s create_cursor_image, authenticate and
// destroy are not part of Device; they are on compositor.Backend.
type Device interface {
	scene.TextureUploader

	// BindProjection uploads the projection uniform for the output about
	// to be drawn.
	BindProjection(m geom.Mat4)
	// Draw issues one textured quad.
	Draw(q Quad)
	// ClearRegion fills every rectangle in region with color, used for
	// the background pass when an output has no background surface.
	ClearRegion(region geom.Region, r, g, b, a float32)
}

// ErrScanoutRefused is returned by Backend.PrepareScanoutSurface and
// Backend.SetHardwareCursor to signal a silent software fallback per
// spec.md §7 "Backend failure".
var ErrScanoutRefused = errors.New("render: backend refused scanout/hardware cursor")
