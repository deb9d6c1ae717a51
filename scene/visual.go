// SPDX-License-Identifier: Unlicense OR MIT

// Package scene holds the compositor's scene-graph entities: surfaces
// (C2) and the client buffers bound to them (C3). It has no knowledge of
// outputs, input or shell policy; those packages consume scene.Surface and
// scene.Buffer through small interfaces defined at their point of use.
package scene

// Visual is the pixel format / alpha semantics of a surface, driving both
// the blending policy (render.Device) and the opaque/translucent pass
// split in the renderer (spec.md §4.6).
type Visual uint8

const (
	// VisualOpaqueRGB surfaces have no alpha channel; blending is off.
	VisualOpaqueRGB Visual = iota
	// VisualPremultipliedARGB surfaces carry premultiplied alpha.
	VisualPremultipliedARGB
	// VisualStraightARGB surfaces carry straight (non-premultiplied) alpha.
	VisualStraightARGB
)

func (v Visual) String() string {
	switch v {
	case VisualOpaqueRGB:
		return "opaque-rgb"
	case VisualPremultipliedARGB:
		return "premultiplied-argb"
	case VisualStraightARGB:
		return "straight-argb"
	default:
		return "unknown-visual"
	}
}

// Opaque reports whether the visual has no translucency at all.
func (v Visual) Opaque() bool {
	return v == VisualOpaqueRGB
}

// Role is the semantic tag assigned to a mapped surface; it determines
// stacking and placement policy in the shell package.
type Role uint8

const (
	RoleUnmapped Role = iota
	RoleToplevel
	RoleTransient
	RoleFullscreen
	RolePanel
	RoleBackground
	RoleLock
	RoleCursorSprite
)

func (r Role) String() string {
	switch r {
	case RoleUnmapped:
		return "unmapped"
	case RoleToplevel:
		return "toplevel"
	case RoleTransient:
		return "transient"
	case RoleFullscreen:
		return "fullscreen"
	case RolePanel:
		return "panel"
	case RoleBackground:
		return "background"
	case RoleLock:
		return "lock"
	case RoleCursorSprite:
		return "cursor-sprite"
	default:
		return "unknown-role"
	}
}

// Mapped reports whether the role participates in the compositor stack.
func (r Role) Mapped() bool {
	return r != RoleUnmapped
}

// BufferKind is the origin of a Buffer's pixel storage.
type BufferKind uint8

const (
	// BufferShm is client shared memory; its pixels are uploaded into the
	// surface's texture on attach and on damage.
	BufferShm BufferKind = iota
	// BufferDriverImage is a driver-allocated image (e.g. a DMA-BUF or an
	// EGL image); the texture targets the image directly instead of an
	// upload copy.
	BufferDriverImage
)
