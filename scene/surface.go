// SPDX-License-Identifier: Unlicense OR MIT

package scene

import "wlcore.dev/geom"

// OutputRef is the subset of an output's identity that a Surface needs: a
// screen rectangle to clamp against and compare for assignment. It is
// satisfied by *output.Output; scene never imports package output so that
// output can hold a *Surface (its Background) without an import cycle.
type OutputRef interface {
	Bounds() geom.Rect
}

// TextureUploader is the GPU-facing subset of render.Device a Surface
// needs to keep its texture in sync with its attached Buffer. Defined
// here, at the point of use, rather than in package render, so scene has
// no dependency on render (spec.md §6 treats the renderer as an external
// collaborator from the scene graph's point of view).
type TextureUploader interface {
	// UploadImage uploads w×h pixels at the given pitch into tex,
	// (re)allocating tex if it is zero. Returns the (possibly newly
	// allocated) texture name.
	UploadImage(tex uint32, w, h, pitch int, pixels []byte) (uint32, error)
	// NewDriverImage targets tex at the driver image backing buf,
	// allocating tex if it is zero.
	NewDriverImage(tex uint32, buf *Buffer) (uint32, error)
	// AllocTexture reserves a fresh texture name without binding content.
	AllocTexture() (uint32, error)
	// ReleaseTexture returns a texture name for reuse.
	ReleaseTexture(tex uint32)
}

// Damager receives screen-space damage produced by scene mutations and is
// responsible for scheduling the next repaint tick (spec.md §4.5, C5).
type Damager interface {
	Damage(r geom.Rect)
}

// DestroyListener is notified when a Surface is destroyed. Subscribers
// include the shell surface wrapper, the active grab (if the surface is
// focused) and the lock-surface wrapper (spec.md §9 "Destroy listeners").
type DestroyListener func(s *Surface)

// Surface is a scene-graph node: spec.md §3 "Surface".
type Surface struct {
	X, Y          int
	W, H          int
	Pitch         int
	Forward       geom.Mat4
	Inverse       geom.Mat4
	Visual        Visual
	Buffer        *Buffer // weak reference; Buffer owns its pixels
	Texture       uint32
	SavedTexture  *uint32 // non-nil while swapped to a driver-image cursor
	Role          Role
	Output        OutputRef // assigned output, nil until picked
	Fullscreen    OutputRef // output this surface is fullscreen on, nil otherwise
	SavedX, SavedY int      // position saved across role transitions

	destroyed  bool
	listeners  []DestroyListener
	nextToken  int
	tokenIndex map[int]int // listener token -> index in listeners
}

// DestroyToken unsubscribes a single destroy listener.
type DestroyToken struct {
	s   *Surface
	tok int
}

// Unsubscribe removes the associated listener. Safe to call more than
// once, or after the surface has already been destroyed.
func (t DestroyToken) Unsubscribe() {
	if t.s == nil {
		return
	}
	idx, ok := t.s.tokenIndex[t.tok]
	if !ok {
		return
	}
	t.s.listeners[idx] = nil
	delete(t.s.tokenIndex, t.tok)
}

// newSurface builds an unmapped surface with an identity-like transform
// at (x, y, w, h).
func newSurface(x, y, w, h int) *Surface {
	s := &Surface{
		X: x, Y: y, W: w, H: h,
		Role:       RoleUnmapped,
		tokenIndex: make(map[int]int),
	}
	s.updateMatrix()
	return s
}

// OnDestroy subscribes f to s's destruction. Per spec.md §9, this is the
// mechanism the grab, shell-surface wrapper and lock-surface wrapper use
// instead of polling a weak reference.
func (s *Surface) OnDestroy(f DestroyListener) DestroyToken {
	tok := s.nextToken
	s.nextToken++
	s.listeners = append(s.listeners, f)
	s.tokenIndex[tok] = len(s.listeners) - 1
	return DestroyToken{s: s, tok: tok}
}

// Destroyed reports whether Destroy has already run for s.
func (s *Surface) Destroyed() bool { return s.destroyed }

// Rect returns the surface's screen-space rectangle.
func (s *Surface) Rect() geom.Rect {
	return geom.Rectangle(s.X, s.Y, s.W, s.H)
}

// updateMatrix recomputes forward and inverse transforms from (x, y, w, h)
// per spec.md §4.2 "update_matrix". Surface-local coordinates are
// normalized to [0,1]² then scaled by (w, h): the forward transform maps a
// unit square to the surface's screen rectangle.
func (s *Surface) updateMatrix() {
	m := geom.Translate4(float32(s.X), float32(s.Y), 0)
	scale := geom.Scale4(float32(s.W), float32(s.H), 1)
	m.Mul(scale)
	s.Forward = m
	if inv, ok := m.Invert(); ok {
		s.Inverse = inv
	} else {
		// W or H is zero; leave a zero matrix, which transform_point
		// below treats as "no hit" by producing out-of-range coordinates.
		s.Inverse = geom.Mat4{}
	}
}

// Store is the C2 surface store: creation, damage, buffer binding and
// matrix maintenance for every Surface in the compositor.
type Store struct {
	stack    *Stack
	damager  Damager
	uploader TextureUploader
}

// NewStore returns a Store that raises mapped surfaces in stack, schedules
// repaint through damager, and uploads pixels/driver images via uploader.
func NewStore(stack *Stack, damager Damager, uploader TextureUploader) *Store {
	return &Store{stack: stack, damager: damager, uploader: uploader}
}

// Create returns a new unmapped Surface at (x, y, w, h). Per spec.md §4.2
// this only fails on allocation exhaustion, which Go's allocator reports
// by panicking (out of process memory) rather than returning an error;
// callers that need a graceful "no memory" protocol error instead check
// resource quotas before calling Create.
func (st *Store) Create(x, y, w, h int) *Surface {
	return newSurface(x, y, w, h)
}

// Damage unions s's full screen-space rectangle into the compositor
// damage region and schedules a repaint. Permitted even when s is
// unmapped, to erase a surface's prior pixels on unmap.
func (st *Store) Damage(s *Surface) {
	st.damager.Damage(s.Rect())
}

// DamageRect unions the rectangle (x, y, w, h), translated from
// surface-local to screen space, into the compositor damage region.
func (st *Store) DamageRect(s *Surface, x, y, w, h int) {
	st.damager.Damage(geom.Rectangle(s.X+x, s.Y+y, w, h))
}

// UpdateMatrix recomputes s's forward and inverse transforms from its
// current (x, y, w, h). Exported so shell.Configure can call it after
// repositioning a surface outside of AttachBuffer.
func (st *Store) UpdateMatrix(s *Surface) {
	s.updateMatrix()
}

// TransformPoint converts the screen-space point (sx, sy) to surface-local
// integer pixel coordinates via the inverse transform, scaled by (w, h)
// (spec.md §4.2 "transform_point").
func (st *Store) TransformPoint(s *Surface, sx, sy float32) (lx, ly int) {
	v := s.Inverse.Transform(geom.Vec4{X: sx, Y: sy, Z: 0, W: 1})
	return int(v.X * float32(s.W)), int(v.Y * float32(s.H))
}

// Raise moves s to the top of the compositor stack.
func (st *Store) Raise(s *Surface) {
	st.stack.Raise(s)
}

// SetRole atomically assigns s's role. Role reassignment is legal except
// Lock → *, which is rejected and reported as a protocol error by the
// caller (spec.md §4.2, §7 "Protocol misuse").
func (st *Store) SetRole(s *Surface, role Role) error {
	if s.Role == RoleLock && role != RoleLock {
		return errRoleLockedTransition
	}
	s.Role = role
	return nil
}

// AttachBuffer implements spec.md §4.2 "attach_buffer": erases the old
// surface rectangle, releases the prior buffer link, binds buffer (shm
// upload or driver-image targeting), repositions/resizes the surface and
// recomputes its transforms, and finally damages the new rectangle. It
// does not reassign the surface's output; that is left to the caller.
func (st *Store) AttachBuffer(s *Surface, buffer *Buffer, dx, dy int) error {
	// (a) damage the old rectangle (erase).
	st.Damage(s)

	// (b) release the prior buffer attachment link.
	if s.Buffer != nil {
		s.Buffer.detach(s)
		s.Buffer = nil
	}
	if buffer == nil {
		return nil
	}

	// (c) bind buffer.
	var tex uint32
	var err error
	switch buffer.Kind {
	case BufferShm:
		tex, err = st.uploader.UploadImage(s.Texture, buffer.Width, buffer.Height, buffer.Pitch, buffer.Pixels)
	case BufferDriverImage:
		tex, err = st.uploader.NewDriverImage(s.Texture, buffer)
	}
	if err != nil {
		// spec.md §7 "Resource failure": keep the previous texture and
		// let the next damage retry the upload.
		return err
	}
	s.Texture = tex
	s.Visual = buffer.Visual
	s.Pitch = buffer.Pitch
	buffer.attach(s)
	s.Buffer = buffer

	// (d) adjust position/size and recompute transforms.
	s.X += dx
	s.Y += dy
	s.W = buffer.Width
	s.H = buffer.Height
	st.UpdateMatrix(s)

	// (e) reassigning the output is the caller's responsibility (the
	// compositor root owns the Output set); proto.SurfaceAttach re-picks
	// unconditionally on every mapped attach, offset or not.

	// Post: damage the new rectangle.
	st.Damage(s)
	return nil
}

// Configure repositions and resizes s, damaging the old rectangle before
// the change and the new rectangle after, matching the shell's
// `configure(surface, x, y, w, h)` call (spec.md §4.8): move and resize
// grabs call this instead of AttachBuffer since no new client buffer is
// involved.
func (st *Store) Configure(s *Surface, x, y, w, h int) {
	st.Damage(s)
	s.X, s.Y, s.W, s.H = x, y, w, h
	st.UpdateMatrix(s)
	st.Damage(s)
}

// Destroy marks s destroyed, unlinks it from the stack and its buffer,
// and fires every destroy listener. Per spec.md §5 ("Ordering"), listener
// callbacks run synchronously, under the time of the destroying event, so
// later handlers in the same dispatch round observe s already unlinked.
func (st *Store) Destroy(s *Surface) {
	if s.destroyed {
		return
	}
	s.destroyed = true
	st.stack.Remove(s)
	if s.Buffer != nil {
		s.Buffer.detach(s)
		s.Buffer = nil
	}
	if s.Texture != 0 {
		st.uploader.ReleaseTexture(s.Texture)
		s.Texture = 0
	}
	for _, l := range s.listeners {
		if l != nil {
			l(s)
		}
	}
	s.listeners = nil
	s.tokenIndex = nil
}
