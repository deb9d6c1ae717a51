// SPDX-License-Identifier: Unlicense OR MIT

package scene

// Buffer is an external pixel source owned by a client connection
// (spec.md §3). The core holds only a weak reference to it via attached
// Surfaces and a membership link in attachedTo; the protocol dispatcher
// (out of scope, §6) owns the Buffer's lifetime and calls Registry.Destroy
// when the client releases it.
type Buffer struct {
	Width, Height int
	Pitch         int
	Visual        Visual
	Kind          BufferKind

	// Pixels is the client's shared-memory backing store for a BufferShm
	// buffer. It is nil for BufferDriverImage buffers, whose pixels live
	// on the GPU side and are referenced by Handle instead.
	Pixels []byte
	// Handle is the driver-image handle (e.g. a DMA-BUF fd or EGL image
	// name) for a BufferDriverImage buffer, opaque to this package.
	Handle any

	attached map[*Surface]struct{}
}

// NewBuffer allocates a Buffer and its attached-surface set. Creation of a
// Buffer is otherwise infallible in this package; allocation exhaustion is
// reported by the protocol layer before this constructor is ever reached
// (spec.md §7, "Allocation failure").
func NewBuffer(kind BufferKind, w, h, pitch int, visual Visual) *Buffer {
	return &Buffer{
		Width:    w,
		Height:   h,
		Pitch:    pitch,
		Visual:   visual,
		Kind:     kind,
		attached: make(map[*Surface]struct{}),
	}
}

// AttachedCount reports how many surfaces currently reference b. Exposed
// mainly for tests asserting the C3 destruction invariant.
func (b *Buffer) AttachedCount() int {
	return len(b.attached)
}

// attach records that s now references b. It is called only from
// Store.AttachBuffer so the buffer's attached set and the surface's weak
// Buffer field stay consistent.
func (b *Buffer) attach(s *Surface) {
	b.attached[s] = struct{}{}
}

// detach removes s from b's attached set without touching s.Buffer; used
// both by Store.AttachBuffer (replacing a prior binding) and by Destroy.
func (b *Buffer) detach(s *Surface) {
	delete(b.attached, s)
}

// Registry runs the bookkeeping that spans a buffer's lifetime: creation,
// shm damage re-upload, and destruction (spec.md §4.3, C3). It keeps no
// list of the Buffers it has created, and holds no ownership over the Buffers' memory —
// that remains the client connection's — only the behavior that must run
// at each lifecycle event.
type Registry struct {
	uploader TextureUploader
}

// NewRegistry returns a Registry that re-uploads shm pixels for damaged
// buffers through uploader.
func NewRegistry(uploader TextureUploader) *Registry {
	return &Registry{uploader: uploader}
}

// Create allocates a Buffer. The callback in spec.md §4.3 ("Creation of a
// Buffer emits a callback into the core which allocates an attached-
// surface set") is this constructor: NewBuffer already allocates that set,
// so Create exists as the Registry-facing entry point protocol handlers
// call, keeping the creation path symmetric with Damage and Destroy.
func (reg *Registry) Create(kind BufferKind, w, h, pitch int, visual Visual) *Buffer {
	return NewBuffer(kind, w, h, pitch, visual)
}

// Damage re-uploads a shm Buffer's pixels to every attached surface's
// texture. Sub-image upload is not attempted here: spec.md §4.3 notes it
// "is only valid when the target texture supports the needed unpack
// alignment", which this core cannot assume of an arbitrary backend, so
// every damage notification does a full-image upload.
func (reg *Registry) Damage(b *Buffer) error {
	if b.Kind != BufferShm {
		return nil
	}
	var firstErr error
	for s := range b.attached {
		tex, err := reg.uploader.UploadImage(s.Texture, b.Width, b.Height, b.Pitch, b.Pixels)
		if err != nil {
			// spec.md §7 "Resource failure": leave the previous texture
			// bound and let the caller schedule a retry via damage.
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.Texture = tex
	}
	return firstErr
}

// Destroy detaches b from every surface referencing it, clearing each
// surface's weak Buffer back-link, then frees the attached-surface set.
// This runs in O(len(attached)), matching the "O(attached-surfaces)"
// requirement in spec.md §4.3.
func (reg *Registry) Destroy(b *Buffer) {
	for s := range b.attached {
		s.Buffer = nil
	}
	b.attached = nil
}
