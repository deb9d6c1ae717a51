// SPDX-License-Identifier: Unlicense OR MIT

package scene

import (
	"testing"

	"wlcore.dev/geom"
)

type recordingDamager struct {
	rects []geom.Rect
}

func (d *recordingDamager) Damage(r geom.Rect) { d.rects = append(d.rects, r) }

type fakeUploader struct {
	next uint32
}

func (u *fakeUploader) UploadImage(tex uint32, w, h, pitch int, pixels []byte) (uint32, error) {
	if tex == 0 {
		u.next++
		tex = u.next
	}
	return tex, nil
}
func (u *fakeUploader) NewDriverImage(tex uint32, b *Buffer) (uint32, error) {
	if tex == 0 {
		u.next++
		tex = u.next
	}
	return tex, nil
}
func (u *fakeUploader) AllocTexture() (uint32, error) {
	u.next++
	return u.next, nil
}
func (u *fakeUploader) ReleaseTexture(tex uint32) {}

func newTestStore() (*Store, *Stack, *recordingDamager) {
	stack := NewStack()
	d := &recordingDamager{}
	store := NewStore(stack, d, &fakeUploader{})
	return store, stack, d
}

func TestAttachBufferUpdatesGeometryAndLinks(t *testing.T) {
	store, _, d := newTestStore()
	s := store.Create(0, 0, 10, 10)
	buf := NewBuffer(BufferShm, 200, 100, 800, VisualOpaqueRGB)

	if err := store.AttachBuffer(s, buf, 5, 5); err != nil {
		t.Fatalf("AttachBuffer: %v", err)
	}
	if s.X != 5 || s.Y != 5 || s.W != 200 || s.H != 100 {
		t.Fatalf("geometry not updated: %+v", s)
	}
	if s.Buffer != buf {
		t.Fatal("surface.Buffer should weak-link to buf")
	}
	if buf.AttachedCount() != 1 {
		t.Fatalf("expected 1 attached surface, got %d", buf.AttachedCount())
	}
	if len(d.rects) != 2 {
		t.Fatalf("expected erase+post damage, got %d calls", len(d.rects))
	}
}

func TestAttachBufferIdempotent(t *testing.T) {
	store, _, _ := newTestStore()
	s := store.Create(0, 0, 10, 10)
	buf := NewBuffer(BufferShm, 50, 50, 200, VisualOpaqueRGB)

	store.AttachBuffer(s, buf, 0, 0)
	firstTex := s.Texture
	store.AttachBuffer(s, buf, 0, 0)

	if buf.AttachedCount() != 1 {
		t.Fatalf("re-attaching the same buffer should not duplicate membership, got %d", buf.AttachedCount())
	}
	if s.Texture != firstTex {
		t.Fatalf("re-attaching should reuse the same texture id, got %d want %d", s.Texture, firstTex)
	}
}

func TestBufferDestroyDetachesAllSurfaces(t *testing.T) {
	store, _, _ := newTestStore()
	s1 := store.Create(0, 0, 10, 10)
	s2 := store.Create(20, 20, 10, 10)
	buf := NewBuffer(BufferShm, 10, 10, 40, VisualOpaqueRGB)
	store.AttachBuffer(s1, buf, 0, 0)
	store.AttachBuffer(s2, buf, 0, 0)

	reg := NewRegistry(&fakeUploader{})
	reg.Destroy(buf)

	if s1.Buffer != nil || s2.Buffer != nil {
		t.Fatal("destroy should clear every attached surface's buffer link")
	}
	if buf.AttachedCount() != 0 {
		t.Fatal("destroy should empty the attached set")
	}
}

func TestUpdateMatrixInverse(t *testing.T) {
	store, _, _ := newTestStore()
	s := store.Create(10, 20, 100, 50)
	store.UpdateMatrix(s)

	fwd := s.Forward
	fwd.Mul(s.Inverse)
	id := geom.Identity4()
	for i := range id {
		if diff := fwd[i] - id[i]; diff > 1e-5 || diff < -1e-5 {
			t.Fatalf("forward ∘ inverse != I: %v", fwd)
		}
	}
}

func TestTransformPointRoundTrip(t *testing.T) {
	store, _, _ := newTestStore()
	s := store.Create(10, 20, 100, 50)
	lx, ly := store.TransformPoint(s, 10, 20) // top-left corner
	if lx != 0 || ly != 0 {
		t.Fatalf("expected (0,0), got (%d,%d)", lx, ly)
	}
	lx, ly = store.TransformPoint(s, 60, 45) // center-ish
	if lx != 50 || ly != 25 {
		t.Fatalf("expected (50,25), got (%d,%d)", lx, ly)
	}
}

func TestRaiseMovesToFront(t *testing.T) {
	store, stack, _ := newTestStore()
	a := store.Create(0, 0, 10, 10)
	b := store.Create(0, 0, 10, 10)
	stack.InsertFront(a)
	stack.InsertFront(b) // b now on top

	store.Raise(a)
	if stack.Top() != a {
		t.Fatal("Raise should move a to the front")
	}
	if stack.Len() != 2 {
		t.Fatalf("Raise must not duplicate the surface, stack len = %d", stack.Len())
	}
}

func TestSetRoleRejectsLockTransition(t *testing.T) {
	store, _, _ := newTestStore()
	s := store.Create(0, 0, 10, 10)
	if err := store.SetRole(s, RoleLock); err != nil {
		t.Fatalf("initial lock assignment should succeed: %v", err)
	}
	if err := store.SetRole(s, RoleToplevel); !IsLockedRoleTransition(err) {
		t.Fatalf("expected locked-role transition error, got %v", err)
	}
}

func TestSetRoleIdempotent(t *testing.T) {
	store, _, _ := newTestStore()
	s := store.Create(0, 0, 10, 10)
	if err := store.SetRole(s, RoleToplevel); err != nil {
		t.Fatal(err)
	}
	if err := store.SetRole(s, RoleToplevel); err != nil {
		t.Fatalf("re-applying the same role should be a no-op, got %v", err)
	}
	if s.Role != RoleToplevel {
		t.Fatal("role should remain toplevel")
	}
}

func TestDestroyFiresListenersOnce(t *testing.T) {
	store, stack, _ := newTestStore()
	s := store.Create(0, 0, 10, 10)
	stack.InsertFront(s)

	calls := 0
	s.OnDestroy(func(*Surface) { calls++ })
	store.Destroy(s)
	store.Destroy(s) // idempotent

	if calls != 1 {
		t.Fatalf("expected exactly 1 destroy callback, got %d", calls)
	}
	if stack.IndexOf(s) >= 0 {
		t.Fatal("destroyed surface must be unlinked from the stack")
	}
}

func TestDestroyTokenUnsubscribe(t *testing.T) {
	store, _, _ := newTestStore()
	s := store.Create(0, 0, 10, 10)
	calls := 0
	tok := s.OnDestroy(func(*Surface) { calls++ })
	tok.Unsubscribe()
	store.Destroy(s)
	if calls != 0 {
		t.Fatalf("unsubscribed listener should not fire, got %d calls", calls)
	}
}
