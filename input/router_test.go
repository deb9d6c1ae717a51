// SPDX-License-Identifier: Unlicense OR MIT

package input

import (
	"testing"

	"wlcore.dev/geom"
	"wlcore.dev/scene"
)

type fakeUploader struct{ next uint32 }

func (u *fakeUploader) UploadImage(tex uint32, w, h, pitch int, pixels []byte) (uint32, error) {
	if tex != 0 {
		return tex, nil
	}
	u.next++
	return u.next, nil
}
func (u *fakeUploader) NewDriverImage(tex uint32, b *scene.Buffer) (uint32, error) {
	return u.UploadImage(tex, 0, 0, 0, nil)
}
func (u *fakeUploader) AllocTexture() (uint32, error) { u.next++; return u.next, nil }
func (u *fakeUploader) ReleaseTexture(uint32)         {}

type fakeDamager struct{}

func (fakeDamager) Damage(geom.Rect) {}

type recordingClient struct {
	enters, leaves, motions, buttons []string
}

func (c *recordingClient) PointerEnter(s *scene.Surface, time uint32, x, y float32) {
	c.enters = append(c.enters, tag(s))
}
func (c *recordingClient) PointerLeave(s *scene.Surface, time uint32) {
	c.leaves = append(c.leaves, tag(s))
}
func (c *recordingClient) PointerMotion(s *scene.Surface, time uint32, x, y float32) {
	c.motions = append(c.motions, tag(s))
}
func (c *recordingClient) PointerButton(s *scene.Surface, time uint32, b Button, st ButtonState) {
	c.buttons = append(c.buttons, tag(s))
}
func (c *recordingClient) KeyboardEnter(s *scene.Surface, time uint32, keys []Key) {}
func (c *recordingClient) KeyboardLeave(s *scene.Surface, time uint32)             {}
func (c *recordingClient) Key(s *scene.Surface, time uint32, k Key, st KeyState)   {}
func (c *recordingClient) Modifiers(s *scene.Surface, mods ModMask)                {}

func tag(s *scene.Surface) string {
	if s == nil {
		return "<nil>"
	}
	return "surface"
}

type fakeClamper struct{}

func (fakeClamper) ClampToOutputs(x, y float32) (float32, float32) { return x, y }

func setup(t *testing.T) (*Router, *scene.Store, *scene.Stack, *recordingClient) {
	t.Helper()
	stack := scene.NewStack()
	store := scene.NewStore(stack, fakeDamager{}, &fakeUploader{})
	client := &recordingClient{}
	seat := NewSeat()
	r := New(seat, stack, store, fakeClamper{}, client, ModifierKeys{})
	return r, store, stack, client
}

func TestPickTopmostFirst(t *testing.T) {
	r, store, stack, client := setup(t)
	bottom := store.Create(0, 0, 100, 100)
	top := store.Create(0, 0, 50, 50)
	stack.InsertBack(bottom)
	stack.InsertFront(top)

	r.Motion(1, 10, 10, fakeDamager{})
	if len(client.enters) != 1 {
		t.Fatalf("expected one enter, got %d", len(client.enters))
	}
	if r.Seat.PointerFocus != top {
		t.Fatal("expected topmost surface picked")
	}
}

func TestLeaveBeforeEnterOrdering(t *testing.T) {
	r, store, stack, client := setup(t)
	a := store.Create(0, 0, 50, 50)
	b := store.Create(60, 0, 50, 50)
	stack.InsertFront(a)
	stack.InsertBack(b)

	r.Motion(1, 10, 10, fakeDamager{})
	r.Motion(2, 70, 10, fakeDamager{})

	if len(client.leaves) != 1 || len(client.enters) != 2 {
		t.Fatalf("expected 1 leave + 2 enters, got leaves=%d enters=%d", len(client.leaves), len(client.enters))
	}
}

func TestGrabSurvivesDestruction(t *testing.T) {
	r, store, stack, _ := setup(t)
	s := store.Create(0, 0, 100, 100)
	stack.InsertFront(s)

	r.Motion(1, 10, 10, fakeDamager{})
	r.Button(2, 1, Pressed)
	if r.Seat.ActiveGrab == nil {
		t.Fatal("expected default grab to be active")
	}

	store.Destroy(s)

	if r.Seat.ActiveGrab != nil {
		t.Fatal("grab should end when its target surface is destroyed")
	}
	if r.Seat.PointerFocus != nil {
		t.Fatal("pointer focus should be nil after the focused surface is destroyed")
	}
}

func TestButtonReleaseEndsMatchingGrabOnly(t *testing.T) {
	r, store, stack, _ := setup(t)
	s := store.Create(0, 0, 100, 100)
	stack.InsertFront(s)
	r.Motion(1, 10, 10, fakeDamager{})
	r.Button(2, 1, Pressed)

	r.Button(3, 2, Released) // different button, should not end the grab
	if r.Seat.ActiveGrab == nil {
		t.Fatal("grab should still be active after an unrelated button release")
	}
	r.Button(4, 1, Released)
	if r.Seat.ActiveGrab != nil {
		t.Fatal("grab should end on matching button release")
	}
}

func TestBindingFirstMatchWins(t *testing.T) {
	r, _, _, _ := setup(t)
	calls := 0
	r.AddBinding(Binding{Button: 1, Handler: func(*Seat, uint32, any) { calls++ }})
	r.AddBinding(Binding{Button: 1, Handler: func(*Seat, uint32, any) { calls += 100 }})
	r.Button(1, 1, Pressed)
	if calls != 1 {
		t.Fatalf("expected only the first matching binding to fire, calls=%d", calls)
	}
}

func TestLockedSuppressesNonEssentialBindings(t *testing.T) {
	r, _, _, _ := setup(t)
	calls := 0
	r.AddBinding(Binding{Key: 10, Handler: func(*Seat, uint32, any) { calls++ }})
	r.SetLocked(true)
	r.Key(1, 10, KeyPressed)
	if calls != 0 {
		t.Fatalf("expected bindings suppressed while locked, calls=%d", calls)
	}
}

func TestModifierTracking(t *testing.T) {
	r, _, _, _ := setup(t)
	r.mods = ModifierKeys{Ctrl: 100}
	r.Key(1, 100, KeyPressed)
	if r.Seat.Modifiers&ModCtrl == 0 {
		t.Fatal("expected ModCtrl set after Ctrl key press")
	}
	r.Key(2, 100, KeyReleased)
	if r.Seat.Modifiers&ModCtrl != 0 {
		t.Fatal("expected ModCtrl cleared after Ctrl key release")
	}
}

func TestPressedKeysSwapRemove(t *testing.T) {
	r, _, _, _ := setup(t)
	r.Key(1, 1, KeyPressed)
	r.Key(2, 2, KeyPressed)
	r.Key(3, 3, KeyPressed)
	r.Key(4, 2, KeyReleased)
	if len(r.Seat.PressedKeys) != 2 {
		t.Fatalf("expected 2 pressed keys remaining, got %d", len(r.Seat.PressedKeys))
	}
	for _, k := range r.Seat.PressedKeys {
		if k == 2 {
			t.Fatal("key 2 should have been removed")
		}
	}
}
