// SPDX-License-Identifier: Unlicense OR MIT

package proto

import (
	"testing"

	"wlcore.dev/datadevice"
	"wlcore.dev/geom"
	"wlcore.dev/input"
	"wlcore.dev/output"
	"wlcore.dev/render"
	"wlcore.dev/scene"
)

type noopDamager struct{}

func (noopDamager) Damage(geom.Rect) {}

type fakeOutputBackend struct{}

func (fakeOutputBackend) PrepareRender() {}
func (fakeOutputBackend) Present()       {}
func (fakeOutputBackend) PrepareScanoutSurface(s *scene.Surface) error {
	return render.ErrScanoutRefused
}
func (fakeOutputBackend) SetHardwareCursor(hx, hy int, tex uint32) error { return nil }

type noopClient struct{}

func (noopClient) PointerEnter(*scene.Surface, uint32, float32, float32)                {}
func (noopClient) PointerLeave(*scene.Surface, uint32)                                  {}
func (noopClient) PointerMotion(*scene.Surface, uint32, float32, float32)               {}
func (noopClient) PointerButton(*scene.Surface, uint32, input.Button, input.ButtonState) {}
func (noopClient) KeyboardEnter(*scene.Surface, uint32, []input.Key)                    {}
func (noopClient) KeyboardLeave(*scene.Surface, uint32)                                 {}
func (noopClient) Key(*scene.Surface, uint32, input.Key, input.KeyState)                {}
func (noopClient) Modifiers(*scene.Surface, input.ModMask)                             {}

type noopDataClient struct{}

func (noopDataClient) DataOffer(*scene.Surface, []string)                         {}
func (noopDataClient) DragEnter(*scene.Surface, uint32, float32, float32, []string) {}
func (noopDataClient) DragLeave(*scene.Surface, uint32)                           {}
func (noopDataClient) DragMotion(*scene.Surface, uint32, float32, float32)        {}
func (noopDataClient) Drop(*scene.Surface, uint32)                               {}

// fakeShell satisfies shell.Shell but neither shell.MoveResizer nor any
// other optional capability, so ShellSurfaceMove/Resize exercise the
// ErrProtocolMisuse path.
type fakeShell struct {
	mapped   []string
	attached []*scene.Surface
}

func (f *fakeShell) MapToplevel(s *scene.Surface, w, h int) { f.mapped = append(f.mapped, "toplevel") }
func (f *fakeShell) MapTransient(s *scene.Surface, parent *scene.Surface, dx, dy, w, h int) {
	f.mapped = append(f.mapped, "transient")
}
func (f *fakeShell) MapFullscreen(s *scene.Surface, w, h int) { f.mapped = append(f.mapped, "fullscreen") }
func (f *fakeShell) MapPanel(s *scene.Surface, w, h int)      { f.mapped = append(f.mapped, "panel") }
func (f *fakeShell) MapBackground(s *scene.Surface, w, h int) { f.mapped = append(f.mapped, "background") }
func (f *fakeShell) Configure(s *scene.Surface, x, y, w, h int)                              {}
func (f *fakeShell) Activate(s *scene.Surface, seat *input.Seat, time uint32)                {}
func (f *fakeShell) Lock()                                                                  {}
func (f *fakeShell) Unlock()                                                                {}
func (f *fakeShell) SetSelectionFocus(selection input.DataSourceRef, s *scene.Surface, time uint32) {}
func (f *fakeShell) Attach(s *scene.Surface) { f.attached = append(f.attached, s) }

type testRig struct {
	d     *Dispatcher
	sh    *fakeShell
	out   *output.Output
	seat  *input.Seat
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	stack := scene.NewStack()
	dev := render.NewSoftwareDevice()
	store := scene.NewStore(stack, noopDamager{}, dev)
	buffers := scene.NewRegistry(dev)
	outputs := output.NewSet(noopDamager{})
	out := output.New(0, 0, 800, 600, false, fakeOutputBackend{})
	outputs.Add(out)

	seat := input.NewSeat()
	router := input.New(seat, stack, store, outputs, noopClient{}, input.ModifierKeys{})
	sh := &fakeShell{}
	dd := datadevice.NewManager(seat, router, noopDataClient{})

	d := NewDispatcher(store, buffers, outputs, sh, router, dd)
	return &testRig{d: d, sh: sh, out: out, seat: seat}
}

func TestCreateSurfaceAndDestroy(t *testing.T) {
	r := newTestRig(t)
	if err := r.d.CreateSurface(1); err != nil {
		t.Fatalf("CreateSurface: %v", err)
	}
	if err := r.d.CreateSurface(1); err != ErrProtocolMisuse {
		t.Fatalf("expected ErrProtocolMisuse re-using a live id, got %v", err)
	}
	if err := r.d.SurfaceDestroy(1); err != nil {
		t.Fatalf("SurfaceDestroy: %v", err)
	}
	if err := r.d.SurfaceDestroy(1); err != ErrUnknownObject {
		t.Fatalf("expected ErrUnknownObject destroying a dead id, got %v", err)
	}
}

func TestSurfaceAttachAssignsOutputAndCallsShellAttach(t *testing.T) {
	r := newTestRig(t)
	r.d.CreateSurface(1)
	r.d.SetToplevel(1, 0, 0)
	if err := r.d.CreateShmBuffer(10, 50, 50, 200, scene.VisualOpaqueRGB, make([]byte, 200*50)); err != nil {
		t.Fatalf("CreateShmBuffer: %v", err)
	}
	if err := r.d.SurfaceAttach(1, 10, 0, 0); err != nil {
		t.Fatalf("SurfaceAttach: %v", err)
	}
	s, err := r.d.surface(1)
	if err != nil {
		t.Fatal(err)
	}
	if s.Output != scene.OutputRef(r.out) {
		t.Fatal("expected SurfaceAttach to assign an output to a mapped surface")
	}
	if len(r.sh.attached) != 1 || r.sh.attached[0] != s {
		t.Fatalf("expected shell.Attach to be called once with the surface, got %v", r.sh.attached)
	}
}

func TestSurfaceAttachUnknownBufferReturnsError(t *testing.T) {
	r := newTestRig(t)
	r.d.CreateSurface(1)
	if err := r.d.SurfaceAttach(1, 999, 0, 0); err != ErrUnknownObject {
		t.Fatalf("expected ErrUnknownObject, got %v", err)
	}
}

func TestSetToplevelCallsShellMapToplevel(t *testing.T) {
	r := newTestRig(t)
	r.d.CreateSurface(1)
	if err := r.d.SetToplevel(1, 300, 200); err != nil {
		t.Fatalf("SetToplevel: %v", err)
	}
	if len(r.sh.mapped) != 1 || r.sh.mapped[0] != "toplevel" {
		t.Fatalf("expected MapToplevel called once, got %v", r.sh.mapped)
	}
}

func TestShellSurfaceMoveRequiresMoveResizer(t *testing.T) {
	r := newTestRig(t)
	r.d.CreateSurface(1)
	r.d.SetToplevel(1, 100, 100)
	if err := r.d.ShellSurfaceMove(1, 0x110, 0); err != ErrProtocolMisuse {
		t.Fatalf("expected ErrProtocolMisuse from a shell with no MoveResizer, got %v", err)
	}
}

func TestInputDeviceAttachIgnoresStaleOrUnfocused(t *testing.T) {
	r := newTestRig(t)
	r.d.CreateSurface(1)
	r.d.SetToplevel(1, 0, 0)
	s, _ := r.d.surface(1)

	if err := r.d.InputDeviceAttach(1, 0, 0, 0, 0); err != nil {
		t.Fatalf("unexpected error for unfocused surface: %v", err)
	}
	if r.seat.CursorSprite != nil {
		t.Fatal("expected no cursor sprite set while surface lacks pointer focus")
	}

	r.seat.PointerFocus = s
	r.seat.PointerFocusTime = 10
	if err := r.d.InputDeviceAttach(1, 0, 5, 0, 0); err != nil {
		t.Fatalf("unexpected error for stale time: %v", err)
	}
	if r.seat.CursorSprite != nil {
		t.Fatal("expected no cursor sprite set for a stale attach time")
	}
}

func TestInputDeviceAttachSetsCursorSprite(t *testing.T) {
	r := newTestRig(t)
	r.d.CreateSurface(1)
	r.d.SetToplevel(1, 0, 0)
	s, _ := r.d.surface(1)
	r.seat.PointerFocus = s
	r.seat.PointerFocusTime = 10

	if err := r.d.CreateShmBuffer(20, 16, 16, 64, scene.VisualStraightARGB, make([]byte, 64*16)); err != nil {
		t.Fatal(err)
	}
	if err := r.d.InputDeviceAttach(1, 20, 10, 3, 4); err != nil {
		t.Fatalf("InputDeviceAttach: %v", err)
	}
	if r.seat.CursorSprite != s {
		t.Fatal("expected the surface to become the seat's cursor sprite")
	}
	if r.seat.HotspotX != 3 || r.seat.HotspotY != 4 {
		t.Fatalf("expected hotspot (3,4), got (%d,%d)", r.seat.HotspotX, r.seat.HotspotY)
	}
}

type geometryRecorder struct {
	calls [][4]int
}

func (g *geometryRecorder) Geometry(x, y, w, h int) {
	g.calls = append(g.calls, [4]int{x, y, w, h})
}

func TestBindOutputEmitsGeometryForEveryOutput(t *testing.T) {
	r := newTestRig(t)
	rec := &geometryRecorder{}
	r.d.BindOutput(rec)
	if len(rec.calls) != 1 || rec.calls[0] != [4]int{0, 0, 800, 600} {
		t.Fatalf("expected one geometry(0,0,800,600) call, got %v", rec.calls)
	}
}

func TestDataSourceOfferAndSetSelection(t *testing.T) {
	r := newTestRig(t)
	if err := r.d.CreateDataSource(1); err != nil {
		t.Fatalf("CreateDataSource: %v", err)
	}
	if err := r.d.OfferMimeType(1, "text/plain"); err != nil {
		t.Fatalf("OfferMimeType: %v", err)
	}
	if err := r.d.SetSelection(1, 0); err != nil {
		t.Fatalf("SetSelection: %v", err)
	}
	if r.seat.Selection == nil {
		t.Fatal("expected SetSelection to set the seat's selection")
	}
}

func TestDataSourceUnknownIDsReturnError(t *testing.T) {
	r := newTestRig(t)
	if err := r.d.OfferMimeType(99, "text/plain"); err != ErrUnknownObject {
		t.Fatalf("expected ErrUnknownObject, got %v", err)
	}
	if err := r.d.SetSelection(99, 0); err != ErrUnknownObject {
		t.Fatalf("expected ErrUnknownObject, got %v", err)
	}
	if err := r.d.StartDrag(99, 0, 0); err != ErrUnknownObject {
		t.Fatalf("expected ErrUnknownObject, got %v", err)
	}
}
