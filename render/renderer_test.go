// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"testing"

	"wlcore.dev/geom"
	"wlcore.dev/output"
	"wlcore.dev/scene"
)

type fakeDevice struct {
	quads   []Quad
	cleared []geom.Region
	nextTex uint32
}

func (d *fakeDevice) UploadImage(tex uint32, w, h, pitch int, pixels []byte) (uint32, error) {
	if tex == 0 {
		d.nextTex++
		tex = d.nextTex
	}
	return tex, nil
}
func (d *fakeDevice) NewDriverImage(tex uint32, b *scene.Buffer) (uint32, error) {
	if tex == 0 {
		d.nextTex++
		tex = d.nextTex
	}
	return tex, nil
}
func (d *fakeDevice) AllocTexture() (uint32, error) {
	d.nextTex++
	return d.nextTex, nil
}
func (d *fakeDevice) ReleaseTexture(tex uint32) {}
func (d *fakeDevice) BindProjection(m geom.Mat4) {}
func (d *fakeDevice) Draw(q Quad)                { d.quads = append(d.quads, q) }
func (d *fakeDevice) ClearRegion(r geom.Region, cr, cg, cb, ca float32) {
	d.cleared = append(d.cleared, r)
}

type fakeBackend struct {
	scanoutErr error
	presented  int
}

func (b *fakeBackend) PrepareRender() {}
func (b *fakeBackend) Present()       { b.presented++ }
func (b *fakeBackend) PrepareScanoutSurface(s *scene.Surface) error {
	return b.scanoutErr
}
func (b *fakeBackend) SetHardwareCursor(hx, hy int, tex uint32) error { return nil }

func mkSurface(x, y, w, h int, v scene.Visual, tex uint32) *scene.Surface {
	stack := scene.NewStack()
	store := scene.NewStore(stack, noopDamager{}, &fakeDevice{})
	s := store.Create(x, y, w, h)
	s.Visual = v
	s.Texture = tex
	s.Role = scene.RoleToplevel
	stack.InsertFront(s)
	return s
}

type noopDamager struct{}

func (noopDamager) Damage(geom.Rect) {}

func TestOverdrawElimination(t *testing.T) {
	stack := scene.NewStack()
	a := mkSurface(0, 0, 1024, 768, scene.VisualOpaqueRGB, 1)
	b := mkSurface(200, 200, 500, 500, scene.VisualOpaqueRGB, 2)
	stack.Remove(a)
	stack.Remove(b)
	stack.InsertBack(a)
	stack.InsertFront(b) // b on top

	dev := &fakeDevice{}
	rn := New(dev)
	out := output.New(0, 0, 1024, 768, false, &fakeBackend{})
	damage := geom.RegionOf(geom.Rectangle(0, 0, 1024, 768))

	stats := rn.Repaint(out, stack, nil, damage)

	// B draws fully (1 rect); A draws only the area not covered by B.
	bArea := 500 * 500
	aArea := 1024*768 - bArea
	var drawnA, drawnB int
	for _, q := range dev.quads {
		area := q.Dst.Dx() * q.Dst.Dy()
		switch q.Tex {
		case 1:
			drawnA += area
		case 2:
			drawnB += area
		}
	}
	if drawnB != bArea {
		t.Fatalf("B should draw its full area %d, drew %d", bArea, drawnB)
	}
	if drawnA != aArea {
		t.Fatalf("A should draw only %d (screen minus B), drew %d", aArea, drawnA)
	}
	if stats.OpaqueQuads == 0 {
		t.Fatal("expected opaque quads recorded in stats")
	}
}

func TestFullscreenScanoutSkipsDraws(t *testing.T) {
	stack := scene.NewStack()
	s := mkSurface(0, 0, 1024, 768, scene.VisualOpaqueRGB, 1)
	s.Role = scene.RoleFullscreen
	out := output.New(0, 0, 1024, 768, false, &fakeBackend{})
	s.Fullscreen = out

	dev := &fakeDevice{}
	rn := New(dev)
	damage := geom.RegionOf(geom.Rectangle(0, 0, 1024, 768))
	stats := rn.Repaint(out, stack, nil, damage)

	if !stats.ScannedOut {
		t.Fatal("expected scanout to be used")
	}
	if len(dev.quads) != 0 {
		t.Fatalf("expected zero draw calls on scanout, got %d", len(dev.quads))
	}
}

func TestFullscreenScanoutFallback(t *testing.T) {
	stack := scene.NewStack()
	s := mkSurface(0, 0, 1024, 768, scene.VisualOpaqueRGB, 1)
	stack.InsertFront(s)
	s.Role = scene.RoleFullscreen
	backend := &fakeBackend{scanoutErr: ErrScanoutRefused}
	out := output.New(0, 0, 1024, 768, false, backend)
	s.Fullscreen = out

	dev := &fakeDevice{}
	rn := New(dev)
	damage := geom.RegionOf(geom.Rectangle(0, 0, 1024, 768))
	stats := rn.Repaint(out, stack, nil, damage)

	if stats.ScannedOut {
		t.Fatal("expected software fallback when scanout is refused")
	}
	if len(dev.quads) == 0 {
		t.Fatal("expected the full surface to be drawn in software fallback")
	}
}
