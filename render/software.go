// SPDX-License-Identifier: Unlicense OR MIT

package render

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
	"wlcore.dev/geom"
	"wlcore.dev/internal/texpool"
	"wlcore.dev/scene"
)

// ErrUnknownTexture is returned when a caller passes a texture name this
// device never allocated (e.g. a name from a different Device instance).
var ErrUnknownTexture = errors.New("render: unknown texture name")

// texture is the pixel content bound to a pooled name. Pooling names
// (instead of handing out an ever-incrementing counter) mirrors the driver
// behavior spec.md §6 abstracts away as "destroy(name)" — most GPU drivers
// reuse freed names rather than exhausting a namespace.
type texture struct {
	img *image.RGBA
}

// SoftwareDevice is a headless render.Device: it has no GPU context and
// keeps every texture as a plain image.RGBA, so the core's render path can
// be exercised (and tested) with no EGL/driver available, the same role
// the teacher's headless GPU context plays for its own tests. It uses
// the standard library's image/draw to convert a shm Buffer's possibly-padded rows
// (pitch != width*4) into a tightly packed RGBA texture, and
// package texpool to recycle texture names instead of a bare counter.
type SoftwareDevice struct {
	mu     sync.Mutex
	names  *texpool.Pool
	byName map[uint32]*texture

	proj geom.Mat4
	fb   *image.RGBA
}

// NewSoftwareDevice returns a ready SoftwareDevice with no bound
// framebuffer; call SetFramebuffer before the first Repaint.
func NewSoftwareDevice() *SoftwareDevice {
	return &SoftwareDevice{names: texpool.New(), byName: make(map[uint32]*texture)}
}

// SetFramebuffer binds the software canvas that Draw and ClearRegion paint
// into, e.g. the software scanout buffer for one output. Passing nil
// makes Draw/ClearRegion no-ops, matching a backend with no output
// currently attached.
func (d *SoftwareDevice) SetFramebuffer(fb *image.RGBA) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fb = fb
}

// AllocTexture implements scene.TextureUploader by borrowing a recycled
// name from the pool, minting a fresh one when none is free (texpool.New
// configures an unbounded pool, so Acquire never blocks).
func (d *SoftwareDevice) AllocTexture() (uint32, error) {
	tex, err := d.names.Acquire()
	if err != nil {
		return 0, err
	}
	d.mu.Lock()
	d.byName[tex] = &texture{}
	d.mu.Unlock()
	return tex, nil
}

// ReleaseTexture implements scene.TextureUploader, returning tex's name to
// the pool for reuse by a future AllocTexture call.
func (d *SoftwareDevice) ReleaseTexture(tex uint32) {
	d.mu.Lock()
	_, ok := d.byName[tex]
	delete(d.byName, tex)
	d.mu.Unlock()
	if !ok {
		return
	}
	d.names.Release(tex)
}

// UploadImage implements scene.TextureUploader: it converts the shm pixels
// (Buffer.Pitch may exceed Buffer.Width*4, the padding spec.md §4.3 warns
// sub-image upload can't assume away) into a tightly packed image.RGBA via
// image/draw, then binds it to tex, allocating tex first if it is zero.
func (d *SoftwareDevice) UploadImage(tex uint32, w, h, pitch int, pixels []byte) (uint32, error) {
	if tex == 0 {
		var err error
		tex, err = d.AllocTexture()
		if err != nil {
			return 0, err
		}
	}
	d.mu.Lock()
	t, ok := d.byName[tex]
	d.mu.Unlock()
	if !ok {
		return 0, ErrUnknownTexture
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if len(pixels) > 0 && w > 0 && h > 0 {
		src := &image.RGBA{Pix: pixels, Stride: pitch, Rect: image.Rect(0, 0, w, h)}
		draw.Draw(dst, dst.Bounds(), src, image.Point{}, draw.Src)
	}

	d.mu.Lock()
	t.img = dst
	d.mu.Unlock()
	return tex, nil
}

// NewDriverImage implements scene.TextureUploader for BufferDriverImage
// buffers: their pixels already live on the GPU side (buf.Handle), so this
// device, which has no GPU side, records an empty texture binding rather
// than attempting any pixel conversion.
func (d *SoftwareDevice) NewDriverImage(tex uint32, buf *scene.Buffer) (uint32, error) {
	if tex == 0 {
		return d.AllocTexture()
	}
	return tex, nil
}

// BindProjection implements render.Device, recording the projection
// matrix for the output about to be drawn.
func (d *SoftwareDevice) BindProjection(m geom.Mat4) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.proj = m
}

// Draw implements render.Device, nearest-neighbor sampling q.Tex's pixels
// into q.Dst on the bound framebuffer, honoring the straight/premultiplied
// blend policy from BlendFor. A nil framebuffer or unknown texture makes
// this a silent no-op, matching a scanned-out or not-yet-rendered output.
func (d *SoftwareDevice) Draw(q Quad) {
	d.mu.Lock()
	fb := d.fb
	t := d.byName[q.Tex]
	d.mu.Unlock()
	if fb == nil || t == nil || t.img == nil {
		return
	}

	dw, dh := q.Dst.Dx(), q.Dst.Dy()
	if dw <= 0 || dh <= 0 {
		return
	}
	sw, sh := float64(t.img.Bounds().Dx()), float64(t.img.Bounds().Dy())
	for y := 0; y < dh; y++ {
		v := float64(q.UVMin.Y) + (float64(q.UVMax.Y)-float64(q.UVMin.Y))*float64(y)/float64(dh)
		sy := int(v * sh)
		for x := 0; x < dw; x++ {
			u := float64(q.UVMin.X) + (float64(q.UVMax.X)-float64(q.UVMin.X))*float64(x)/float64(dw)
			sx := int(u * sw)
			src := t.img.RGBAAt(sx, sy)
			dx, dy := q.Dst.Min.X+x, q.Dst.Min.Y+y
			if !q.Blend.Enabled {
				fb.SetRGBA(dx, dy, src)
				continue
			}
			fb.Set(dx, dy, blendOver(fb.RGBAAt(dx, dy), src))
		}
	}
}

// blendOver composites src straight-over dst, the common case for both
// BlendPremultiplied and BlendStraight at the software-sampling precision
// this headless device targets (spec.md §1 treats exact shader blend
// equations as out of scope).
func blendOver(dst, src color.RGBA) color.RGBA {
	a := float64(src.A) / 255
	lerp := func(s, d uint8) uint8 { return uint8(float64(s)*a + float64(d)*(1-a)) }
	return color.RGBA{
		R: lerp(src.R, dst.R),
		G: lerp(src.G, dst.G),
		B: lerp(src.B, dst.B),
		A: uint8(float64(src.A) + float64(dst.A)*(1-a)),
	}
}

// ClearRegion implements render.Device, filling every rectangle in region
// with the given color on the bound framebuffer.
func (d *SoftwareDevice) ClearRegion(region geom.Region, r, g, b, a float32) {
	d.mu.Lock()
	fb := d.fb
	d.mu.Unlock()
	if fb == nil {
		return
	}
	c := color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: uint8(a * 255)}
	region.ForEach(func(rect geom.Rect) {
		draw.Draw(fb, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Max.Y), &image.Uniform{C: c}, image.Point{}, draw.Src)
	})
}
