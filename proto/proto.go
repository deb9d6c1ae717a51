// SPDX-License-Identifier: Unlicense OR MIT

// Package proto implements the §6 protocol surface: typed requests the
// wire-level client protocol translates into calls on the core
// (compositor.create_surface, surface.attach, shell_surface.move, the
// data-device chain, ...). The wire marshaller that reads/writes the
// actual byte protocol and owns client connections stays an external
// collaborator (spec.md §6); this package only owns the id ↔ object maps
// a transport keys its wire objects by, and the translation from request
// to core call.
package proto

import (
	"errors"

	"wlcore.dev/datadevice"
	"wlcore.dev/input"
	"wlcore.dev/output"
	"wlcore.dev/scene"
	"wlcore.dev/shell"
)

// ErrUnknownObject is returned for a request naming an id the dispatcher
// has no live object for.
var ErrUnknownObject = errors.New("proto: unknown object id")

// ErrProtocolMisuse covers spec.md §7's "Protocol misuse" taxonomy entry
// for double-bound singleton ids. Role transitions the core itself
// rejects (e.g. Lock → anything) are not mapped to it: the role setters
// return scene's own error unchanged, which scene.IsLockedRoleTransition
// recognizes. Per spec.md §7 the caller (the real transport) is responsible for dropping
// the offending client connection.
var ErrProtocolMisuse = errors.New("proto: protocol misuse")

// OutputClient receives the output.geometry event a client is sent on
// bind (spec.md §6 "output — emits geometry(x,y,w,h) to clients on
// bind").
type OutputClient interface {
	Geometry(x, y, w, h int)
}

// Dispatcher is the §6 protocol surface. One Dispatcher serves every
// client connected to a single compositor instance; the real transport
// demultiplexes wire connections down to calls on it.
type Dispatcher struct {
	Store   *scene.Store
	Buffers *scene.Registry
	Outputs *output.Set
	Shell   shell.Shell
	Router  *input.Router
	Data    *datadevice.Manager

	surfaces map[uint32]*scene.Surface
	buffers  map[uint32]*scene.Buffer
	sources  map[uint32]*datadevice.Source
}

// NewDispatcher returns a Dispatcher with empty object tables.
func NewDispatcher(store *scene.Store, buffers *scene.Registry, outputs *output.Set, sh shell.Shell, router *input.Router, data *datadevice.Manager) *Dispatcher {
	return &Dispatcher{
		Store: store, Buffers: buffers, Outputs: outputs, Shell: sh, Router: router, Data: data,
		surfaces: make(map[uint32]*scene.Surface),
		buffers:  make(map[uint32]*scene.Buffer),
		sources:  make(map[uint32]*datadevice.Source),
	}
}

func (d *Dispatcher) surface(id uint32) (*scene.Surface, error) {
	s, ok := d.surfaces[id]
	if !ok {
		return nil, ErrUnknownObject
	}
	return s, nil
}

// CreateSurface implements compositor.create_surface(id): creates a
// Surface bound to the new object id.
func (d *Dispatcher) CreateSurface(id uint32) error {
	if _, exists := d.surfaces[id]; exists {
		return ErrProtocolMisuse
	}
	d.surfaces[id] = d.Store.Create(0, 0, 0, 0)
	return nil
}

// SurfaceDestroy implements surface.destroy.
func (d *Dispatcher) SurfaceDestroy(id uint32) error {
	s, err := d.surface(id)
	if err != nil {
		return err
	}
	d.Store.Destroy(s)
	delete(d.surfaces, id)
	return nil
}

// CreateShmBuffer and CreateDriverImageBuffer implement the buffer half
// of surface.attach's argument (spec.md §4.3): a real transport creates
// the Buffer object from a separate pool/buffer request pair; buffers are
// keyed by id the same way surfaces are.
func (d *Dispatcher) CreateShmBuffer(id uint32, w, h, pitch int, visual scene.Visual, pixels []byte) error {
	if _, exists := d.buffers[id]; exists {
		return ErrProtocolMisuse
	}
	b := d.Buffers.Create(scene.BufferShm, w, h, pitch, visual)
	b.Pixels = pixels
	d.buffers[id] = b
	return nil
}

func (d *Dispatcher) CreateDriverImageBuffer(id uint32, w, h int, visual scene.Visual, handle any) error {
	if _, exists := d.buffers[id]; exists {
		return ErrProtocolMisuse
	}
	b := d.Buffers.Create(scene.BufferDriverImage, w, h, 0, visual)
	b.Handle = handle
	d.buffers[id] = b
	return nil
}

// DestroyBuffer releases a buffer object, detaching it from every surface
// still referencing it (spec.md §4.3 "Destroy detaches from every
// surface").
func (d *Dispatcher) DestroyBuffer(id uint32) error {
	b, ok := d.buffers[id]
	if !ok {
		return ErrUnknownObject
	}
	d.Buffers.Destroy(b)
	delete(d.buffers, id)
	return nil
}

// SurfaceAttach implements surface.attach(buffer, dx, dy). bufferID == 0
// detaches the surface's current buffer (a client "unmapping" attach).
func (d *Dispatcher) SurfaceAttach(surfaceID, bufferID uint32, dx, dy int) error {
	s, err := d.surface(surfaceID)
	if err != nil {
		return err
	}
	var buf *scene.Buffer
	if bufferID != 0 {
		var ok bool
		buf, ok = d.buffers[bufferID]
		if !ok {
			return ErrUnknownObject
		}
	}
	if err := d.Store.AttachBuffer(s, buf, dx, dy); err != nil {
		// spec.md §7 "Resource failure": sentinel propagated to the
		// caller, the surface's previous texture stays bound.
		return err
	}
	if s.Role.Mapped() {
		s.Output = d.Outputs.AssignFor(s.X, s.Y)
		d.Shell.Attach(s)
	}
	return nil
}

// SurfaceDamage implements surface.damage(x,y,w,h): schedules repaint and,
// for an shm-backed surface, re-uploads the buffer's pixels (spec.md
// §4.3).
func (d *Dispatcher) SurfaceDamage(surfaceID uint32, x, y, w, h int) error {
	s, err := d.surface(surfaceID)
	if err != nil {
		return err
	}
	d.Store.DamageRect(s, x, y, w, h)
	if s.Buffer != nil && s.Buffer.Kind == scene.BufferShm {
		return d.Buffers.Damage(s.Buffer)
	}
	return nil
}

// SetToplevel, SetTransient, SetFullscreen, SetPanel and SetBackground
// implement the role setters (spec.md §6 "set_toplevel,
// set_transient(parent,x,y,flags), set_fullscreen"; panel/background are
// this core's two additional chrome roles, named after the Shell method
// each calls).
func (d *Dispatcher) SetToplevel(surfaceID uint32, w, h int) error {
	s, err := d.surface(surfaceID)
	if err != nil {
		return err
	}
	if err := d.Store.SetRole(s, scene.RoleToplevel); err != nil {
		return err
	}
	d.Shell.MapToplevel(s, w, h)
	return nil
}

func (d *Dispatcher) SetTransient(surfaceID, parentID uint32, dx, dy, w, h int) error {
	s, err := d.surface(surfaceID)
	if err != nil {
		return err
	}
	parent, err := d.surface(parentID)
	if err != nil {
		return err
	}
	if err := d.Store.SetRole(s, scene.RoleTransient); err != nil {
		return err
	}
	d.Shell.MapTransient(s, parent, dx, dy, w, h)
	return nil
}

func (d *Dispatcher) SetFullscreen(surfaceID uint32, w, h int) error {
	s, err := d.surface(surfaceID)
	if err != nil {
		return err
	}
	if err := d.Store.SetRole(s, scene.RoleFullscreen); err != nil {
		return err
	}
	d.Shell.MapFullscreen(s, w, h)
	return nil
}

func (d *Dispatcher) SetPanel(surfaceID uint32, w, h int) error {
	s, err := d.surface(surfaceID)
	if err != nil {
		return err
	}
	if err := d.Store.SetRole(s, scene.RolePanel); err != nil {
		return err
	}
	d.Shell.MapPanel(s, w, h)
	return nil
}

func (d *Dispatcher) SetBackground(surfaceID uint32, w, h int) error {
	s, err := d.surface(surfaceID)
	if err != nil {
		return err
	}
	if err := d.Store.SetRole(s, scene.RoleBackground); err != nil {
		return err
	}
	d.Shell.MapBackground(s, w, h)
	return nil
}

// ShellSurfaceMove and ShellSurfaceResize implement
// shell_surface.move(input,time)/.resize(input,time,edges). Both require
// the configured Shell to satisfy shell.MoveResizer (spec.md §4.8's
// move/resize grabs are a Desktop-only concept; a shell with no such
// notion, e.g. Tablet, reports ErrProtocolMisuse instead of panicking on
// a missing method).
func (d *Dispatcher) ShellSurfaceMove(surfaceID uint32, button input.Button, time uint32) error {
	s, err := d.surface(surfaceID)
	if err != nil {
		return err
	}
	mr, ok := d.Shell.(shell.MoveResizer)
	if !ok {
		return ErrProtocolMisuse
	}
	mr.BeginMove(s, d.Router.Seat, button, time)
	return nil
}

func (d *Dispatcher) ShellSurfaceResize(surfaceID uint32, edges int, button input.Button, time uint32) error {
	s, err := d.surface(surfaceID)
	if err != nil {
		return err
	}
	mr, ok := d.Shell.(shell.MoveResizer)
	if !ok {
		return ErrProtocolMisuse
	}
	return mr.BeginResize(s, d.Router.Seat, edges, button, time)
}

// InputDeviceAttach implements input_device.attach(time, buffer, hx, hy):
// a client sets its own cursor, accepted only while pointer-focus belongs
// to it and time ≥ pointer_focus_time (spec.md §6); a stale or
// out-of-focus attach is silently ignored rather than reported as an
// error, matching the spec's staleness guard rather than a misuse.
func (d *Dispatcher) InputDeviceAttach(surfaceID, bufferID uint32, time uint32, hotspotX, hotspotY int) error {
	s, err := d.surface(surfaceID)
	if err != nil {
		return err
	}
	seat := d.Router.Seat
	if seat.PointerFocus != s || time < seat.PointerFocusTime {
		return nil
	}
	if bufferID == 0 {
		seat.CursorSprite = nil
		return nil
	}
	buf, ok := d.buffers[bufferID]
	if !ok {
		return ErrUnknownObject
	}
	if err := d.Store.AttachBuffer(s, buf, 0, 0); err != nil {
		return err
	}
	seat.CursorSprite = s
	seat.HotspotX, seat.HotspotY = hotspotX, hotspotY
	return nil
}

// BindOutput implements "output emits geometry(x,y,w,h) to clients on
// bind": the dispatcher has no per-client bind registry of its own (a
// real transport tracks which client bound which output), so it simply
// reports every live output's current geometry to client immediately.
func (d *Dispatcher) BindOutput(client OutputClient) {
	for _, out := range d.Outputs.All() {
		b := out.Bounds()
		client.Geometry(b.Min.X, b.Min.Y, b.Dx(), b.Dy())
	}
}

// CreateDataSource implements data_source_manager.create_data_source(id).
func (d *Dispatcher) CreateDataSource(id uint32) error {
	if _, exists := d.sources[id]; exists {
		return ErrProtocolMisuse
	}
	d.sources[id] = datadevice.NewSource(nil)
	return nil
}

// OfferMimeType implements data_source.offer(mime).
func (d *Dispatcher) OfferMimeType(sourceID uint32, mime string) error {
	src, ok := d.sources[sourceID]
	if !ok {
		return ErrUnknownObject
	}
	src.MimeTypes = append(src.MimeTypes, mime)
	return nil
}

// DestroySource implements data_source.destroy.
func (d *Dispatcher) DestroySource(id uint32) error {
	if _, ok := d.sources[id]; !ok {
		return ErrUnknownObject
	}
	delete(d.sources, id)
	return nil
}

// SetSelection implements data_device.set_selection. sourceID == 0 clears
// the current selection.
func (d *Dispatcher) SetSelection(sourceID uint32, time uint32) error {
	var src *datadevice.Source
	if sourceID != 0 {
		var ok bool
		src, ok = d.sources[sourceID]
		if !ok {
			return ErrUnknownObject
		}
	}
	d.Data.SetSelection(src, time)
	return nil
}

// StartDrag implements data_device.start_drag, with an optional icon
// surface (SPEC_FULL.md "data-device.c drag icon surface").
func (d *Dispatcher) StartDrag(sourceID uint32, time uint32, iconSurfaceID uint32) error {
	src, ok := d.sources[sourceID]
	if !ok {
		return ErrUnknownObject
	}
	var icon *scene.Surface
	if iconSurfaceID != 0 {
		var err error
		icon, err = d.surface(iconSurfaceID)
		if err != nil {
			return err
		}
	}
	return d.Data.StartDrag(src, time, icon)
}
