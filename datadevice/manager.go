// SPDX-License-Identifier: Unlicense OR MIT

package datadevice

import (
	"errors"

	"wlcore.dev/input"
	"wlcore.dev/scene"
)

// ErrNoImplicitGrab is returned by StartDrag when the seat has no active
// grab to take over (spec.md §4.9 "Drag start: requires a valid implicit
// pointer grab at the current time").
var ErrNoImplicitGrab = errors.New("datadevice: drag start requires an active implicit pointer grab")

// Client is the wire-protocol delivery sink for data-device events
// (spec.md §6 "data_offer.../data_device..."), mirroring package input's
// Client: every method names its target surface so one implementation
// fans out to many wire connections.
type Client interface {
	DataOffer(s *scene.Surface, mimeTypes []string)
	DragEnter(s *scene.Surface, time uint32, x, y float32, mimeTypes []string)
	DragLeave(s *scene.Surface, time uint32)
	DragMotion(s *scene.Surface, time uint32, x, y float32)
	Drop(s *scene.Surface, time uint32)
}

// Manager is the C9 data device manager: selection and drag-and-drop,
// both keyed to the seat's keyboard/pointer focus (spec.md §4.9).
type Manager struct {
	seat   *input.Seat
	router *input.Router
	client Client
}

// NewManager returns a Manager serving seat's selection/drag state
// through router, delivering offer/drag events to client.
func NewManager(seat *input.Seat, router *input.Router, client Client) *Manager {
	return &Manager{seat: seat, router: router, client: client}
}

// SetSelection atomically cancels the seat's previous selection source
// and stores src in its place (spec.md §4.9 "Selection set: atomic
// cancel of previous source, store new source").
func (m *Manager) SetSelection(src *Source, time uint32) {
	if old := m.seat.Selection; old != nil {
		old.Cancelled()
	}
	if src != nil {
		src.Ref()
	}
	m.seat.Selection = src
}

// BroadcastSelection implements shell.SelectionBroadcaster: on the next
// keyboard-focus change, offer the current selection's MIME types to the
// newly focused client (spec.md §4.9 "on the next keyboard-focus change
// broadcast a data-offer to the focused client").
func (m *Manager) BroadcastSelection(s *scene.Surface, time uint32) {
	if s == nil || m.seat.Selection == nil {
		return
	}
	src, ok := m.seat.Selection.(*Source)
	if !ok {
		return
	}
	m.client.DataOffer(s, src.MimeTypes)
}

// StartDrag begins a drag-and-drop operation carrying src, taking over
// the seat's current implicit pointer grab (spec.md §4.9 "Drag start:
// requires a valid implicit pointer grab at the current time; installs a
// drag grab that does focus-tracking"). icon is an optional drag-icon
// surface carried alongside the grab and positioned at the pointer
// (original_source/compositor/data-device.c's drag icon, SPEC_FULL.md
// "SUPPLEMENTED FEATURES"); nil if the client supplied none.
func (m *Manager) StartDrag(src *Source, time uint32, icon *scene.Surface) error {
	if m.seat.ActiveGrab == nil {
		return ErrNoImplicitGrab
	}
	src.Ref()
	m.seat.DragSource = src
	grab := &dragGrab{manager: m, source: src, icon: icon}
	m.router.StartGrab(grab, m.seat.GrabButton, time, nil)
	return nil
}
