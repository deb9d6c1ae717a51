// SPDX-License-Identifier: Unlicense OR MIT

// Package datadevice implements the C9 data device: selection and
// drag-and-drop offer/accept/drop flow keyed to keyboard focus (spec.md
// §4.9). It depends on input (for Router.StartGrab/Pick and the Seat's
// Selection/DragSource fields) and scene (for the surfaces offers and
// drags target), but neither input nor scene depends back on it.
package datadevice

// Source is a data source: a list of offered MIME types plus a
// reference count (spec.md §4.9 "A DataSource has a list of MIME types
// and a refcount"). It implements input.DataSourceRef so a Seat can hold
// a reference without package input depending on datadevice.
type Source struct {
	MimeTypes []string

	refcount int
	canceled bool
}

// NewSource returns an unreferenced Source offering mimeTypes.
func NewSource(mimeTypes []string) *Source {
	return &Source{MimeTypes: append([]string(nil), mimeTypes...)}
}

// Ref increments the reference count, taken once per seat.Selection or
// seat.DragSource assignment.
func (s *Source) Ref() { s.refcount++ }

// Unref decrements the reference count; the caller that drops the last
// reference is responsible for any client-side destroy notification.
func (s *Source) Unref() {
	if s.refcount > 0 {
		s.refcount--
	}
}

// Refcount reports the current reference count.
func (s *Source) Refcount() int { return s.refcount }

// Cancelled implements input.DataSourceRef: called by the manager when a
// new selection/drag source replaces this one, or when the seat is torn
// down (spec.md §4.9 "Selection set: atomic cancel of previous source").
func (s *Source) Cancelled() { s.canceled = true }

// Canceled reports whether Cancelled has already run for s.
func (s *Source) Canceled() bool { return s.canceled }
