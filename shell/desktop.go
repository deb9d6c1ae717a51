// SPDX-License-Identifier: Unlicense OR MIT

package shell

import (
	"math/rand"

	"wlcore.dev/input"
	"wlcore.dev/output"
	"wlcore.dev/scene"
)

// transientMeta records the parent/offset a transient surface was mapped
// with (spec.md §4.8 "Transient → parent position + offset"), recorded
// here rather than on scene.Surface since parent linkage is shell policy,
// not scene-graph state.
type transientMeta struct {
	parent *scene.Surface
	dx, dy int
}

// Desktop is the C8 desktop reference shell (spec.md §4.8 "Desktop
// shell"): panel/normal/background stacking, randomized toplevel
// placement, move/resize grabs, and the lock/unlock state machine.
type Desktop struct {
	store   *scene.Store
	stack   *scene.Stack
	outputs *output.Set
	router  *input.Router
	helper  Helper
	rng     *rand.Rand

	broadcaster SelectionBroadcaster

	panelCount int
	locked     bool
	hidden     []*scene.Surface

	lockSurface  *scene.Surface
	lockSurfTok  scene.DestroyToken
	selectionFor *scene.Surface

	Fade *fadeAnimation

	transients map[*scene.Surface]transientMeta
}

// NewDesktop returns a Desktop shell driving store/stack/outputs/router,
// requesting lock surfaces through helper. rngSeed seeds the toplevel
// placement PRNG (spec.md §4.8 "pseudorandom (10+rand%400, 10+rand%400)");
// deterministic tests pass a fixed seed.
func NewDesktop(store *scene.Store, stack *scene.Stack, outputs *output.Set, router *input.Router, helper Helper, rngSeed int64) *Desktop {
	d := &Desktop{
		store:      store,
		stack:      stack,
		outputs:    outputs,
		router:     router,
		helper:     helper,
		rng:        rand.New(rand.NewSource(rngSeed)),
		Fade:       newFadeAnimation(0),
		transients: make(map[*scene.Surface]transientMeta),
	}
	router.SetActivator(d)
	return d
}

// SetSelectionBroadcaster wires in the data-device manager so Activate's
// keyboard-focus change also triggers a selection broadcast (spec.md §4.9).
func (d *Desktop) SetSelectionBroadcaster(b SelectionBroadcaster) { d.broadcaster = b }

// raiseInLayer moves s to the top of its stacking layer: panels above
// everything, backgrounds below everything, everything else sandwiched
// between (spec.md §4.8 "Stacking, top to bottom: panels, ... backgrounds").
func (d *Desktop) raiseInLayer(s *scene.Surface) {
	switch s.Role {
	case scene.RolePanel:
		d.stack.InsertFront(s)
	case scene.RoleBackground:
		d.stack.Insert(s, d.stack.Len())
	default:
		d.stack.Insert(s, d.panelCount)
	}
}

// MapToplevel places s at a pseudorandom screen position (spec.md §4.8
// "Toplevel → pseudorandom (10+rand%400, 10+rand%400)") and maps it.
func (d *Desktop) MapToplevel(s *scene.Surface, w, h int) {
	x := 10 + d.rng.Intn(400)
	y := 10 + d.rng.Intn(400)
	d.store.Configure(s, x, y, w, h)
	d.raiseInLayer(s)
}

// MapTransient places s at parent's position plus (dx, dy) (spec.md §4.8
// "Transient → parent position + offset").
func (d *Desktop) MapTransient(s *scene.Surface, parent *scene.Surface, dx, dy, w, h int) {
	d.transients[s] = transientMeta{parent: parent, dx: dx, dy: dy}
	d.store.Configure(s, parent.X+dx, parent.Y+dy, w, h)
	d.raiseInLayer(s)
}

// MapFullscreen centers s on its assigned output, saving its prior
// position into SavedX/SavedY (spec.md §4.8 "Fullscreen → centered on
// assigned output; saves prior (x,y) into saved_x/y").
func (d *Desktop) MapFullscreen(s *scene.Surface, w, h int) {
	s.SavedX, s.SavedY = s.X, s.Y
	out := d.outputs.AssignFor(s.X, s.Y)
	x, y := s.X, s.Y
	if out != nil {
		b := out.Bounds()
		x = b.Min.X + (b.Dx()-w)/2
		y = b.Min.Y + (b.Dy()-h)/2
		s.Fullscreen = out
	}
	d.store.Configure(s, x, y, w, h)
	d.raiseInLayer(s)
}

// MapPanel maps s as a panel, always stacked above normal surfaces.
func (d *Desktop) MapPanel(s *scene.Surface, w, h int) {
	d.store.Configure(s, s.X, s.Y, w, h)
	d.panelCount++
	d.raiseInLayer(s)
}

// MapBackground maps s as a background, always stacked at the very
// bottom, and binds it to its assigned output's Background slot so the
// renderer can draw it and output.Set.Move can rebind it.
func (d *Desktop) MapBackground(s *scene.Surface, w, h int) {
	d.store.Configure(s, s.X, s.Y, w, h)
	d.raiseInLayer(s)
	if out := d.outputs.AssignFor(s.X, s.Y); out != nil {
		out.Background = s
	}
}

// Configure implements Shell.Configure: a plain reposition/resize, used
// directly by the protocol dispatcher outside of a grab (e.g. an
// explicit move by the client itself).
func (d *Desktop) Configure(s *scene.Surface, x, y, w, h int) {
	d.store.Configure(s, x, y, w, h)
}

// Activate implements input.Activator and Shell.Activate: raise +
// keyboard-focus + selection-focus (spec.md §4.8 "activate(surface, seat,
// time)").
func (d *Desktop) Activate(s *scene.Surface, seat *input.Seat, time uint32) {
	d.raiseInLayer(s)
	d.router.SetKeyboardFocus(s, time)
	if d.broadcaster != nil {
		d.broadcaster.BroadcastSelection(s, time)
	}
}

// BeginMove installs a move grab on s, started at the seat's current
// pointer position (spec.md §4.8 "Move grab").
func (d *Desktop) BeginMove(s *scene.Surface, seat *input.Seat, button input.Button, time uint32) {
	grab := newMoveGrab(d.store, s, seat.PointerX, seat.PointerY)
	d.router.StartGrab(grab, button, time, s)
}

// BeginResize installs a resize grab on s with the given edge mask
// (spec.md §4.8 "Resize grab: parameterized by an edge bitmask"). Returns
// ErrInvalidEdges for an illegal mask without starting a grab.
func (d *Desktop) BeginResize(s *scene.Surface, seat *input.Seat, edges int, button input.Button, time uint32) error {
	grab, err := newResizeGrab(d.store, s, edges, seat.PointerX, seat.PointerY)
	if err != nil {
		return err
	}
	d.router.StartGrab(grab, button, time, s)
	return nil
}

// SetSelectionFocus implements Shell.SetSelectionFocus: records which
// surface currently holds selection focus.
func (d *Desktop) SetSelectionFocus(selection input.DataSourceRef, s *scene.Surface, time uint32) {
	d.selectionFor = s
	if d.broadcaster != nil {
		d.broadcaster.BroadcastSelection(s, time)
	}
}

// Attach implements Shell.Attach: a no-op hook point for shells that need
// to react to a buffer (re)attach on an already-mapped surface (the
// desktop shell has no such reaction).
func (d *Desktop) Attach(s *scene.Surface) {}

// Animate implements shell.Animator: steps the lock/unlock fade tweener
// (compositor.c: wlsc_compositor_fade) and reports whether it is still
// running, i.e. whether the core needs another repaint to show the next
// frame of the fade.
func (d *Desktop) Animate(timeMS uint32) bool {
	d.Fade.Step(timeMS)
	return !d.Fade.Done()
}

// Lock implements Shell.Lock (spec.md §4.8 "lock() is idempotent; it
// hides every mapped surface except backgrounds ... [and per the
// end-to-end scenario in §8, "panel hides but remains below lock
// surface" — panels and backgrounds stay mapped; only the
// toplevel/transient/fullscreen layer is hidden] ... clears pointer and
// keyboard focus, disables non-essential bindings").
func (d *Desktop) Lock() {
	if d.locked {
		return
	}
	d.locked = true
	d.hidden = d.hidden[:0]
	for _, s := range d.stack.Snapshot() {
		switch s.Role {
		case scene.RolePanel, scene.RoleBackground:
			continue
		}
		d.stack.Remove(s)
		d.hidden = append(d.hidden, s)
	}
	d.router.ClearFocus(0)
	d.router.SetLocked(true)
	d.Fade.FadeTo(1)
	d.helper.Prepare()
}

// AttachLockSurface assigns s the Lock role and stacks it above
// everything else (spec.md §4.8 "the helper later provides a surface
// assigned role Lock which is stacked on top"). Returns
// scene.IsLockedRoleTransition-satisfying error if s already held a role
// that cannot transition to Lock.
func (d *Desktop) AttachLockSurface(s *scene.Surface) error {
	if err := d.store.SetRole(s, scene.RoleLock); err != nil {
		return err
	}
	d.lockSurface = s
	d.lockSurfTok = s.OnDestroy(func(dead *scene.Surface) {
		if d.lockSurface == dead {
			d.lockSurface = nil
		}
	})
	d.stack.InsertFront(s)
	return nil
}

// Unlock implements Shell.Unlock (spec.md §4.8: "if unlocked, no-op; if
// the helper has disconnected, immediately restores hidden surfaces;
// else emits prepare and awaits the helper to clear lock state").
func (d *Desktop) Unlock() {
	if !d.locked {
		return
	}
	if !d.helper.Connected() {
		d.ResumeDesktop()
		return
	}
	d.helper.Prepare()
}

// ResumeDesktop restores the surfaces hidden by Lock just below the
// panel layer, in their original relative order, and repicks pointer
// focus (spec.md §4.8 "resume_desktop() restores hidden surfaces
// (inserted just below the panels) and repicks focus"). Unlock calls it
// immediately when the helper is no longer connected; no other code in
// this module calls it, and destroying the lock surface does not call it.
func (d *Desktop) ResumeDesktop() {
	if !d.locked {
		return
	}
	d.locked = false
	d.lockSurfTok.Unsubscribe()
	if d.lockSurface != nil {
		d.stack.Remove(d.lockSurface)
		d.lockSurface = nil
	}
	for i := len(d.hidden) - 1; i >= 0; i-- {
		d.stack.Insert(d.hidden[i], d.panelCount)
	}
	d.hidden = d.hidden[:0]
	d.router.SetLocked(false)
	d.Fade.FadeTo(0)
	d.router.Repick(0)
}
