// SPDX-License-Identifier: Unlicense OR MIT

// Package compositor implements the C5 compositor loop: it owns the
// accumulated damage region, drives the per-output repaint tick and the
// idle/sleep state machine, and wires the scene graph, output set,
// renderer, input router, shell policy and data device together (spec.md
// §2, §3, §4.5). It is the one package that imports all the others.
package compositor

import (
	"time"

	"wlcore.dev/datadevice"
	"wlcore.dev/geom"
	"wlcore.dev/input"
	"wlcore.dev/output"
	"wlcore.dev/render"
	"wlcore.dev/scene"
	"wlcore.dev/shell"
)

// repaintArmDelay and batchingDeadline are spec.md §4.5's "arm for 1 ms"
// (on fresh damage) and "arm for 5 ms" (batching deadline after a finished
// frame) constants.
const (
	repaintArmDelay  = time.Millisecond
	batchingDeadline = 5 * time.Millisecond
)

// State is the compositor's idle/sleep state
// (original_source/compositor/compositor.h's idle_source/idle_inhibit
// fields; SPEC_FULL.md "Idle/sleep state machine").
type State uint8

const (
	Active State = iota
	Sleeping
)

// Backend is the per-compositor (not per-output) subset of spec.md §6's
// "Backend interface": authenticate(id), create_cursor_image(w,h),
// destroy(), plus the VT-switch hook the default bindings forward to
// (SPEC_FULL.md "Binding registration helpers" — VT switching itself is a
// backend/DRM concern, out of scope per spec.md §1).
type Backend interface {
	Authenticate(id uint32) error
	CreateCursorImage(w, h int) (uint32, error)
	Destroy()
	SwitchVT(vt int) error
}

// FrameClient receives the frame-completion event spec.md §4.5's
// finish_frame callback emits to every surface assigned to the output
// that just finished presenting.
type FrameClient interface {
	Frame(s *scene.Surface, msecs uint32)
}

// Compositor is the C5 root: it owns the damage region, the repaint-tick
// and idle scheduling, and references into every other component
// (spec.md §3 "Compositor").
type Compositor struct {
	Store      *scene.Store
	Stack      *scene.Stack
	Outputs    *output.Set
	Renderer   *render.Renderer
	DataDevice *datadevice.Manager
	Shell      shell.Shell
	Backend    Backend

	// Seats holds every input.Router driving a seat. spec.md §1 excludes
	// multi-seat as a non-goal; this is kept a slice to match the literal
	// data model ("list of Inputs (seats)") but only ever holds one router
	// in practice.
	Seats []*input.Router

	menuKey     input.Key
	frameClient FrameClient

	damage geom.Region

	repaintArmed    bool
	repaintDeadline time.Time

	idleTimeout  time.Duration
	idleInhibit  int
	idleArmed    bool
	idleDeadline time.Time
	state        State
}

// New returns a Compositor with no outputs, seats or damage. idleTimeout
// is the no-activity duration before the compositor enters Sleeping
// (zero disables the idle timer).
func New(store *scene.Store, stack *scene.Stack, outputs *output.Set, renderer *render.Renderer, dd *datadevice.Manager, sh shell.Shell, idleTimeout time.Duration) *Compositor {
	return &Compositor{
		Store:       store,
		Stack:       stack,
		Outputs:     outputs,
		Renderer:    renderer,
		DataDevice:  dd,
		Shell:       sh,
		idleTimeout: idleTimeout,
		state:       Active,
	}
}

// SetFrameClient wires in the wire-protocol sink for frame-completion
// events.
func (c *Compositor) SetFrameClient(fc FrameClient) { c.frameClient = fc }

// SetMenuKey configures the key fed to shell.MenuKeyHandler on both press
// and release instead of to Router.Key (Tablet's long-press/short-press
// switcher toggle, spec.md §4.8): that key is not delivered to clients,
// does not enter the pressed-key list and is not matched against bindings.
func (c *Compositor) SetMenuKey(k input.Key) { c.menuKey = k }

// AddSeat registers a router so its seat participates in idle tracking
// and (if its Shell requires it) menu-key interception.
func (c *Compositor) AddSeat(r *input.Router) {
	c.Seats = append(c.Seats, r)
}

// State reports the current idle/sleep state.
func (c *Compositor) State() State { return c.state }

// InhibitIdle increments the idle-inhibit counter; while non-zero the
// compositor never enters Sleeping (spec.md §3 "idle timer source and
// inhibit counter").
func (c *Compositor) InhibitIdle() { c.idleInhibit++ }

// UninhibitIdle decrements the idle-inhibit counter. A no-op once it
// reaches zero.
func (c *Compositor) UninhibitIdle() {
	if c.idleInhibit > 0 {
		c.idleInhibit--
	}
}

// Damage implements scene.Damager and output.Damager: unions r into the
// accumulated damage region, marks every output as needing a repaint, and
// arms the repaint timer for 1 ms if it isn't already armed (spec.md
// §4.5 "When any mutation schedules repaint").
func (c *Compositor) Damage(r geom.Rect) {
	c.damage = c.damage.UnionRect(r)
	for _, out := range c.Outputs.All() {
		out.RepaintNeeded = true
	}
	c.armRepaint(repaintArmDelay)
}

// armRepaint arms the repaint timer to fire d from now, unless an
// already-armed deadline is earlier: it tightens, never loosens, the
// deadline.
func (c *Compositor) armRepaint(d time.Duration) {
	deadline := time.Now().Add(d)
	if c.repaintArmed && c.repaintDeadline.Before(deadline) {
		return
	}
	c.repaintArmed = true
	c.repaintDeadline = deadline
}

// cursorSprites collects every seat's cursor sprite for out's renderer
// pass, offering each one to out.Backend as a hardware cursor first
// (spec.md §6 "set_hardware_cursor") so the renderer can skip drawing it
// in software when the backend accepts (spec.md §4.6 step 7).
func (c *Compositor) cursorSprites(out *output.Output) []render.CursorSprite {
	sprites := make([]render.CursorSprite, 0, len(c.Seats))
	for _, r := range c.Seats {
		seat := r.Seat
		if seat.CursorSprite == nil {
			continue
		}
		sprite := render.CursorSprite{Surface: seat.CursorSprite}
		if out.Backend != nil {
			sprite.HardwareAccepted = out.Backend.SetHardwareCursor(seat.HotspotX, seat.HotspotY, seat.CursorSprite.Texture) == nil
		}
		sprites = append(sprites, sprite)
	}
	return sprites
}

// Tick runs one repaint-tick pass over every output (spec.md §4.5
// "Repaint tick"). Also steps any running shell animation
// (fade/zoom, shell.Animator) and the idle timer. nowMS is threaded into
// the emitted events as their timestamp.
func (c *Compositor) Tick(nowMS uint32) {
	rearm := false
	for _, out := range c.Outputs.All() {
		if !out.RepaintNeeded {
			continue
		}
		if !out.Finished {
			rearm = true
			continue
		}
		newDamage := c.damage.IntersectRect(out.Bounds())
		c.damage = c.damage.Subtract(newDamage)
		total := newDamage.Union(out.PreviousDamage)
		stats := c.Renderer.Repaint(out, c.Stack, c.cursorSprites(out), total)
		out.Finished = false
		if stats.ScannedOut {
			// The fast path drew nothing; total is still owed a real
			// repaint once scanout stops applying, so it's deferred back
			// into damage and this output stays armed for a retry
			// instead of being retired into PreviousDamage (spec.md §4.6
			// step 3).
			c.damage = c.damage.Union(total)
			rearm = true
			continue
		}
		out.PreviousDamage = newDamage
		out.RepaintNeeded = false
	}
	if rearm {
		c.armRepaint(repaintArmDelay)
	} else {
		c.repaintArmed = false
	}

	if a, ok := c.Shell.(shell.Animator); ok && a.Animate(nowMS) {
		for _, out := range c.Outputs.All() {
			c.Damage(out.Bounds())
		}
	}

	c.tickIdle()
}

// FinishFrame implements the backend's finish_frame(output, msecs)
// callback (spec.md §4.5): every surface currently assigned to out gets a
// frame-completion event, out is marked finished, and the batching
// deadline is (re)armed.
func (c *Compositor) FinishFrame(out *output.Output, msecs uint32) {
	c.Stack.Walk(func(s *scene.Surface) bool {
		if s.Output == scene.OutputRef(out) && c.frameClient != nil {
			c.frameClient.Frame(s, msecs)
		}
		return true
	})
	out.Finished = true
	c.armRepaint(batchingDeadline)
}

// NextTimeoutMS returns how many milliseconds until the next armed
// deadline (repaint or idle), or -1 if nothing is armed. The caller
// (cmd/compositor's event loop) passes this straight into
// internal/evloop.Loop.Run, which has no timing policy of its own.
func (c *Compositor) NextTimeoutMS() int {
	has := false
	var deadline time.Time
	if c.repaintArmed {
		has, deadline = true, c.repaintDeadline
	}
	if c.idleArmed && (!has || c.idleDeadline.Before(deadline)) {
		has, deadline = true, c.idleDeadline
	}
	if !has {
		return -1
	}
	d := time.Until(deadline)
	if d < 0 {
		return 0
	}
	return int(d / time.Millisecond)
}

// tickIdle transitions Active → Sleeping once the idle deadline has
// passed with no inhibitor held.
func (c *Compositor) tickIdle() {
	if c.idleTimeout <= 0 || !c.idleArmed || c.idleInhibit > 0 {
		return
	}
	if time.Now().Before(c.idleDeadline) {
		return
	}
	c.idleArmed = false
	c.state = Sleeping
}

// noteActivity implements original_source/compositor/compositor.h's
// wlsc_compositor_wake: any input activity resumes Active and re-arms the
// idle timer.
func (c *Compositor) noteActivity() {
	if c.idleTimeout <= 0 {
		return
	}
	c.state = Active
	c.idleArmed = true
	c.idleDeadline = time.Now().Add(c.idleTimeout)
}

// Motion, Button and Key wrap the corresponding input.Router methods on
// every registered seat's router with idle-activity tracking and (for
// Key) menu-key interception, so the protocol dispatcher drives input
// through the compositor root rather than the router directly.
func (c *Compositor) Motion(r *input.Router, time uint32, x, y float32) {
	c.noteActivity()
	r.Motion(time, x, y, c)
}

func (c *Compositor) Button(r *input.Router, time uint32, b input.Button, st input.ButtonState) {
	c.noteActivity()
	r.Button(time, b, st)
}

func (c *Compositor) Key(r *input.Router, time uint32, k input.Key, st input.KeyState) {
	c.noteActivity()
	if c.menuKey != 0 && k == c.menuKey {
		if h, ok := c.Shell.(shell.MenuKeyHandler); ok {
			h.HandleMenuKey(st == input.KeyPressed, time)
			return
		}
	}
	r.Key(time, k, st)
}
