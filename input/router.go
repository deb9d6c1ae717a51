// SPDX-License-Identifier: Unlicense OR MIT

package input

import "wlcore.dev/scene"

// Client is the wire-protocol delivery sink the router calls into for
// every event (spec.md §6 "Protocol surface"); the transport/marshaller
// itself stays an external collaborator. Every method is told which
// surface it targets because one Client implementation fans out to many
// wire connections, one per client-owned surface.
type Client interface {
	PointerEnter(s *scene.Surface, time uint32, x, y float32)
	PointerLeave(s *scene.Surface, time uint32)
	PointerMotion(s *scene.Surface, time uint32, x, y float32)
	PointerButton(s *scene.Surface, time uint32, b Button, st ButtonState)
	KeyboardEnter(s *scene.Surface, time uint32, keys []Key)
	KeyboardLeave(s *scene.Surface, time uint32)
	Key(s *scene.Surface, time uint32, k Key, st KeyState)
	Modifiers(s *scene.Surface, mods ModMask)
}

// Activator is implemented by the shell (spec.md §4.8 "activate(surface,
// seat, time)"): raise + keyboard-focus + selection-focus, invoked by the
// router on the first button press over an unfocused client surface.
type Activator interface {
	Activate(s *scene.Surface, seat *Seat, time uint32)
}

// Picker is the geometry query the router needs from scene.Store:
// converting a screen point to surface-local coordinates.
type Picker interface {
	TransformPoint(s *scene.Surface, sx, sy float32) (lx, ly int)
}

// Clamper bounds the pointer position to the union of output rectangles
// (spec.md §4.7 "motion"); satisfied by *output.Set.
type Clamper interface {
	ClampToOutputs(x, y float32) (float32, float32)
}

// Router is the C7 input router for a single seat.
type Router struct {
	Seat *Seat

	stack   *scene.Stack
	picker  Picker
	clamper Clamper
	client  Client

	activator Activator
	mods      ModifierKeys

	bindings []Binding
	locked   bool
}

// New returns a Router driving seat over stack, clamping pointer motion
// through clamper, picking focus through picker, and delivering events to
// client.
func New(seat *Seat, stack *scene.Stack, picker Picker, clamper Clamper, client Client, mods ModifierKeys) *Router {
	return &Router{Seat: seat, stack: stack, picker: picker, clamper: clamper, client: client, mods: mods}
}

// SetActivator wires in the shell's activation behavior; done after
// construction because the shell itself is constructed with a reference
// to the Router (button-press activation needs both directions).
func (r *Router) SetActivator(a Activator) { r.activator = a }

// AddBinding registers b. Order matters: the first matching binding wins
// (spec.md §4.7 "scan bindings ... and call the first match").
func (r *Router) AddBinding(b Binding) {
	r.bindings = append(r.bindings, b)
}

// SetLocked sets the locked state used by the shell's lock() call
// (spec.md §4.8). While locked, every binding is skipped; bindings are not
// split into essential and non-essential ones.
func (r *Router) SetLocked(locked bool) { r.locked = locked }

// pick walks the stack top-down and returns the first mapped surface
// whose local coordinates fall inside [0,w) × [0,h) (spec.md §4.7 "Focus
// picking").
func (r *Router) pick(x, y float32) *scene.Surface {
	var hit *scene.Surface
	r.stack.Walk(func(s *scene.Surface) bool {
		lx, ly := r.picker.TransformPoint(s, x, y)
		if lx >= 0 && lx < s.W && ly >= 0 && ly < s.H {
			hit = s
			return false
		}
		return true
	})
	return hit
}

// setPointerFocus updates the seat's pointer focus, delivering leave to
// the old focus strictly before enter to the new one (spec.md §4.7
// "Ordering guarantees"). It subscribes to the new focus's destruction so
// a destroyed focus clears to nil without a synthetic leave being sent to
// the (by then) dead client — the destroy listener runs first and clears
// the field, spec.md §4.7's stated resolution of that race.
func (r *Router) setPointerFocus(s *scene.Surface, time uint32) {
	old := r.Seat.PointerFocus
	if old == s {
		return
	}
	r.Seat.pointerFocusTok.Unsubscribe()
	if old != nil {
		r.client.PointerLeave(old, time)
	}
	r.Seat.PointerFocus = s
	r.Seat.PointerFocusTime = time
	if s != nil {
		r.Seat.pointerFocusTok = s.OnDestroy(func(dead *scene.Surface) {
			if r.Seat.PointerFocus == dead {
				r.Seat.PointerFocus = nil
			}
		})
		r.client.PointerEnter(s, time, r.Seat.PointerX, r.Seat.PointerY)
	}
}

// SetKeyboardFocus moves keyboard focus to s. Exported because the shell
// calls it directly on activation (spec.md §9's resolved ambiguity:
// keyboard focus on activation goes to the top of the stack, not a
// "saved" focus — see SPEC_FULL.md "OPEN QUESTION RESOLUTIONS").
func (r *Router) SetKeyboardFocus(s *scene.Surface, time uint32) {
	old := r.Seat.KeyboardFocus
	if old == s {
		return
	}
	r.Seat.keyboardFocusTok.Unsubscribe()
	if old != nil {
		r.client.KeyboardLeave(old, time)
	}
	r.Seat.KeyboardFocus = s
	if s != nil {
		r.Seat.keyboardFocusTok = s.OnDestroy(func(dead *scene.Surface) {
			if r.Seat.KeyboardFocus == dead {
				r.Seat.KeyboardFocus = nil
			}
		})
		r.client.KeyboardEnter(s, time, append([]Key{}, r.Seat.PressedKeys...))
	}
}

// StartGrab installs grab as the seat's active grab, per spec.md §4.7
// "Entry": emits leave to the current pointer-focus client (so it stops
// seeing motion it did not expect), then activates the grab. target, if
// non-nil, is watched for destruction so the grab ends automatically
// (spec.md §4.7 "Grab state machine", §9 "Destroy listeners"). Exported so
// the shell can install Move/Resize grabs and datadevice can install the
// drag grab.
func (r *Router) StartGrab(grab Grab, button Button, time uint32, target *scene.Surface) {
	if r.Seat.PointerFocus != nil {
		r.client.PointerLeave(r.Seat.PointerFocus, time)
	}
	r.Seat.ActiveGrab = grab
	r.Seat.GrabButton = button
	r.Seat.grabTargetTok.Unsubscribe()
	if target != nil {
		r.Seat.grabTargetTok = target.OnDestroy(func(*scene.Surface) {
			r.EndGrab(time)
		})
	}
}

// EndGrab clears the active grab and repicks pointer focus (spec.md §4.7
// "Exit"). Safe to call when no grab is active.
func (r *Router) EndGrab(time uint32) {
	if r.Seat.ActiveGrab == nil {
		return
	}
	grab := r.Seat.ActiveGrab
	r.Seat.ActiveGrab = nil
	r.Seat.grabTargetTok.Unsubscribe()
	grab.OnEnd(time)
	r.Repick(time)
}

// Repick re-runs focus picking at the seat's current pointer position and
// updates pointer focus accordingly. Exported so the shell can call it
// after a stacking change that isn't itself a motion event (e.g.
// spec.md §4.8 "resume_desktop() ... repicks focus").
func (r *Router) Repick(time uint32) {
	hit := r.pick(r.Seat.PointerX, r.Seat.PointerY)
	r.setPointerFocus(hit, time)
}

// ClearFocus drops both pointer and keyboard focus, delivering the usual
// leave events. Used by the shell's lock() (spec.md §4.8: "clears pointer
// and keyboard focus").
func (r *Router) ClearFocus(time uint32) {
	r.setPointerFocus(nil, time)
	r.SetKeyboardFocus(nil, time)
}

// DefaultMotionGrab installs the implicit grab started on a button press
// over a client surface with no other grab active (spec.md §4.8 "install
// the default motion-grab with button=b"). It keeps delivering motion and
// button events to the originally-focused surface's client even if the
// pointer moves elsewhere, guaranteeing the pressed button's release is
// seen by the same client (spec.md §4.7 "Ordering guarantees").
type DefaultMotionGrab struct {
	client Client
	target *scene.Surface
}

func (g *DefaultMotionGrab) OnMotion(time uint32, x, y float32) {
	g.client.PointerMotion(g.target, time, x, y)
}
func (g *DefaultMotionGrab) OnButton(time uint32, b Button, s ButtonState) {
	g.client.PointerButton(g.target, time, b, s)
}
func (g *DefaultMotionGrab) OnEnd(uint32) {}

// Pick finds the topmost mapped surface containing (x, y) with no side
// effects (spec.md §4.7 "pick_surface"). Exported for package datadevice's
// drag-focus tracking, which must pick independently of pointer focus
// while a drag grab is active.
func (r *Router) Pick(x, y float32) *scene.Surface {
	return r.pick(x, y)
}

// Motion handles pointer motion (spec.md §4.7 "motion(t, x, y)").
func (r *Router) Motion(time uint32, x, y float32, damage scene.Damager) {
	x, y = r.clamper.ClampToOutputs(x, y)

	if sprite := r.Seat.CursorSprite; sprite != nil {
		damage.Damage(sprite.Rect())
	}
	r.Seat.PointerX, r.Seat.PointerY = x, y
	if sprite := r.Seat.CursorSprite; sprite != nil {
		sprite.X = int(x) - r.Seat.HotspotX
		sprite.Y = int(y) - r.Seat.HotspotY
		damage.Damage(sprite.Rect())
	}

	if r.Seat.ActiveGrab != nil {
		r.Seat.ActiveGrab.OnMotion(time, x, y)
		return
	}
	hit := r.pick(x, y)
	r.setPointerFocus(hit, time)
	if hit != nil {
		r.client.PointerMotion(hit, time, x, y)
	}
}

// Button handles pointer button events (spec.md §4.7 "button(t, b, s)").
func (r *Router) Button(time uint32, b Button, s ButtonState) {
	if s == Pressed && r.Seat.ActiveGrab == nil && r.Seat.PointerFocus != nil {
		focus := r.Seat.PointerFocus
		if r.activator != nil {
			r.activator.Activate(focus, r.Seat, time)
		}
		r.StartGrab(&DefaultMotionGrab{client: r.client, target: focus}, b, time, focus)
	}

	if s == Pressed {
		r.scanButtonBindings(b, time)
	}

	if r.Seat.ActiveGrab != nil {
		r.Seat.ActiveGrab.OnButton(time, b, s)
	}

	if s == Released && r.Seat.ActiveGrab != nil && r.Seat.GrabButton == b {
		r.EndGrab(time)
	}
}

// Key handles key events (spec.md §4.7 "key(t, k, s)").
func (r *Router) Key(time uint32, k Key, s KeyState) {
	if s == KeyPressed {
		r.scanKeyBindings(k, time)
	}
	r.updateModifiers(k, s)
	if s == KeyPressed {
		r.Seat.pressKey(k)
	} else {
		r.Seat.releaseKey(k)
	}
	if focus := r.Seat.KeyboardFocus; focus != nil {
		r.client.Key(focus, time, k, s)
	}
}

func (r *Router) updateModifiers(k Key, s KeyState) {
	var bit ModMask
	switch k {
	case r.mods.Ctrl:
		bit = ModCtrl
	case r.mods.Alt:
		bit = ModAlt
	case r.mods.Super:
		bit = ModSuper
	case r.mods.Shift:
		bit = ModShift
	default:
		return
	}
	if s == KeyPressed {
		r.Seat.Modifiers |= bit
	} else {
		r.Seat.Modifiers &^= bit
	}
	if focus := r.Seat.KeyboardFocus; focus != nil {
		r.client.Modifiers(focus, r.Seat.Modifiers)
	}
}

func (r *Router) scanKeyBindings(k Key, time uint32) {
	for _, b := range r.bindings {
		if r.locked {
			continue
		}
		if b.matchesKey(k, r.Seat.Modifiers) {
			b.Handler(r.Seat, time, b.Data)
			return
		}
	}
}

func (r *Router) scanButtonBindings(btn Button, time uint32) {
	for _, b := range r.bindings {
		if r.locked {
			continue
		}
		if b.matchesButton(btn, r.Seat.Modifiers) {
			b.Handler(r.Seat, time, b.Data)
			return
		}
	}
}
