// SPDX-License-Identifier: Unlicense OR MIT

package shell

import (
	"wlcore.dev/geom"
	"wlcore.dev/input"
	"wlcore.dev/output"
	"wlcore.dev/scene"
)

// TabletState is the tablet shell's state machine (spec.md §4.8 "a simpler
// state machine {Starting, Locked, Home, Switcher, Task}").
type TabletState int

const (
	TabletStarting TabletState = iota
	TabletLocked
	TabletHome
	TabletSwitcher
	TabletTask
)

func (s TabletState) String() string {
	switch s {
	case TabletStarting:
		return "starting"
	case TabletLocked:
		return "locked"
	case TabletHome:
		return "home"
	case TabletSwitcher:
		return "switcher"
	case TabletTask:
		return "task"
	default:
		return "unknown"
	}
}

// longPressThresholdMS is the menu-key hold duration that distinguishes a
// long press from a short press
// (original_source/compositor/meego-tablet-shell.c:
// "wl_event_source_timer_update(shell->long_press_source, 500)").
const longPressThresholdMS = 500

// zoomSpringK and the 0.3→1.0 scale range mirror
// meego-tablet-shell.c:meego_tablet_zoom_run's
// `wlsc_spring_init(&zoom->spring, 100.0, scale, 1.0)` with `scale = 0.3`.
const (
	zoomSpringK     = 100.0
	zoomStartScale  = 0.3
	zoomEndScale    = 1.0
)

// Tablet is the C8 tablet reference shell (spec.md §4.8 "Tablet shell").
type Tablet struct {
	store   *scene.Store
	stack   *scene.Stack
	outputs *output.Set
	router  *input.Router

	State          TabletState
	previousState  TabletState
	switcherSurface *scene.Surface

	menuDownAt    uint32
	menuPressed   bool

	zoomSurface *scene.Surface
	zoomSpring  *spring
	zoomCenter  geom.Point
}

// NewTablet returns a Tablet shell starting in TabletStarting.
func NewTablet(store *scene.Store, stack *scene.Stack, outputs *output.Set, router *input.Router) *Tablet {
	t := &Tablet{store: store, stack: stack, outputs: outputs, router: router, State: TabletStarting}
	router.SetActivator(t)
	return t
}

func (t *Tablet) setState(s TabletState) {
	t.previousState = t.State
	t.State = s
}

// MapToplevel maps s full-screen at the origin, matching the tablet
// shell's single-maximized-window model; the first mapped surface while
// Starting transitions the state machine to Locked awaiting unlock
// (original_source/compositor/meego-tablet-shell.c: on map, "if
// (shell->state == STATE_STARTING) ... meego_tablet_shell_set_state(shell,
// STATE_LOCKED)").
func (t *Tablet) MapToplevel(s *scene.Surface, w, h int) {
	t.store.Configure(s, 0, 0, w, h)
	t.stack.InsertFront(s)
	if t.State == TabletStarting {
		t.setState(TabletLocked)
		t.previousState = TabletHome
	}
}

func (t *Tablet) MapTransient(s *scene.Surface, parent *scene.Surface, dx, dy, w, h int) {
	t.store.Configure(s, parent.X+dx, parent.Y+dy, w, h)
	t.stack.InsertFront(s)
}

func (t *Tablet) MapFullscreen(s *scene.Surface, w, h int) {
	t.store.Configure(s, 0, 0, w, h)
	t.stack.InsertFront(s)
}

func (t *Tablet) MapPanel(s *scene.Surface, w, h int) {
	t.store.Configure(s, s.X, s.Y, w, h)
	t.stack.InsertFront(s)
}

func (t *Tablet) MapBackground(s *scene.Surface, w, h int) {
	t.store.Configure(s, s.X, s.Y, w, h)
	t.stack.Insert(s, t.stack.Len())
	if out := t.outputs.AssignFor(s.X, s.Y); out != nil {
		out.Background = s
	}
}

func (t *Tablet) Configure(s *scene.Surface, x, y, w, h int) {
	t.store.Configure(s, x, y, w, h)
}

// SetSwitcher registers the task-switcher grid surface
// (original_source/compositor/meego-tablet-shell.c:
// "tablet_shell_set_switcher").
func (t *Tablet) SetSwitcher(s *scene.Surface) {
	t.switcherSurface = s
	s.OnDestroy(func(dead *scene.Surface) {
		if t.switcherSurface == dead {
			t.switcherSurface = nil
			if t.State != TabletLocked {
				t.setState(TabletHome)
			}
		}
	})
}

// Activate runs the zoom-in animation when a task is activated from the
// switcher or home screen (spec.md §4.8 "A zoom animation runs on task
// activation: spring-damped scale from 0.3 → 1.0 around the surface
// centroid"), then raises and keyboard-focuses it.
func (t *Tablet) Activate(s *scene.Surface, seat *input.Seat, time uint32) {
	if t.State == TabletLocked {
		return
	}
	if s == t.switcherSurface {
		t.toggleSwitcher(time)
		return
	}
	t.runZoom(s, time)
	t.stack.Raise(s)
	t.router.SetKeyboardFocus(s, time)
	t.setState(TabletTask)
}

// runZoom starts a spring-damped scale animation centered on s's
// rectangle centroid.
func (t *Tablet) runZoom(s *scene.Surface, time uint32) {
	r := s.Rect()
	t.zoomSurface = s
	t.zoomCenter = geom.Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
	t.zoomSpring = newSpring(zoomSpringK, zoomStartScale, zoomEndScale)
	t.zoomSpring.step(time)
}

// StepZoom advances the running zoom animation and returns the current
// scale and whether the animation is still running. Called by the
// compositor root's repaint tick while a zoom is in flight.
func (t *Tablet) StepZoom(time uint32) (scale float64, running bool) {
	if t.zoomSpring == nil {
		return 1, false
	}
	scale = t.zoomSpring.step(time)
	if t.zoomSpring.done() {
		t.zoomSpring = nil
		t.zoomSurface = nil
		return zoomEndScale, false
	}
	return scale, true
}

// Animate implements shell.Animator by wrapping StepZoom, discarding the
// scale value and reporting only whether to schedule another repaint. The
// scale is not applied to the zoomed surface's transform or to the
// renderer, so the zoom does not change the rendered frame.
func (t *Tablet) Animate(timeMS uint32) bool {
	_, running := t.StepZoom(timeMS)
	return running
}

func (t *Tablet) toggleSwitcher(time uint32) {
	if t.State == TabletSwitcher {
		t.setState(t.previousState)
	} else {
		t.setState(TabletSwitcher)
	}
}

// HandleMenuKey is fed every press/release of the designated menu key by
// the compositor root (not a Binding, since distinguishing long vs. short
// press needs both edges' timestamps — spec.md §4.8 "A long-press on a
// designated menu key toggles the switcher; a short press goes home",
// original_source/compositor/meego-tablet-shell.c:
// "menu_key_binding_handler").
func (t *Tablet) HandleMenuKey(pressed bool, time uint32) {
	if t.State == TabletLocked {
		return
	}
	if pressed {
		t.menuDownAt = time
		t.menuPressed = true
		return
	}
	if !t.menuPressed {
		return
	}
	t.menuPressed = false
	held := time - t.menuDownAt
	if held >= longPressThresholdMS {
		t.toggleSwitcher(time)
		return
	}
	t.setState(TabletHome)
}

// SetSelectionFocus and Attach round out the Shell interface; the tablet
// shell has no selection-UI or per-attach reaction of its own.
func (t *Tablet) SetSelectionFocus(selection input.DataSourceRef, s *scene.Surface, time uint32) {}
func (t *Tablet) Attach(s *scene.Surface)                                                        {}

// Lock moves the tablet shell to its Locked state, mirroring the desktop
// shell's Lock but without a hidden-surface list: the tablet model shows
// at most one maximized surface at a time, so Locked simply blocks
// Activate/HandleMenuKey until Unlock.
func (t *Tablet) Lock() {
	if t.State == TabletLocked {
		return
	}
	t.setState(TabletLocked)
	t.router.ClearFocus(0)
	t.router.SetLocked(true)
}

// Unlock restores the state the tablet shell was in before Lock.
func (t *Tablet) Unlock() {
	if t.State != TabletLocked {
		return
	}
	t.setState(t.previousState)
	t.router.SetLocked(false)
	t.router.Repick(0)
}
