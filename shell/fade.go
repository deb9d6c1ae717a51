// SPDX-License-Identifier: Unlicense OR MIT

package shell

// fadeSpringK mirrors original_source/compositor/meego-tablet-shell.c's
// `wlsc_spring_init(&compositor->fade.spring, 40.0, 1.0, 1.0)` call site
// (spec.md §3 names "fade tweener state" on Compositor without defining
// the constant).
const fadeSpringK = 40.0

// fadeAnimation animates the alpha of a full-screen black fade, started by
// Lock/Unlock towards and away from the lock screen
// (original_source/compositor/compositor.c: wlsc_compositor_fade). Only
// the alpha value is computed; no overlay is drawn from it.
type fadeAnimation struct {
	spring *spring
}

func newFadeAnimation(startAlpha float64) *fadeAnimation {
	return &fadeAnimation{spring: newSpring(fadeSpringK, startAlpha, startAlpha)}
}

// FadeTo starts animating towards target alpha (0 = clear, 1 = opaque
// black) from the current value.
func (f *fadeAnimation) FadeTo(target float64) {
	f.spring.target = target
	f.spring.started = false
}

// Step advances the animation to timeMS and returns the current alpha.
func (f *fadeAnimation) Step(timeMS uint32) float64 {
	return f.spring.step(timeMS)
}

// Done reports whether the fade has reached its target.
func (f *fadeAnimation) Done() bool {
	return f.spring.done()
}
