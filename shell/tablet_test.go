// SPDX-License-Identifier: Unlicense OR MIT

package shell

import (
	"testing"

	"wlcore.dev/input"
	"wlcore.dev/output"
	"wlcore.dev/scene"
)

func newTestTablet(t *testing.T) (*Tablet, *scene.Store, *scene.Stack, *input.Router) {
	t.Helper()
	stack := scene.NewStack()
	store := scene.NewStore(stack, noopDamager{}, &fakeUploader{})
	outputs := output.NewSet(noopDamager{})
	router := input.New(input.NewSeat(), stack, store, noopClamper{}, noopClient{}, input.ModifierKeys{})
	tab := NewTablet(store, stack, outputs, router)
	return tab, store, stack, router
}

func TestTabletFirstMapLeavesStarting(t *testing.T) {
	tab, store, _, _ := newTestTablet(t)
	s := store.Create(0, 0, 0, 0)
	tab.MapToplevel(s, 800, 600)
	if tab.State == TabletStarting {
		t.Fatal("expected state to leave Starting after the first map")
	}
}

func TestTabletLongPressTogglesSwitcher(t *testing.T) {
	tab, _, _, _ := newTestTablet(t)
	tab.State = TabletHome

	tab.HandleMenuKey(true, 1000)
	tab.HandleMenuKey(false, 1000+longPressThresholdMS)

	if tab.State != TabletSwitcher {
		t.Fatalf("expected Switcher after a long press, got %v", tab.State)
	}

	tab.HandleMenuKey(true, 2000)
	tab.HandleMenuKey(false, 2000+longPressThresholdMS)
	if tab.State != TabletHome {
		t.Fatalf("expected a second long press to toggle back to Home, got %v", tab.State)
	}
}

func TestTabletShortPressGoesHome(t *testing.T) {
	tab, _, _, _ := newTestTablet(t)
	tab.State = TabletSwitcher

	tab.HandleMenuKey(true, 1000)
	tab.HandleMenuKey(false, 1000+longPressThresholdMS-1)

	if tab.State != TabletHome {
		t.Fatalf("expected Home after a short press, got %v", tab.State)
	}
}

func TestTabletMenuKeyIgnoredWhileLocked(t *testing.T) {
	tab, _, _, _ := newTestTablet(t)
	tab.State = TabletLocked

	tab.HandleMenuKey(true, 1000)
	tab.HandleMenuKey(false, 1000+longPressThresholdMS)

	if tab.State != TabletLocked {
		t.Fatalf("expected state to stay Locked, got %v", tab.State)
	}
}

func TestTabletZoomAnimatesToEndScaleAndSettles(t *testing.T) {
	tab, store, stack, _ := newTestTablet(t)
	s := store.Create(0, 0, 200, 200)
	stack.InsertFront(s)
	tab.State = TabletHome

	tab.runZoom(s, 0)
	var last float64
	running := true
	for time := uint32(0); running && time < 10000; time += 16 {
		last, running = tab.StepZoom(time)
	}
	if running {
		t.Fatal("expected zoom animation to settle within 10s of simulated time")
	}
	if last < zoomEndScale-0.01 || last > zoomEndScale+0.01 {
		t.Fatalf("expected settled scale near %v, got %v", zoomEndScale, last)
	}
}

func TestTabletActivateSwitcherTogglesInsteadOfZooming(t *testing.T) {
	tab, store, stack, router := newTestTablet(t)
	switcher := store.Create(0, 0, 800, 600)
	stack.InsertFront(switcher)
	tab.SetSwitcher(switcher)
	tab.State = TabletHome

	tab.Activate(switcher, router.Seat, 0)
	if tab.State != TabletSwitcher {
		t.Fatalf("expected activating the switcher surface to toggle state, got %v", tab.State)
	}
	if tab.zoomSurface != nil {
		t.Fatal("expected no zoom animation when activating the switcher surface itself")
	}
}
