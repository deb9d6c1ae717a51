// SPDX-License-Identifier: Unlicense OR MIT

// Command compositor wires the C2..C9 core into a runnable process: it
// parses the §6 CLI surface, builds the scene/output/render/input/shell/
// data-device graph, and drives it from a poll-based event loop. Per
// spec.md §1 the transport-layer protocol marshaller, the GPU context and
// the backend output drivers (KMS/X11/nested) are external collaborators;
// this command stands in for them with the headless render.SoftwareDevice
// and a backend stub, the same way the teacher's cmd/gogio drives gio's
// app package over whichever platform backend its build tags select.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"wlcore.dev/compositor"
	"wlcore.dev/datadevice"
	"wlcore.dev/geom"
	"wlcore.dev/input"
	"wlcore.dev/internal/evloop"
	"wlcore.dev/output"
	"wlcore.dev/proto"
	"wlcore.dev/render"
	"wlcore.dev/scene"
	"wlcore.dev/shell"
)

// lazyDamager forwards to a *compositor.Compositor set after construction,
// breaking the construction cycle between scene.Store/output.Set (which
// need a Damager up front) and Compositor (which needs Store/Outputs
// already built), the same pattern the compositor package's own tests use.
type lazyDamager struct{ c *compositor.Compositor }

func (d *lazyDamager) Damage(r geom.Rect) {
	if d.c != nil {
		d.c.Damage(r)
	}
}

var (
	flagBackground = flag.String("background", "", "path to a background image; decoding it into pixels is handled by the external protocol/backend layer, not this core")
	flagConnector  = flag.Int("connector", 0, "backend output connector id")
	flagGeometry   = flag.String("geometry", "1024x768", "output geometry, WxH")
	flagSocket     = flag.String("socket", "wayland-0", "client listen socket name")
)

// config is spec.md §9's "Global mutable CLI state" moved into an
// explicit value constructed once in main, rather than package-level
// flag variables read throughout the program.
type config struct {
	Background string
	Connector  int
	Width      int
	Height     int
	Socket     string
}

func parseConfig() (config, error) {
	flag.Parse()
	var w, h int
	if _, err := fmt.Sscanf(*flagGeometry, "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return config{}, fmt.Errorf("invalid --geometry %q, want WxH", *flagGeometry)
	}
	return config{
		Background: *flagBackground,
		Connector:  *flagConnector,
		Width:      w,
		Height:     h,
		Socket:     *flagSocket,
	}, nil
}

// backendKind reports which backend the environment selects (spec.md §6
// "Environment selects backend: WAYLAND_DISPLAY → nested; DISPLAY → X11;
// else DRM/KMS"). The concrete drivers are out of scope (spec.md §1); this
// only decides what to log before falling back to the headless backend
// every build of this command actually ships.
func backendKind() string {
	switch {
	case os.Getenv("WAYLAND_DISPLAY") != "":
		return "nested"
	case os.Getenv("DISPLAY") != "":
		return "x11"
	default:
		return "drm"
	}
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("backend environment selects %q; running the headless reference device (hardware drivers are out of scope)", backendKind())

	loop, err := evloop.New()
	if err != nil {
		log.Fatalf("event loop: %v", err)
	}
	defer loop.Close()

	// compositor.Compositor is itself the Damager scene.Store/output.Set
	// need at construction, but it needs Store/Outputs already built to
	// construct itself; shim breaks the cycle the same way the package's
	// own tests do, forwarding once comp exists.
	shim := &lazyDamager{}
	stack := scene.NewStack()
	dev := render.NewSoftwareDevice()
	back := headlessBackend{}
	store := scene.NewStore(stack, shim, dev)
	buffers := scene.NewRegistry(dev)
	outputs := output.NewSet(shim)

	out := output.New(0, 0, cfg.Width, cfg.Height, false, back)
	outputs.Add(out)

	seat := input.NewSeat()
	router := input.New(seat, stack, store, outputs, logInputClient{}, input.ModifierKeys{
		Ctrl: 29, Alt: 56, Super: 125, // KEY_LEFTCTRL, KEY_LEFTALT, KEY_LEFTMETA
	})

	renderer := render.New(dev)
	helper := disconnectedHelper{}
	desk := shell.NewDesktop(store, stack, outputs, router, helper, time.Now().UnixNano())
	dd := datadevice.NewManager(seat, router, logDataClient{})
	desk.SetSelectionBroadcaster(dd)

	comp := compositor.New(store, stack, outputs, renderer, dd, desk, 5*time.Minute)
	comp.Backend = back
	comp.AddSeat(router)
	comp.SetFrameClient(logFrameClient{})
	comp.DefaultBindings(compositor.Config{
		VTSwitchKeys: nil,
		ShutdownKey:  input.Key(14), // KEY_BACKSPACE; Ctrl+Alt+Backspace shuts the compositor down
	})
	shim.c = comp

	dispatch := proto.NewDispatcher(store, buffers, outputs, desk, router, dd)
	_ = dispatch // the wire marshaller (out of scope, spec.md §1) would hold this and call it per client request

	log.Printf("compositor ready: socket=%s output=%dx%d connector=%d background=%q", cfg.Socket, cfg.Width, cfg.Height, cfg.Connector, cfg.Background)

	start := time.Now()
	nowMS := func() uint32 { return uint32(time.Since(start) / time.Millisecond) }

	for {
		if err := loop.Run(comp.NextTimeoutMS()); err != nil {
			log.Fatalf("event loop: %v", err)
		}
		comp.Tick(nowMS())
	}
}

// headlessBackend implements both compositor.Backend and output.Backend.
// It stands in for the out-of-scope KMS/X11/nested output driver: every
// hook either no-ops or reports ErrScanoutRefused so the renderer always
// takes its software fallback path.
type headlessBackend struct{}

func (headlessBackend) Authenticate(id uint32) error              { return nil }
func (headlessBackend) CreateCursorImage(w, h int) (uint32, error) { return 0, nil }
func (headlessBackend) Destroy()                                  { os.Exit(0) }
func (headlessBackend) SwitchVT(vt int) error                     { log.Printf("switch VT %d (no-op, out of scope)", vt); return nil }

func (headlessBackend) PrepareRender() {}
func (headlessBackend) Present()       {}
func (headlessBackend) PrepareScanoutSurface(s *scene.Surface) error {
	return render.ErrScanoutRefused
}
func (headlessBackend) SetHardwareCursor(hx, hy int, tex uint32) error {
	return render.ErrScanoutRefused
}

// disconnectedHelper stands in for the out-of-scope shell-helper process
// (spec.md §1 excludes "process launching for shell helpers"): it reports
// never connected, so Desktop.Unlock's "helper disconnected" path always
// fires and the compositor never actually locks behind an unreachable
// helper.
type disconnectedHelper struct{}

func (disconnectedHelper) Prepare()        {}
func (disconnectedHelper) Connected() bool { return false }

// logInputClient and logDataClient stand in for the out-of-scope protocol
// dispatcher's client-event delivery side: a real transport marshals
// these onto a client's wire connection, proto.Dispatcher only handles
// the opposite (client-to-core) direction.
type logInputClient struct{}

func (logInputClient) PointerEnter(s *scene.Surface, time uint32, x, y float32) {
	log.Printf("pointer enter %p at (%.1f,%.1f)", s, x, y)
}
func (logInputClient) PointerLeave(s *scene.Surface, time uint32) { log.Printf("pointer leave %p", s) }
func (logInputClient) PointerMotion(s *scene.Surface, time uint32, x, y float32) {}
func (logInputClient) PointerButton(s *scene.Surface, time uint32, b input.Button, st input.ButtonState) {
	log.Printf("pointer button %p %v %v", s, b, st)
}
func (logInputClient) KeyboardEnter(s *scene.Surface, time uint32, keys []input.Key) {
	log.Printf("keyboard enter %p", s)
}
func (logInputClient) KeyboardLeave(s *scene.Surface, time uint32) { log.Printf("keyboard leave %p", s) }
func (logInputClient) Key(s *scene.Surface, time uint32, k input.Key, st input.KeyState) {}
func (logInputClient) Modifiers(s *scene.Surface, mods input.ModMask)                    {}

type logDataClient struct{}

func (logDataClient) DataOffer(s *scene.Surface, mimeTypes []string) {
	log.Printf("data offer %p %v", s, mimeTypes)
}
func (logDataClient) DragEnter(s *scene.Surface, time uint32, x, y float32, mimeTypes []string) {
	log.Printf("drag enter %p %v", s, mimeTypes)
}
func (logDataClient) DragLeave(s *scene.Surface, time uint32)            {}
func (logDataClient) DragMotion(s *scene.Surface, time uint32, x, y float32) {}
func (logDataClient) Drop(s *scene.Surface, time uint32)                 { log.Printf("drop %p", s) }

type logFrameClient struct{}

func (logFrameClient) Frame(s *scene.Surface, msecs uint32) {}

var (
	_ compositor.Backend     = headlessBackend{}
	_ output.Backend         = headlessBackend{}
	_ shell.Helper           = disconnectedHelper{}
	_ input.Client           = logInputClient{}
	_ datadevice.Client      = logDataClient{}
	_ compositor.FrameClient = logFrameClient{}
)
