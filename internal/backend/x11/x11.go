// Package x11 implements backend.Backend against a bare X server using
// github.com/jezek/xgb, grounded in yambar's bar/xcb.c: an
// override-redirect dock window, EWMH struts reserving the bar's
// space, and a client-side pixmap blitted with PutImage.
package x11

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
	"github.com/rs/zerolog"

	"github.com/barline/barline/internal/backend"
)

// Backend is the X11 display-server backend.
type Backend struct {
	log zerolog.Logger

	conn   *xgb.Conn
	screen *xproto.ScreenInfo

	win      xproto.Window
	colormap xproto.Colormap
	gc       xproto.Gcontext

	atoms map[string]xproto.Atom

	outputName string
	x, y       int
	width      int
	height     int

	img *image.RGBA
}

// New returns an unconnected X11 backend; Setup performs the actual
// connection and window creation.
func New(log zerolog.Logger) *Backend {
	return &Backend{log: log.With().Str("backend", "x11").Logger()}
}

func (b *Backend) Setup(target backend.Target) error {
	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("barline: x11: connecting to X: %w", err)
	}
	b.conn = conn

	if err := randr.Init(conn); err != nil {
		conn.Close()
		return fmt.Errorf("barline: x11: initializing RandR: %w", err)
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)
	b.screen = screen

	if err := b.findMonitor(target, screen); err != nil {
		conn.Close()
		return err
	}

	b.height = target.HeightWithBorder()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("barline: x11: allocating window id: %w", err)
	}
	b.win = wid

	cmid, err := xproto.NewColormapId(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("barline: x11: allocating colormap id: %w", err)
	}
	b.colormap = cmid
	xproto.CreateColormap(conn, xproto.ColormapAllocNone, cmid, screen.Root, screen.RootVisual)

	eventMask := uint32(xproto.EventMaskExposure |
		xproto.EventMaskButtonRelease |
		xproto.EventMaskButtonPress |
		xproto.EventMaskPointerMotion |
		xproto.EventMaskStructureNotify)

	xproto.CreateWindow(conn, screen.RootDepth, wid, screen.Root,
		int16(b.x), int16(b.y), uint16(b.width), uint16(b.height), 0,
		xproto.WindowClassInputOutput, screen.RootVisual,
		xproto.CwBackPixel|xproto.CwBorderPixel|xproto.CwEventMask|xproto.CwColormap|xproto.CwOverrideRedirect,
		[]uint32{
			screen.BlackPixel,
			screen.WhitePixel,
			1, // override-redirect: bypass the window manager entirely
			eventMask,
			uint32(cmid),
		})

	if err := b.internAtoms(conn); err != nil {
		conn.Close()
		return err
	}
	b.setEWMHProperties(target)

	xproto.MapWindow(conn, wid)

	gcid, err := xproto.NewGcontextId(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("barline: x11: allocating graphics context id: %w", err)
	}
	b.gc = gcid
	xproto.CreateGC(conn, gcid, xproto.Drawable(wid),
		xproto.GcForeground|xproto.GcGraphicsExposures,
		[]uint32{screen.WhitePixel, 0})

	b.img = image.NewRGBA(image.Rect(0, 0, b.width, b.height))

	if err := conn.Sync(); err != nil {
		conn.Close()
		return fmt.Errorf("barline: x11: sync after setup: %w", err)
	}
	return nil
}

// findMonitor walks RandR's monitor list looking for target.Monitor(),
// falling back to the primary monitor when unset, mirroring
// bar_backend_xcb's setup().
func (b *Backend) findMonitor(target backend.Target, screen *xproto.ScreenInfo) error {
	reply, err := randr.GetMonitors(b.conn, xproto.Drawable(screen.Root), true).Reply()
	if err != nil {
		return fmt.Errorf("barline: x11: listing monitors: %w", err)
	}

	want := target.Monitor()
	var fallback *randr.MonitorInfo
	for i := range reply.Monitors {
		mon := &reply.Monitors[i]
		name, err := b.atomName(mon.Name)
		if err != nil {
			continue
		}
		if want != "" && name == want {
			b.applyMonitor(mon, name, target)
			return nil
		}
		if want == "" && mon.Primary {
			b.applyMonitor(mon, name, target)
			return nil
		}
		if fallback == nil {
			fallback = mon
		}
	}

	if fallback == nil {
		return fmt.Errorf("barline: x11: no monitors found")
	}
	if want != "" {
		b.log.Warn().Str("monitor", want).Msg("requested monitor not found, using first available")
	}
	name, _ := b.atomName(fallback.Name)
	b.applyMonitor(fallback, name, target)
	return nil
}

func (b *Backend) applyMonitor(mon *randr.MonitorInfo, name string, target backend.Target) {
	b.outputName = name
	b.x = int(mon.X)
	b.y = int(mon.Y)
	b.width = int(mon.Width)
	if target.Location() == backend.LocationBottom {
		b.y += int(b.screen.HeightInPixels) - target.HeightWithBorder()
	}
}

func (b *Backend) atomName(atom xproto.Atom) (string, error) {
	reply, err := xproto.GetAtomName(b.conn, atom).Reply()
	if err != nil {
		return "", err
	}
	return reply.Name, nil
}

var wantedAtoms = []string{
	"_NET_WM_PID",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_DOCK",
	"_NET_WM_STATE",
	"_NET_WM_STATE_ABOVE",
	"_NET_WM_STATE_STICKY",
	"_NET_WM_DESKTOP",
	"_NET_WM_STRUT",
	"_NET_WM_STRUT_PARTIAL",
}

func (b *Backend) internAtoms(conn *xgb.Conn) error {
	b.atoms = make(map[string]xproto.Atom, len(wantedAtoms))
	for _, name := range wantedAtoms {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return fmt.Errorf("barline: x11: interning atom %s: %w", name, err)
		}
		b.atoms[name] = reply.Atom
	}
	return nil
}

func (b *Backend) setEWMHProperties(target backend.Target) {
	conn, win := b.conn, b.win
	pid := uint32(os.Getpid())
	xproto.ChangeProperty(conn, xproto.PropModeReplace, win,
		b.atoms["_NET_WM_PID"], xproto.AtomCardinal, 32, 1, u32le(pid))
	xproto.ChangeProperty(conn, xproto.PropModeReplace, win,
		b.atoms["_NET_WM_WINDOW_TYPE"], xproto.AtomAtom, 32, 1, u32le(uint32(b.atoms["_NET_WM_WINDOW_TYPE_DOCK"])))
	xproto.ChangeProperty(conn, xproto.PropModeReplace, win,
		b.atoms["_NET_WM_STATE"], xproto.AtomAtom, 32, 2,
		u32sle(uint32(b.atoms["_NET_WM_STATE_ABOVE"]), uint32(b.atoms["_NET_WM_STATE_STICKY"])))
	xproto.ChangeProperty(conn, xproto.PropModeReplace, win,
		b.atoms["_NET_WM_DESKTOP"], xproto.AtomCardinal, 32, 1, u32le(0xffffffff))

	xproto.ConfigureWindow(conn, win, xproto.ConfigWindowStackMode,
		[]uint32{uint32(xproto.StackModeAbove)})

	var topStrut, bottomStrut uint32
	var topPair, bottomPair [2]uint32
	if target.Location() == backend.LocationTop {
		topStrut = uint32(b.y + target.HeightWithBorder())
		topPair = [2]uint32{uint32(b.x), uint32(b.x + b.width - 1)}
	} else {
		bottomStrut = uint32(int(b.screen.HeightInPixels) - b.y)
		bottomPair = [2]uint32{uint32(b.x), uint32(b.x + b.width - 1)}
	}

	strut := []uint32{
		0, 0, topStrut, bottomStrut,
		0, 0, 0, 0,
		topPair[0], topPair[1],
		bottomPair[0], bottomPair[1],
	}
	xproto.ChangeProperty(conn, xproto.PropModeReplace, win,
		b.atoms["_NET_WM_STRUT"], xproto.AtomCardinal, 32, 4, u32sle(strut[:4]...))
	xproto.ChangeProperty(conn, xproto.PropModeReplace, win,
		b.atoms["_NET_WM_STRUT_PARTIAL"], xproto.AtomCardinal, 32, 12, u32sle(strut...))
}

func (b *Backend) Cleanup() {
	if b.conn == nil {
		return
	}
	if b.gc != 0 {
		xproto.FreeGC(b.conn, b.gc)
	}
	if b.win != 0 {
		xproto.DestroyWindow(b.conn, b.win)
	}
	if b.colormap != 0 {
		xproto.FreeColormap(b.conn, b.colormap)
	}
	b.conn.Close()
	b.conn = nil
}

func (b *Backend) Loop(ctx context.Context, onExpose func(), onMouse func(event backend.MouseEvent, button backend.Button, x, y int)) error {
	events := make(chan xgb.Event)
	errs := make(chan error, 1)
	go func() {
		for {
			ev, err := b.conn.WaitForEvent()
			if err != nil {
				errs <- err
				return
			}
			if ev == nil {
				errs <- nil
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errs:
			if err != nil {
				b.log.Warn().Err(err).Msg("disconnected from X")
			}
			return err
		case ev := <-events:
			switch e := ev.(type) {
			case xproto.ExposeEvent:
				onExpose()
			case xproto.MotionNotifyEvent:
				onMouse(backend.EventMotion, backend.ButtonLeft, int(e.EventX), int(e.EventY))
			case xproto.ButtonReleaseEvent:
				onMouse(backend.EventClick, x11Button(e.Detail), int(e.EventX), int(e.EventY))
			}
		}
	}
}

func (b *Backend) Surface() *image.RGBA { return b.img }

func (b *Backend) Commit() error {
	data := rgbaToBGRA(b.img)
	xproto.PutImage(b.conn, xproto.ImageFormatZPixmap, xproto.Drawable(b.win), b.gc,
		uint16(b.width), uint16(b.height), 0, 0, 0, b.screen.RootDepth, data)
	return b.conn.Sync()
}

// Refresh sends a synthetic Expose event to itself, the same
// cross-thread-redraw trick bar/xcb.c's refresh() uses since XCB
// connections aren't otherwise safe to write from multiple goroutines
// without an explicit event round-trip.
func (b *Backend) Refresh() {
	evt := xproto.ExposeEvent{
		Window: b.win,
		X:      0, Y: 0,
		Width: uint16(b.width), Height: uint16(b.height),
		Count: 1,
	}
	xproto.SendEvent(b.conn, false, b.win, xproto.EventMaskExposure, string(evt.Bytes()))
}

// SetCursor is a no-op: jezek/xgb has no xcb-cursor equivalent bound,
// unlike the Xlib/xcb-cursor library yambar links against
// (original_source/bar/xcb.c's cursor_ctx). Tracked as a known gap
// rather than silently pretending to succeed.
func (b *Backend) SetCursor(name string) error {
	b.log.Debug().Str("cursor", name).Msg("cursor changes are not supported by the x11 backend")
	return nil
}

func (b *Backend) OutputName() string { return b.outputName }
func (b *Backend) Width() int         { return b.width }

// x11Button maps an X button-press detail to backend.Button. 1-5 are
// the core-protocol convention (left/middle/right/wheel-up/wheel-down);
// 8 and 9 are the de facto convention the evdev driver assigns to the
// back/forward side buttons most mice have, delivered as ordinary
// core ButtonPress/Release details without needing XInput2.
func x11Button(detail xproto.Button) backend.Button {
	switch detail {
	case 2:
		return backend.ButtonMiddle
	case 3:
		return backend.ButtonRight
	case 4:
		return backend.ButtonWheelUp
	case 5:
		return backend.ButtonWheelDown
	case 8:
		return backend.ButtonPrevious
	case 9:
		return backend.ButtonNext
	default:
		return backend.ButtonLeft
	}
}

func u32le(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func u32sle(vs ...uint32) []byte {
	out := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		out = append(out, u32le(v)...)
	}
	return out
}

// rgbaToBGRA repacks image.RGBA's alpha-premultiplied RGBA byte order
// into the BGRA word order PutImage's ZPixmap format expects on a
// little-endian X server with a 32-bit TrueColor visual.
func rgbaToBGRA(img *image.RGBA) []byte {
	out := make([]byte, len(img.Pix))
	for i := 0; i+3 < len(img.Pix); i += 4 {
		r, g, bl, a := img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]
		out[i] = bl
		out[i+1] = g
		out[i+2] = r
		out[i+3] = a
	}
	return out
}
