// Package wayland implements backend.Backend against a Wayland
// compositor using honnef.co/go/libwayland, grounded in yambar's
// bar/wayland.c: an SHM-backed double buffer, frame-callback gated
// redraws, and a surface sized and positioned for a desktop panel.
//
// The vendored binding only covers wl_compositor, wl_shm, xdg_wm_base
// and zxdg_decoration — it has no wlr-layer-shell-unstable-v1, wl_seat
// or wl_output bindings. Those are the protocols bar/wayland.c actually
// uses for panel anchoring/exclusive-zone reservation, pointer input,
// and per-output placement. Lacking them, this backend approximates a
// panel with a plain xdg_wm_base toplevel sized to the bar's
// dimensions: it will not reserve screen space, dock to an edge, or
// receive pointer events on a real compositor. That gap is recorded in
// DESIGN.md rather than hidden behind a fake success return.
package wayland

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
	"honnef.co/go/libwayland"

	"github.com/barline/barline/internal/backend"
)

// defaultWidth is used when no output geometry is available to size
// the surface from (see package doc's wl_output gap).
const defaultWidth = 1920

// bufferCount is the depth of the SHM buffer pool. Two buffers let the
// compositor hold one for scanout/composition while the next frame is
// drawn into the other, the same double-buffering bar/wayland.c gets
// from its struct buffer[2].
const bufferCount = 2

// Backend is the Wayland display-server backend.
type Backend struct {
	log zerolog.Logger

	dsp  *libwayland.Display
	comp *libwayland.Compositor
	shm  *libwayland.Shm
	xdg  *libwayland.XdgWmBase

	surface  *libwayland.Surface
	xdgSurf  *libwayland.XdgSurface
	toplevel *libwayland.XdgToplevel

	width, height int

	mu             sync.Mutex
	bufs           []*shmBuffer
	cur            *shmBuffer
	frameScheduled bool
	pendingRefresh bool

	configured chan struct{}
}

// New returns an unconnected Wayland backend; Setup performs the
// actual connection and surface creation.
func New(log zerolog.Logger) *Backend {
	return &Backend{log: log.With().Str("backend", "wayland").Logger(), configured: make(chan struct{}, 1)}
}

func (b *Backend) Setup(target backend.Target) error {
	dsp, err := libwayland.Connect()
	if err != nil {
		return fmt.Errorf("barline: wayland: connecting: %w", err)
	}
	b.dsp = dsp

	reg := dsp.Registry()
	reg.OnGlobal = func(name uint32, iface string, version uint32) {
		switch iface {
		case "wl_compositor":
			b.comp = reg.BindCompositor(name, version)
		case "wl_shm":
			b.shm = reg.BindShm(name, version)
		case "xdg_wm_base":
			b.xdg = reg.BindXdgWmBase(name, version)
		}
	}
	if _, err := dsp.Roundtrip(); err != nil {
		return fmt.Errorf("barline: wayland: registry roundtrip: %w", err)
	}
	if b.comp == nil || b.shm == nil || b.xdg == nil {
		b.Cleanup()
		return fmt.Errorf("barline: wayland: compositor does not advertise wl_compositor/wl_shm/xdg_wm_base")
	}

	b.xdg.OnPing = func(serial uint32) { b.xdg.Pong(serial) }

	// No wl_output binding to query a real output width (see package
	// doc); fall back to a default and let toplevel's OnConfigure widen
	// it if the compositor suggests otherwise.
	b.width = defaultWidth
	b.height = target.HeightWithBorder()

	b.surface = b.comp.CreateSurface()
	b.xdgSurf = b.xdg.XdgSurface(b.surface)
	b.toplevel = b.xdgSurf.Toplevel()
	b.toplevel.SetTitle("barline")

	b.xdgSurf.OnConfigure = func(serial uint32) {
		b.xdgSurf.AckConfigure(serial)
		select {
		case b.configured <- struct{}{}:
		default:
		}
	}
	b.toplevel.OnConfigure = func(width, height int32, states []uint32) {
		if width > 0 {
			b.width = int(width)
		}
		if height > 0 {
			b.height = int(height)
		}
	}
	b.toplevel.OnClose = func() {}

	b.surface.Commit()
	if _, err := dsp.Roundtrip(); err != nil {
		b.Cleanup()
		return fmt.Errorf("barline: wayland: initial roundtrip: %w", err)
	}

	bufs := make([]*shmBuffer, 0, bufferCount)
	for i := 0; i < bufferCount; i++ {
		buf, err := newShmBuffer(b.shm, b.width, b.height)
		if err != nil {
			for _, existing := range bufs {
				existing.destroy()
			}
			b.Cleanup()
			return fmt.Errorf("barline: wayland: allocating shm buffer %d: %w", i, err)
		}
		buf.buf.OnRelease = b.releaseBuffer(buf)
		bufs = append(bufs, buf)
	}
	b.bufs = bufs
	return nil
}

// releaseBuffer returns the wl_buffer.release handler for buf: once
// the compositor is done reading it (it's been replaced on-screen, or
// never attached), it's free for the next Surface() call to draw
// into. A Refresh held back in pendingRefresh while a frame was
// scheduled is replayed here as well as from onFrame.
func (b *Backend) releaseBuffer(buf *shmBuffer) func() {
	return func() {
		b.mu.Lock()
		buf.busy = false
		pending := b.pendingRefresh
		b.pendingRefresh = false
		b.mu.Unlock()
		if pending {
			b.Refresh()
		}
	}
}

func (b *Backend) Cleanup() {
	for _, buf := range b.bufs {
		buf.destroy()
	}
	b.bufs = nil
	if b.toplevel != nil {
		b.toplevel.Destroy()
	}
	if b.xdgSurf != nil {
		b.xdgSurf.Destroy()
	}
	if b.surface != nil {
		b.surface.Destroy()
	}
	if b.dsp != nil {
		b.dsp.Disconnect()
		b.dsp = nil
	}
}

// Loop pumps the Wayland event queue until ctx is cancelled. Disconnect
// unblocks the reader goroutine's blocking Dispatch the same way
// x11.Backend unblocks WaitForEvent by closing the connection.
func (b *Backend) Loop(ctx context.Context, onExpose func(), onMouse func(event backend.MouseEvent, button backend.Button, x, y int)) error {
	// onMouse is unused: the binding has no wl_seat/wl_pointer, so this
	// backend never receives pointer events (see package doc).
	_ = onMouse

	done := make(chan error, 1)
	go func() {
		for {
			if n := b.dsp.Dispatch(); n < 0 {
				done <- fmt.Errorf("barline: wayland: dispatch failed")
				return
			}
		}
	}()

	go func() {
		for range b.configured {
			onExpose()
		}
	}()

	select {
	case <-ctx.Done():
		close(b.configured)
		return nil
	case err := <-done:
		close(b.configured)
		return err
	}
}

// Surface returns the image for the next buffer to draw into, picking
// the first pool entry (in pool order) the compositor has released. If
// every buffer is still busy (the compositor hasn't caught up), the
// first pool entry is reused anyway rather than blocking the render path;
// that trades a possible visible tear for forward progress.
func (b *Backend) Surface() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf := b.bufs[0]
	for _, candidate := range b.bufs {
		if !candidate.busy {
			buf = candidate
			break
		}
	}
	b.cur = buf
	return buf.img
}

func (b *Backend) Commit() error {
	b.mu.Lock()
	buf := b.cur
	buf.busy = true
	b.frameScheduled = true
	b.mu.Unlock()

	b.surface.Attach(buf.buf)
	b.surface.Damage(0, 0, int32(b.width), int32(b.height))
	b.surface.Frame(b.onFrame)
	b.surface.Commit()
	_, err := b.dsp.Roundtrip()
	return err
}

// onFrame is the wl_callback.done handler for the frame request
// Commit attached to the surface: the compositor is telling us it's a
// good time to draw the next frame. Any Refresh that arrived while
// this frame was still pending is replayed now instead of being lost.
func (b *Backend) onFrame(data uint32) {
	b.mu.Lock()
	b.frameScheduled = false
	pending := b.pendingRefresh
	b.pendingRefresh = false
	b.mu.Unlock()
	if pending {
		b.Refresh()
	}
}

// Refresh asks for a redraw, gated on the outstanding frame callback:
// redrawing faster than the compositor presents frames just burns CPU
// and adds input latency, so while a frame is scheduled the request is
// coalesced into pendingRefresh and replayed from onFrame instead of
// being issued immediately.
func (b *Backend) Refresh() {
	b.mu.Lock()
	if b.frameScheduled {
		b.pendingRefresh = true
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	select {
	case b.configured <- struct{}{}:
	default:
	}
}

// SetCursor is a no-op: the binding has no wl_pointer/wl_cursor_theme
// surface, so there's no cursor to set (see package doc).
func (b *Backend) SetCursor(name string) error {
	b.log.Debug().Str("cursor", name).Msg("cursor changes are not supported by the wayland backend")
	return nil
}

func (b *Backend) OutputName() string { return "" }
func (b *Backend) Width() int         { return b.width }

// shmBuffer is a single SHM-backed drawing surface, grounded in
// bar/wayland.c's struct buffer.
type shmBuffer struct {
	pool *libwayland.ShmPool
	buf  *libwayland.Buffer
	mem  []byte
	img  *image.RGBA
	busy bool
}

func newShmBuffer(shm *libwayland.Shm, width, height int) (*shmBuffer, error) {
	stride := width * 4
	size := stride * height

	fd, err := unix.MemfdCreate("barline-shm", 0)
	if err != nil {
		return nil, fmt.Errorf("memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ftruncate: %w", err)
	}
	mem, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mmap: %w", err)
	}

	pool := shm.CreatePool(int32(fd), int32(size))
	unix.Close(fd) // the pool holds its own reference once created

	buf := pool.CreateBuffer(0, int32(width), int32(height), int32(stride), libwayland.ShmFormatArgb8888)

	return &shmBuffer{
		pool: pool,
		buf:  buf,
		mem:  mem,
		img:  &image.RGBA{Pix: mem, Stride: stride, Rect: image.Rect(0, 0, width, height)},
	}, nil
}

func (s *shmBuffer) destroy() {
	s.buf.Destroy()
	s.pool.Destroy()
	unix.Munmap(s.mem)
}
