// Package bar implements the bar runtime: the module fleet, the render
// pipeline, and the hit-test walk that ties particle, module, config,
// plugin and backend together (spec §4.D-§4.F). Grounded in yambar's
// bar/bar.c.
package bar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/barline/barline/internal/backend"
	"github.com/barline/barline/internal/config"
	"github.com/barline/barline/internal/decoration"
	"github.com/barline/barline/internal/module"
	"github.com/barline/barline/internal/particle"
)

// column is one of the bar's three module groups, holding each
// module alongside the exposable from its most recent render —
// mirroring bar_config's private.h "struct { mods; exps; count; }".
type column struct {
	mods []module.Module
	exps []particle.Exposable
}

// Bar is the bar runtime. It implements module.Bar (so modules can
// request redraws, cursor changes and shell execution) and
// backend.Target (so a backend can read the geometry it needs to open
// a correctly sized and positioned surface).
type Bar struct {
	cfg config.Bar
	log zerolog.Logger

	backend backend.Backend

	mu                         sync.Mutex
	left, center, right        column
	cursorName                 string

	wake chan struct{}
}

// New returns a Bar bound to be, with no modules attached yet — call
// SetModules once the plugin registry has built them (they need a
// module.Bar reference, which is this Bar).
func New(cfg config.Bar, be backend.Backend, log zerolog.Logger) *Bar {
	return &Bar{
		cfg:     cfg,
		log:     log,
		backend: be,
		wake:    make(chan struct{}, 1),
	}
}

// SetModules attaches the built module fleet for each column.
func (b *Bar) SetModules(left, center, right []module.Module) {
	b.left = column{mods: left, exps: make([]particle.Exposable, len(left))}
	b.center = column{mods: center, exps: make([]particle.Exposable, len(center))}
	b.right = column{mods: right, exps: make([]particle.Exposable, len(right))}
}

// --- backend.Target ---

func (b *Bar) Monitor() string { return b.cfg.Monitor }
func (b *Bar) Location() backend.Location {
	if b.cfg.Location == config.LocationBottom {
		return backend.LocationBottom
	}
	return backend.LocationTop
}
func (b *Bar) Height() int           { return b.cfg.Height }
func (b *Bar) HeightWithBorder() int { return b.cfg.Height + 2*b.cfg.Border.Width }
func (b *Bar) BorderWidth() int      { return b.cfg.Border.Width }

// --- module.Bar / particle.Dispatcher ---

// Refresh coalesces concurrent redraw requests into a single pending
// wake-up, the same "exactly one redraw per batch" guarantee yambar
// gets from an eventfd write merging with any already-pending one.
func (b *Bar) Refresh() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// RefreshIn schedules a coalesced Refresh after d — used by particles
// whose content depends on wall-clock time crossing a threshold (the
// progress-bar realtime tag) rather than on a module's own state change.
func (b *Bar) RefreshIn(d time.Duration) {
	time.AfterFunc(d, b.Refresh)
}

func (b *Bar) SetCursor(name string) {
	b.mu.Lock()
	same := b.cursorName == name
	b.cursorName = name
	b.mu.Unlock()
	if same {
		return
	}
	if err := b.backend.SetCursor(name); err != nil {
		b.log.Warn().Err(err).Str("cursor", name).Msg("failed to set cursor")
	}
}

func (b *Bar) Execute(cmd string) {
	if cmd == "" {
		return
	}
	if err := runShell(cmd); err != nil {
		b.log.Warn().Err(err).Str("cmd", cmd).Msg("on-click command failed")
	}
}

// Run starts every module on its own goroutine, then drives the
// backend's event loop until ctx is cancelled or the backend's event
// source is exhausted, then waits for every module to return. The exit
// code is the first non-zero module exit code observed, matching
// bar.c's run().
func (b *Bar) Run(ctx context.Context) (int, error) {
	if err := b.backend.Setup(b); err != nil {
		b.backend.Cleanup()
		return 1, fmt.Errorf("barline: bar: backend setup: %w", err)
	}
	defer b.backend.Cleanup()

	b.SetCursor("left_ptr")

	var wg sync.WaitGroup
	results := make(chan int, len(b.left.mods)+len(b.center.mods)+len(b.right.mods))
	modCtx, cancelMods := context.WithCancel(ctx)
	defer cancelMods()
	runAll := func(mods []module.Module) {
		for _, m := range mods {
			wg.Add(1)
			go func(m module.Module) {
				defer wg.Done()
				results <- m.Run(modCtx)
			}(m)
		}
	}
	runAll(b.left.mods)
	runAll(b.center.mods)
	runAll(b.right.mods)

	renderCtx, cancelRender := context.WithCancel(ctx)
	defer cancelRender()
	go b.renderLoop(renderCtx)

	err := b.backend.Loop(ctx, b.render, b.onMouse)

	cancelMods()
	wg.Wait()
	close(results)

	exit := 0
	for code := range results {
		if code != 0 && exit == 0 {
			exit = code
		}
	}
	return exit, err
}

// renderLoop drains coalesced wake-ups and asks the backend to repaint.
// A module's Refresh() only flags that a redraw is due; the backend's
// event loop is what actually owns the surface, so the render is routed
// through backend.Refresh rather than painted directly from here.
func (b *Bar) renderLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.wake:
			b.backend.Refresh()
		}
	}
}

// render repaints the whole bar: background, border, then each
// column's modules, each freshly instantiated from its module's
// current Content() and laid out left-to-right (center: centered,
// right: right-aligned), mirroring bar.c's expose().
func (b *Bar) render() {
	canvas := &decoration.RGBACanvas{Img: b.backend.Surface()}
	width := b.backend.Width()

	canvas.FillRect(0, 0, width, b.HeightWithBorder(), b.cfg.Background)
	if b.cfg.Border.Width > 0 {
		drawBorder(canvas, width, b.HeightWithBorder(), b.cfg.Border)
	}

	b.mu.Lock()
	b.instantiateColumn(&b.left)
	b.instantiateColumn(&b.center)
	b.instantiateColumn(&b.right)

	leftOffsets, _, _ := b.layoutColumn(b.left)
	centerOffsets, _, centerWidth := b.layoutColumn(b.center)
	rightOffsets, _, rightWidth := b.layoutColumn(b.right)

	y := b.cfg.Border.Width
	leftBase := b.cfg.Border.Width + b.cfg.LeftMargin
	for i, e := range b.left.exps {
		e.Expose(canvas, leftBase+leftOffsets[i], y, b.cfg.Height)
	}

	centerBase := width/2 - centerWidth/2
	for i, e := range b.center.exps {
		e.Expose(canvas, centerBase+centerOffsets[i], y, b.cfg.Height)
	}

	rightBase := width - (rightWidth + b.cfg.RightMargin + b.cfg.Border.Width)
	for i, e := range b.right.exps {
		e.Expose(canvas, rightBase+rightOffsets[i], y, b.cfg.Height)
	}
	b.mu.Unlock()

	if err := b.backend.Commit(); err != nil {
		b.log.Warn().Err(err).Msg("failed to commit surface")
	}
}

// instantiateColumn destroys each column entry's previous exposable
// and replaces it with a fresh one built from its module's current
// Content(), matching bar.c's per-column destroy-then-rebuild loop in
// expose(). BeginExpose must run before Expose/OnMouse; it's called
// here so columnWidth and the placement loops can both rely on it
// already having happened.
func (b *Bar) instantiateColumn(col *column) {
	for i, m := range col.mods {
		if col.exps[i] != nil {
			col.exps[i].Destroy()
		}
		exp := m.Content()
		exp.BeginExpose()
		if rs, ok := exp.(particle.RefreshScheduler); ok {
			if d, has := rs.NextRefresh(); has {
				b.RefreshIn(d)
			}
		}
		col.exps[i] = exp
	}
}

// layoutColumn computes each exposable's x offset relative to the
// column's own origin and the column's total width, using the same
// zero-width-skip formula as particle/list.go's BeginExpose (spec
// §4.B, §4.H step 4): LeftSpacing+RightSpacing is inserted only
// between two placed (nonzero-width) exposables, never around a
// zero-width one, and never as leading/trailing padding.
func (b *Bar) layoutColumn(col column) (offsets, widths []int, width int) {
	offsets = make([]int, len(col.exps))
	widths = make([]int, len(col.exps))

	gap := b.cfg.LeftSpacing + b.cfg.RightSpacing
	x := 0
	placed := 0
	for i, e := range col.exps {
		w := e.BeginExpose()
		widths[i] = w
		if w == 0 {
			offsets[i] = x
			continue
		}
		if placed > 0 {
			x += gap
		}
		offsets[i] = x
		x += w
		placed++
	}
	if placed > 0 {
		width = x
	}
	return offsets, widths, width
}

func (b *Bar) columnWidth(col column) int {
	_, _, width := b.layoutColumn(col)
	return width
}

// onMouse translates a backend pointer event into bar-local
// coordinates and dispatches it to whichever column entry it falls
// within, exactly mirroring bar.c's on_mouse(): outside every border
// or module, reset to the default pointer.
func (b *Bar) onMouse(event backend.MouseEvent, btn backend.Button, x, y int) {
	width := b.backend.Width()
	bw := b.cfg.Border.Width
	if y < bw || y >= b.HeightWithBorder()-bw || x < bw || x >= width-bw {
		b.SetCursor("left_ptr")
		return
	}

	b.mu.Lock()
	leftOffsets, leftWidths, _ := b.layoutColumn(b.left)
	centerOffsets, centerWidths, centerWidth := b.layoutColumn(b.center)
	rightOffsets, rightWidths, rightWidth := b.layoutColumn(b.right)

	pe := toParticleEvent(event)
	pb := toParticleButton(btn)

	leftBase := bw + b.cfg.LeftMargin
	for i, e := range b.left.exps {
		if leftWidths[i] == 0 {
			continue
		}
		mx := leftBase + leftOffsets[i]
		if x >= mx && x < mx+leftWidths[i] {
			b.mu.Unlock()
			e.OnMouse(b, pe, pb, x-mx, y)
			return
		}
	}

	centerBase := width/2 - centerWidth/2
	for i, e := range b.center.exps {
		if centerWidths[i] == 0 {
			continue
		}
		mx := centerBase + centerOffsets[i]
		if x >= mx && x < mx+centerWidths[i] {
			b.mu.Unlock()
			e.OnMouse(b, pe, pb, x-mx, y)
			return
		}
	}

	rightBase := width - (rightWidth + b.cfg.RightMargin + bw)
	for i, e := range b.right.exps {
		if rightWidths[i] == 0 {
			continue
		}
		mx := rightBase + rightOffsets[i]
		if x >= mx && x < mx+rightWidths[i] {
			b.mu.Unlock()
			e.OnMouse(b, pe, pb, x-mx, y)
			return
		}
	}
	b.mu.Unlock()

	b.SetCursor("left_ptr")
}

func toParticleEvent(e backend.MouseEvent) particle.MouseEvent {
	if e == backend.EventClick {
		return particle.EventClick
	}
	return particle.EventMotion
}

func toParticleButton(b backend.Button) particle.Button {
	switch b {
	case backend.ButtonMiddle:
		return particle.ButtonMiddle
	case backend.ButtonRight:
		return particle.ButtonRight
	case backend.ButtonWheelUp:
		return particle.ButtonWheelUp
	case backend.ButtonWheelDown:
		return particle.ButtonWheelDown
	case backend.ButtonPrevious:
		return particle.ButtonPrevious
	case backend.ButtonNext:
		return particle.ButtonNext
	default:
		return particle.ButtonLeft
	}
}

func drawBorder(canvas decoration.Canvas, width, height int, b config.Border) {
	w := b.Width
	canvas.FillRect(0, 0, width, w, b.Color)
	canvas.FillRect(0, height-w, width, w, b.Color)
	canvas.FillRect(0, 0, w, height, b.Color)
	canvas.FillRect(width-w, 0, w, height, b.Color)
}
