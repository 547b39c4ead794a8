// Package particle implements the polymorphic particle tree (spec §3,
// §4.B): string, empty, list, map, ramp, and progress-bar particles,
// instantiated per-frame into Exposables that the bar runtime lays out,
// draws, and hit-tests. Grounded throughout in yambar's particles/*.c
// and, for the tree-shaped compositing model, willow's node.go/render.go.
package particle

import (
	"image/color"
	"time"

	"github.com/barline/barline/internal/decoration"
	"github.com/barline/barline/internal/font"
	"github.com/barline/barline/internal/tag"
	"github.com/barline/barline/internal/template"
)

// Button enumerates the pointer buttons a particle's on-click templates
// can bind, per spec §6.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
	ButtonWheelUp
	ButtonWheelDown
	ButtonPrevious
	ButtonNext
)

// MouseEvent distinguishes a hover/motion notification from a click.
type MouseEvent uint8

const (
	EventMotion MouseEvent = iota
	EventClick
)

// Dispatcher is the bar-side collaborator an Exposable calls back into
// when it needs to run a shell command or change the pointer shape. The
// particle tree never shells out itself; it only ever calls Dispatcher.
type Dispatcher interface {
	Execute(command string)
	SetCursor(name string)
}

// Header holds the attributes shared by every particle variant (spec §3).
type Header struct {
	LeftMargin, RightMargin int
	Font                    font.Provider
	Foreground              color.Color
	Deco                    decoration.Decoration
	OnClick                 map[Button]string
}

// Particle is a polymorphic renderable: the closed variant set of spec
// §3. Instantiate must be safe to call concurrently for the same
// Particle value (spec §4.B's contract): it returns a fresh Exposable
// independent of any other live instantiation.
type Particle interface {
	Instantiate(tags *tag.Set, now time.Time) Exposable
}

// Exposable is a transient per-frame instantiation of a Particle bound to
// a tag set (spec §3). BeginExpose must be called once, before any call
// to Expose, and returns the particle's laid-out width.
type Exposable interface {
	BeginExpose() int
	Expose(canvas decoration.Canvas, x, y, height int)
	OnMouse(d Dispatcher, event MouseEvent, button Button, x, y int)
	Destroy()
}

// base is embedded by every exposable implementation; it supplies the
// decoration-then-content-margin compositing shared by all particles and
// the default on-click dispatch (spec §4.B, §6).
type base struct {
	header      *Header
	expandedOC  map[Button]string
	width       int
}

func newBase(h *Header, tags *tag.Set, now time.Time) base {
	var expanded map[Button]string
	if len(h.OnClick) > 0 {
		expanded = make(map[Button]string, len(h.OnClick))
		for btn, tmpl := range h.OnClick {
			expanded[btn] = template.Expand(tmpl, tags, now)
		}
	}
	return base{header: h, expandedOC: expanded}
}

// exposeDeco draws just this exposable's decoration into its full
// bounding box, including margins — the content itself is drawn by the
// concrete variant after applying left/right margins (spec §4.B).
func (b *base) exposeDeco(canvas decoration.Canvas, x, y, height int) {
	if b.header.Deco != nil {
		b.header.Deco.Expose(canvas, x, y, b.width, height)
	}
}

// defaultOnMouse runs the fully-expanded on-click template for button on
// a Click event, and otherwise does nothing. Variants that need to
// delegate into children (ramp, list, map, progress-bar) wrap this.
func (b *base) defaultOnMouse(d Dispatcher, event MouseEvent, button Button) {
	if event != EventClick {
		return
	}
	if cmd, ok := b.expandedOC[button]; ok && cmd != "" {
		d.Execute(cmd)
	}
}
