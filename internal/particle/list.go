package particle

import (
	"time"

	"github.com/barline/barline/internal/decoration"
	"github.com/barline/barline/internal/tag"
)

// List composites a fixed ordered sequence of child particles left to
// right, each against the same tag set (spec §3, §4.B). LeftSpacing plus
// RightSpacing is inserted once between each pair of adjacent
// nonzero-width children, never before the first or after the last; a
// zero-width child consumes no spacing at all, matching the
// layout formula in spec §4.B (a deliberate correction of yambar's
// particles/list.c, which spaces every child unconditionally).
type List struct {
	Header                    Header
	LeftSpacing, RightSpacing int
	Children                  []Particle
}

func (p *List) Instantiate(tags *tag.Set, now time.Time) Exposable {
	children := make([]Exposable, len(p.Children))
	for i, c := range p.Children {
		children[i] = c.Instantiate(tags, now)
	}
	return &listExposable{
		base:         newBase(&p.Header, tags, now),
		leftSpacing:  p.LeftSpacing,
		rightSpacing: p.RightSpacing,
		children:     children,
	}
}

type listExposable struct {
	base
	leftSpacing, rightSpacing int
	children                  []Exposable
	// offsets[i] is child i's x offset relative to this list's own x,
	// recorded by BeginExpose so OnMouse can route a click without a
	// second layout pass. A zero-width child records the current offset
	// and is skipped by OnMouse, so it can never be hit.
	offsets []int
	widths  []int
}

func (e *listExposable) BeginExpose() int {
	e.offsets = make([]int, len(e.children))
	e.widths = make([]int, len(e.children))
	for i, c := range e.children {
		e.widths[i] = c.BeginExpose()
	}

	gap := e.leftSpacing + e.rightSpacing
	x := e.header.LeftMargin
	placed := 0
	for i, w := range e.widths {
		if w == 0 {
			e.offsets[i] = x
			continue
		}
		if placed > 0 {
			x += gap
		}
		e.offsets[i] = x
		x += w
		placed++
	}
	if placed == 0 {
		e.width = e.header.LeftMargin + e.header.RightMargin
	} else {
		e.width = x + e.header.RightMargin
	}
	return e.width
}

func (e *listExposable) Expose(canvas decoration.Canvas, x, y, height int) {
	e.exposeDeco(canvas, x, y, height)
	for i, c := range e.children {
		c.Expose(canvas, x+e.offsets[i], y, height)
	}
}

func (e *listExposable) OnMouse(d Dispatcher, event MouseEvent, button Button, x, y int) {
	for i, c := range e.children {
		if e.widths[i] > 0 && x >= e.offsets[i] && x < e.offsets[i]+e.widths[i] {
			c.OnMouse(d, event, button, x-e.offsets[i], y)
			return
		}
	}
	e.defaultOnMouse(d, event, button)
}

func (e *listExposable) Destroy() {
	for _, c := range e.children {
		c.Destroy()
	}
}
