package particle

import (
	"time"

	"github.com/barline/barline/internal/decoration"
	"github.com/barline/barline/internal/tag"
)

// Ramp picks exactly one of N child particles by a range tag's current
// percentage through its [min,max], per spec §3/§4.B/§8's ramp-monotonicity
// invariant: index = clamp(floor(N * percent), 0, N-1). Only the selected
// child is instantiated and drawn; OnMouse delegates only to that active
// child, matching yambar's particles/ramp.c.
type Ramp struct {
	Header   Header
	Tag      string
	Children []Particle
}

func (p *Ramp) Instantiate(tags *tag.Set, now time.Time) Exposable {
	var child Exposable
	if len(p.Children) > 0 {
		idx := rampIndex(tags, p.Tag, now, len(p.Children))
		child = p.Children[idx].Instantiate(tags, now)
	}
	return &rampExposable{base: newBase(&p.Header, tags, now), child: child}
}

// rampIndex computes the active child index. An unknown tag or a
// zero-width range both resolve to index 0, matching percent's own
// degenerate-range definition (spec §3).
func rampIndex(tags *tag.Set, name string, now time.Time, n int) int {
	t, ok := tags.ForName(name)
	if !ok {
		return 0
	}
	idx := int(t.Percent(now) * float64(n))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}

type rampExposable struct {
	base
	child Exposable
}

func (e *rampExposable) BeginExpose() int {
	childWidth := 0
	if e.child != nil {
		childWidth = e.child.BeginExpose()
	}
	e.width = e.header.LeftMargin + childWidth + e.header.RightMargin
	return e.width
}

func (e *rampExposable) Expose(canvas decoration.Canvas, x, y, height int) {
	e.exposeDeco(canvas, x, y, height)
	if e.child != nil {
		e.child.Expose(canvas, x+e.header.LeftMargin, y, height)
	}
}

func (e *rampExposable) OnMouse(d Dispatcher, event MouseEvent, button Button, x, y int) {
	if e.child != nil {
		e.child.OnMouse(d, event, button, x-e.header.LeftMargin, y)
		return
	}
	e.defaultOnMouse(d, event, button)
}

func (e *rampExposable) Destroy() {
	if e.child != nil {
		e.child.Destroy()
	}
}
