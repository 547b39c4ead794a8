package particle

import (
	"time"

	"github.com/barline/barline/internal/decoration"
	"github.com/barline/barline/internal/mapexpr"
	"github.com/barline/barline/internal/tag"
)

// MapCase pairs one parsed condition with the particle to instantiate
// when it matches. Conditions are tried in declaration order; the first
// match wins (spec §4.B, §4.I).
type MapCase struct {
	Condition mapexpr.Condition
	Particle  Particle
}

// Map instantiates exactly one of its cases' particles per frame: the
// first whose condition evaluates true against the current tag set, or
// Default if none match. Grounded in yambar's particles/map.c.
type Map struct {
	Header  Header
	Cases   []MapCase
	Default Particle
}

func (p *Map) Instantiate(tags *tag.Set, now time.Time) Exposable {
	chosen := p.Default
	for _, c := range p.Cases {
		if c.Condition.Eval(tags, now) {
			chosen = c.Particle
			break
		}
	}
	var child Exposable
	if chosen != nil {
		child = chosen.Instantiate(tags, now)
	}
	return &mapExposable{base: newBase(&p.Header, tags, now), child: child}
}

type mapExposable struct {
	base
	child Exposable
}

func (e *mapExposable) BeginExpose() int {
	childWidth := 0
	if e.child != nil {
		childWidth = e.child.BeginExpose()
	}
	e.width = e.header.LeftMargin + childWidth + e.header.RightMargin
	return e.width
}

func (e *mapExposable) Expose(canvas decoration.Canvas, x, y, height int) {
	e.exposeDeco(canvas, x, y, height)
	if e.child != nil {
		e.child.Expose(canvas, x+e.header.LeftMargin, y, height)
	}
}

func (e *mapExposable) OnMouse(d Dispatcher, event MouseEvent, button Button, x, y int) {
	if e.child != nil {
		e.child.OnMouse(d, event, button, x-e.header.LeftMargin, y)
		return
	}
	e.defaultOnMouse(d, event, button)
}

func (e *mapExposable) Destroy() {
	if e.child != nil {
		e.child.Destroy()
	}
}
