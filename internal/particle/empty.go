package particle

import (
	"time"

	"github.com/barline/barline/internal/decoration"
	"github.com/barline/barline/internal/tag"
)

// Empty occupies only its margins (spec §3).
type Empty struct {
	Header Header
}

func (p *Empty) Instantiate(tags *tag.Set, now time.Time) Exposable {
	return &emptyExposable{base: newBase(&p.Header, tags, now)}
}

type emptyExposable struct{ base }

func (e *emptyExposable) BeginExpose() int {
	e.width = e.header.LeftMargin + e.header.RightMargin
	return e.width
}

func (e *emptyExposable) Expose(canvas decoration.Canvas, x, y, height int) {
	e.exposeDeco(canvas, x, y, height)
}

func (e *emptyExposable) OnMouse(d Dispatcher, event MouseEvent, button Button, x, y int) {
	e.defaultOnMouse(d, event, button)
}

func (e *emptyExposable) Destroy() {}
