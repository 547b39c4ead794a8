package particle

import (
	"time"

	"github.com/barline/barline/internal/decoration"
	"github.com/barline/barline/internal/tag"
	"github.com/barline/barline/internal/template"
)

// ProgressBar renders a range tag as start/fill/indicator/empty/end
// sub-particles: W+3 exposables total, where W is Width (spec §4.B).
// Grounded in yambar's particles/progress_bar.c.
type ProgressBar struct {
	Header Header
	Tag    string
	Width  int

	Start, End, Fill, Empty, Indicator Particle
}

// RefreshScheduler is implemented by exposables that need a timed
// refresh independent of any module-driven one. The bar runtime
// type-asserts for it after BeginExpose and, when present, arranges for
// a render after the returned duration — ProgressBar uses it to redraw
// exactly when a realtime tag's value would cross into the next
// segment (spec §4.B).
type RefreshScheduler interface {
	NextRefresh() (time.Duration, bool)
}

func (p *ProgressBar) Instantiate(tags *tag.Set, now time.Time) Exposable {
	t, ok := tags.ForName(p.Tag)

	fillCount, emptyCount := 0, p.Width
	if ok {
		fillCount, emptyCount = progressCounts(p.Width, t, now)
	}

	children := make([]Exposable, 0, p.Width+3)
	children = append(children, p.Start.Instantiate(tags, now))
	for i := 0; i < fillCount; i++ {
		children = append(children, p.Fill.Instantiate(tags, now))
	}
	children = append(children, p.Indicator.Instantiate(tags, now))
	for i := 0; i < emptyCount; i++ {
		children = append(children, p.Empty.Instantiate(tags, now))
	}
	children = append(children, p.End.Instantiate(tags, now))

	exp := &progressExposable{
		base:     newBase(&p.Header, tags, now),
		children: children,
		tags:     tags,
		now:      now,
		onClick:  p.Header.OnClick,
	}
	if ok && t.Kind() == tag.KindIntRealtime {
		d, has := progressNextRefresh(p.Width, t, now)
		exp.nextRefresh, exp.hasNextRefresh = d, has
	}
	return exp
}

// progressCounts splits width into the fill/empty segment counts for
// tag's current value, clamped so both stay within [0, width]. A
// degenerate (zero-width) range has no meaningful position: it reports
// zero fill, matching tag.Percent's own degenerate-range definition.
func progressCounts(width int, t tag.Tag, now time.Time) (fill, empty int) {
	min, max := t.Bounds()
	if max == min {
		return 0, width
	}
	value := t.CurrentValue(now)
	fill = int(int64(width) * (value - min) / (max - min))
	if fill < 0 {
		fill = 0
	}
	if fill > width {
		fill = width
	}
	return fill, width - fill
}

// progressNextRefresh computes the wall-clock delay until value would
// advance enough to cross into the next segment boundary, so the bar
// redraws exactly when the displayed fill count would change rather
// than on every tick of a fast-moving realtime tag.
func progressNextRefresh(width int, t tag.Tag, now time.Time) (time.Duration, bool) {
	min, max := t.Bounds()
	if width <= 0 || max == min {
		return 0, false
	}
	unitsPerSegment := float64(max-min) / float64(width)
	fillCount, _ := progressCounts(width, t, now)
	unitsFilled := float64(fillCount) * unitsPerSegment
	value := float64(t.CurrentValue(now) - min)
	unitsTilNext := unitsPerSegment - (value - unitsFilled)
	if unitsTilNext <= 0 {
		return 0, false
	}
	switch t.RealtimeUnit() {
	case tag.UnitMilliseconds:
		return time.Duration(unitsTilNext * float64(time.Millisecond)), true
	default:
		return time.Duration(unitsTilNext * float64(time.Second)), true
	}
}

type progressExposable struct {
	base
	children []Exposable
	widths   []int

	tags    *tag.Set
	now     time.Time
	onClick map[Button]string

	nextRefresh    time.Duration
	hasNextRefresh bool
}

func (e *progressExposable) NextRefresh() (time.Duration, bool) {
	return e.nextRefresh, e.hasNextRefresh
}

func (e *progressExposable) BeginExpose() int {
	e.widths = make([]int, len(e.children))
	total := 0
	anyWidth := false
	for i, c := range e.children {
		w := c.BeginExpose()
		e.widths[i] = w
		total += w
		if w > 0 {
			anyWidth = true
		}
	}
	if anyWidth {
		total += e.header.LeftMargin + e.header.RightMargin
	}
	e.width = total
	return e.width
}

func (e *progressExposable) Expose(canvas decoration.Canvas, x, y, height int) {
	e.exposeDeco(canvas, x, y, height)
	cursor := x + e.header.LeftMargin
	for i, c := range e.children {
		c.Expose(canvas, cursor, y, height)
		cursor += e.widths[i]
	}
}

// OnMouse translates a click into the "where" percentage tag (spec
// §4.B) for clicks between the start and end markers, and otherwise
// routes to the start/end marker under the pointer, or sets the
// left_ptr cursor over the margins — matching yambar's
// particles/progress_bar.c on_mouse exactly.
func (e *progressExposable) OnMouse(d Dispatcher, event MouseEvent, button Button, x, y int) {
	if len(e.children) == 0 {
		e.defaultOnMouse(d, event, button)
		return
	}

	xOffset := e.header.LeftMargin + e.widths[0]
	if x < xOffset {
		if x >= e.header.LeftMargin {
			e.children[0].OnMouse(d, event, button, x-e.header.LeftMargin, y)
		} else {
			d.SetCursor("left_ptr")
		}
		return
	}

	last := len(e.children) - 1
	clickableWidth := 0
	for i := 1; i < last; i++ {
		clickableWidth += e.widths[i]
	}

	if x-xOffset > clickableWidth {
		if x-xOffset-clickableWidth < e.widths[last] {
			e.children[last].OnMouse(d, event, button, x-xOffset-clickableWidth, y)
		} else {
			d.SetCursor("left_ptr")
		}
		return
	}

	if event != EventClick {
		return
	}
	cmd, ok := e.onClick[button]
	if !ok || cmd == "" {
		return
	}
	where := int64(0)
	if clickableWidth > 0 {
		where = 100 * int64(x-xOffset) / int64(clickableWidth)
	}
	withWhere := tag.NewSet(append(append([]tag.Tag{}, e.tags.All()...), tag.NewInt("where", where))...)
	d.Execute(template.Expand(cmd, withWhere, e.now))
}

func (e *progressExposable) Destroy() {
	for _, c := range e.children {
		c.Destroy()
	}
}
