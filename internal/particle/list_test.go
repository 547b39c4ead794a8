package particle

import (
	"testing"
	"time"

	"github.com/barline/barline/internal/decoration"
	"github.com/barline/barline/internal/tag"
)

// fixedWidth is a trivial Particle whose Exposable reports a fixed width
// and records on-click/expose calls, used to probe list/map/ramp layout
// and dispatch without depending on the string particle's font plumbing.
type fixedWidth struct {
	width   int
	clicked int
}

func (f *fixedWidth) Instantiate(tags *tag.Set, now time.Time) Exposable {
	return &fixedWidthExposable{owner: f}
}

type fixedWidthExposable struct {
	owner   *fixedWidth
	exposed bool
}

func (e *fixedWidthExposable) BeginExpose() int { return e.owner.width }
func (e *fixedWidthExposable) Expose(canvas decoration.Canvas, x, y, height int) {
	e.exposed = true
}
func (e *fixedWidthExposable) OnMouse(d Dispatcher, event MouseEvent, button Button, x, y int) {
	if event == EventClick {
		e.owner.clicked++
	}
}
func (e *fixedWidthExposable) Destroy() {}

func TestListWidthIsAdditiveSumOfChildrenPlusMargins(t *testing.T) {
	p := &List{
		Header: Header{LeftMargin: 1, RightMargin: 2},
		Children: []Particle{
			&fixedWidth{width: 10},
			&fixedWidth{width: 20},
			&Empty{},
		},
	}
	exp := p.Instantiate(tag.NewSet(), time.Now())
	got := exp.BeginExpose()
	want := 1 + 10 + 20 + 0 + 2
	if got != want {
		t.Errorf("width = %d, want %d", got, want)
	}
}

func TestListRoutesClickToChildUnderPointer(t *testing.T) {
	a := &fixedWidth{width: 10}
	b := &fixedWidth{width: 20}
	p := &List{Children: []Particle{a, b}}
	exp := p.Instantiate(tag.NewSet(), time.Now())
	exp.BeginExpose()

	// a occupies [0,10), b occupies [10,30).
	exp.OnMouse(nil, EventClick, ButtonLeft, 15, 0)
	if a.clicked != 0 || b.clicked != 1 {
		t.Errorf("clicked = (%d,%d), want (0,1)", a.clicked, b.clicked)
	}
}

func TestListSpacingAppliesOnlyBetweenNonzeroWidthChildren(t *testing.T) {
	p := &List{
		LeftSpacing:  1,
		RightSpacing: 2,
		Children: []Particle{
			&fixedWidth{width: 10},
			&Empty{}, // zero-width: must not consume a spacing gap
			&fixedWidth{width: 20},
		},
	}
	exp := p.Instantiate(tag.NewSet(), time.Now())
	got := exp.BeginExpose()
	// One gap (1+2) between the two nonzero children; the zero-width
	// child in between contributes nothing.
	want := 10 + (1 + 2) + 20
	if got != want {
		t.Errorf("width = %d, want %d", got, want)
	}
}

func TestListSingleChildHasNoSpacing(t *testing.T) {
	p := &List{LeftSpacing: 5, RightSpacing: 5, Children: []Particle{&fixedWidth{width: 10}}}
	exp := p.Instantiate(tag.NewSet(), time.Now())
	if got := exp.BeginExpose(); got != 10 {
		t.Errorf("width = %d, want 10 (a single child needs no spacing)", got)
	}
}

func TestListClickOutsideAllChildrenFallsBackToOwnOnClick(t *testing.T) {
	called := false
	p := &List{
		Header:   Header{OnClick: map[Button]string{ButtonLeft: "fallback"}},
		Children: []Particle{&fixedWidth{width: 10}},
	}
	exp := p.Instantiate(tag.NewSet(), time.Now())
	exp.BeginExpose()
	exp.OnMouse(recordDispatcher(&called), EventClick, ButtonLeft, 9999, 0)
	// The click lands past the last child's bounds, so the list's own
	// on-click template runs instead.
	if !called {
		t.Error("a click outside every child should run the list's own on-click command")
	}
}

type stubDispatcher struct {
	executed *bool
}

func (d stubDispatcher) Execute(cmd string)   { *d.executed = true }
func (d stubDispatcher) SetCursor(name string) {}

func recordDispatcher(executed *bool) Dispatcher {
	return stubDispatcher{executed: executed}
}
