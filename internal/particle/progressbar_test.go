package particle

import (
	"testing"
	"time"

	"github.com/barline/barline/internal/tag"
)

func newBar(width int) *ProgressBar {
	return &ProgressBar{
		Tag:       "level",
		Width:     width,
		Start:     &Empty{},
		End:       &Empty{},
		Fill:      &fixedWidth{width: 1},
		Empty:     &fixedWidth{width: 1},
		Indicator: &Empty{},
	}
}

func TestProgressBarEmitsWidthPlusThreeExposables(t *testing.T) {
	p := newBar(10)
	set := tag.NewSet(tag.NewIntRange("level", 50, 0, 100))
	exp := p.Instantiate(set, time.Now()).(*progressExposable)
	if got := len(exp.children); got != 10+3 {
		t.Errorf("len(children) = %d, want %d", got, 10+3)
	}
}

func TestProgressBarFillEmptySumToWidth(t *testing.T) {
	p := newBar(20)
	for _, v := range []int64{0, 1, 19, 37, 50, 99, 100} {
		set := tag.NewSet(tag.NewIntRange("level", v, 0, 100))
		exp := p.Instantiate(set, time.Now()).(*progressExposable)
		// children[0]=start, [1..n-2]=fill+indicator+empty, [n-1]=end
		inner := len(exp.children) - 2 // excludes start and end
		if inner != 21 {               // 20 fill/empty + 1 indicator
			t.Errorf("value=%d: inner count = %d, want 21", v, inner)
		}
	}
}

func TestProgressBarFillCountIsMonotonicInValue(t *testing.T) {
	prevFill := -1
	for v := int64(0); v <= 100; v += 10 {
		gotFill, _ := progressCounts(10, tag.NewIntRange("level", v, 0, 100), time.Now())
		if gotFill < prevFill {
			t.Errorf("value=%d: fill=%d decreased from previous %d", v, gotFill, prevFill)
		}
		prevFill = gotFill
	}
}

func TestProgressBarDegenerateRangeHasNoFill(t *testing.T) {
	fill, empty := progressCounts(10, tag.NewIntRange("level", 5, 5, 5), time.Now())
	if fill != 0 || empty != 10 {
		t.Errorf("fill=%d empty=%d, want 0,10 for a degenerate range", fill, empty)
	}
}

func TestProgressBarClickBeforeStartMarkerSetsCursor(t *testing.T) {
	p := newBar(10)
	set := tag.NewSet(tag.NewIntRange("level", 50, 0, 100))
	exp := p.Instantiate(set, time.Now())
	exp.BeginExpose()

	var cursor string
	d := cursorDispatcher{name: &cursor}
	exp.OnMouse(d, EventClick, ButtonLeft, -5, 0)
	if cursor != "left_ptr" {
		t.Errorf("cursor = %q, want left_ptr", cursor)
	}
}

func TestProgressBarClickInsideTranslatesToWhereTag(t *testing.T) {
	p := &ProgressBar{
		Tag:       "level",
		Width:     10,
		Start:     &Empty{},
		End:       &Empty{},
		Fill:      &fixedWidth{width: 1},
		Empty:     &fixedWidth{width: 1},
		Indicator: &Empty{},
		Header:    Header{OnClick: map[Button]string{ButtonLeft: "seek {where}"}},
	}
	set := tag.NewSet(tag.NewIntRange("level", 50, 0, 100))
	exp := p.Instantiate(set, time.Now())
	exp.BeginExpose() // start=0 width, so clickable region starts at x=0, spans 10

	var executed string
	d := execDispatcher{cmd: &executed}
	exp.OnMouse(d, EventClick, ButtonLeft, 5, 0) // 50% across a 10-wide clickable region
	if executed != "seek 50" {
		t.Errorf("executed = %q, want %q", executed, "seek 50")
	}
}

func TestProgressBarNextRefreshOnlyForRealtimeTags(t *testing.T) {
	p := newBar(10)
	now := time.Now()

	plain := tag.NewSet(tag.NewIntRange("level", 5, 0, 100))
	expPlain := p.Instantiate(plain, now).(*progressExposable)
	if _, has := expPlain.NextRefresh(); has {
		t.Error("non-realtime tag should not produce a scheduled refresh")
	}

	realtime := tag.NewSet(tag.NewIntRealtime("level", 5, 0, 100, tag.UnitNone, now))
	expRT := p.Instantiate(realtime, now).(*progressExposable)
	if _, has := expRT.NextRefresh(); !has {
		t.Error("realtime tag should produce a scheduled refresh")
	}
}

type cursorDispatcher struct{ name *string }

func (d cursorDispatcher) Execute(cmd string)    {}
func (d cursorDispatcher) SetCursor(name string) { *d.name = name }

type execDispatcher struct{ cmd *string }

func (d execDispatcher) Execute(cmd string)    { *d.cmd = cmd }
func (d execDispatcher) SetCursor(name string) {}
