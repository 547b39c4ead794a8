package particle

import (
	"testing"
	"time"

	"github.com/barline/barline/internal/tag"
)

func TestRampIndexIsMonotonicInPercent(t *testing.T) {
	rungs := []*fixedWidth{{width: 0}, {width: 1}, {width: 2}, {width: 3}}
	children := make([]Particle, len(rungs))
	for i, r := range rungs {
		children[i] = r
	}
	p := &Ramp{Tag: "level", Children: children}

	cases := []struct {
		value    int64
		wantRung int
	}{
		{0, 0},
		{24, 0},
		{25, 1},
		{49, 1},
		{50, 2},
		{74, 2},
		{75, 3},
		{100, 3}, // top of range must clamp to the last rung, not overflow
	}
	for _, c := range cases {
		set := tag.NewSet(tag.NewIntRange("level", c.value, 0, 100))
		exp := p.Instantiate(set, time.Now())
		got := exp.BeginExpose()
		if got != c.wantRung {
			t.Errorf("value=%d: width(=rung) = %d, want %d", c.value, got, c.wantRung)
		}
	}
}

func TestRampDegenerateRangeAlwaysPicksFirstRung(t *testing.T) {
	children := []Particle{&fixedWidth{width: 7}, &fixedWidth{width: 8}}
	p := &Ramp{Tag: "stuck", Children: children}
	set := tag.NewSet(tag.NewIntRange("stuck", 5, 5, 5))
	exp := p.Instantiate(set, time.Now())
	if got := exp.BeginExpose(); got != 7 {
		t.Errorf("width = %d, want 7 (degenerate range resolves to index 0)", got)
	}
}

func TestRampClicksOnlyReachTheActiveChild(t *testing.T) {
	low := &fixedWidth{width: 5}
	high := &fixedWidth{width: 5}
	p := &Ramp{Tag: "level", Children: []Particle{low, high}}
	set := tag.NewSet(tag.NewIntRange("level", 90, 0, 100))
	exp := p.Instantiate(set, time.Now())
	exp.BeginExpose()
	exp.OnMouse(nil, EventClick, ButtonLeft, 0, 0)
	if low.clicked != 0 || high.clicked != 1 {
		t.Errorf("clicked = (%d,%d), want (0,1)", low.clicked, high.clicked)
	}
}
