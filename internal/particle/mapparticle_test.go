package particle

import (
	"testing"
	"time"

	"github.com/barline/barline/internal/mapexpr"
	"github.com/barline/barline/internal/tag"
)

func TestMapPicksFirstMatchingCaseInOrder(t *testing.T) {
	low := &fixedWidth{width: 1}
	high := &fixedWidth{width: 2}
	p := &Map{
		Cases: []MapCase{
			{Condition: mapexpr.Parse("level < 10"), Particle: low},
			{Condition: mapexpr.Parse("level"), Particle: high}, // bool OpSelf, irrelevant kind
		},
		Default: &fixedWidth{width: 3},
	}
	set := tag.NewSet(tag.NewInt("level", 5))
	exp := p.Instantiate(set, time.Now())
	if got := exp.BeginExpose(); got != 1 {
		t.Errorf("width = %d, want 1 (low case should match first)", got)
	}
}

func TestMapFallsBackToDefaultWhenNoCaseMatches(t *testing.T) {
	p := &Map{
		Cases: []MapCase{
			{Condition: mapexpr.Parse("level > 100"), Particle: &fixedWidth{width: 1}},
		},
		Default: &fixedWidth{width: 9},
	}
	set := tag.NewSet(tag.NewInt("level", 5))
	exp := p.Instantiate(set, time.Now())
	if got := exp.BeginExpose(); got != 9 {
		t.Errorf("width = %d, want 9 (default)", got)
	}
}

func TestMapWithNoMatchAndNoDefaultExposesOnlyMargins(t *testing.T) {
	p := &Map{
		Header: Header{LeftMargin: 2, RightMargin: 2},
		Cases: []MapCase{
			{Condition: mapexpr.Parse("level > 100"), Particle: &fixedWidth{width: 1}},
		},
	}
	set := tag.NewSet(tag.NewInt("level", 5))
	exp := p.Instantiate(set, time.Now())
	if got := exp.BeginExpose(); got != 4 {
		t.Errorf("width = %d, want 4 (margins only)", got)
	}
	exp.OnMouse(nil, EventClick, ButtonLeft, 0, 0) // must not panic with no child
}

func TestMapSwitchesChildWhenConditionFlips(t *testing.T) {
	p := &Map{
		Cases: []MapCase{
			{Condition: mapexpr.Parse("ok"), Particle: &fixedWidth{width: 1}},
		},
		Default: &fixedWidth{width: 9},
	}
	on := p.Instantiate(tag.NewSet(tag.NewBool("ok", true)), time.Now())
	if got := on.BeginExpose(); got != 1 {
		t.Errorf("width = %d, want 1 when ok=true", got)
	}
	off := p.Instantiate(tag.NewSet(tag.NewBool("ok", false)), time.Now())
	if got := off.BeginExpose(); got != 9 {
		t.Errorf("width = %d, want 9 when ok=false", got)
	}
}
