package mapexpr

import (
	"testing"
	"time"

	"github.com/barline/barline/internal/tag"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Condition
	}{
		{"state == charging", Condition{Tag: "state", Op: OpEQ, Value: "charging"}},
		{`state == "full battery"`, Condition{Tag: "state", Op: OpEQ, Value: "full battery"}},
		{"level != 0", Condition{Tag: "level", Op: OpNE, Value: "0"}},
		{"level <= 10", Condition{Tag: "level", Op: OpLE, Value: "10"}},
		{"level < 10", Condition{Tag: "level", Op: OpLT, Value: "10"}},
		{"level >= 10", Condition{Tag: "level", Op: OpGE, Value: "10"}},
		{"level > 10", Condition{Tag: "level", Op: OpGT, Value: "10"}},
		{"online", Condition{Tag: "online", Op: OpSelf}},
		{"~online", Condition{Tag: "online", Op: OpNot}},
		{"  padded  == 1", Condition{Tag: "padded", Op: OpEQ, Value: "1"}},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got := Parse(c.in)
			if got != c.want {
				t.Errorf("Parse(%q) = %+v, want %+v", c.in, got, c.want)
			}
		})
	}
}

func TestEvalStringEquality(t *testing.T) {
	tags := tag.NewSet(tag.NewString("state", "charging"))
	if !Parse("state == charging").Eval(tags, time.Now()) {
		t.Error("expected match")
	}
	if Parse("state == full").Eval(tags, time.Now()) {
		t.Error("expected no match")
	}
}

func TestEvalBoolSelfAndNegated(t *testing.T) {
	tags := tag.NewSet(tag.NewBool("online", true))
	if !Parse("online").Eval(tags, time.Now()) {
		t.Error("bare bool tag should evaluate truthy")
	}
	if Parse("~online").Eval(tags, time.Now()) {
		t.Error("negated bool tag should evaluate falsy")
	}
}

func TestEvalNumericOrdering(t *testing.T) {
	tags := tag.NewSet(tag.NewIntRange("capacity", 42, 0, 100))
	if !Parse("capacity > 10").Eval(tags, time.Now()) {
		t.Error("42 > 10 should be true")
	}
	if Parse("capacity < 10").Eval(tags, time.Now()) {
		t.Error("42 < 10 should be false")
	}
}

func TestEvalUnknownTagIsFalse(t *testing.T) {
	if Parse("missing == 1").Eval(tag.NewSet(), time.Now()) {
		t.Error("unknown tag should evaluate false")
	}
}

func TestEvalNumericParseFailureIsFalse(t *testing.T) {
	tags := tag.NewSet(tag.NewInt("n", 1))
	if Parse("n == notanumber").Eval(tags, time.Now()) {
		t.Error("unparsable numeric comparison should evaluate false")
	}
}

func TestEvalStringOrdering(t *testing.T) {
	tags := tag.NewSet(tag.NewString("name", "bravo"))
	if !Parse("name > alpha").Eval(tags, time.Now()) {
		t.Error(`"bravo" > "alpha" should be true lexicographically`)
	}
}
