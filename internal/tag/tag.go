// Package tag implements the typed named values modules produce and
// particles consume (spec §3, §4.A).
package tag

import (
	"fmt"
	"strconv"
	"time"
)

// Kind identifies a Tag's value type.
type Kind uint8

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindString
	KindIntRange
	KindIntRealtime
)

// Unit qualifies a realtime tag's value.
type Unit uint8

const (
	UnitNone Unit = iota
	UnitMilliseconds
)

// Tag is a named typed value. The zero value is not valid; construct one
// with the New* functions.
type Tag struct {
	name string
	kind Kind

	ival int64
	fval float64
	bval bool
	sval string

	min, max int64
	unit     Unit
	created  time.Time
}

// NewInt creates an int tag.
func NewInt(name string, value int64) Tag {
	return Tag{name: name, kind: KindInt, ival: value}
}

// NewFloat creates a float tag.
func NewFloat(name string, value float64) Tag {
	return Tag{name: name, kind: KindFloat, fval: value}
}

// NewBool creates a bool tag.
func NewBool(name string, value bool) Tag {
	return Tag{name: name, kind: KindBool, bval: value}
}

// NewString creates a string tag.
func NewString(name, value string) Tag {
	return Tag{name: name, kind: KindString, sval: value}
}

// NewIntRange creates a range tag; value is clamped to [min, max].
func NewIntRange(name string, value, min, max int64) Tag {
	return Tag{name: name, kind: KindIntRange, ival: clamp(value, min, max), min: min, max: max}
}

// NewIntRealtime creates a realtime range tag. now is the reference
// timestamp recorded at creation; a consumer derives the current value
// with Tag.CurrentValue.
func NewIntRealtime(name string, value, min, max int64, unit Unit, now time.Time) Tag {
	return Tag{
		name: name, kind: KindIntRealtime,
		ival: clamp(value, min, max), min: min, max: max,
		unit: unit, created: now,
	}
}

func clamp(v, min, max int64) int64 {
	if min > max {
		min, max = max, min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Name returns the tag's name.
func (t Tag) Name() string { return t.name }

// Kind returns the tag's type.
func (t Tag) Kind() Kind { return t.kind }

// Bounds returns the tag's min/max. Only meaningful for range/realtime kinds.
func (t Tag) Bounds() (min, max int64) { return t.min, t.max }

// RealtimeUnit returns the unit a KindIntRealtime tag's bounds and value
// are expressed in. Meaningless for other kinds.
func (t Tag) RealtimeUnit() Unit { return t.unit }

// Int returns the tag's integer value for KindInt, KindIntRange and
// KindIntRealtime. It does not apply the realtime elapsed-time adjustment;
// use CurrentValue for that.
func (t Tag) Int() int64 { return t.ival }

// Float returns the tag's float value for KindFloat.
func (t Tag) Float() float64 { return t.fval }

// Bool returns the tag's bool value for KindBool.
func (t Tag) Bool() bool { return t.bval }

// RawString returns the tag's raw string value for KindString. For other
// kinds use FormatValue to get the template-substitution form.
func (t Tag) RawString() string { return t.sval }

// CurrentValue returns the realtime tag's value adjusted for elapsed time
// since creation, clamped to [min, max]. For non-realtime kinds it returns
// Int() unchanged. This is a pure function: it never mutates t, so layout
// and hit-testing within the same frame observe identical values.
func (t Tag) CurrentValue(now time.Time) int64 {
	if t.kind != KindIntRealtime {
		return t.ival
	}
	elapsed := now.Sub(t.created)
	var delta int64
	switch t.unit {
	case UnitMilliseconds:
		delta = elapsed.Milliseconds()
	default:
		delta = int64(elapsed.Seconds())
	}
	return clamp(t.ival+delta, t.min, t.max)
}

// Percent returns the tag's current value expressed as a fraction in
// [0,1] of its [min,max] range. When min == max the result is defined to
// be 0, per spec §3.
func (t Tag) Percent(now time.Time) float64 {
	if t.max == t.min {
		return 0
	}
	v := t.CurrentValue(now)
	return float64(v-t.min) / float64(t.max-t.min)
}

// FormatValue renders the tag's value in the literal substitution form
// used by particle templates: integers as decimal, floats with two
// fractional digits, bools as true/false.
func (t Tag) FormatValue(now time.Time) string {
	switch t.kind {
	case KindInt:
		return strconv.FormatInt(t.ival, 10)
	case KindIntRange:
		return strconv.FormatInt(t.ival, 10)
	case KindIntRealtime:
		return strconv.FormatInt(t.CurrentValue(now), 10)
	case KindFloat:
		return strconv.FormatFloat(t.fval, 'f', 2, 64)
	case KindBool:
		if t.bval {
			return "true"
		}
		return "false"
	case KindString:
		return t.sval
	default:
		return fmt.Sprintf("%v", t.ival)
	}
}
