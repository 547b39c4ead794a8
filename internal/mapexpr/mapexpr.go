// Package mapexpr parses and evaluates the condition strings used by the
// map particle (spec §4.B, §4.I). Grounded in yambar's particles/map.c.
package mapexpr

import (
	"strconv"
	"strings"
	"time"

	"github.com/barline/barline/internal/tag"
)

// Op identifies a comparison operator. OpSelf and OpNot apply only to bool
// tags: a bare "<tag>" evaluates the tag directly, "~<tag>" negates it.
type Op uint8

const (
	OpEQ Op = iota
	OpNE
	OpLE
	OpLT
	OpGE
	OpGT
	OpSelf
	OpNot
)

// Condition is a parsed map-particle condition: "<tag> <op> <value>".
type Condition struct {
	Tag   string
	Op    Op
	Value string // unset (empty) for OpSelf/OpNot
}

// Parse parses a single condition string per spec §4.I:
//
//	<tag>                 -> OpSelf
//	~<tag>                -> OpNot
//	<tag> == <value>      -> OpEQ
//	<tag> != <value>      -> OpNE
//	<tag> <= <value>      -> OpLE
//	<tag> < <value>       -> OpLT
//	<tag> >= <value>      -> OpGE
//	<tag> > <value>       -> OpGT
//
// Value may be unquoted or double-quoted; surrounding quotes are stripped.
func Parse(s string) Condition {
	s = strings.TrimLeft(s, " ")

	idx := strings.IndexAny(s, "=!<>~")
	if idx < 0 {
		return Condition{Tag: strings.TrimRight(s, " "), Op: OpSelf}
	}

	if s[idx] == '~' {
		return Condition{Tag: strings.TrimSpace(s[idx+1:]), Op: OpNot}
	}

	tagPart := strings.TrimRight(s[:idx], " ")
	var op Op
	var valueStart int
	switch s[idx] {
	case '=':
		op = OpEQ
		valueStart = idx + 2
	case '!':
		op = OpNE
		valueStart = idx + 2
	case '<':
		if idx+1 < len(s) && s[idx+1] == '=' {
			op = OpLE
			valueStart = idx + 2
		} else {
			op = OpLT
			valueStart = idx + 1
		}
	case '>':
		if idx+1 < len(s) && s[idx+1] == '=' {
			op = OpGE
			valueStart = idx + 2
		} else {
			op = OpGT
			valueStart = idx + 1
		}
	}

	value := ""
	if valueStart <= len(s) {
		value = strings.TrimSpace(s[valueStart:])
	}
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = value[1 : len(value)-1]
	}
	return Condition{Tag: tagPart, Op: op, Value: value}
}

// Eval evaluates a parsed condition against tags. An unknown tag, or a
// numeric value that fails to parse, evaluates to false (callers should
// log a warning; Eval itself is pure and side-effect free).
func (c Condition) Eval(tags *tag.Set, now time.Time) bool {
	t, ok := tags.ForName(c.Tag)
	if !ok {
		return false
	}

	switch t.Kind() {
	case tag.KindBool:
		switch c.Op {
		case OpSelf:
			return t.Bool()
		case OpNot:
			return !t.Bool()
		default:
			return false
		}
	case tag.KindInt, tag.KindIntRange, tag.KindIntRealtime:
		cv, err := strconv.ParseInt(c.Value, 0, 64)
		if err != nil {
			return false
		}
		return intCompare(t.CurrentValue(now), cv, c.Op)
	case tag.KindFloat:
		cv, err := strconv.ParseFloat(c.Value, 64)
		if err != nil {
			return false
		}
		return floatCompare(t.Float(), cv, c.Op)
	case tag.KindString:
		return stringCompare(t.RawString(), c.Value, c.Op)
	default:
		return false
	}
}

func intCompare(a, b int64, op Op) bool {
	switch op {
	case OpEQ:
		return a == b
	case OpNE:
		return a != b
	case OpLE:
		return a <= b
	case OpLT:
		return a < b
	case OpGE:
		return a >= b
	case OpGT:
		return a > b
	default:
		return false
	}
}

func floatCompare(a, b float64, op Op) bool {
	switch op {
	case OpEQ:
		return a == b
	case OpNE:
		return a != b
	case OpLE:
		return a <= b
	case OpLT:
		return a < b
	case OpGE:
		return a >= b
	case OpGT:
		return a > b
	default:
		return false
	}
}

func stringCompare(a, b string, op Op) bool {
	switch op {
	case OpEQ:
		return a == b
	case OpNE:
		return a != b
	case OpLE:
		return a <= b
	case OpLT:
		return a < b
	case OpGE:
		return a >= b
	case OpGT:
		return a > b
	default:
		return false
	}
}
