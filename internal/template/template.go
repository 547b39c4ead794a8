// Package template expands the `{tag}` placeholder syntax used by string
// particles and on-click command templates (spec §4.A).
package template

import (
	"strings"
	"time"

	"github.com/barline/barline/internal/tag"
)

// Expand substitutes every `{name}` span in s with the formatted value of
// the tag named "name" in tags, using now as the reference time for
// realtime tags. A literal `{` is written by doubling it (`{{`). A
// template with no placeholders expands to itself verbatim regardless of
// the tag set (spec §8's template-idempotence invariant), and lookups
// that don't resolve to a tag in the set leave the placeholder text
// intact so authoring mistakes are visible rather than silently dropped.
func Expand(s string, tags *tag.Set, now time.Time) string {
	if !strings.ContainsRune(s, '{') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	i := 0
	for i < len(s) {
		c := s[i]
		if c != '{' {
			b.WriteByte(c)
			i++
			continue
		}
		// Escaped "{{" -> literal "{".
		if i+1 < len(s) && s[i+1] == '{' {
			b.WriteByte('{')
			i += 2
			continue
		}
		end := strings.IndexByte(s[i+1:], '}')
		if end < 0 {
			// Unterminated placeholder: copy the rest verbatim.
			b.WriteString(s[i:])
			break
		}
		name := s[i+1 : i+1+end]
		if t, ok := tags.ForName(name); ok {
			b.WriteString(t.FormatValue(now))
		} else {
			b.WriteString(s[i : i+1+end+1])
		}
		i += end + 2
	}
	return b.String()
}
