package particle

import (
	"time"

	"github.com/rivo/uniseg"

	"github.com/barline/barline/internal/decoration"
	"github.com/barline/barline/internal/font"
	"github.com/barline/barline/internal/tag"
	"github.com/barline/barline/internal/template"
)

// String renders a template as shaped text (spec §3, §4.B). MaxGraphemes,
// when greater than zero, bounds the displayed length; text longer than
// that is truncated and given a trailing ellipsis, matching yambar's
// particles/string.c max-length handling.
type String struct {
	Header       Header
	Text         string
	MaxGraphemes int

	cache runCache
}

func (p *String) Instantiate(tags *tag.Set, now time.Time) Exposable {
	text := truncate(template.Expand(p.Text, tags, now), p.MaxGraphemes)
	return &stringExposable{
		base:  newBase(&p.Header, tags, now),
		text:  text,
		cache: &p.cache,
	}
}

type stringExposable struct {
	base
	text  string
	cache *runCache
	entry *shapedRun
}

func (e *stringExposable) BeginExpose() int {
	prov := e.header.Font
	e.entry = e.cache.acquire(e.text, func() (font.Run, int) {
		return shapeText(prov, e.text)
	})
	e.width = e.header.LeftMargin + e.entry.width + e.header.RightMargin
	return e.width
}

// shapeText shapes text as a single run via f.TextRun when the provider
// supports it, and otherwise falls back to per-codepoint Rasterize plus
// Kerning (spec §6's fallback contract).
func shapeText(f font.Provider, text string) (font.Run, int) {
	runes := []rune(text)
	if run, ok := f.TextRun(runes); ok {
		return run, int(run.Advance)
	}
	var run font.Run
	var advance float64
	var prev rune
	for i, r := range runes {
		g, _ := f.Rasterize(r)
		if i > 0 {
			advance += f.Kerning(prev, r)
		}
		run.Glyphs = append(run.Glyphs, g)
		advance += g.Advance
		prev = r
	}
	run.Advance = advance
	return run, int(advance)
}

func (e *stringExposable) Expose(canvas decoration.Canvas, x, y, height int) {
	e.exposeDeco(canvas, x, y, height)

	cursor := x + e.header.LeftMargin
	top := y
	if e.header.Font != nil {
		m := e.header.Font.Metrics()
		top = y + (height-int(m.Ascent+m.Descent))/2
	}
	for _, g := range e.entry.run.Glyphs {
		switch {
		case g.Image != nil:
			canvas.DrawImage(cursor, top, g.Image)
		case g.Mask != nil:
			canvas.DrawMask(cursor, top, g.Mask, e.header.Foreground)
		}
		cursor += int(g.Advance)
	}
}

func (e *stringExposable) OnMouse(d Dispatcher, event MouseEvent, button Button, x, y int) {
	e.defaultOnMouse(d, event, button)
}

func (e *stringExposable) Destroy() {
	e.cache.release(e.entry)
}

// truncate bounds s to at most max grapheme clusters. max <= 0 means
// unbounded. When truncation is needed and max >= 4, the last three
// displayed clusters are replaced with "..." so the result still reads
// as exactly max clusters; for max < 4 the cut is plain, matching
// yambar's particles/string.c (a 1-3 character maximum is too short to
// reserve room for an ellipsis). Operating on grapheme clusters
// (uniseg) rather than bytes or runes guarantees the cut never splits a
// UTF-8 scalar, let alone a user-perceived character.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	clusters := uniseg.NewGraphemes(s)
	var bounds []int
	bounds = append(bounds, 0)
	for clusters.Next() {
		_, to := clusters.Positions()
		bounds = append(bounds, to)
	}
	n := len(bounds) - 1
	if n <= max {
		return s
	}
	if max >= 4 {
		return s[:bounds[max-3]] + "..."
	}
	return s[:bounds[max]]
}
