// Package gotext adapts github.com/go-text/typesetting onto the font.Provider
// contract (spec §6). It is the reference font backend: the core package
// never imports it directly, only font.Provider, so a test or a future
// backend (e.g. a system fontconfig/fcft binding closer to yambar's own
// font.c) can be substituted without touching the particle tree.
package gotext

import (
	"bytes"
	"fmt"
	"image"

	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/vector"

	"github.com/barline/barline/internal/font"
)

// Adapter wraps a single shaped go-text face at a fixed pixel size.
type Adapter struct {
	face   *gofont.Face
	size   float32
	shaper shaping.HarfbuzzShaper

	glyphs   map[rune]font.Glyph
	outlines map[gofont.GID]font.Glyph
}

// New builds an Adapter from decoded font bytes at the given pixel size.
func New(data []byte, sizePx float32) (*Adapter, error) {
	face, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("barline: parsing font: %w", err)
	}
	return &Adapter{
		face:     face,
		size:     sizePx,
		glyphs:   make(map[rune]font.Glyph),
		outlines: make(map[gofont.GID]font.Glyph),
	}, nil
}

func (a *Adapter) Metrics() font.Metrics {
	m := a.face.Metrics()
	scale := float64(a.size) / float64(m.UnitsPerEm)
	return font.Metrics{
		Ascent:  float64(m.Ascent) * scale,
		Descent: float64(-m.Descent) * scale,
	}
}

// Rasterize returns a cached alpha-mask glyph for r. A missing glyph is
// rendered as zero-width per spec §7's rendering-error handling rather
// than returning an error: the bar must keep drawing the rest of the bar.
func (a *Adapter) Rasterize(r rune) (font.Glyph, error) {
	if g, ok := a.glyphs[r]; ok {
		return g, nil
	}
	gid, ok := a.face.NominalGlyph(r)
	if !ok {
		g := font.Glyph{Mask: image.NewAlpha(image.Rect(0, 0, 0, 0))}
		a.glyphs[r] = g
		return g, nil
	}
	g := a.rasterizeGlyph(gid)
	a.glyphs[r] = g
	return g, nil
}

// rasterizeGlyph fills gid's outline into an alpha mask sized to one
// line cell (the font's ascent+descent), the same cell Expose anchors
// every glyph's mask at, and caches the result by glyph id so a
// repeated glyph (shaped or not) is only ever filled once.
func (a *Adapter) rasterizeGlyph(gid gofont.GID) font.Glyph {
	if g, ok := a.outlines[gid]; ok {
		return g
	}

	scale := a.size / float32(a.face.Metrics().UnitsPerEm)
	adv := a.face.HorizontalAdvance(gid) * scale

	outline, ok := a.face.GlyphData(gid).(gofont.GlyphOutline)
	if !ok || len(outline.Segments) == 0 {
		g := font.Glyph{Mask: image.NewAlpha(image.Rect(0, 0, 0, 0)), Advance: float64(adv)}
		a.outlines[gid] = g
		return g
	}

	metrics := a.Metrics()
	ascent := float32(metrics.Ascent)
	w, h := int(adv)+1, int(metrics.Ascent+metrics.Descent)+1
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	// Outline coordinates are in font units, Y-up from the baseline;
	// the mask is Y-down from the cell's ascent line, matching the
	// "top" anchor string.go's Expose draws every glyph's mask at.
	toPx := func(p gofont.SegmentPoint) (float32, float32) {
		return p.X * scale, ascent - p.Y*scale
	}

	rast := vector.NewRasterizer(w, h)
	for _, seg := range outline.Segments {
		switch seg.Op {
		case gofont.SegmentOpMoveTo:
			x, y := toPx(seg.Args[0])
			rast.MoveTo(x, y)
		case gofont.SegmentOpLineTo:
			x, y := toPx(seg.Args[0])
			rast.LineTo(x, y)
		case gofont.SegmentOpQuadTo:
			cx, cy := toPx(seg.Args[0])
			x, y := toPx(seg.Args[1])
			rast.QuadTo(cx, cy, x, y)
		case gofont.SegmentOpCubeTo:
			c1x, c1y := toPx(seg.Args[0])
			c2x, c2y := toPx(seg.Args[1])
			x, y := toPx(seg.Args[2])
			rast.CubeTo(c1x, c1y, c2x, c2y, x, y)
		}
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	rast.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	g := font.Glyph{Mask: mask, Advance: float64(adv)}
	a.outlines[gid] = g
	return g
}

func (a *Adapter) Kerning(x, y rune) float64 {
	return 0
}

// TextRun shapes runes as a single run via harfbuzz, exercising the real
// shaping path (ligatures, kerning, complex scripts) instead of the
// naive per-codepoint fallback.
func (a *Adapter) TextRun(runes []rune) (font.Run, bool) {
	if a.face == nil {
		return font.Run{}, false
	}
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: 0, // left-to-right; matches the bar's left/center/right layout
		Face:      a.face,
		Size:      fixed266(a.size),
	}
	out := a.shaper.Shape(input)

	run := font.Run{Glyphs: make([]font.Glyph, 0, len(out.Glyphs))}
	var advance float64
	for _, g := range out.Glyphs {
		adv := float64(g.XAdvance) / 64
		advance += adv
		// The mask comes from the glyph's own outline (cached by glyph
		// id); the advance is overridden with the shaper's value, which
		// reflects kerning and shaping features the nominal glyph
		// advance alone doesn't.
		glyph := a.rasterizeGlyph(g.GlyphID)
		glyph.Advance = adv
		run.Glyphs = append(run.Glyphs, glyph)
	}
	run.Advance = advance
	return run, true
}

// fixed266 converts a pixel size to 26.6 fixed point, the unit harfbuzz
// shaping input expects.
func fixed266(px float32) int {
	return int(px * 64)
}
