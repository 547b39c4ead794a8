// Package font defines the narrow contract the particle tree consumes
// for glyph rasterisation (spec §6). The core never implements font
// loading or hinting itself — it only consumes Provider.
package font

import "image"

// Metrics carries a font's vertical measurements, in pixels.
type Metrics struct {
	Ascent  float64
	Descent float64
}

// Glyph is a single rasterised codepoint: either an alpha mask or a
// pre-multiplied BGRA image, plus its advance width.
type Glyph struct {
	Mask    *image.Alpha // set when the glyph has no color information
	Image   image.Image  // set for pre-multiplied BGRA glyphs (e.g. emoji)
	Advance float64
}

// Run is a shaped sequence of glyphs produced by a single TextRun call,
// used in place of rasterizing codepoint-by-codepoint when the provider
// supports real text shaping (ligatures, kerning, complex scripts).
type Run struct {
	Glyphs  []Glyph
	Advance float64
}

// Provider is implemented by a concrete font backend and handed to the
// bar at construction time (one per configured font handle).
type Provider interface {
	Metrics() Metrics
	// Rasterize returns the glyph for a single codepoint.
	Rasterize(r rune) (Glyph, error)
	// Kerning returns the kerning adjustment, in pixels, to apply between
	// two adjacent codepoints. Returns 0 if the provider has none.
	Kerning(a, b rune) float64
	// TextRun shapes an entire run of codepoints at once. Providers that
	// can't shape return (Run{}, false) and callers fall back to
	// per-codepoint Rasterize+Kerning.
	TextRun(runes []rune) (Run, bool)
}
