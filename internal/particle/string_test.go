package particle

import (
	"image"
	"testing"
	"time"

	"github.com/rivo/uniseg"

	"github.com/barline/barline/internal/font"
	"github.com/barline/barline/internal/tag"
)

// stubFont is a fixed-advance-per-rune font.Provider for tests; it never
// shapes real glyph shells, only advances, and counts how many times it
// was asked to shape a run so cache-reuse tests can assert on it.
type stubFont struct {
	shapeCalls int
}

func (f *stubFont) Metrics() font.Metrics { return font.Metrics{Ascent: 10, Descent: 2} }

func (f *stubFont) Rasterize(r rune) (font.Glyph, error) {
	return font.Glyph{Mask: image.NewAlpha(image.Rect(0, 0, 6, 12)), Advance: 6}, nil
}

func (f *stubFont) Kerning(a, b rune) float64 { return 0 }

func (f *stubFont) TextRun(runes []rune) (font.Run, bool) {
	f.shapeCalls++
	run := font.Run{}
	for range runes {
		run.Glyphs = append(run.Glyphs, font.Glyph{Mask: image.NewAlpha(image.Rect(0, 0, 6, 12)), Advance: 6})
	}
	run.Advance = float64(6 * len(runes))
	return run, true
}

func TestStringExposableWidthIncludesMarginsAndAdvance(t *testing.T) {
	f := &stubFont{}
	p := &String{
		Header: Header{LeftMargin: 2, RightMargin: 3, Font: f},
		Text:   "hi",
	}
	set := tag.NewSet()
	now := time.Now()

	exp := p.Instantiate(set, now)
	got := exp.BeginExpose()
	want := 2 + 12 + 3 // "hi" -> 2 glyphs * 6px advance
	if got != want {
		t.Errorf("width = %d, want %d", got, want)
	}
}

func TestStringExposableSubstitutesTags(t *testing.T) {
	f := &stubFont{}
	p := &String{Header: Header{Font: f}, Text: "user: {name}"}
	set := tag.NewSet(tag.NewString("name", "ok"))

	exp := p.Instantiate(set, time.Now()).(*stringExposable)
	if exp.text != "user: ok" {
		t.Errorf("text = %q, want %q", exp.text, "user: ok")
	}
}

func TestStringCacheReusesShapedRunForRepeatedText(t *testing.T) {
	f := &stubFont{}
	p := &String{Header: Header{Font: f}, Text: "static"}
	set := tag.NewSet()
	now := time.Now()

	e1 := p.Instantiate(set, now)
	e1.BeginExpose()
	e1.Destroy()

	e2 := p.Instantiate(set, now)
	e2.BeginExpose()
	e2.Destroy()

	if f.shapeCalls != 1 {
		t.Errorf("shapeCalls = %d, want 1 (second instantiation should hit the cache)", f.shapeCalls)
	}
}

func TestStringCacheReshapesWhenTextChangesWhileFirstStillInUse(t *testing.T) {
	f := &stubFont{}
	p := &String{Header: Header{Font: f}, Text: "{v}"}

	e1 := p.Instantiate(tag.NewSet(tag.NewString("v", "a")), time.Now())
	e1.BeginExpose() // holds the "a" entry in use

	e2 := p.Instantiate(tag.NewSet(tag.NewString("v", "b")), time.Now())
	e2.BeginExpose() // must grow the cache rather than evict the in-use "a" entry

	if f.shapeCalls != 2 {
		t.Errorf("shapeCalls = %d, want 2 (distinct live texts must not collide)", f.shapeCalls)
	}

	e1.Destroy()
	e2.Destroy()

	e3 := p.Instantiate(tag.NewSet(tag.NewString("v", "a")), time.Now())
	e3.BeginExpose()
	if f.shapeCalls != 2 {
		t.Errorf("shapeCalls = %d, want 2 (both entries are free, \"a\" should be reused)", f.shapeCalls)
	}
}

func TestTruncateLeavesShortTextUntouched(t *testing.T) {
	if got := truncate("hi", 10); got != "hi" {
		t.Errorf("truncate = %q, want unchanged", got)
	}
	if got := truncate("hi", 0); got != "hi" {
		t.Errorf("truncate with max<=0 = %q, want unchanged", got)
	}
}

func TestTruncateAddsEllipsisWhenMaxAllowsIt(t *testing.T) {
	got := truncate("hello world", 5)
	want := "he..."
	if got != want {
		t.Errorf("truncate = %q, want %q", got, want)
	}
	if n := graphemeCount(got); n != 5 {
		t.Errorf("truncated length = %d clusters, want 5", n)
	}
}

func TestTruncatePlainCutBelowFour(t *testing.T) {
	got := truncate("hello", 3)
	if got != "hel" {
		t.Errorf("truncate = %q, want %q", got, "hel")
	}
}

func TestTruncateNeverSplitsAGrapheme(t *testing.T) {
	// "é" here is a combining sequence (e + combining acute), one grapheme
	// cluster but two runes; truncating to 1 must keep it whole.
	s := "éx"
	got := truncate(s, 1)
	if got != "é" {
		t.Errorf("truncate = %q, want the combining sequence kept whole", got)
	}
}

func graphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}
