package decoration

import (
	"image/color"
	"testing"
)

func countPixels(c *RGBACanvas, col color.Color) int {
	wantR, wantG, wantB, wantA := col.RGBA()
	n := 0
	b := c.Img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := c.Img.At(x, y).RGBA()
			if r == wantR && g == wantG && bl == wantB && a == wantA {
				n++
			}
		}
	}
	return n
}

func TestBackgroundFillsWholeBox(t *testing.T) {
	c := NewRGBACanvas(10, 10)
	red := color.RGBA{255, 0, 0, 255}
	Background{Color: red}.Expose(c, 2, 2, 4, 4)
	if got := countPixels(c, red); got != 16 {
		t.Errorf("filled pixels = %d, want 16", got)
	}
}

func TestBorderStaysInsideBox(t *testing.T) {
	c := NewRGBACanvas(20, 20)
	blue := color.RGBA{0, 0, 255, 255}
	Border{Color: blue, Size: 2}.Expose(c, 5, 5, 10, 10)
	// Center of the box must remain untouched.
	r, g, b, a := c.Img.At(10, 10).RGBA()
	if r != 0 || g != 0 || b != 0 || a != 0 {
		t.Errorf("border painted the interior: %d %d %d %d", r, g, b, a)
	}
	// Top-left corner must be painted.
	r, g, b, a = c.Img.At(5, 5).RGBA()
	wr, wg, wb, wa := blue.RGBA()
	if r != wr || g != wg || b != wb || a != wa {
		t.Error("border did not paint its top-left corner")
	}
}

func TestBorderThickerThanBoxClampsWithoutOverdraw(t *testing.T) {
	c := NewRGBACanvas(20, 20)
	blue := color.RGBA{0, 0, 255, 255}
	// Box smaller than the requested border thickness.
	Border{Color: blue, Size: 50}.Expose(c, 5, 5, 4, 4)
	if got := countPixels(c, blue); got != 16 {
		t.Errorf("painted %d pixels, want exactly the 4x4 box (16)", got)
	}
}

func TestLineUnderlineSitsAtBottom(t *testing.T) {
	c := NewRGBACanvas(10, 10)
	green := color.RGBA{0, 255, 0, 255}
	Line{Color: green, Size: 1, Bottom: true}.Expose(c, 0, 0, 10, 10)
	r, g, b, a := c.Img.At(5, 9).RGBA()
	wr, wg, wb, wa := green.RGBA()
	if r != wr || g != wg || b != wb || a != wa {
		t.Error("underline did not paint the bottom row")
	}
	r, g, b, a = c.Img.At(5, 0).RGBA()
	if r != 0 || g != 0 || b != 0 || a != 0 {
		t.Error("underline painted the top row")
	}
}

func TestStackDrawsBackToFront(t *testing.T) {
	c := NewRGBACanvas(10, 10)
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	Stack{Layers: []Decoration{Background{Color: red}, Background{Color: blue}}}.Expose(c, 0, 0, 10, 10)
	r, g, b, a := c.Img.At(0, 0).RGBA()
	wr, wg, wb, wa := blue.RGBA()
	if r != wr || g != wg || b != wb || a != wa {
		t.Error("stack's last layer should be on top")
	}
}
