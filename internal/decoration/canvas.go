// Package decoration implements the background shapes drawn behind a
// particle's content (spec §3, §4.C). Decorations composite with OVER
// onto a Canvas — a thin wrapper over image/draw so backends can hand
// decorations either an SHM-backed *image.RGBA (Wayland) or a pixmap
// staging buffer (X11) without the decoration code knowing which.
package decoration

import (
	"image"
	"image/color"
	"image/draw"
)

// Canvas is the pixel target decorations and particles draw into. It is
// intentionally narrower than image.Image/draw.Image: callers never need
// raw pixel access, only rectangle compositing, which keeps the backend
// buffer format (argb8888 for Wayland SHM, a8r8g8b8 for the X11 pixmap)
// an implementation detail of the concrete Canvas.
type Canvas interface {
	// FillRect composites c with OVER into the rectangle
	// [x, x+w) x [y, y+h), clipped to the canvas bounds.
	FillRect(x, y, w, h int, c color.Color)
	// DrawMask composites fg through an alpha mask with OVER, anchored at
	// (x, y). Used to blit a rasterised glyph (font.Glyph.Mask) in the
	// particle's foreground color.
	DrawMask(x, y int, mask *image.Alpha, fg color.Color)
	// DrawImage composites a pre-multiplied color image with OVER,
	// anchored at (x, y). Used for glyphs that carry their own color
	// (font.Glyph.Image), e.g. color emoji.
	DrawImage(x, y int, img image.Image)
	// Bounds returns the canvas's pixel bounds.
	Bounds() image.Rectangle
}

// RGBACanvas is the reference Canvas backed by a stdlib *image.RGBA. The
// bar wraps either backend's surface in it: the X11 backend repacks the
// image for PutImage on Commit, while the Wayland backend's image is the
// SHM buffer's own memory.
type RGBACanvas struct {
	Img *image.RGBA
}

// NewRGBACanvas allocates a canvas of the given size.
func NewRGBACanvas(w, h int) *RGBACanvas {
	return &RGBACanvas{Img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (c *RGBACanvas) Bounds() image.Rectangle { return c.Img.Bounds() }

func (c *RGBACanvas) FillRect(x, y, w, h int, col color.Color) {
	r := image.Rect(x, y, x+w, y+h).Intersect(c.Img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(c.Img, r, &image.Uniform{C: col}, image.Point{}, draw.Over)
}

func (c *RGBACanvas) DrawMask(x, y int, mask *image.Alpha, fg color.Color) {
	if mask == nil {
		return
	}
	mb := mask.Bounds()
	dst := image.Rect(x, y, x+mb.Dx(), y+mb.Dy()).Intersect(c.Img.Bounds())
	if dst.Empty() {
		return
	}
	draw.DrawMask(c.Img, dst, &image.Uniform{C: fg}, image.Point{}, mask, mb.Min, draw.Over)
}

func (c *RGBACanvas) DrawImage(x, y int, img image.Image) {
	if img == nil {
		return
	}
	ib := img.Bounds()
	dst := image.Rect(x, y, x+ib.Dx(), y+ib.Dy()).Intersect(c.Img.Bounds())
	if dst.Empty() {
		return
	}
	draw.Draw(c.Img, dst, img, ib.Min, draw.Over)
}
