package decoration

import "image/color"

// Decoration draws a shape behind a particle's content, over its full
// bounding box including margins (spec §3, §4.C).
type Decoration interface {
	// Expose composites the decoration into canvas at
	// [x, x+width) x [y, y+height).
	Expose(canvas Canvas, x, y, width, height int)
}

// Background is a solid-color fill.
type Background struct {
	Color color.Color
}

func (d Background) Expose(canvas Canvas, x, y, width, height int) {
	canvas.FillRect(x, y, width, height, d.Color)
}

// Border draws a four-sided outline of the given thickness fully inside
// the bounding box, matching yambar's decorations/border.c: each side's
// rectangle is clamped so a border thicker than the box never overdraws
// past the opposite edge.
type Border struct {
	Color color.Color
	Size  int
}

func (d Border) Expose(canvas Canvas, x, y, width, height int) {
	size := min(d.Size, width)
	sizeH := min(d.Size, height)

	// Top
	canvas.FillRect(x, y, width, sizeH, d.Color)
	// Bottom
	canvas.FillRect(x, max(y+height-sizeH, y), width, sizeH, d.Color)
	// Left
	canvas.FillRect(x, y, size, height, d.Color)
	// Right
	canvas.FillRect(max(x+width-size, x), y, size, height, d.Color)
}

// Line selects whether an Underline/Overline decoration sits at the top
// or the bottom of the bounding box.
type Line struct {
	Color  color.Color
	Size   int
	Bottom bool // false draws an overline, true draws an underline
}

func (d Line) Expose(canvas Canvas, x, y, width, height int) {
	size := min(d.Size, height)
	ly := y
	if d.Bottom {
		ly = y + height - size
	}
	canvas.FillRect(x, ly, width, size, d.Color)
}

// Stack composes an ordered list of decorations back-to-front: index 0
// is drawn first (at the bottom), the last entry is drawn on top.
type Stack struct {
	Layers []Decoration
}

func (d Stack) Expose(canvas Canvas, x, y, width, height int) {
	for _, layer := range d.Layers {
		layer.Expose(canvas, x, y, width, height)
	}
}
