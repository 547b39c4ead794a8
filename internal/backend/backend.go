// Package backend defines the display-server-facing contract a bar
// runs against (spec §4.E), mirroring yambar's struct backend
// (original_source/bar/backend.h): a small vtable the bar runtime
// drives, with Wayland and X11 implementations underneath.
package backend

import (
	"context"
	"image"
)

// MouseEvent distinguishes a hover/motion notification from a click,
// mirroring yambar's enum mouse_event.
type MouseEvent uint8

const (
	EventMotion MouseEvent = iota
	EventClick
)

// Button enumerates the pointer buttons a backend can report on a
// click, mirroring the X11 button-number convention (1-5, plus the
// 8/9 back/forward side buttons the evdev driver delivers as core
// button events on most mice) that both backends' event sources
// ultimately follow.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
	ButtonWheelUp
	ButtonWheelDown
	ButtonPrevious
	ButtonNext
)

// Target is the geometry and identity a backend needs from the bar it
// is driving. It intentionally exposes only reads: a backend never
// mutates bar state directly, it only reports events through the
// callbacks passed to Loop.
type Target interface {
	Monitor() string
	Location() Location
	Height() int
	// HeightWithBorder is Height plus the top/bottom border width,
	// i.e. the window's actual pixel height (bar_config's
	// height_with_border).
	HeightWithBorder() int
	BorderWidth() int
}

// Location mirrors config.Location without importing the config
// package, keeping backend free of a dependency on the reference
// configuration shape.
type Location uint8

const (
	LocationTop Location = iota
	LocationBottom
)

// Backend is the display-server vtable every concrete backend
// implements: connect and create a surface (Setup), tear it down
// (Cleanup), block pumping events until told to stop (Loop), hand back
// a drawable image for the renderer to paint into (Surface), push a
// painted frame to the screen (Commit), force a redraw from another
// goroutine (Refresh), change the pointer shape (SetCursor), and report
// which output the bar ended up on (OutputName).
type Backend interface {
	Setup(target Target) error
	Cleanup()

	// Loop pumps backend events until ctx is done, calling onExpose
	// when the surface needs repainting and onMouse for pointer
	// motion/clicks. It returns when the event source is exhausted or
	// ctx is cancelled.
	Loop(ctx context.Context, onExpose func(), onMouse func(event MouseEvent, button Button, x, y int)) error

	// Surface returns the backend's current drawable, sized to the
	// target's width (as negotiated with the compositor/X server) and
	// HeightWithBorder. Callers must call Commit after painting it to
	// push the frame to the screen.
	Surface() *image.RGBA
	Commit() error

	// Refresh requests a redraw from a goroutine other than the one
	// running Loop — it must be safe to call concurrently with Loop.
	Refresh()

	SetCursor(name string) error

	// OutputName is the name of the output (monitor) the bar actually
	// landed on, resolved during Setup.
	OutputName() string

	// Width is the bar's current pixel width, resolved during Setup
	// (X11: the monitor's width; Wayland: negotiated via configure).
	Width() int
}
