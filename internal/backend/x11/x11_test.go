package x11

import (
	"image"
	"image/color"
	"testing"

	"github.com/jezek/xgb/xproto"

	"github.com/barline/barline/internal/backend"
)

func TestRgbaToBGRASwapsRedAndBlueChannels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44})

	out := rgbaToBGRA(img)
	if len(out) != 4 {
		t.Fatalf("len(out) = %d, want 4", len(out))
	}
	want := []byte{0x33, 0x22, 0x11, 0x44}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %#x, want %#x", i, out[i], want[i])
		}
	}
}

func TestU32LEIsLittleEndian(t *testing.T) {
	got := u32le(0x01020304)
	want := []byte{0x04, 0x03, 0x02, 0x01}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestU32SLEConcatenatesEachValue(t *testing.T) {
	got := u32sle(1, 2)
	if len(got) != 8 {
		t.Fatalf("len(got) = %d, want 8", len(got))
	}
}

func TestX11ButtonMapsCoreAndSideButtons(t *testing.T) {
	cases := []struct {
		detail xproto.Button
		want   backend.Button
	}{
		{1, backend.ButtonLeft},
		{2, backend.ButtonMiddle},
		{3, backend.ButtonRight},
		{4, backend.ButtonWheelUp},
		{5, backend.ButtonWheelDown},
		{8, backend.ButtonPrevious},
		{9, backend.ButtonNext},
		{200, backend.ButtonLeft},
	}
	for _, c := range cases {
		if got := x11Button(c.detail); got != c.want {
			t.Errorf("x11Button(%d) = %v, want %v", c.detail, got, c.want)
		}
	}
}
