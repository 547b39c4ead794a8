package plugin

import (
	"context"
	"testing"
	"time"

	"github.com/barline/barline/internal/font"
)

// onePxFont is a font.Provider stub that gives every rune a 1px
// advance, so a string particle's width equals its rune count.
type onePxFont struct{}

func (onePxFont) Metrics() font.Metrics                 { return font.Metrics{Ascent: 1} }
func (onePxFont) Rasterize(r rune) (font.Glyph, error)  { return font.Glyph{Advance: 1}, nil }
func (onePxFont) Kerning(a, b rune) float64             { return 0 }
func (onePxFont) TextRun(runes []rune) (font.Run, bool) { return font.Run{}, false }

type fakeBar struct {
	refreshed   int
	refreshedIn time.Duration
	cursor      string
	executed    string
}

func (f *fakeBar) Refresh()                     { f.refreshed++ }
func (f *fakeBar) RefreshIn(d time.Duration)     { f.refreshedIn = d }
func (f *fakeBar) SetCursor(name string)         { f.cursor = name }
func (f *fakeBar) Execute(cmd string)            { f.executed = cmd }

func TestRegistryLookupFindsBuiltins(t *testing.T) {
	r := NewDefaultRegistry()
	for _, name := range []string{"clock", "label"} {
		if _, err := r.Lookup(name); err != nil {
			t.Errorf("Lookup(%q) failed: %v", name, err)
		}
	}
}

func TestRegistryLookupRejectsUnknownName(t *testing.T) {
	r := NewDefaultRegistry()
	if _, err := r.Lookup("battery"); err == nil {
		t.Error("expected an error for an unregistered module name")
	}
}

func TestLabelModuleContentUsesConfiguredParticle(t *testing.T) {
	f := labelFactory{}
	node := Node{"content": map[string]any{"string": map[string]any{"text": "hello"}}}
	bar := &fakeBar{}
	m, err := f.FromConf(node, Inherited{Font: onePxFont{}}, bar)
	if err != nil {
		t.Fatalf("FromConf: %v", err)
	}
	exp := m.Content()
	if got := exp.BeginExpose(); got != len("hello") {
		t.Errorf("width = %d, want %d", got, len("hello"))
	}
}

func TestLabelModuleRunBlocksUntilAbort(t *testing.T) {
	f := labelFactory{}
	node := Node{"content": map[string]any{"empty": map[string]any{}}}
	m, err := f.FromConf(node, Inherited{}, &fakeBar{})
	if err != nil {
		t.Fatalf("FromConf: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case <-done:
		t.Fatal("Run returned before abort was signalled")
	case <-time.After(20 * time.Millisecond):
	}

	cancel()
	select {
	case code := <-done:
		if code != 0 {
			t.Errorf("exit code = %d, want 0", code)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after abort")
	}
}

func TestClockModuleProducesTimeAndDateTags(t *testing.T) {
	f := clockFactory{}
	node := Node{
		"content":     map[string]any{"string": map[string]any{"text": "{time} {date}"}},
		"time-format": "15:04",
		"date-format": "2006-01-02",
	}
	m, err := f.FromConf(node, Inherited{Font: onePxFont{}}, &fakeBar{})
	if err != nil {
		t.Fatalf("FromConf: %v", err)
	}
	exp := m.Content()
	// Width is nonzero: the template resolved to a non-empty string.
	if got := exp.BeginExpose(); got <= 0 {
		t.Errorf("width = %d, want > 0", got)
	}
}

func TestClockModuleRunRefreshesAndStopsOnAbort(t *testing.T) {
	f := clockFactory{}
	node := Node{"content": map[string]any{"empty": map[string]any{}}}
	bar := &fakeBar{}
	m, err := f.FromConf(node, Inherited{}, bar)
	if err != nil {
		t.Fatalf("FromConf: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() { done <- m.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after abort")
	}
	if bar.refreshed == 0 {
		t.Error("expected at least one refresh from Run's initial call")
	}
}
