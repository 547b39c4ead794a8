// Package config defines the validated shape of a bar's configuration
// (spec §4.L), mirroring yambar's bar_config field-for-field
// (original_source/bar/bar.h). It only validates structural shape —
// ranges and required fields — never module- or particle-specific
// semantics, which the plugin registry's VerifyConf owns instead.
package config

import (
	"fmt"
	"image/color"
)

// Backend selects which display-server backend a bar runs against.
type Backend uint8

const (
	BackendAuto Backend = iota
	BackendWayland
	BackendX11
)

// Location is which screen edge the bar docks to.
type Location uint8

const (
	LocationTop Location = iota
	LocationBottom
)

// Border mirrors bar_config's anonymous border struct.
type Border struct {
	Width      int
	Color      color.Color
	LeftMargin, RightMargin int
	TopMargin, BottomMargin int
}

// ModuleConfig is one entry in a bar's left/center/right module list: a
// registry key (e.g. "clock", "label") plus its raw, not-yet-verified
// configuration node. The plugin registry turns this into a
// module.Module via Factory.FromConf.
type ModuleConfig struct {
	Name   string
	Params map[string]any
}

// Bar is the validated shape of a bar's configuration.
type Bar struct {
	Backend Backend
	Monitor string

	Location                  Location
	Height                    int
	LeftSpacing, RightSpacing int
	LeftMargin, RightMargin   int

	Background color.Color
	Border     Border

	Left, Center, Right []ModuleConfig
}

// Validate checks the structural invariants every bar configuration
// must satisfy, independent of which modules or particles it names.
func (b *Bar) Validate() error {
	if b.Height <= 0 {
		return fmt.Errorf("barline: config: height must be > 0, got %d", b.Height)
	}
	if b.LeftSpacing < 0 || b.RightSpacing < 0 {
		return fmt.Errorf("barline: config: spacing must be >= 0")
	}
	if b.LeftMargin < 0 || b.RightMargin < 0 {
		return fmt.Errorf("barline: config: margin must be >= 0")
	}
	if b.Border.Width < 0 {
		return fmt.Errorf("barline: config: border width must be >= 0")
	}
	if b.Location != LocationTop && b.Location != LocationBottom {
		return fmt.Errorf("barline: config: unknown location %d", b.Location)
	}
	if b.Backend != BackendAuto && b.Backend != BackendWayland && b.Backend != BackendX11 {
		return fmt.Errorf("barline: config: unknown backend %d", b.Backend)
	}
	return nil
}
