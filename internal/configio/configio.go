// Package configio is the reference YAML configuration loader for the
// barline CLI binary. It is deliberately outside the core: the core
// (config, plugin, bar packages) only defines and validates shape and
// dispatch, never a concrete file format. Grounded in yambar's
// config.c, translated from libyaml-backed parsing to
// gopkg.in/yaml.v3.
package configio

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/barline/barline/internal/config"
	"github.com/barline/barline/internal/module"
	"github.com/barline/barline/internal/plugin"
)

// document is the root YAML shape. Module and particle sub-trees stay
// as map[string]any for plugin.ParticleFromNode and the module
// registry to interpret.
type document struct {
	Backend    string           `yaml:"backend"`
	Monitor    string           `yaml:"monitor"`
	Location   string           `yaml:"location"`
	Height     int              `yaml:"height"`
	Spacing    spacingDoc       `yaml:"spacing"`
	Margin     marginDoc        `yaml:"margin"`
	Background string           `yaml:"background"`
	Border     borderDoc        `yaml:"border"`
	Left       []map[string]any `yaml:"left"`
	Center     []map[string]any `yaml:"center"`
	Right      []map[string]any `yaml:"right"`
}

type spacingDoc struct {
	Left  int `yaml:"left"`
	Right int `yaml:"right"`
}

type marginDoc struct {
	Left  int `yaml:"left"`
	Right int `yaml:"right"`
}

type borderDoc struct {
	Width        int    `yaml:"width"`
	Color        string `yaml:"color"`
	LeftMargin   int    `yaml:"left-margin"`
	RightMargin  int    `yaml:"right-margin"`
	TopMargin    int    `yaml:"top-margin"`
	BottomMargin int    `yaml:"bottom-margin"`
}

// Load reads, parses and shape-validates a bar configuration file.
// Module nodes are kept as config.ModuleConfig (a registry key plus its
// raw params) — BuildModules dispatches them once a module.Bar exists.
func Load(path string) (config.Bar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config.Bar{}, fmt.Errorf("barline: configio: reading %s: %w", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return config.Bar{}, fmt.Errorf("barline: configio: parsing %s: %w", path, err)
	}

	bg, err := parseColorOrDefault(doc.Background, "000000ff")
	if err != nil {
		return config.Bar{}, fmt.Errorf("barline: configio: background: %w", err)
	}
	borderColor, err := parseColorOrDefault(doc.Border.Color, "000000ff")
	if err != nil {
		return config.Bar{}, fmt.Errorf("barline: configio: border.color: %w", err)
	}

	cfg := config.Bar{
		Backend:      parseBackend(doc.Backend),
		Monitor:      doc.Monitor,
		Location:     parseLocation(doc.Location),
		Height:       doc.Height,
		LeftSpacing:  doc.Spacing.Left,
		RightSpacing: doc.Spacing.Right,
		LeftMargin:   doc.Margin.Left,
		RightMargin:  doc.Margin.Right,
		Background:   bg,
		Border: config.Border{
			Width:        doc.Border.Width,
			Color:        borderColor,
			LeftMargin:   doc.Border.LeftMargin,
			RightMargin:  doc.Border.RightMargin,
			TopMargin:    doc.Border.TopMargin,
			BottomMargin: doc.Border.BottomMargin,
		},
	}

	if cfg.Left, err = moduleConfigs(doc.Left); err != nil {
		return config.Bar{}, fmt.Errorf("barline: configio: left: %w", err)
	}
	if cfg.Center, err = moduleConfigs(doc.Center); err != nil {
		return config.Bar{}, fmt.Errorf("barline: configio: center: %w", err)
	}
	if cfg.Right, err = moduleConfigs(doc.Right); err != nil {
		return config.Bar{}, fmt.Errorf("barline: configio: right: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return config.Bar{}, err
	}
	return cfg, nil
}

// moduleConfigs unwraps each column entry's single-key dict
// ({"clock": {...}}) into a registry name plus raw params, mirroring
// the particle node convention used throughout the config file.
func moduleConfigs(nodes []map[string]any) ([]config.ModuleConfig, error) {
	out := make([]config.ModuleConfig, 0, len(nodes))
	for _, node := range nodes {
		if len(node) != 1 {
			return nil, fmt.Errorf("module node must have exactly one type key, got %d", len(node))
		}
		var name string
		var raw any
		for k, v := range node {
			name, raw = k, v
		}
		params, _ := raw.(map[string]any)
		out = append(out, config.ModuleConfig{Name: name, Params: params})
	}
	return out, nil
}

// BuildModules dispatches a column's module configs through registry,
// verifying each node's shape before building it, and returns the live
// module.Module values bound to bar.
func BuildModules(mods []config.ModuleConfig, registry *plugin.Registry, inherited plugin.Inherited, bar module.Bar) ([]module.Module, error) {
	out := make([]module.Module, 0, len(mods))
	for _, mc := range mods {
		factory, err := registry.Lookup(mc.Name)
		if err != nil {
			return nil, err
		}
		node := plugin.Node(mc.Params)
		if err := factory.VerifyConf(nil, node); err != nil {
			return nil, fmt.Errorf("barline: configio: %s: %w", mc.Name, err)
		}
		mod, err := factory.FromConf(node, inherited, bar)
		if err != nil {
			return nil, fmt.Errorf("barline: configio: %s: %w", mc.Name, err)
		}
		out = append(out, mod)
	}
	return out, nil
}

func parseBackend(s string) config.Backend {
	switch s {
	case "wayland":
		return config.BackendWayland
	case "x11":
		return config.BackendX11
	default:
		return config.BackendAuto
	}
}

func parseLocation(s string) config.Location {
	if s == "bottom" {
		return config.LocationBottom
	}
	return config.LocationTop
}

// parseColorOrDefault parses an "rrggbb" or "rrggbbaa" hex string,
// falling back to def when s is empty. Grounded in the same
// yambar color.c convention as plugin.parseColor; duplicated rather
// than exported across the package boundary since the reference loader
// and the particle-tree builder are independent concerns.
func parseColorOrDefault(s, def string) (color.Color, error) {
	if s == "" {
		s = def
	}
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	if len(s) == 6 {
		s += "ff"
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
