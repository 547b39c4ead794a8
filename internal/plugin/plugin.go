// Package plugin implements the verify_conf/from_conf dispatch table
// (spec §4.N, §6) that turns a named configuration node into a running
// module. Grounded in yambar's plugin.h/plugin.c, which resolves a
// module or particle's YAML key to a shared-library iface; here the
// "shared library" is simply a Go value registered at init time.
package plugin

import (
	"fmt"
	"image/color"

	"github.com/barline/barline/internal/font"
	"github.com/barline/barline/internal/module"
)

// Node is a single configuration dictionary, as decoded from YAML by
// the configio package: string keys to arbitrary decoded values
// (strings, numbers, bools, nested maps, slices). Core plugin code
// never depends on the YAML library itself, only on this shape.
type Node map[string]any

// Inherited carries the particle attributes a parent config node passes
// down to its children when they don't set their own — mirrors
// yambar's struct conf_inherit.
type Inherited struct {
	Font       font.Provider
	Foreground color.Color
}

// Factory is implemented once per module kind (e.g. "clock", "label").
// VerifyConf checks a node's shape without building anything, so a
// configuration error is reported before any module starts (spec §7);
// FromConf builds the live module.Module.
type Factory interface {
	VerifyConf(chain []string, node Node) error
	FromConf(node Node, inherited Inherited, bar module.Bar) (module.Module, error)
}

// Registry maps a configuration key to the Factory that handles it.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds factory under name, overwriting any previous entry for
// the same name — matching yambar's last-loaded-wins plugin resolution.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Lookup returns the Factory registered for name, or an error naming
// the unknown key (spec §7's configuration-error kind).
func (r *Registry) Lookup(name string) (Factory, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("barline: plugin: no module registered for %q", name)
	}
	return f, nil
}

// NewDefaultRegistry returns a Registry with barline's built-in modules
// (clock, label) registered — the full yambar module catalogue (alsa,
// battery, cpu, mem, network, i3/sway, ...) is out of scope (spec.md §1)
// but would register into the same Registry without any change to this
// package or to module.Module.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("clock", clockFactory{})
	r.Register("label", labelFactory{})
	return r
}
