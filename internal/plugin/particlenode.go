package plugin

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/barline/barline/internal/decoration"
	"github.com/barline/barline/internal/mapexpr"
	"github.com/barline/barline/internal/particle"
)

// ParticleFromNode builds a particle.Particle from a single-key
// configuration node, e.g. {"string": {"text": "{time}"}}, mirroring
// yambar's conf_to_particle dispatch (original_source/config.c). A bare
// list value is the list-particle shorthand (particle_simple_list_from_config):
// a plain sequence of particles with no spacing of its own.
func ParticleFromNode(node any, inherited Inherited) (particle.Particle, error) {
	if items, ok := node.([]any); ok {
		children, err := particleList(items, inherited)
		if err != nil {
			return nil, err
		}
		return &particle.List{Children: children}, nil
	}

	dict, ok := node.(Node)
	if !ok {
		if m, ok := node.(map[string]any); ok {
			dict = Node(m)
		} else {
			return nil, fmt.Errorf("barline: plugin: particle node must be a dict or list")
		}
	}
	if len(dict) != 1 {
		return nil, fmt.Errorf("barline: plugin: particle node must have exactly one type key, got %d", len(dict))
	}

	var kind string
	var raw any
	for k, v := range dict {
		kind, raw = k, v
	}
	sub, _ := raw.(map[string]any)
	body := Node(sub)

	header, err := headerFromNode(body, inherited)
	if err != nil {
		return nil, fmt.Errorf("barline: plugin: %s: %w", kind, err)
	}

	switch kind {
	case "string":
		return &particle.String{
			Header:       header,
			Text:         body.string("text", ""),
			MaxGraphemes: body.int("max", 0),
		}, nil

	case "empty":
		return &particle.Empty{Header: header}, nil

	case "list":
		children, err := particleList(body.list("items"), inherited)
		if err != nil {
			return nil, err
		}
		spacing := body.int("spacing", -1)
		left, right := body.int("left-spacing", 0), body.int("right-spacing", 2)
		if spacing >= 0 {
			left, right = spacing, spacing
		}
		return &particle.List{Header: header, LeftSpacing: left, RightSpacing: right, Children: children}, nil

	case "map":
		// "conditions" is a condition-string -> particle-node dict
		// (original_source/particles/map.c's from_conf). A plain
		// map[string]any does not preserve YAML document order, so
		// condition evaluation order here is not guaranteed to match
		// the config file's declaration order: Cases follows Go's map
		// iteration order.
		m := &particle.Map{Header: header}
		for cond, raw := range asMap(body["conditions"]) {
			child, err := ParticleFromNode(raw, inherited)
			if err != nil {
				return nil, err
			}
			m.Cases = append(m.Cases, particle.MapCase{Condition: mapexpr.Parse(cond), Particle: child})
		}
		if def, ok := body["default"]; ok {
			child, err := ParticleFromNode(def, inherited)
			if err != nil {
				return nil, err
			}
			m.Default = child
		}
		return m, nil

	case "ramp":
		children, err := particleList(body.list("items"), inherited)
		if err != nil {
			return nil, err
		}
		return &particle.Ramp{Header: header, Tag: body.string("tag", ""), Children: children}, nil

	case "progress-bar":
		pb := &particle.ProgressBar{Header: header, Tag: body.string("tag", ""), Width: body.int("length", 0)}
		start, err := ParticleFromNode(body["start"], inherited)
		if err != nil {
			return nil, err
		}
		end, err := ParticleFromNode(body["end"], inherited)
		if err != nil {
			return nil, err
		}
		fill, err := ParticleFromNode(body["fill"], inherited)
		if err != nil {
			return nil, err
		}
		empty, err := ParticleFromNode(body["empty"], inherited)
		if err != nil {
			return nil, err
		}
		indicator, err := ParticleFromNode(body["indicator"], inherited)
		if err != nil {
			return nil, err
		}
		pb.Start, pb.End, pb.Fill, pb.Empty, pb.Indicator = start, end, fill, empty, indicator
		return pb, nil

	default:
		return nil, fmt.Errorf("barline: plugin: unknown particle type %q", kind)
	}
}

func particleList(items []any, inherited Inherited) ([]particle.Particle, error) {
	out := make([]particle.Particle, 0, len(items))
	for _, it := range items {
		p, err := ParticleFromNode(it, inherited)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// headerFromNode parses the attributes every particle shares
// (PARTICLE_COMMON_ATTRS): margins, on-click templates, font,
// foreground, and decoration. Font and foreground fall back to the
// parent's inherited values when unset.
func headerFromNode(body Node, inherited Inherited) (particle.Header, error) {
	h := particle.Header{
		Font:       inherited.Font,
		Foreground: inherited.Foreground,
	}
	if m, ok := body["margin"]; ok {
		v := asInt(m, 0)
		h.LeftMargin, h.RightMargin = v, v
	} else {
		h.LeftMargin = body.int("left-margin", 0)
		h.RightMargin = body.int("right-margin", 0)
	}
	if fg, ok := body["foreground"].(string); ok {
		c, err := parseColor(fg)
		if err != nil {
			return h, err
		}
		h.Foreground = c
	}
	if oc, ok := body["on-click"]; ok {
		h.OnClick = onClickFromNode(oc)
	}
	if decoNode, ok := body["deco"]; ok {
		d, err := decorationFromNode(decoNode)
		if err != nil {
			return h, err
		}
		h.Deco = d
	}
	return h, nil
}

func onClickFromNode(v any) map[particle.Button]string {
	if s, ok := v.(string); ok {
		return map[particle.Button]string{particle.ButtonLeft: s}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	names := map[string]particle.Button{
		"left": particle.ButtonLeft, "middle": particle.ButtonMiddle, "right": particle.ButtonRight,
		"wheel-up": particle.ButtonWheelUp, "wheel-down": particle.ButtonWheelDown,
		"previous": particle.ButtonPrevious, "next": particle.ButtonNext,
	}
	out := make(map[particle.Button]string, len(m))
	for k, v := range m {
		if btn, ok := names[k]; ok {
			if s, ok := v.(string); ok {
				out[btn] = s
			}
		}
	}
	return out
}

func decorationFromNode(v any) (decoration.Decoration, error) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return nil, fmt.Errorf("barline: plugin: deco node must have exactly one type key")
	}
	var kind string
	var raw any
	for k, val := range m {
		kind, raw = k, val
	}
	body := Node(asMap(raw))

	switch kind {
	case "background":
		c, err := parseColor(body.string("color", "000000ff"))
		if err != nil {
			return nil, err
		}
		return decoration.Background{Color: c}, nil
	case "border":
		c, err := parseColor(body.string("color", "000000ff"))
		if err != nil {
			return nil, err
		}
		return decoration.Border{Color: c, Size: body.int("size", 1)}, nil
	case "underline", "overline":
		c, err := parseColor(body.string("color", "000000ff"))
		if err != nil {
			return nil, err
		}
		return decoration.Line{Color: c, Size: body.int("size", 1), Bottom: kind == "underline"}, nil
	case "stack":
		layers := make([]decoration.Decoration, 0)
		for _, item := range asSlice(raw) {
			d, err := decorationFromNode(item)
			if err != nil {
				return nil, err
			}
			layers = append(layers, d)
		}
		return decoration.Stack{Layers: layers}, nil
	default:
		return nil, fmt.Errorf("barline: plugin: unknown decoration type %q", kind)
	}
}

// parseColor parses an "rrggbb" or "rrggbbaa" hex string, yambar's
// color.c convention.
func parseColor(s string) (color.Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return nil, fmt.Errorf("barline: plugin: invalid color %q", s)
	}
	if len(s) == 6 {
		s += "ff"
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("barline: plugin: invalid color %q: %w", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v),
	}, nil
}

func (n Node) string(key, def string) string {
	if s, ok := n[key].(string); ok {
		return s
	}
	return def
}

func (n Node) int(key string, def int) int {
	if v, ok := n[key]; ok {
		return asInt(v, def)
	}
	return def
}

func (n Node) list(key string) []any {
	if v, ok := n[key].([]any); ok {
		return v
	}
	return nil
}

func asInt(v any, def int) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	default:
		return def
	}
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

func asSlice(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}
	return nil
}
