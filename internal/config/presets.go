package config

import "sort"

// Presets are named partial snapshots applied on top of the defaults.
var Presets = map[string]Snapshot{
	"classic": {},
	"storm": {
		"cfg.count.range-min":         300.0,
		"cfg.count.range-max":         400.0,
		"cfg.v0.multiplier.range-min": 4.0,
		"cfg.v0.multiplier.range-max": 7.0,
		"cfg.v0.angle.range-min":      -60.0,
		"cfg.v0.angle.range-max":      60.0,
	},
	"drizzle": {
		"cfg.count.range-min": 20.0,
		"cfg.count.range-max": 40.0,
		"cfg.physics.g":       120.0,
		"cfg.physics.vT":      80.0,
		"cfg.fade.t0":         5.0,
		"cfg.fade.t1":         7.0,
	},
	"slowmo": {
		"cfg.physics.g":                  90.0,
		"cfg.physics.vT":                 60.0,
		"cfg.rotation.zoom.range-min":    -1.0,
		"cfg.rotation.zoom.range-max":    1.0,
		"cfg.size.wobble.zoom.range-min": 2.0,
		"cfg.size.wobble.zoom.range-max": 3.0,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) Snapshot {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

// ListPresets returns the preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
