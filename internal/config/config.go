package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Keys of the default tree, relative to the root.
const (
	KeyCount            = "count"
	KeyThreshold        = "v0.threshold"
	KeyLength           = "v0.length"
	KeyVariation        = "v0.variation"
	KeyAngle            = "v0.angle"
	KeyMultiplier       = "v0.multiplier"
	KeyWidth            = "size.width"
	KeyHeight           = "size.height"
	KeySkew             = "size.skew"
	KeyWobbleZoom       = "size.wobble.zoom"
	KeyWobbleOffset     = "size.wobble.offset"
	KeyRotationZoom     = "rotation.zoom"
	KeyRotationOffset   = "rotation.offset"
	KeyRotationShift    = "rotation.shift"
	KeyFadeT0           = "fade.t0"
	KeyFadeT1           = "fade.t1"
	KeyGravity          = "physics.g"
	KeyTerminalVelocity = "physics.vT"
	KeyShowFPS          = "ui.showFps"
	KeyInvertColors     = "ui.invertColors"
)

const (
	DefaultThreshold = 10.0
	DefaultFadeT0    = 3.0
	DefaultFadeT1    = 4.0
	DefaultGravity   = 300.0
	DefaultTerminal  = 500.0
)

// Default returns the tree with its shipped defaults.
func Default(logger *log.Logger) *Tree {
	return NewTree(logger).
		Define(KeyCount, NewRange(160, 200)).
		Define(KeyThreshold, DefaultThreshold).
		Define(KeyLength, NewRange(30, 100)).
		Define(KeyVariation, NewRange(30, 40)).
		Define(KeyAngle, NewRange(-35, 35)).
		Define(KeyMultiplier, NewRange(2, 5)).
		Define(KeyWidth, 10.0).
		Define(KeyHeight, 6.0).
		Define(KeySkew, 4.0).
		Define(KeyWobbleZoom, NewRange(4, 6)).
		Define(KeyWobbleOffset, NewRange(-180, 180)).
		Define(KeyRotationZoom, NewRange(-2, 2)).
		Define(KeyRotationOffset, NewRange(-180, 180)).
		Define(KeyRotationShift, NewRange(5, 10)).
		Define(KeyFadeT0, DefaultFadeT0).
		Define(KeyFadeT1, DefaultFadeT1).
		Define(KeyGravity, DefaultGravity).
		Define(KeyTerminalVelocity, DefaultTerminal).
		Define(KeyShowFPS, true).
		Define(KeyInvertColors, false)
}

// LoadFile reads a flat snapshot from a YAML document such as
//
//	cfg.count.range-min: 60
//	cfg.ui.showFps: false
func LoadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	snap := make(Snapshot)
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return snap.Normalize(), nil
}

// SaveFile writes a flat snapshot as YAML.
func SaveFile(path string, snap Snapshot) error {
	data, err := yaml.Marshal(map[string]any(snap))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
