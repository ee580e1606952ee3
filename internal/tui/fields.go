package tui

import (
	"github.com/san-kum/confetti/internal/config"
)

// field is one row of the panel. Ranges carry a description per bound.
type field struct {
	key   string
	label string
	desc  [2]string
	step  float64
}

type section struct {
	title  string
	fields []field
}

var layout = []section{
	{"Papers", []field{
		{config.KeyCount, "Papers count", [2]string{"Minimum number of papers per shot", "Maximum number of papers per shot"}, 1},
	}},
	{"Fadeout time", []field{
		{config.KeyFadeT0, "Fade start [s]", [2]string{"Time after papers start to fade out"}, 0.1},
		{config.KeyFadeT1, "Fade end [s]", [2]string{"Time after papers completely disappear"}, 0.1},
	}},
	{"Rotation", []field{
		{config.KeyRotationShift, "Axis shift [px]", [2]string{"Minimum radius for paper rotation", "Maximum radius for paper rotation"}, 1},
		{config.KeyRotationZoom, "Speed", [2]string{"Minimum paper rotation speed. Negative means counterclockwise", "Maximum paper rotation speed"}, 0.5},
		{config.KeyRotationOffset, "Phase [deg]", [2]string{"Minimum initial rotation", "Maximum initial rotation"}, 15},
	}},
	{"Paper size", []field{
		{config.KeyHeight, "Height [px]", [2]string{"Parallelogram height"}, 1},
		{config.KeyWidth, "Width [px]", [2]string{"Parallelogram base"}, 1},
		{config.KeySkew, "Lean [px]", [2]string{"Parallelogram lean. Zero means rectangle"}, 1},
		{config.KeyWobbleZoom, "Wobble speed", [2]string{"Minimum 3D-like wobble speed", "Maximum 3D-like wobble speed"}, 0.5},
		{config.KeyWobbleOffset, "Wobble phase [deg]", [2]string{"Minimum initial wobble", "Maximum initial wobble"}, 15},
	}},
	{"Initial velocity", []field{
		{config.KeyAngle, "Fire angle [deg]", [2]string{"Minimum angle at which paper is fired (spread)", "Maximum angle at which paper is fired (spread)"}, 5},
		{config.KeyLength, "Fire speed [px/s]", [2]string{"Minimum paper initial speed", "Maximum paper initial speed"}, 5},
		{config.KeyMultiplier, "Speed multiplier", [2]string{"Minimum speed multiplier", "Maximum speed multiplier"}, 0.5},
		{config.KeyVariation, "Speed variation [px]", [2]string{"Minimum additional initial speed", "Maximum additional initial speed"}, 5},
		{config.KeyThreshold, "Threshold [px]", [2]string{"Minimum mouse-drawn line length to fire confetti"}, 1},
	}},
	{"Physics", []field{
		{config.KeyGravity, "Gravity [px/s^2]", [2]string{"Downward acceleration value"}, 10},
		{config.KeyTerminalVelocity, "Terminal velocity [px/s]", [2]string{"Velocity at which the air drag force balances the gravitational force"}, 10},
	}},
	{"Display", []field{
		{config.KeyShowFPS, "Show FPS", [2]string{"Draw the frame rate and paper count"}, 0},
		{config.KeyInvertColors, "Invert colors", [2]string{"Light papers on a dark background"}, 0},
	}},
}

// cell is one editable value: a scalar, a flag or one bound of a range.
type cell struct {
	path  string
	desc  string
	step  float64
	kind  config.Kind
	row   int
	col   int
	title string
	label string
}

// cells lays the known fields of tree out in panel order. Fields the tree
// does not define are skipped.
func cells(tree *config.Tree) []cell {
	var out []cell
	row := 0
	for _, s := range layout {
		title := s.title
		for _, f := range s.fields {
			kind, ok := tree.KindOf(f.key)
			if !ok {
				continue
			}
			base := config.Root + "." + f.key
			c := cell{step: f.step, kind: kind, row: row, title: title, label: f.label}
			if kind == config.KindRange {
				lo, hi := c, c
				lo.path, lo.desc = base+"."+config.RangeMin, f.desc[0]
				hi.path, hi.desc, hi.col = base+"."+config.RangeMax, f.desc[1], 1
				out = append(out, lo, hi)
			} else {
				c.path, c.desc = base, f.desc[0]
				out = append(out, c)
			}
			title = ""
			row++
		}
	}
	return out
}
