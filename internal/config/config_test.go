package config

import (
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	tree := Default(nil)

	if r := tree.Range(KeyCount); r.Min != 160 || r.Max != 200 {
		t.Errorf("expected count [160, 200], got %v", r)
	}
	if tree.Scalar(KeyThreshold) != DefaultThreshold {
		t.Errorf("expected threshold %v, got %v", DefaultThreshold, tree.Scalar(KeyThreshold))
	}
	if !tree.Bool(KeyShowFPS) {
		t.Error("expected showFps enabled")
	}
	if errs := tree.Validate(); len(errs) != 0 {
		t.Errorf("default tree should validate, got %v", errs)
	}
}

func TestFlatten(t *testing.T) {
	snap := Default(nil).Flatten()

	tests := []struct {
		path string
		want any
	}{
		{"cfg.count.range-min", 160.0},
		{"cfg.count.range-max", 200.0},
		{"cfg.v0.threshold", 10.0},
		{"cfg.size.wobble.zoom.range-max", 6.0},
		{"cfg.ui.invertColors", false},
	}
	for _, tt := range tests {
		if got, ok := snap[tt.path]; !ok || got != tt.want {
			t.Errorf("%s: got %v (present %v), want %v", tt.path, got, ok, tt.want)
		}
	}
	if _, ok := snap["cfg.count"]; ok {
		t.Error("range node must not be flattened as a single leaf")
	}
}

func TestPaths_InsertionOrder(t *testing.T) {
	paths := Default(nil).Paths()
	if len(paths) < 3 {
		t.Fatalf("too few paths: %v", paths)
	}
	want := []string{"cfg.count.range-min", "cfg.count.range-max", "cfg.v0.threshold"}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], p)
		}
	}
	if last := paths[len(paths)-1]; last != "cfg.ui.invertColors" {
		t.Errorf("last path = %s", last)
	}
}

func TestUpdate_RangeBounds(t *testing.T) {
	tree := Default(nil)

	if !tree.Update("cfg.count.range-min", 60) {
		t.Error("expected range-min change")
	}
	if !tree.Update("cfg.count.range-max", 80) {
		t.Error("expected range-max change")
	}

	snap := tree.Flatten()
	if snap["cfg.count.range-min"] != 60.0 || snap["cfg.count.range-max"] != 80.0 {
		t.Errorf("got count [%v, %v], want [60, 80]", snap["cfg.count.range-min"], snap["cfg.count.range-max"])
	}
}

func TestUpdate_SameValueReportsNoChange(t *testing.T) {
	tree := Default(nil)

	if tree.Update("cfg.v0.threshold", 10.0) {
		t.Error("writing the current value must not report a change")
	}
	if !tree.Update("cfg.ui.showFps", false) {
		t.Error("expected bool change")
	}
	if tree.Update("cfg.ui.showFps", false) {
		t.Error("second identical bool write must not report a change")
	}
}

func TestSet_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		value any
		want  error
	}{
		{"missing key", "cfg.nonexistent.field", 5.0, ErrInvalidPath},
		{"bare root", "cfg", 5.0, ErrInvalidPath},
		{"single segment", "cfg.count", 5.0, ErrInvalidPath},
		{"wrong root", "config.count.range-min", 5.0, ErrInvalidPath},
		{"empty segment", "cfg.v0..threshold", 5.0, ErrInvalidPath},
		{"descent through leaf", "cfg.v0.threshold.x", 5.0, ErrInvalidPath},
		{"range without suffix", "cfg.v0.length", 5.0, ErrInvalidPath},
		{"range unknown field", "cfg.v0.length.mid", 5.0, ErrInvalidPath},
		{"string for number", "cfg.v0.threshold", "ten", ErrInvalidValue},
		{"bool for range", "cfg.count.range-min", true, ErrInvalidValue},
		{"number for bool", "cfg.ui.showFps", 1.0, ErrInvalidValue},
		{"nil value", "cfg.physics.g", nil, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := Default(nil)
			before := tree.Flatten()

			changed, err := tree.Set(tt.path, tt.value)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if changed {
				t.Error("rejected write reported a change")
			}
			if tree.Update(tt.path, tt.value) {
				t.Error("Update reported a change for a rejected write")
			}
			after := tree.Flatten()
			for k, v := range before {
				if after[k] != v {
					t.Errorf("%s mutated from %v to %v", k, v, after[k])
				}
			}
		})
	}
}

func TestParse(t *testing.T) {
	tree := Default(nil)
	tests := []struct {
		path string
		in   string
		want any
	}{
		{"cfg.v0.threshold", "0", 0.0},
		{"cfg.fade.t0", "1", 1.0},
		{"cfg.count.range-min", "1", 1.0},
		{"cfg.physics.g", "-9.5", -9.5},
		{"cfg.ui.showFps", "false", false},
		{"cfg.ui.invertColors", "1", true},
	}
	for _, tt := range tests {
		got, err := tree.Parse(tt.path, tt.in)
		if err != nil {
			t.Errorf("Parse(%s, %q): %v", tt.path, tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%s, %q) = %v (%T), want %v", tt.path, tt.in, got, got, tt.want)
		}
		if _, err := tree.Set(tt.path, got); err != nil {
			t.Errorf("Set(%s, %v): %v", tt.path, got, err)
		}
	}

	if _, err := tree.Parse("cfg.count.range-min", "true"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("bool for a range bound: %v", err)
	}
	if _, err := tree.Parse("cfg.ui.showFps", "2"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("number for a flag: %v", err)
	}
	if _, err := tree.Parse("cfg.nope", "1"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("unknown path: %v", err)
	}
}

func TestSet_RangeAcceptsPlainFieldNames(t *testing.T) {
	tree := Default(nil)
	if _, err := tree.Set("cfg.v0.angle.min", -10); err != nil {
		t.Fatalf("set min: %v", err)
	}
	if r := tree.Range(KeyAngle); r.Min != -10 {
		t.Errorf("expected min -10, got %v", r)
	}
}

func TestApplyAll_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	src := Default(nil)
	for _, p := range src.Paths() {
		v, _ := src.Get(p)
		switch v.(type) {
		case bool:
			src.Update(p, rng.Intn(2) == 0)
		default:
			src.Update(p, float64(rng.Intn(500)))
		}
	}

	dst := Default(nil)
	dst.ApplyAll(src.Flatten())

	if !dst.Equal(src) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", dst.Flatten(), src.Flatten())
	}
}

func TestApplyAll_SkipsUnknownPaths(t *testing.T) {
	tree := Default(nil)
	n := tree.ApplyAll(Snapshot{
		"cfg.physics.g":   120.0,
		"cfg.bogus.value": 1.0,
	})
	if n != 1 {
		t.Errorf("expected 1 change, got %d", n)
	}
	if tree.Scalar(KeyGravity) != 120 {
		t.Errorf("gravity not applied: %v", tree.Scalar(KeyGravity))
	}
}

func TestClone_Independent(t *testing.T) {
	a := Default(nil)
	b := a.Clone()
	b.Update("cfg.physics.g", 1.0)

	if a.Scalar(KeyGravity) != DefaultGravity {
		t.Error("clone shares state with original")
	}
	if a.Equal(b) {
		t.Error("trees should differ after update")
	}
}

func TestValidate(t *testing.T) {
	tree := Default(nil)
	tree.Update("cfg.fade.t1", 1.0)
	tree.Update("cfg.count.range-min", 500.0)

	errs := tree.Validate()
	if len(errs) != 2 {
		t.Fatalf("expected 2 problems, got %v", errs)
	}
	for _, err := range errs {
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("unexpected error kind: %v", err)
		}
	}
}

func TestLoadSaveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "confetti.yaml")
	in := Snapshot{
		"cfg.count.range-min": 60.0,
		"cfg.ui.showFps":      false,
	}
	if err := SaveFile(path, in); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	out, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if out["cfg.count.range-min"] != 60.0 {
		t.Errorf("expected 60, got %v (%T)", out["cfg.count.range-min"], out["cfg.count.range-min"])
	}
	if out["cfg.ui.showFps"] != false {
		t.Errorf("expected false, got %v", out["cfg.ui.showFps"])
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("storm")
	if p == nil {
		t.Fatal("expected preset, got nil")
	}
	tree := Default(nil)
	tree.ApplyAll(p)
	if r := tree.Range(KeyCount); r.Min != 300 || r.Max != 400 {
		t.Errorf("expected count [300, 400], got %v", r)
	}
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(names))
	}
	for _, name := range names {
		tree := Default(nil)
		tree.ApplyAll(GetPreset(name))
		if errs := tree.Validate(); len(errs) != 0 {
			t.Errorf("preset %s does not validate: %v", name, errs)
		}
	}
}
