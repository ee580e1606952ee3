package config

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	// Root is the first segment of every external path.
	Root = "cfg"

	RangeMin = "range-min"
	RangeMax = "range-max"
)

// Flatten projects the tree onto a flat snapshot. Ranges contribute two
// leaves suffixed with .range-min and .range-max.
func (t *Tree) Flatten() Snapshot {
	out := make(Snapshot)
	walk(t.root, Root, func(path string, n *node) {
		switch n.kind {
		case KindRange:
			out[path+"."+RangeMin] = n.rng.Min
			out[path+"."+RangeMax] = n.rng.Max
		case KindBool:
			out[path] = n.flag
		case KindScalar:
			out[path] = n.num
		}
	})
	return out
}

// Paths lists the flat paths in tree insertion order.
func (t *Tree) Paths() []string {
	var out []string
	walk(t.root, Root, func(path string, n *node) {
		if n.kind == KindRange {
			out = append(out, path+"."+RangeMin, path+"."+RangeMax)
			return
		}
		out = append(out, path)
	})
	return out
}

// Get reads the leaf value addressed by a flat path.
func (t *Tree) Get(path string) (any, bool) {
	holder, field, err := t.resolve(path)
	if err != nil {
		return nil, false
	}
	switch holder.kind {
	case KindRange:
		switch field {
		case RangeMin, "min":
			return holder.rng.Min, true
		case RangeMax, "max":
			return holder.rng.Max, true
		}
	case KindGroup:
		leaf, ok := holder.child(field)
		if !ok {
			return nil, false
		}
		switch leaf.kind {
		case KindScalar:
			return leaf.num, true
		case KindBool:
			return leaf.flag, true
		}
	}
	return nil, false
}

// Set writes value to the field addressed by path and reports whether the
// stored value changed. It returns ErrInvalidPath or ErrInvalidValue on
// rejection, in which case the tree is untouched.
func (t *Tree) Set(path string, value any) (bool, error) {
	holder, field, err := t.resolve(path)
	if err != nil {
		return false, err
	}

	switch holder.kind {
	case KindRange:
		v, ok := toNumber(value)
		if !ok {
			return false, fmt.Errorf("%w: %s: %v is not a number", ErrInvalidValue, path, value)
		}
		var dst *float64
		switch field {
		case RangeMin, "min":
			dst = &holder.rng.Min
		case RangeMax, "max":
			dst = &holder.rng.Max
		default:
			return false, fmt.Errorf("%w: %s: range has no field %q", ErrInvalidPath, path, field)
		}
		if *dst == v {
			return false, nil
		}
		*dst = v
		return true, nil

	case KindGroup:
		leaf, ok := holder.child(field)
		if !ok {
			return false, fmt.Errorf("%w: %s: no key %q", ErrInvalidPath, path, field)
		}
		switch leaf.kind {
		case KindScalar:
			v, ok := toNumber(value)
			if !ok {
				return false, fmt.Errorf("%w: %s: %v is not a number", ErrInvalidValue, path, value)
			}
			if leaf.num == v {
				return false, nil
			}
			leaf.num = v
			return true, nil
		case KindBool:
			v, ok := value.(bool)
			if !ok {
				return false, fmt.Errorf("%w: %s: %v is not a boolean", ErrInvalidValue, path, value)
			}
			if leaf.flag == v {
				return false, nil
			}
			leaf.flag = v
			return true, nil
		}
		return false, fmt.Errorf("%w: %s: %s needs a %s or %s suffix", ErrInvalidPath, path, leaf.kind, RangeMin, RangeMax)
	}

	return false, fmt.Errorf("%w: %s", ErrInvalidPath, path)
}

// Parse reads s as a value for the leaf at path: a boolean for flags, a
// number for everything else.
func (t *Tree) Parse(path, s string) (any, error) {
	cur, ok := t.Get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	if _, isFlag := cur.(bool); isFlag {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %q is not a boolean", ErrInvalidValue, path, s)
		}
		return b, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %q is not a number", ErrInvalidValue, path, s)
	}
	return v, nil
}

// Update is the write entry point for every caller. It applies Set, logs the
// outcome and reports whether the tree changed. Rejections are logged only.
func (t *Tree) Update(path string, value any) bool {
	old, _ := t.Get(path)
	changed, err := t.Set(path, value)
	if err != nil {
		t.log.Printf("config: rejected %s = %v: %v", path, value, err)
		return false
	}
	if changed {
		t.log.Printf("config: updating %s from %v to %v", path, old, value)
	}
	return changed
}

// ApplyAll applies every snapshot entry through Update. Known paths are
// applied in tree order, unknown ones afterwards in sorted order. It returns
// the number of leaves that changed.
func (t *Tree) ApplyAll(snap Snapshot) int {
	changed := 0
	seen := make(map[string]struct{}, len(snap))
	for _, p := range t.Paths() {
		v, ok := snap[p]
		if !ok {
			continue
		}
		seen[p] = struct{}{}
		if t.Update(p, v) {
			changed++
		}
	}
	for _, p := range snap.Keys() {
		if _, ok := seen[p]; ok {
			continue
		}
		if t.Update(p, snap[p]) {
			changed++
		}
	}
	return changed
}

// resolve descends to the holder of the last path segment.
func (t *Tree) resolve(path string) (*node, string, error) {
	segs := strings.Split(path, ".")
	if segs[0] != Root {
		return nil, "", fmt.Errorf("%w: %q: missing %q root", ErrInvalidPath, path, Root)
	}
	segs = segs[1:]
	if len(segs) < 2 {
		return nil, "", fmt.Errorf("%w: %q: need at least two segments after %q", ErrInvalidPath, path, Root)
	}
	for _, s := range segs {
		if s == "" {
			return nil, "", fmt.Errorf("%w: %q: empty segment", ErrInvalidPath, path)
		}
	}

	holder := t.root
	for _, s := range segs[:len(segs)-1] {
		c, ok := holder.child(s)
		if !ok {
			return nil, "", fmt.Errorf("%w: %q: no key %q", ErrInvalidPath, path, s)
		}
		holder = c
	}
	return holder, segs[len(segs)-1], nil
}

func toNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Snapshot maps flat paths to float64 or bool leaf values.
type Snapshot map[string]any

// Keys returns the snapshot paths in sorted order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy; leaf values are immutable.
func (s Snapshot) Clone() Snapshot {
	c := make(Snapshot, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Normalize converts integer values (as produced by YAML decoding) to float64.
func (s Snapshot) Normalize() Snapshot {
	for k, v := range s {
		if _, isBool := v.(bool); isBool {
			continue
		}
		if f, ok := toNumber(v); ok {
			s[k] = f
		}
	}
	return s
}
