package config

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// Kind tags the value held by a tree node.
type Kind uint8

const (
	KindGroup Kind = iota
	KindScalar
	KindBool
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindScalar:
		return "scalar"
	case KindBool:
		return "bool"
	case KindRange:
		return "range"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

type node struct {
	kind Kind
	num  float64
	flag bool
	rng  Range

	keys     []string
	children map[string]*node
}

func newGroup() *node {
	return &node{kind: KindGroup, children: make(map[string]*node)}
}

func (n *node) child(key string) (*node, bool) {
	if n.kind != KindGroup {
		return nil, false
	}
	c, ok := n.children[key]
	return c, ok
}

func (n *node) clone() *node {
	c := *n
	if n.kind == KindGroup {
		c.keys = append([]string(nil), n.keys...)
		c.children = make(map[string]*node, len(n.children))
		for k, v := range n.children {
			c.children[k] = v.clone()
		}
	}
	return &c
}

// Tree is a nested configuration of scalars, booleans and ranges addressed
// by dotted paths rooted at "cfg". It is owned by one execution context and
// is not safe for concurrent use. All external writes go through Update.
type Tree struct {
	root *node
	log  *log.Logger
}

// NewTree returns an empty tree. A nil logger discards diagnostics.
func NewTree(logger *log.Logger) *Tree {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Tree{root: newGroup(), log: logger}
}

// SetLogger replaces the diagnostics logger.
func (t *Tree) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	t.log = logger
}

// Define declares a leaf at key (relative to the root, e.g. "v0.length"),
// creating intermediate groups. v must be a number, a bool or a Range.
// Define is for building the tree shape and panics on misuse.
func (t *Tree) Define(key string, v any) *Tree {
	segs := strings.Split(key, ".")
	holder := t.root
	for _, s := range segs[:len(segs)-1] {
		c, ok := holder.children[s]
		if !ok {
			c = newGroup()
			holder.keys = append(holder.keys, s)
			holder.children[s] = c
		}
		if c.kind != KindGroup {
			panic(fmt.Sprintf("config: define %q: %q is a %s", key, s, c.kind))
		}
		holder = c
	}

	leaf := &node{}
	switch val := v.(type) {
	case Range:
		leaf.kind = KindRange
		leaf.rng = NewRange(val.Min, val.Max)
	case bool:
		leaf.kind = KindBool
		leaf.flag = val
	default:
		n, ok := toNumber(v)
		if !ok {
			panic(fmt.Sprintf("config: define %q: unsupported value %T", key, v))
		}
		leaf.kind = KindScalar
		leaf.num = n
	}

	last := segs[len(segs)-1]
	if _, exists := holder.children[last]; !exists {
		holder.keys = append(holder.keys, last)
	}
	holder.children[last] = leaf
	return t
}

func (t *Tree) lookup(key string) (*node, bool) {
	holder := t.root
	for _, s := range strings.Split(key, ".") {
		c, ok := holder.child(s)
		if !ok {
			return nil, false
		}
		holder = c
	}
	return holder, true
}

// Range returns the range stored at key, or the zero range.
func (t *Tree) Range(key string) Range {
	if n, ok := t.lookup(key); ok && n.kind == KindRange {
		return n.rng
	}
	return Range{}
}

// Scalar returns the number stored at key, or 0.
func (t *Tree) Scalar(key string) float64 {
	if n, ok := t.lookup(key); ok && n.kind == KindScalar {
		return n.num
	}
	return 0
}

// Bool returns the flag stored at key, or false.
func (t *Tree) Bool(key string) bool {
	if n, ok := t.lookup(key); ok && n.kind == KindBool {
		return n.flag
	}
	return false
}

// KindOf reports the kind of the node at key.
func (t *Tree) KindOf(key string) (Kind, bool) {
	n, ok := t.lookup(key)
	if !ok {
		return 0, false
	}
	return n.kind, true
}

// Clone returns an independent deep copy sharing the logger.
func (t *Tree) Clone() *Tree {
	return &Tree{root: t.root.clone(), log: t.log}
}

// Equal reports whether both trees hold the same leaves with the same values.
func (t *Tree) Equal(other *Tree) bool {
	a, b := t.Flatten(), other.Flatten()
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

// Validate reports configuration problems that would make the simulation
// degenerate. The tree is not modified.
func (t *Tree) Validate() []error {
	var errs []error
	walk(t.root, Root, func(path string, n *node) {
		if n.kind == KindRange && n.rng.Inverted() {
			errs = append(errs, fmt.Errorf("%w: %s: min %g > max %g", ErrInvalidValue, path, n.rng.Min, n.rng.Max))
		}
	})
	if t0, t1 := t.Scalar(KeyFadeT0), t.Scalar(KeyFadeT1); t1 <= t0 {
		errs = append(errs, fmt.Errorf("%w: fade end %g must be after fade start %g", ErrInvalidValue, t1, t0))
	}
	if g := t.Scalar(KeyGravity); g <= 0 {
		errs = append(errs, fmt.Errorf("%w: gravity %g must be positive", ErrInvalidValue, g))
	}
	if vt := t.Scalar(KeyTerminalVelocity); vt <= 0 {
		errs = append(errs, fmt.Errorf("%w: terminal velocity %g must be positive", ErrInvalidValue, vt))
	}
	return errs
}

func walk(n *node, prefix string, fn func(path string, n *node)) {
	if n.kind != KindGroup {
		fn(prefix, n)
		return
	}
	for _, k := range n.keys {
		walk(n.children[k], prefix+"."+k, fn)
	}
}
