package config

import "errors"

var (
	// ErrInvalidPath indicates a path that does not address a leaf of the tree.
	ErrInvalidPath = errors.New("config: invalid path")

	// ErrInvalidValue indicates a value whose type does not fit the addressed field.
	ErrInvalidValue = errors.New("config: invalid value")
)
