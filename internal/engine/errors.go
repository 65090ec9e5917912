package engine

import "errors"

var (
	// ErrConfiguration reports an unknown difficulty or a geometry that cannot hold its mines.
	ErrConfiguration = errors.New("invalid game configuration")
	// ErrOutOfBounds reports coordinates outside the current board.
	ErrOutOfBounds = errors.New("coordinates out of bounds")
)
