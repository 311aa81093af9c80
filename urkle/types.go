package urkle

import "errors"

// Ref is a node-store record index, preserved in the frontier snapshot
// so a builder can resume without rescanning.
type Ref uint32

const NoRef = ^Ref(0)

var (
	ErrFrontierBadSize    = errors.New("urkle: frontier buffer size invalid")
	ErrFrontierBadMagic   = errors.New("urkle: frontier magic invalid")
	ErrFrontierBadVersion = errors.New("urkle: frontier version invalid")
)
