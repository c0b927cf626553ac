package world

import "errors"

// Construction and indexing failures. Chunk lookups never return these;
// a chunk that cannot be produced is simply absent.
var (
	ErrNotFound        = errors.New("not found")
	ErrIO              = errors.New("io error")
	ErrDecode          = errors.New("decode error")
	ErrIndexOutOfRange = errors.New("index out of range")
)
