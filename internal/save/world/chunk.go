package world

import (
	"time"

	"overviewer.app/internal/save/codec"
	"overviewer.app/internal/save/coords"
)

// Chunk is one decoded chunk record. It is built fresh per lookup and owned
// by the caller.
type Chunk struct {
	tree map[string]any
}

// ChunkInfo is a populated slot expressed in chunk space.
type ChunkInfo struct {
	Pos   coords.ChunkPos
	MTime time.Time
}

// Tag returns the decoded root compound.
func (c *Chunk) Tag() map[string]any { return c.tree }

// Lookup resolves a slash-separated path inside the chunk tag.
func (c *Chunk) Lookup(path string) (any, bool) {
	return codec.Lookup(c.tree, path)
}

// Pos reports the chunk position recorded in the payload. Pre-1.18 chunks
// keep it under "Level".
func (c *Chunk) Pos() (coords.ChunkPos, bool) {
	for _, prefix := range []string{"", "Level/"} {
		x, okx := codec.LookupInt(c.tree, prefix+"xPos")
		z, okz := codec.LookupInt(c.tree, prefix+"zPos")
		if okx && okz {
			return coords.ChunkPos{X: int(x), Z: int(z)}, true
		}
	}
	return coords.ChunkPos{}, false
}

func (c *Chunk) DataVersion() (int, bool) {
	v, ok := codec.LookupInt(c.tree, "DataVersion")
	return int(v), ok
}
