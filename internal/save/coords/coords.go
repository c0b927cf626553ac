package coords

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	ChunkShift  = 4 // 16 blocks per chunk edge
	RegionShift = 5 // 32 chunks per region edge

	RegionChunks = 1 << RegionShift

	RegionPrefix = "r"
	RegionExt    = "mca"
)

// BlockPos is a world block position. Y is irrelevant for addressing.
type BlockPos struct {
	X int
	Z int
}

type ChunkPos struct {
	X int
	Z int
}

type RegionPos struct {
	X int
	Z int
}

// LocalPos addresses a slot inside a region file; both axes are in [0,32).
type LocalPos struct {
	X int
	Z int
}

// FloorDiv rounds toward negative infinity, so chunk -1 lands in region -1
// rather than region 0 as Go's truncating division would give. b must be > 0.
func FloorDiv(a, b int) int {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

// Mod is the non-negative remainder paired with FloorDiv, always in [0, b).
func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// Split decomposes one chunk axis into its slot index and region index using
// floored division, so region*32 + local == c for every c.
func Split(c int) (local, region int) {
	return Mod(c, RegionChunks), FloorDiv(c, RegionChunks)
}

func (b BlockPos) Chunk() ChunkPos {
	return ChunkPos{X: b.X >> ChunkShift, Z: b.Z >> ChunkShift}
}

func (c ChunkPos) Split() (LocalPos, RegionPos) {
	lx, rx := Split(c.X)
	lz, rz := Split(c.Z)
	return LocalPos{X: lx, Z: lz}, RegionPos{X: rx, Z: rz}
}

func (c ChunkPos) Region() RegionPos {
	_, r := c.Split()
	return r
}

func (c ChunkPos) Local() LocalPos {
	l, _ := c.Split()
	return l
}

// Block returns the north-west corner block of the chunk.
func (c ChunkPos) Block() BlockPos {
	return BlockPos{X: c.X << ChunkShift, Z: c.Z << ChunkShift}
}

func (c ChunkPos) String() string {
	return fmt.Sprintf("chunk(%d,%d)", c.X, c.Z)
}

// Chunk is the inverse of ChunkPos.Split.
func (r RegionPos) Chunk(l LocalPos) ChunkPos {
	return ChunkPos{X: r.X*RegionChunks + l.X, Z: r.Z*RegionChunks + l.Z}
}

func (r RegionPos) FileName() string {
	return fmt.Sprintf("%s.%d.%d.%s", RegionPrefix, r.X, r.Z, RegionExt)
}

func (r RegionPos) String() string {
	return fmt.Sprintf("region(%d,%d)", r.X, r.Z)
}

// Less orders regions by Z then X, matching on-disk slot order.
func (r RegionPos) Less(o RegionPos) bool {
	if r.Z != o.Z {
		return r.Z < o.Z
	}
	return r.X < o.X
}

func (l LocalPos) Valid() bool {
	return l.X >= 0 && l.X < RegionChunks && l.Z >= 0 && l.Z < RegionChunks
}

// Index is the slot's position in the region header tables.
func (l LocalPos) Index() int {
	return l.X + l.Z*RegionChunks
}

func LocalFromIndex(i int) LocalPos {
	return LocalPos{X: i % RegionChunks, Z: i / RegionChunks}
}

// ParseRegionFileName accepts exactly "r.<int>.<int>.mca".
func ParseRegionFileName(name string) (RegionPos, bool) {
	parts := strings.Split(name, ".")
	if len(parts) != 4 || parts[0] != RegionPrefix || parts[3] != RegionExt {
		return RegionPos{}, false
	}
	x, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return RegionPos{}, false
	}
	z, err := strconv.ParseInt(parts[2], 10, 32)
	if err != nil {
		return RegionPos{}, false
	}
	return RegionPos{X: int(x), Z: int(z)}, true
}

// HasRegionExt reports whether name ends in the region-file extension.
func HasRegionExt(name string) bool {
	return strings.HasSuffix(name, "."+RegionExt)
}

// ExternalChunkFileName names the overflow file for a chunk whose payload did
// not fit in its region sectors.
func ExternalChunkFileName(c ChunkPos) string {
	return fmt.Sprintf("c.%d.%d.mcc", c.X, c.Z)
}
