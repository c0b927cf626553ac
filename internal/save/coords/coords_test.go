package coords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_Negative(t *testing.T) {
	cases := []struct {
		c, local, region int
	}{
		{0, 0, 0},
		{31, 31, 0},
		{32, 0, 1},
		{-1, 31, -1},
		{-31, 1, -1},
		{-32, 0, -1},
		{-33, 31, -2},
		{100, 4, 3},
		{-100, 28, -4},
	}
	for _, tc := range cases {
		local, region := Split(tc.c)
		assert.Equalf(t, tc.local, local, "local for %d", tc.c)
		assert.Equalf(t, tc.region, region, "region for %d", tc.c)
	}
}

func TestSplit_Invariant(t *testing.T) {
	for c := -5000; c <= 5000; c++ {
		local, region := Split(c)
		require.Equal(t, c, region*32+local, "c=%d", c)
		require.True(t, local >= 0 && local < 32, "c=%d local=%d", c, local)
	}
}

func TestChunkPos_SplitRoundTrip(t *testing.T) {
	for _, c := range []ChunkPos{{0, 0}, {4, 8}, {-1, -1}, {-33, 64}, {1023, -1024}} {
		l, r := c.Split()
		require.True(t, l.Valid())
		assert.Equal(t, c, r.Chunk(l))
		assert.Equal(t, l, LocalFromIndex(l.Index()))
	}
}

func TestBlockPos_Chunk(t *testing.T) {
	assert.Equal(t, ChunkPos{0, 0}, BlockPos{15, 15}.Chunk())
	assert.Equal(t, ChunkPos{-1, -1}, BlockPos{-1, -16}.Chunk())
	assert.Equal(t, ChunkPos{-2, 1}, BlockPos{-17, 16}.Chunk())
	assert.Equal(t, RegionPos{-1, 0}, BlockPos{-1, 511}.Chunk().Region())
}

func TestParseRegionFileName(t *testing.T) {
	ok := map[string]RegionPos{
		"r.0.0.mca":     {0, 0},
		"r.-1.2.mca":    {-1, 2},
		"r.12.-30.mca":  {12, -30},
		"r.+3.4.mca":    {3, 4},
		"r.-100.-1.mca": {-100, -1},
	}
	for name, want := range ok {
		got, valid := ParseRegionFileName(name)
		require.Truef(t, valid, "%s", name)
		assert.Equal(t, want, got)
		if name != "r.+3.4.mca" {
			assert.Equal(t, name, got.FileName())
		}
	}

	for _, name := range []string{
		"r.0.0.mcr",
		"r.0.mca",
		"r.0.0.0.mca",
		"r.a.0.mca",
		"r.0.b.mca",
		"x.0.0.mca",
		"r.0.0.mca.bak",
		"notes.txt",
		"r.1.5.mca.tmp",
		"",
	} {
		_, valid := ParseRegionFileName(name)
		assert.Falsef(t, valid, "%q should not parse", name)
	}
}

func TestExternalChunkFileName(t *testing.T) {
	assert.Equal(t, "c.-3.40.mcc", ExternalChunkFileName(ChunkPos{-3, 40}))
	assert.True(t, HasRegionExt("r.1.1.mca"))
	assert.False(t, HasRegionExt("level.dat"))
}
