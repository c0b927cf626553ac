package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overviewer.app/internal/save/coords"
	"overviewer.app/internal/save/dimensions"
	"overviewer.app/internal/save/savetest"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
}

func TestOpen_OneDimensionSixRegions(t *testing.T) {
	root := t.TempDir()
	savetest.WriteLevel(t, root, savetest.DefaultLevel("Six"))
	touch(t, filepath.Join(root, "region"),
		"r.0.0.mca", "r.0.1.mca", "r.1.0.mca", "r.-1.0.mca", "r.0.-1.mca", "r.-1.-1.mca")
	touch(t, filepath.Join(root, "data"), "idcounts.dat")
	touch(t, filepath.Join(root, "playerdata"), "abc.dat")
	touch(t, root, "session.lock")

	w, err := Open(root)
	require.NoError(t, err)
	require.Len(t, w.Regionsets(), 1)

	rs, err := w.Regionset(0)
	require.NoError(t, err)
	assert.Equal(t, 6, rs.Len())
	assert.Equal(t, dimensions.KindOverworld, rs.Kind())

	assert.Equal(t, "Six", w.Info().LevelName)
	assert.EqualValues(t, 1337, w.Info().RandomSeed)
	assert.Equal(t, root, w.Path())
	_, ok := w.Level()["Data"]
	assert.True(t, ok)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrNotFound)

	noLevel := t.TempDir()
	touch(t, filepath.Join(noLevel, "region"), "r.0.0.mca")
	_, err = Open(noLevel)
	assert.ErrorIs(t, err, ErrIO)

	badLevel := t.TempDir()
	touch(t, badLevel)
	require.NoError(t, os.WriteFile(filepath.Join(badLevel, LevelFile), []byte("not gzip at all"), 0o644))
	_, err = Open(badLevel)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestOpen_IndexOutOfRange(t *testing.T) {
	root := t.TempDir()
	savetest.WriteLevel(t, root, savetest.DefaultLevel("w"))
	touch(t, filepath.Join(root, "region"), "r.0.0.mca")

	w, err := Open(root)
	require.NoError(t, err)

	_, err = w.Regionset(1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = w.Regionset(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestOpen_NoDimensions(t *testing.T) {
	root := t.TempDir()
	savetest.WriteLevel(t, root, savetest.DefaultLevel("empty"))
	touch(t, filepath.Join(root, "region"), "notes.txt")
	// Region files at the root itself do not make a dimension.
	touch(t, root, "r.0.0.mca")

	w, err := Open(root)
	require.NoError(t, err)
	assert.Empty(t, w.Regionsets())
	_, err = w.Regionset(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestOpen_DirectScanKeepsEverySubdirectory(t *testing.T) {
	root := t.TempDir()
	savetest.WriteLevel(t, root, savetest.DefaultLevel("w"))
	touch(t, filepath.Join(root, "region"), "r.0.0.mca")
	touch(t, filepath.Join(root, "poi"), "r.0.0.mca")
	touch(t, filepath.Join(root, "entities"), "r.0.0.mca")
	touch(t, filepath.Join(root, "DIM-1", "region"), "r.0.0.mca")

	w, err := Open(root)
	require.NoError(t, err)

	var kinds []string
	for _, rs := range w.Regionsets() {
		kinds = append(kinds, rs.Kind())
	}
	// DIM-1 itself holds no region files; its nested region dir needs a recursive scan.
	assert.ElementsMatch(t, []string{dimensions.KindOverworld, "poi", "entities"}, kinds)
}

func TestOpen_RecursiveScan(t *testing.T) {
	root := t.TempDir()
	savetest.WriteLevel(t, root, savetest.DefaultLevel("w"))
	savetest.WriteRegion(t, filepath.Join(root, "region"), coords.RegionPos{},
		slotAt(coords.ChunkPos{X: 1, Z: 2}, 100))
	savetest.WriteRegion(t, filepath.Join(root, "DIM-1", "region"), coords.RegionPos{X: -1, Z: -1},
		slotAt(coords.ChunkPos{X: -3, Z: -4}, 200))
	touch(t, filepath.Join(root, "DIM1", "region"), "r.0.0.mca")
	touch(t, filepath.Join(root, "DIM-1", "poi"), "r.0.0.mca")
	touch(t, filepath.Join(root, "DIM-1", "data"), "raids.dat")

	cfg := dimensions.Default()
	cfg.Recursive = true
	obs := &recordingObserver{}
	w, err := Open(root, WithDimensions(cfg), WithObserver(obs))
	require.NoError(t, err)

	var kinds []string
	for _, rs := range w.Regionsets() {
		kinds = append(kinds, rs.Kind())
	}
	assert.ElementsMatch(t, []string{dimensions.KindOverworld, dimensions.KindNether, dimensions.KindEnd}, kinds)

	nether, ok := w.RegionsetByKind(dimensions.KindNether)
	require.True(t, ok)
	mtime, ok := nether.ChunkMTime(coords.ChunkPos{X: -3, Z: -4})
	require.True(t, ok)
	assert.EqualValues(t, 200, mtime.Unix())
	_, ok = nether.Chunk(coords.ChunkPos{X: 1, Z: 2})
	assert.False(t, ok)

	overworld, ok := w.RegionsetByKind(dimensions.KindOverworld)
	require.True(t, ok)
	_, ok = overworld.Chunk(coords.ChunkPos{X: 1, Z: 2})
	assert.True(t, ok)

	_, ok = w.RegionsetByKind("aether")
	assert.False(t, ok)

	assert.Equal(t, []Outcome{OutcomeNoRegion, OutcomeFound}, obs.seen[OpChunk])
}

func TestRegionsets_ReturnsCopy(t *testing.T) {
	root := t.TempDir()
	savetest.WriteLevel(t, root, savetest.DefaultLevel("w"))
	touch(t, filepath.Join(root, "a"), "r.0.0.mca")
	touch(t, filepath.Join(root, "b"), "r.0.0.mca")

	w, err := Open(root)
	require.NoError(t, err)
	got := w.Regionsets()
	require.Len(t, got, 2)
	got[0] = nil

	first, err := w.Regionset(0)
	require.NoError(t, err)
	assert.NotNil(t, first)
	assert.Equal(t, "a", first.Kind())
}
