package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"
)

var (
	// ErrUnreadable marks failures to read bytes off disk.
	ErrUnreadable = errors.New("unreadable")
	// ErrMalformed marks bytes that were read but could not be decompressed or parsed.
	ErrMalformed = errors.New("malformed")
)

// LevelInfo is the handful of level.dat fields worth surfacing. Missing or
// oddly typed fields are left zero.
type LevelInfo struct {
	LevelName   string
	VersionName string
	DataVersion int64
	SpawnX      int64
	SpawnY      int64
	SpawnZ      int64
	LastPlayed  int64
	RandomSeed  int64
}

type Level struct {
	Tree map[string]any
	Info LevelInfo
}

// ReadLevel parses a gzip-compressed level.dat.
func ReadLevel(path string) (Level, error) {
	var lvl Level
	raw, err := os.ReadFile(path)
	if err != nil {
		return lvl, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	tree, err := decodeGzipCompound(raw)
	if err != nil {
		return lvl, fmt.Errorf("%w: %s: %w", ErrMalformed, path, err)
	}
	lvl.Tree = tree
	lvl.Info = levelInfoFrom(tree)
	return lvl, nil
}

func decodeGzipCompound(raw []byte) (map[string]any, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer zr.Close()

	tree := map[string]any{}
	if _, err := nbt.NewDecoder(bufio.NewReader(zr)).Decode(&tree); err != nil {
		return nil, fmt.Errorf("nbt: %w", err)
	}
	return tree, nil
}

func levelInfoFrom(tree map[string]any) LevelInfo {
	var info LevelInfo
	info.LevelName, _ = LookupString(tree, "Data/LevelName")
	info.VersionName, _ = LookupString(tree, "Data/Version/Name")
	info.DataVersion, _ = LookupInt(tree, "Data/DataVersion")
	info.SpawnX, _ = LookupInt(tree, "Data/SpawnX")
	info.SpawnY, _ = LookupInt(tree, "Data/SpawnY")
	info.SpawnZ, _ = LookupInt(tree, "Data/SpawnZ")
	info.LastPlayed, _ = LookupInt(tree, "Data/LastPlayed")
	if seed, ok := LookupInt(tree, "Data/RandomSeed"); ok {
		info.RandomSeed = seed
	} else {
		// 1.16+ moved the seed under world generation settings.
		info.RandomSeed, _ = LookupInt(tree, "Data/WorldGenSettings/seed")
	}
	return info
}
