// Package savetest writes small on-disk worlds for tests.
package savetest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"overviewer.app/internal/save/coords"
)

const sectorSize = 4096

// Slot describes one populated region slot. Raw, when set, is written as the
// sector payload verbatim (compression byte included) instead of encoding Tag.
type Slot struct {
	Local       coords.LocalPos
	Timestamp   uint32
	Tag         map[string]any
	Compression byte
	Raw         []byte
	// External moves the compressed payload into a c.<x>.<z>.mcc file.
	External bool
}

// ChunkTag builds a minimal modern chunk compound at the given chunk position.
func ChunkTag(c coords.ChunkPos) map[string]any {
	return map[string]any{
		"DataVersion": int32(3465),
		"xPos":        int32(c.X),
		"zPos":        int32(c.Z),
		"Status":      "minecraft:full",
		"LastUpdate":  int64(0),
	}
}

// LegacyChunkTag nests the position under "Level" as pre-1.18 chunks do.
func LegacyChunkTag(c coords.ChunkPos) map[string]any {
	return map[string]any{
		"DataVersion": int32(1343),
		"Level": map[string]any{
			"xPos": int32(c.X),
			"zPos": int32(c.Z),
		},
	}
}

func encodeNBT(t testing.TB, v any) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := nbt.NewEncoder(&buf).Encode(v, ""); err != nil {
		t.Fatalf("nbt encode: %v", err)
	}
	return buf.Bytes()
}

func compress(t testing.TB, scheme byte, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch scheme {
	case 1:
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(raw); err != nil {
			t.Fatalf("gzip: %v", err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("gzip close: %v", err)
		}
	case 2:
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(raw); err != nil {
			t.Fatalf("zlib: %v", err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("zlib close: %v", err)
		}
	default:
		buf.Write(raw)
	}
	return buf.Bytes()
}

// WriteRegion writes <dir>/r.<x>.<z>.mca containing the given slots.
func WriteRegion(t testing.TB, dir string, pos coords.RegionPos, slots ...Slot) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	var offsets, stamps [1024]uint32
	var body bytes.Buffer
	next := 2 // sectors 0 and 1 hold the header tables

	for _, s := range slots {
		payload := s.Raw
		if payload == nil {
			scheme := s.Compression
			if scheme == 0 {
				scheme = 2
			}
			data := compress(t, scheme, encodeNBT(t, s.Tag))
			if s.External {
				ext := filepath.Join(dir, coords.ExternalChunkFileName(pos.Chunk(s.Local)))
				if err := os.WriteFile(ext, data, 0o644); err != nil {
					t.Fatalf("write mcc: %v", err)
				}
				payload = []byte{scheme | 0x80}
			} else {
				payload = append([]byte{scheme}, data...)
			}
		}

		var sector bytes.Buffer
		_ = binary.Write(&sector, binary.BigEndian, uint32(len(payload)))
		sector.Write(payload)
		n := (sector.Len() + sectorSize - 1) / sectorSize
		sector.Write(make([]byte, n*sectorSize-sector.Len()))

		i := s.Local.Index()
		offsets[i] = uint32(next)<<8 | uint32(n)
		stamps[i] = s.Timestamp
		body.Write(sector.Bytes())
		next += n
	}

	var out bytes.Buffer
	_ = binary.Write(&out, binary.BigEndian, offsets)
	_ = binary.Write(&out, binary.BigEndian, stamps)
	out.Write(body.Bytes())

	path := filepath.Join(dir, pos.FileName())
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatalf("write region: %v", err)
	}
	return path
}

// WriteLevel writes a gzip-compressed level.dat into worldDir.
func WriteLevel(t testing.TB, worldDir string, data map[string]any) string {
	t.Helper()
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	raw := compress(t, 1, encodeNBT(t, map[string]any{"Data": data}))
	path := filepath.Join(worldDir, "level.dat")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write level.dat: %v", err)
	}
	return path
}

// DefaultLevel is a plausible level.dat Data compound.
func DefaultLevel(name string) map[string]any {
	return map[string]any{
		"LevelName":   name,
		"DataVersion": int32(3465),
		"SpawnX":      int32(16),
		"SpawnY":      int32(64),
		"SpawnZ":      int32(-32),
		"LastPlayed":  int64(1454034069000),
		"RandomSeed":  int64(1337),
		"Version": map[string]any{
			"Name": "1.20.1",
		},
	}
}
