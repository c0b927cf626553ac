package codec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Tnze/go-mc/nbt"
	"github.com/Tnze/go-mc/save/region"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"overviewer.app/internal/save/coords"
)

// Slot compression schemes as written in the first byte of a sector payload.
const (
	CompressionGzip byte = 1
	CompressionZlib byte = 2
	CompressionNone byte = 3
	CompressionLZ4  byte = 4

	// ExternalFlag means the payload lives in a c.<x>.<z>.mcc file.
	ExternalFlag byte = 0x80
)

var (
	ErrEmptySlot          = errors.New("empty slot")
	ErrUnknownCompression = errors.New("unknown compression")
)

// Region is one open region file. Only the header tables are read on open;
// chunk payloads are read per call.
type Region struct {
	dir string
	pos coords.RegionPos
	f   *os.File
	r   *region.Region
}

// OpenRegion opens <dir>/r.<x>.<z>.mca read-only and loads its header.
func OpenRegion(dir string, pos coords.RegionPos) (*Region, error) {
	path := filepath.Join(dir, pos.FileName())
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	r, err := region.Load(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s header: %w", ErrMalformed, path, err)
	}
	return &Region{dir: dir, pos: pos, f: f, r: r}, nil
}

func (r *Region) Close() error {
	return r.f.Close()
}

func (r *Region) Pos() coords.RegionPos { return r.pos }

func (r *Region) Populated(l coords.LocalPos) bool {
	if !l.Valid() {
		return false
	}
	return r.r.ExistSector(l.X, l.Z)
}

// Timestamp returns the slot's last-modified time from the header table
// without touching the payload. A populated header entry does not mean the
// payload decodes; callers that need that pair it with ReadChunk.
func (r *Region) Timestamp(l coords.LocalPos) (time.Time, bool) {
	if !r.Populated(l) {
		return time.Time{}, false
	}
	// Stored as unsigned seconds.
	sec := uint32(r.r.Timestamps[l.Z][l.X])
	return time.Unix(int64(sec), 0).UTC(), true
}

// Slots lists slots with a header entry, in header order.
func (r *Region) Slots() []coords.LocalPos {
	var out []coords.LocalPos
	for i := 0; i < coords.RegionChunks*coords.RegionChunks; i++ {
		l := coords.LocalFromIndex(i)
		if r.r.ExistSector(l.X, l.Z) {
			out = append(out, l)
		}
	}
	return out
}

// ReadChunk decompresses and decodes one slot into a tag tree.
func (r *Region) ReadChunk(l coords.LocalPos) (map[string]any, error) {
	if !r.Populated(l) {
		return nil, ErrEmptySlot
	}
	data, err := r.r.ReadSector(l.X, l.Z)
	if errors.Is(err, region.ErrNoData) {
		return nil, ErrEmptySlot
	}
	if err != nil {
		return nil, fmt.Errorf("%w: sector %d,%d: %w", ErrMalformed, l.X, l.Z, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptySlot
	}

	scheme, payload := data[0], data[1:]
	if scheme&ExternalFlag != 0 {
		scheme &^= ExternalFlag
		ext := filepath.Join(r.dir, coords.ExternalChunkFileName(r.pos.Chunk(l)))
		payload, err = os.ReadFile(ext)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
		}
	}

	rc, err := decompress(scheme, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: sector %d,%d: %w", ErrMalformed, l.X, l.Z, err)
	}
	defer rc.Close()

	tree := map[string]any{}
	if _, err := nbt.NewDecoder(bufio.NewReader(rc)).Decode(&tree); err != nil {
		return nil, fmt.Errorf("%w: sector %d,%d nbt: %w", ErrMalformed, l.X, l.Z, err)
	}
	return tree, nil
}

func decompress(scheme byte, payload []byte) (io.ReadCloser, error) {
	src := bytes.NewReader(payload)
	switch scheme {
	case CompressionGzip:
		return gzip.NewReader(src)
	case CompressionZlib:
		return zlib.NewReader(src)
	case CompressionNone:
		return io.NopCloser(src), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, scheme)
	}
}
