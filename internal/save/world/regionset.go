package world

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"time"

	"overviewer.app/internal/save/codec"
	"overviewer.app/internal/save/coords"
)

// Regionset is one dimension: a directory of region files. The set of known
// regions comes from filenames only and is fixed at construction; region
// contents are read per lookup.
type Regionset struct {
	dir     string
	kind    string
	regions map[coords.RegionPos]struct{}
	sorted  []coords.RegionPos
	opts    options
}

// OpenRegionset indexes the region files in dir.
func OpenRegionset(dir string, opts ...Option) (*Regionset, error) {
	o := buildOptions(opts)

	if err := statDir(dir); err != nil {
		return nil, err
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, dir, err)
	}

	rs := &Regionset{
		dir:     dir,
		kind:    kindFor(dir, o),
		regions: make(map[coords.RegionPos]struct{}),
		opts:    o,
	}
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		pos, ok := coords.ParseRegionFileName(e.Name())
		if !ok {
			continue
		}
		if _, dup := rs.regions[pos]; dup {
			continue
		}
		rs.regions[pos] = struct{}{}
		rs.sorted = append(rs.sorted, pos)
	}
	sort.Slice(rs.sorted, func(i, j int) bool { return rs.sorted[i].Less(rs.sorted[j]) })
	return rs, nil
}

func statDir(dir string) error {
	fi, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, dir)
	}
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", ErrIO, dir, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrIO, dir)
	}
	return nil
}

// kindFor prefers the path relative to the world root. Standalone regionsets
// try the trailing two components ("DIM-1/region") and then the base name.
func kindFor(dir string, o options) string {
	if o.rel != "" {
		return o.dims.KindOf(o.rel)
	}
	base := filepath.Base(dir)
	parent := filepath.Base(filepath.Dir(dir))
	if kind, ok := o.dims.Match(parent + "/" + base); ok {
		return kind
	}
	return o.dims.KindOf(base)
}

func (rs *Regionset) Path() string { return rs.dir }

// Kind names the dimension, e.g. "overworld".
func (rs *Regionset) Kind() string { return rs.kind }

// Len is the number of indexed region files.
func (rs *Regionset) Len() int { return len(rs.sorted) }

// Regions returns the indexed regions ordered by Z then X.
func (rs *Regionset) Regions() []coords.RegionPos {
	out := make([]coords.RegionPos, len(rs.sorted))
	copy(out, rs.sorted)
	return out
}

func (rs *Regionset) HasRegion(pos coords.RegionPos) bool {
	_, ok := rs.regions[pos]
	return ok
}

func (rs *Regionset) String() string {
	return fmt.Sprintf("Regionset(%s, kind=%s, regions=%d)", rs.dir, rs.kind, len(rs.sorted))
}

// Chunk decodes the chunk at pos. Any failure along the way, from a missing
// region to a bad payload, reports the chunk as absent.
func (rs *Regionset) Chunk(pos coords.ChunkPos) (*Chunk, bool) {
	var tree map[string]any
	outcome := rs.withSlot(pos, func(r *codec.Region, l coords.LocalPos) (Outcome, error) {
		t, outcome, err := readSlot(r, l)
		tree = t
		return outcome, err
	})
	rs.opts.observer.ObserveLookup(rs.kind, OpChunk, outcome)
	if outcome != OutcomeFound {
		return nil, false
	}
	return &Chunk{tree: tree}, true
}

// ChunkMTime returns the slot's header timestamp. The payload is decoded and
// discarded first so the answer matches Chunk for the same position.
func (rs *Regionset) ChunkMTime(pos coords.ChunkPos) (time.Time, bool) {
	var ts time.Time
	outcome := rs.withSlot(pos, func(r *codec.Region, l coords.LocalPos) (Outcome, error) {
		_, outcome, err := readSlot(r, l)
		if outcome != OutcomeFound {
			return outcome, err
		}
		t, ok := r.Timestamp(l)
		if !ok {
			return OutcomeEmpty, nil
		}
		ts = t
		return OutcomeFound, nil
	})
	rs.opts.observer.ObserveLookup(rs.kind, OpChunkMTime, outcome)
	if outcome != OutcomeFound {
		return time.Time{}, false
	}
	return ts, true
}

func readSlot(r *codec.Region, l coords.LocalPos) (map[string]any, Outcome, error) {
	tree, err := r.ReadChunk(l)
	if errors.Is(err, codec.ErrEmptySlot) {
		return nil, OutcomeEmpty, nil
	}
	if err != nil {
		return nil, OutcomeCorrupt, err
	}
	return tree, OutcomeFound, nil
}

// withSlot opens the region holding pos for the duration of fn. The file is
// closed on every path.
func (rs *Regionset) withSlot(pos coords.ChunkPos, fn func(*codec.Region, coords.LocalPos) (Outcome, error)) Outcome {
	local, rpos := pos.Split()
	if !rs.HasRegion(rpos) {
		return OutcomeNoRegion
	}
	r, err := codec.OpenRegion(rs.dir, rpos)
	if err != nil {
		rs.opts.logf("%s %s: %v", rs.kind, rpos, err)
		return OutcomeCorrupt
	}
	defer r.Close()

	if !r.Populated(local) {
		return OutcomeEmpty
	}
	outcome, err := fn(r, local)
	if err != nil {
		rs.opts.logf("%s %s: %v", rs.kind, pos, err)
	}
	return outcome
}

// Chunks yields every slot of every indexed region that Chunk would return.
// Slots are decoded to check this. Each call starts a fresh pass; regions
// that cannot be opened are skipped.
func (rs *Regionset) Chunks() iter.Seq[ChunkInfo] {
	return func(yield func(ChunkInfo) bool) {
		for _, rpos := range rs.sorted {
			if !rs.yieldRegion(rpos, yield) {
				return
			}
		}
	}
}

func (rs *Regionset) yieldRegion(rpos coords.RegionPos, yield func(ChunkInfo) bool) bool {
	r, err := codec.OpenRegion(rs.dir, rpos)
	if err != nil {
		rs.opts.logf("%s %s: %v", rs.kind, rpos, err)
		return true
	}
	defer r.Close()

	for _, l := range r.Slots() {
		if _, outcome, err := readSlot(r, l); outcome != OutcomeFound {
			if err != nil {
				rs.opts.logf("%s %s: %v", rs.kind, rpos.Chunk(l), err)
			}
			continue
		}
		ts, _ := r.Timestamp(l)
		if !yield(ChunkInfo{Pos: rpos.Chunk(l), MTime: ts}) {
			return false
		}
	}
	return true
}
