package world

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"overviewer.app/internal/save/codec"
	"overviewer.app/internal/save/coords"
)

const LevelFile = "level.dat"

// LevelInfo is the typed subset of level.dat.
type LevelInfo = codec.LevelInfo

// World is a save root: level.dat plus the dimension directories discovered
// beneath it. It is immutable after Open.
type World struct {
	dir        string
	level      codec.Level
	regionsets []*Regionset
}

// Open parses level.dat and builds one Regionset per directory that holds
// region files.
func Open(dir string, opts ...Option) (*World, error) {
	o := buildOptions(opts)

	if err := statDir(dir); err != nil {
		return nil, err
	}

	lvl, err := codec.ReadLevel(filepath.Join(dir, LevelFile))
	if err != nil {
		if errors.Is(err, codec.ErrMalformed) {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	rels, err := discover(dir, o)
	if err != nil {
		return nil, err
	}

	w := &World{dir: dir, level: lvl}
	for _, rel := range rels {
		rsOpts := append(append([]Option{}, opts...), withRel(rel))
		rs, err := OpenRegionset(filepath.Join(dir, filepath.FromSlash(rel)), rsOpts...)
		if err != nil {
			return nil, err
		}
		o.logf("world %s: dimension %s (%s) regions=%d", dir, rs.Kind(), rel, rs.Len())
		w.regionsets = append(w.regionsets, rs)
	}
	return w, nil
}

// discover returns slash-separated directories, relative to root, that hold
// at least one region-extension file. Only direct subdirectories are
// considered unless the dimensions config asks for a recursive walk; ignored
// names apply to the walk only.
func discover(root string, o options) ([]string, error) {
	if o.dims.Recursive {
		return discoverRecursive(root, o)
	}

	ents, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, root, err)
	}
	var out []string
	for _, e := range ents {
		path := filepath.Join(root, e.Name())
		if !isDir(e, path) {
			continue
		}
		ok, err := hasRegionFiles(path)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func discoverRecursive(root string, o options) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == root {
			return nil
		}
		if o.dims.Ignored(d.Name()) {
			return filepath.SkipDir
		}
		ok, err := hasRegionFiles(path)
		if err != nil {
			return err
		}
		if ok {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrIO) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: walk %s: %w", ErrIO, root, err)
	}
	return out, nil
}

// isDir follows symlinks so linked dimension folders are still found.
func isDir(e fs.DirEntry, path string) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func hasRegionFiles(dir string) (bool, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %w", ErrIO, dir, err)
	}
	for _, e := range ents {
		if !e.IsDir() && coords.HasRegionExt(e.Name()) {
			return true, nil
		}
	}
	return false, nil
}

func (w *World) Path() string { return w.dir }

// Level returns the decoded level.dat root compound.
func (w *World) Level() map[string]any { return w.level.Tree }

func (w *World) Info() LevelInfo { return w.level.Info }

// Regionsets returns the discovered dimensions in scan order. The order is
// stable for this World but not across runs or platforms.
func (w *World) Regionsets() []*Regionset {
	out := make([]*Regionset, len(w.regionsets))
	copy(out, w.regionsets)
	return out
}

func (w *World) Regionset(i int) (*Regionset, error) {
	if i < 0 || i >= len(w.regionsets) {
		return nil, fmt.Errorf("%w: regionset %d of %d", ErrIndexOutOfRange, i, len(w.regionsets))
	}
	return w.regionsets[i], nil
}

// RegionsetByKind returns the first regionset with the given kind.
func (w *World) RegionsetByKind(kind string) (*Regionset, bool) {
	for _, rs := range w.regionsets {
		if rs.Kind() == kind {
			return rs, true
		}
	}
	return nil, false
}

func (w *World) String() string {
	return fmt.Sprintf("World(%s, %q, regionsets=%d)", w.dir, w.level.Info.LevelName, len(w.regionsets))
}
