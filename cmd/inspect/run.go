package main

import (
	"context"
	"fmt"
	"log"

	"overviewer.app/internal/metrics"
	"overviewer.app/internal/persistence/indexdb"
	"overviewer.app/internal/save/dimensions"
	"overviewer.app/internal/save/world"
)

type config struct {
	WorldDir       string
	DimensionsPath string
	IndexPath      string
	Verify         bool
}

type dimensionReport struct {
	Kind    string
	Regions int
	Chunks  int
	Changed int
	Decoded int
}

type report struct {
	Dimensions []dimensionReport
	Totals     []metrics.Total
}

func run(ctx context.Context, cfg config, logger *log.Logger) error {
	rep, err := inspect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	for _, t := range rep.Totals {
		logger.Printf("lookups dimension=%s op=%s outcome=%s count=%d", t.Dimension, t.Op, t.Outcome, t.Count)
	}
	return nil
}

func inspect(ctx context.Context, cfg config, logger *log.Logger) (report, error) {
	dims, err := dimensions.Load(cfg.DimensionsPath)
	if err != nil {
		return report{}, fmt.Errorf("load dimensions: %w", err)
	}
	obs, err := metrics.NewLookupObserver(nil)
	if err != nil {
		return report{}, err
	}

	w, err := world.Open(cfg.WorldDir,
		world.WithDimensions(dims),
		world.WithObserver(obs),
		world.WithLogger(logger),
	)
	if err != nil {
		return report{}, fmt.Errorf("open world: %w", err)
	}
	info := w.Info()
	logger.Printf("world %q version=%s data_version=%d seed=%d spawn=(%d,%d,%d)",
		info.LevelName, info.VersionName, info.DataVersion, info.RandomSeed, info.SpawnX, info.SpawnY, info.SpawnZ)

	var idx *indexdb.SQLiteIndex
	if cfg.IndexPath != "" {
		idx, err = indexdb.OpenSQLite(cfg.IndexPath)
		if err != nil {
			return report{}, fmt.Errorf("open index: %w", err)
		}
		defer idx.Close()
	}

	var rep report
	for _, rs := range w.Regionsets() {
		if err := ctx.Err(); err != nil {
			return report{}, err
		}
		dr := dimensionReport{Kind: rs.Kind(), Regions: rs.Len()}
		for range rs.Chunks() {
			dr.Chunks++
		}

		if idx != nil {
			changed, err := idx.Changed(ctx, rs.Kind(), rs.Chunks())
			if err != nil {
				return report{}, fmt.Errorf("index %s: %w", rs.Kind(), err)
			}
			if err := idx.Record(ctx, rs.Kind(), changed); err != nil {
				return report{}, fmt.Errorf("index %s: %w", rs.Kind(), err)
			}
			dr.Changed = len(changed)
		}

		if cfg.Verify {
			for ci := range rs.Chunks() {
				if err := ctx.Err(); err != nil {
					return report{}, err
				}
				if _, ok := rs.Chunk(ci.Pos); ok {
					dr.Decoded++
				}
			}
		}

		logger.Printf("dimension %s regions=%d chunks=%d changed=%d decoded=%d",
			dr.Kind, dr.Regions, dr.Chunks, dr.Changed, dr.Decoded)
		rep.Dimensions = append(rep.Dimensions, dr)
	}
	rep.Totals = obs.Totals()
	return rep, nil
}
