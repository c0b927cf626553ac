// Package indexdb keeps a SQLite manifest of chunk modification times so
// repeated scans of a world can tell which chunks changed since the last run.
package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"overviewer.app/internal/save/coords"
	"overviewer.app/internal/save/world"
)

const schemaVersion = "1"

type SQLiteIndex struct {
	db   *sql.DB
	once sync.Once
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chunks (
			dimension TEXT NOT NULL,
			cx INTEGER NOT NULL,
			cz INTEGER NOT NULL,
			mtime INTEGER NOT NULL,
			PRIMARY KEY(dimension, cx, cz)
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','` + schemaVersion + `');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		err = s.db.Close()
	})
	return err
}

// Changed returns the chunks from seq that are not recorded for dim or whose
// mtime is newer than the recorded one, in seq order.
func (s *SQLiteIndex) Changed(ctx context.Context, dim string, seq iter.Seq[world.ChunkInfo]) ([]world.ChunkInfo, error) {
	known, err := s.load(ctx, dim)
	if err != nil {
		return nil, err
	}
	var out []world.ChunkInfo
	for ci := range seq {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prev, ok := known[ci.Pos]
		if !ok || ci.MTime.Unix() > prev {
			out = append(out, ci)
		}
	}
	return out, nil
}

func (s *SQLiteIndex) load(ctx context.Context, dim string) (map[coords.ChunkPos]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT cx,cz,mtime FROM chunks WHERE dimension=?`, dim)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dim, err)
	}
	defer rows.Close()

	known := map[coords.ChunkPos]int64{}
	for rows.Next() {
		var (
			p     coords.ChunkPos
			mtime int64
		)
		if err := rows.Scan(&p.X, &p.Z, &mtime); err != nil {
			return nil, err
		}
		known[p] = mtime
	}
	return known, rows.Err()
}

// Record upserts chunks for dim in a single transaction.
func (s *SQLiteIndex) Record(ctx context.Context, dim string, chunks []world.ChunkInfo) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO chunks(dimension,cx,cz,mtime) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, dim, c.Pos.X, c.Pos.Z, c.MTime.Unix()); err != nil {
			return fmt.Errorf("record %s %s: %w", dim, c.Pos, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) Count(ctx context.Context, dim string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE dimension=?`, dim).Scan(&n)
	return n, err
}
