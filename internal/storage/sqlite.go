package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements SnapshotStore using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS embeddings (
		model TEXT NOT NULL,
		item_id TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		dimensions INTEGER NOT NULL,
		vector BLOB NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (model, item_id)
	);

	CREATE INDEX IF NOT EXISTS idx_embeddings_model ON embeddings(model);
	`
	_, err := db.Exec(schema)
	return err
}

// Load returns all snapshots for model keyed by item ID.
func (s *SQLiteStore) Load(ctx context.Context, model string) (map[string]*Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, content_hash, dimensions, vector FROM embeddings WHERE model = ?`, model)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]*Snapshot)
	for rows.Next() {
		var snap Snapshot
		var dims int
		var blob []byte
		if err := rows.Scan(&snap.ItemID, &snap.ContentHash, &dims, &blob); err != nil {
			return nil, err
		}
		vec, err := decodeVector(blob, dims)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", snap.ItemID, err)
		}
		snap.Vector = vec
		out[snap.ItemID] = &snap
	}
	return out, rows.Err()
}

// Save upserts snaps for model in a transaction.
func (s *SQLiteStore) Save(ctx context.Context, model string, snaps []*Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO embeddings (model, item_id, content_hash, dimensions, vector, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, snap := range snaps {
		if _, err := stmt.ExecContext(ctx, model, snap.ItemID, snap.ContentHash, len(snap.Vector), encodeVector(snap.Vector), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Prune removes snapshots for model whose item ID is not in keep.
func (s *SQLiteStore) Prune(ctx context.Context, model string, keep []string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `CREATE TEMP TABLE IF NOT EXISTS keep_ids (item_id TEXT PRIMARY KEY)`); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM keep_ids`); err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO keep_ids (item_id) VALUES (?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, id := range keep {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return 0, err
		}
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM embeddings WHERE model = ? AND item_id NOT IN (SELECT item_id FROM keep_ids)`, model)
	if err != nil {
		return 0, err
	}
	n, _ := result.RowsAffected()
	return n, tx.Commit()
}

// Count returns the number of snapshots for model.
func (s *SQLiteStore) Count(ctx context.Context, model string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings WHERE model = ?`, model).Scan(&count)
	return count, err
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// encodeVector packs v as little-endian float32 values.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte, dims int) ([]float32, error) {
	if len(buf) != 4*dims {
		return nil, fmt.Errorf("vector blob is %d bytes, expected %d", len(buf), 4*dims)
	}
	v := make([]float32, dims)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return v, nil
}
