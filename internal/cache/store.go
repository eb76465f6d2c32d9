// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache keeps converted outputs keyed by a content hash of the
// inputs and settings, and a history of conversion runs, in SQLite.
package cache

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/pdiddy/wp2tt/pkg/types"
)

const dbFile = "wp2tt.db"

// Store manages the cache database.
type Store struct {
	db  *sql.DB
	dir string
}

// NewStore opens or creates dir/wp2tt.db and its schema.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS outputs (
			key TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			size INTEGER NOT NULL,
			created TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			inputs TEXT NOT NULL,
			output TEXT NOT NULL,
			key TEXT,
			started TEXT NOT NULL,
			finished TEXT,
			status TEXT NOT NULL,
			error TEXT,
			paragraphs INTEGER NOT NULL DEFAULT 0,
			cache_hit INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Key hashes the given parts with BLAKE3. Each part is length-prefixed, so
// moving bytes between parts changes the key.
func Key(parts ...[]byte) string {
	h := blake3.New()
	var n [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached output for key. ok is false on a miss.
func (s *Store) Get(ctx context.Context, key string) (data []byte, ok bool, err error) {
	var blob []byte
	err = s.db.QueryRowContext(ctx, `SELECT data FROM outputs WHERE key = ?`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying cache: %w", err)
	}

	r, err := xz.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, false, fmt.Errorf("decompressing cached output %s: %w", key, err)
	}
	data, err = io.ReadAll(r)
	if err != nil {
		return nil, false, fmt.Errorf("decompressing cached output %s: %w", key, err)
	}
	return data, true, nil
}

// Put stores data under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return fmt.Errorf("compressing output: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("compressing output: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("compressing output: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO outputs (key, data, size, created) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET data=excluded.data, size=excluded.size, created=excluded.created`,
		key, buf.Bytes(), len(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("storing cached output: %w", err)
	}
	return nil
}

// RecordRun inserts or updates a run. A record without an ID gets a new
// UUID, which is returned.
func (s *Store) RecordRun(ctx context.Context, rec types.RunRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	inputs, err := json.Marshal(rec.Inputs)
	if err != nil {
		return "", fmt.Errorf("encoding run inputs: %w", err)
	}
	finished := ""
	if !rec.Finished.IsZero() {
		finished = rec.Finished.UTC().Format(time.RFC3339Nano)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, inputs, output, key, started, finished, status, error, paragraphs, cache_hit)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			output=excluded.output, key=excluded.key, finished=excluded.finished,
			status=excluded.status, error=excluded.error, paragraphs=excluded.paragraphs,
			cache_hit=excluded.cache_hit`,
		rec.ID, string(inputs), rec.Output, rec.Key,
		rec.Started.UTC().Format(time.RFC3339Nano), finished,
		string(rec.Status), rec.Error, rec.Paragraphs, rec.CacheHit,
	)
	if err != nil {
		return "", fmt.Errorf("recording run %s: %w", rec.ID, err)
	}
	return rec.ID, nil
}

// History returns up to limit runs, most recent first. A limit of zero or
// less returns every run.
func (s *Store) History(ctx context.Context, limit int) ([]types.RunRecord, error) {
	query := `SELECT id, inputs, output, key, started, finished, status, error, paragraphs, cache_hit
		FROM runs ORDER BY started DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []types.RunRecord
	for rows.Next() {
		var (
			rec                           types.RunRecord
			inputs, started               string
			key, finished, status, errMsg sql.NullString
		)
		if err := rows.Scan(&rec.ID, &inputs, &rec.Output, &key, &started, &finished,
			&status, &errMsg, &rec.Paragraphs, &rec.CacheHit); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if err := json.Unmarshal([]byte(inputs), &rec.Inputs); err != nil {
			return nil, fmt.Errorf("decoding inputs of run %s: %w", rec.ID, err)
		}
		rec.Key = key.String
		rec.Status = types.ConversionStatus(status.String)
		rec.Error = errMsg.String
		rec.Started, _ = time.Parse(time.RFC3339Nano, started)
		if finished.String != "" {
			rec.Finished, _ = time.Parse(time.RFC3339Nano, finished.String)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
