package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/garment-labs/labelaudit/constants"
	"github.com/garment-labs/labelaudit/internal/entity"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		filenames  TEXT NOT NULL,
		payload    BLOB NOT NULL,
		item_count INTEGER NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS runs_kind_created ON runs (kind, created_at)`,
}

// sqliteTimeFormat is fixed-width so that lexicographic order on the stored
// text matches chronological order (RFC3339Nano trims zeros and does not).
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore is the file or in-memory backend.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (and if needed creates) the runs database at path.
func NewSQLiteStore(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a second pooled connection to :memory: would see a fresh empty database
	db.SetMaxOpenConns(1)
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	logger.Info("sqlite store ready", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *entity.Run) error {
	filenames, err := json.Marshal(run.Filenames)
	if err != nil {
		return fmt.Errorf("marshal filenames: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, kind, filenames, payload, item_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID.String(),
		string(run.Kind),
		string(filenames),
		[]byte(run.Payload),
		run.ItemCount,
		run.CreatedAt.UTC().Format(sqliteTimeFormat),
	)
	if err != nil {
		s.logger.Error("failed to save run", "run_id", run.ID, "error", err)
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, filenames, payload, item_count, created_at
		 FROM runs WHERE id = ?`, id.String())
	run, err := scanSQLiteRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error("failed to get run", "run_id", id, "error", err)
		return nil, err
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, kind constants.RunKind, limit int) ([]*entity.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, filenames, payload, item_count, created_at
		 FROM runs WHERE kind = ? ORDER BY created_at DESC LIMIT ?`,
		string(kind), listLimit(limit))
	if err != nil {
		s.logger.Error("failed to list runs", "kind", kind, "error", err)
		return nil, err
	}
	defer rows.Close()

	runs := []*entity.Run{}
	for rows.Next() {
		run, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRun(row rowScanner) (*entity.Run, error) {
	var (
		idText    string
		kind      string
		filenames string
		payload   []byte
		itemCount int
		createdAt string
	)
	if err := row.Scan(&idText, &kind, &filenames, &payload, &itemCount, &createdAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idText)
	if err != nil {
		return nil, fmt.Errorf("parse run id: %w", err)
	}
	created, err := time.Parse(sqliteTimeFormat, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	run := &entity.Run{
		ID:        id,
		Kind:      constants.RunKind(kind),
		Payload:   json.RawMessage(payload),
		ItemCount: itemCount,
		CreatedAt: created,
	}
	if err := json.Unmarshal([]byte(filenames), &run.Filenames); err != nil {
		return nil, fmt.Errorf("unmarshal filenames: %w", err)
	}
	return run, nil
}
