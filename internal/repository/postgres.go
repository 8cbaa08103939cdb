package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/garment-labs/labelaudit/constants"
	"github.com/garment-labs/labelaudit/internal/entity"
)

// one statement per entry, pgx's extended protocol rejects batches in Exec
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id         UUID PRIMARY KEY,
		kind       TEXT NOT NULL,
		filenames  JSONB NOT NULL,
		payload    JSONB NOT NULL,
		item_count INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS runs_kind_created ON runs (kind, created_at DESC)`,
}

// PostgresStore is the deployed-daemon backend on a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore connects a pool and ensures the runs schema exists.
func NewPostgresStore(ctx context.Context, cfg Config, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "dsn", cfg.DSN)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "labelaudit"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = cfg.StatementTimeout.String()
	}

	dialCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, fmt.Errorf("connect: %w", err)
	}

	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	logger.Info("successfully connected to database")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *entity.Run) error {
	filenames, err := json.Marshal(run.Filenames)
	if err != nil {
		return fmt.Errorf("marshal filenames: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, kind, filenames, payload, item_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID.String(),
		string(run.Kind),
		string(filenames),
		string(run.Payload),
		run.ItemCount,
		run.CreatedAt.UTC(),
	)
	if err != nil {
		s.logger.Error("failed to save run", "run_id", run.ID, "error", err)
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id::text, kind, filenames, payload, item_count, created_at
		 FROM runs WHERE id = $1`, id.String())
	run, err := scanPostgresRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error("failed to get run", "run_id", id, "error", err)
		return nil, err
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, kind constants.RunKind, limit int) ([]*entity.Run, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, kind, filenames, payload, item_count, created_at
		 FROM runs WHERE kind = $1 ORDER BY created_at DESC LIMIT $2`,
		string(kind), listLimit(limit))
	if err != nil {
		s.logger.Error("failed to list runs", "kind", kind, "error", err)
		return nil, err
	}
	defer rows.Close()

	runs := []*entity.Run{}
	for rows.Next() {
		run, err := scanPostgresRun(rows)
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

func (s *PostgresStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPostgresRun(row pgx.Row) (*entity.Run, error) {
	var (
		idText    string
		kind      string
		filenames []byte
		payload   []byte
		itemCount int
		createdAt time.Time
	)
	if err := row.Scan(&idText, &kind, &filenames, &payload, &itemCount, &createdAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idText)
	if err != nil {
		return nil, fmt.Errorf("parse run id: %w", err)
	}
	run := &entity.Run{
		ID:        id,
		Kind:      constants.RunKind(kind),
		Payload:   json.RawMessage(payload),
		ItemCount: itemCount,
		CreatedAt: createdAt,
	}
	if err := json.Unmarshal(filenames, &run.Filenames); err != nil {
		return nil, fmt.Errorf("unmarshal filenames: %w", err)
	}
	return run, nil
}
