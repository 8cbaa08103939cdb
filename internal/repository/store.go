// Package repository persists pipeline runs and reads them back for the
// history endpoints. Two backends share one schema: sqlite for local and
// batch use, postgres for the deployed daemon.
package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/garment-labs/labelaudit/constants"
	"github.com/garment-labs/labelaudit/internal/entity"
)

// ErrNotFound is returned when no run exists under the requested ID.
var ErrNotFound = errors.New("run not found")

// RunStore persists pipeline runs.
type RunStore interface {
	SaveRun(ctx context.Context, run *entity.Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*entity.Run, error)
	ListRuns(ctx context.Context, kind constants.RunKind, limit int) ([]*entity.Run, error)
	Ping(ctx context.Context) error
	Close() error
}

// Config carries connection settings for both backends.
type Config struct {
	// DSN selects the postgres backend when non-empty.
	DSN string
	// SQLitePath selects the sqlite backend (":memory:" is valid) when DSN
	// is empty.
	SQLitePath string

	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// Open picks the store implementation from the connection settings: postgres
// when a DSN is set, sqlite when a path is set, otherwise the no-op store.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (RunStore, error) {
	switch {
	case cfg.DSN != "":
		return NewPostgresStore(ctx, cfg, logger)
	case cfg.SQLitePath != "":
		return NewSQLiteStore(ctx, cfg.SQLitePath, logger)
	default:
		return NopStore{}, nil
	}
}

// NopStore is the stand-in when persistence is not configured: writes vanish
// and reads find nothing.
type NopStore struct{}

func (NopStore) SaveRun(context.Context, *entity.Run) error { return nil }

func (NopStore) GetRun(context.Context, uuid.UUID) (*entity.Run, error) {
	return nil, ErrNotFound
}

func (NopStore) ListRuns(context.Context, constants.RunKind, int) ([]*entity.Run, error) {
	return []*entity.Run{}, nil
}

func (NopStore) Ping(context.Context) error { return nil }

func (NopStore) Close() error { return nil }

const defaultListLimit = 50

func listLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}
