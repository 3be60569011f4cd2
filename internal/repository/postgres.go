package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"escrituras/internal/common"
	"escrituras/internal/entity"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS escrituras (
	id                  BIGSERIAL PRIMARY KEY,
	numero_carpeta      BIGINT      NOT NULL UNIQUE,
	record              JSONB       NOT NULL,
	fecha_creacion      TIMESTAMPTZ NOT NULL,
	ultima_modificacion TIMESTAMPTZ NOT NULL
)`

const pgUpsert = `
INSERT INTO escrituras (numero_carpeta, record, fecha_creacion, ultima_modificacion)
VALUES ($1, $2, $3, $3)
ON CONFLICT (numero_carpeta) DO UPDATE
SET record = EXCLUDED.record,
    ultima_modificacion = EXCLUDED.ultima_modificacion`

const pgFind = `
SELECT record, fecha_creacion, ultima_modificacion
FROM escrituras
WHERE numero_carpeta = $1`

// PostgresStore owns one pgx pool shared across calls. If a liveness check
// fails before an operation, it reopens the pool once before giving up; the
// failure then surfaces as ErrStorageUnavailable, never as a panic.
type PostgresStore struct {
	cfg    Config
	logger *slog.Logger

	mu   sync.Mutex
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, cfg Config, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := openPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, common.WrapError(common.ErrStorageUnavailable, err.Error())
	}
	return &PostgresStore{cfg: cfg, logger: logger, pool: pool}, nil
}

// acquire returns a live pool, reconnecting once if the ping fails.
func (s *PostgresStore) acquire(ctx context.Context) (*pgxpool.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		if err := HealthCheck(ctx, s.pool, time.Second); err == nil {
			return s.pool, nil
		}
		s.logger.Warn("database connection lost, attempting reconnect")
		s.pool.Close()
		s.pool = nil
	}

	pool, err := openPool(ctx, s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, common.WrapError(common.ErrStorageUnavailable, err.Error())
	}
	s.pool = pool
	return pool, nil
}

func (s *PostgresStore) Save(ctx context.Context, numeroCarpeta int, rec *entity.Escritura) error {
	if numeroCarpeta <= 0 {
		return common.ErrInvalidFolderNumber
	}
	pool, err := s.acquire(ctx)
	if err != nil {
		return err
	}

	rec.Normalize()
	payload, err := json.Marshal(rec)
	if err != nil {
		return common.WrapError(err, "encode record")
	}

	now := time.Now().UTC()
	if _, err := pool.Exec(ctx, pgUpsert, numeroCarpeta, payload, now); err != nil {
		s.logger.Error("failed to upsert escritura", "numero_carpeta", numeroCarpeta, "error", err)
		return common.WrapError(common.ErrStorageUnavailable, err.Error())
	}
	s.logger.Info("escritura saved", "numero_carpeta", numeroCarpeta)
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, numeroCarpeta int) (*StoredEscritura, error) {
	if numeroCarpeta <= 0 {
		return nil, common.ErrInvalidFolderNumber
	}
	pool, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}

	var payload []byte
	out := &StoredEscritura{NumeroCarpeta: numeroCarpeta}
	row := pool.QueryRow(ctx, pgFind, numeroCarpeta)
	if err := row.Scan(&payload, &out.FechaCreacion, &out.UltimaModificacion); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		s.logger.Error("failed to find escritura", "numero_carpeta", numeroCarpeta, "error", err)
		return nil, common.WrapError(common.ErrStorageUnavailable, err.Error())
	}
	if err := json.Unmarshal(payload, &out.Record); err != nil {
		return nil, common.WrapError(err, "decode record")
	}
	out.Record.Normalize()
	return out, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	pool, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	return HealthCheck(ctx, pool, time.Second)
}

func (s *PostgresStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
}
