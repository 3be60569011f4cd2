package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"escrituras/internal/common"
	"escrituras/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS escrituras (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	numero_carpeta      INTEGER NOT NULL UNIQUE,
	record              TEXT    NOT NULL,
	fecha_creacion      TEXT    NOT NULL,
	ultima_modificacion TEXT    NOT NULL
)`

const sqliteUpsert = `
INSERT INTO escrituras (numero_carpeta, record, fecha_creacion, ultima_modificacion)
VALUES (?, ?, ?, ?)
ON CONFLICT (numero_carpeta) DO UPDATE
SET record = excluded.record,
    ultima_modificacion = excluded.ultima_modificacion`

const sqliteFind = `
SELECT record, fecha_creacion, ultima_modificacion
FROM escrituras
WHERE numero_carpeta = ?`

// SQLiteStore is the local storage mode: same contract as the Postgres store,
// backed by a single file. Timestamps are stored as RFC3339Nano text.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(common.ErrStorageUnavailable, err.Error())
	}
	// a single writer avoids SQLITE_BUSY on the file
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, common.WrapError(common.ErrStorageUnavailable, err.Error())
	}
	logger.Info("sqlite store ready", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, numeroCarpeta int, rec *entity.Escritura) error {
	if numeroCarpeta <= 0 {
		return common.ErrInvalidFolderNumber
	}
	rec.Normalize()
	payload, err := json.Marshal(rec)
	if err != nil {
		return common.WrapError(err, "encode record")
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, sqliteUpsert, numeroCarpeta, string(payload), now, now); err != nil {
		s.logger.Error("failed to upsert escritura", "numero_carpeta", numeroCarpeta, "error", err)
		return common.WrapError(common.ErrStorageUnavailable, err.Error())
	}
	s.logger.Info("escritura saved", "numero_carpeta", numeroCarpeta)
	return nil
}

func (s *SQLiteStore) Find(ctx context.Context, numeroCarpeta int) (*StoredEscritura, error) {
	if numeroCarpeta <= 0 {
		return nil, common.ErrInvalidFolderNumber
	}

	var payload, created, modified string
	row := s.db.QueryRowContext(ctx, sqliteFind, numeroCarpeta)
	if err := row.Scan(&payload, &created, &modified); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		s.logger.Error("failed to find escritura", "numero_carpeta", numeroCarpeta, "error", err)
		return nil, common.WrapError(common.ErrStorageUnavailable, err.Error())
	}

	out := &StoredEscritura{NumeroCarpeta: numeroCarpeta}
	if err := json.Unmarshal([]byte(payload), &out.Record); err != nil {
		return nil, common.WrapError(err, "decode record")
	}
	out.Record.Normalize()
	var err error
	if out.FechaCreacion, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, common.WrapError(err, "parse fecha_creacion")
	}
	if out.UltimaModificacion, err = time.Parse(time.RFC3339Nano, modified); err != nil {
		return nil, common.WrapError(err, "parse ultima_modificacion")
	}
	return out, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return common.WrapError(common.ErrStorageUnavailable, err.Error())
	}
	return nil
}

func (s *SQLiteStore) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("failed to close sqlite store", "error", err)
	}
}
