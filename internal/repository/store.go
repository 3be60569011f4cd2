package repository

import (
	"context"
	"time"

	"escrituras/internal/entity"
)

// StoredEscritura is a persisted record plus its storage metadata. Internal
// row identity never leaves the store, so a found record feeds straight back
// into Save.
type StoredEscritura struct {
	NumeroCarpeta      int              `json:"numero_carpeta"`
	Record             entity.Escritura `json:"record"`
	FechaCreacion      time.Time        `json:"fecha_creacion"`
	UltimaModificacion time.Time        `json:"ultima_modificacion"`
}

// Store persists deed records keyed by folder number.
//
// Save performs an atomic upsert: fecha_creacion is written once on first
// insert, ultima_modificacion on every save. Find returns
// common.ErrNotFound for folder numbers never saved. Both reject a
// non-positive folder number with common.ErrInvalidFolderNumber before
// touching the database, and surface connection problems as
// common.ErrStorageUnavailable after one transparent reconnect attempt.
type Store interface {
	Save(ctx context.Context, numeroCarpeta int, rec *entity.Escritura) error
	Find(ctx context.Context, numeroCarpeta int) (*StoredEscritura, error)
	Ping(ctx context.Context) error
	Close()
}
