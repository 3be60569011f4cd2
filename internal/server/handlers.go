package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"escrituras/internal/common"
	"escrituras/internal/entity"
	"escrituras/internal/export"
	"escrituras/internal/repository"
)

// DocumentProcessor is the pipeline seam the handlers depend on.
type DocumentProcessor interface {
	Process(ctx context.Context, path string) (*entity.Escritura, error)
}

// Handler wires the pipeline, store and exporter to the HTTP surface used by
// the presentation layer. No error value ever crosses this boundary raw; the
// collaborator only sees the envelope.
type Handler struct {
	processor DocumentProcessor
	store     repository.Store
	exporter  *export.Service
	logger    *slog.Logger
}

func NewHandler(processor DocumentProcessor, store repository.Store, exporter *export.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{processor: processor, store: store, exporter: exporter, logger: logger}
}

// Liveness handles GET /healthz
func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *Handler) Readiness(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ProcessDocument handles POST /api/v1/escrituras/:carpeta/process.
// The uploaded PDF is staged to a temp file that is removed on every exit
// path. The extracted record is returned but NOT persisted; saving is a
// separate action once the operator has reviewed the data.
func (h *Handler) ProcessDocument(c *gin.Context) {
	carpeta, ok := h.folderNumber(c)
	if !ok {
		return
	}

	upload, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "se requiere un archivo PDF en el campo 'file'")
		return
	}

	tmp, err := os.CreateTemp("", "escritura-*.pdf")
	if err != nil {
		h.logger.Error("failed to stage upload", "error", err)
		RespondError(c, http.StatusInternalServerError, "INTERNAL", "error interno")
		return
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
			h.logger.Warn("failed to remove staged upload", "path", tmpPath, "error", rmErr)
		}
	}()

	if err := c.SaveUploadedFile(upload, tmpPath); err != nil {
		h.logger.Error("failed to write staged upload", "error", err)
		RespondError(c, http.StatusInternalServerError, "INTERNAL", "error interno")
		return
	}

	rec, err := h.processor.Process(c.Request.Context(), tmpPath)
	if err != nil {
		h.logger.Error("processing failed", "numero_carpeta", carpeta, "error", err)
		RespondMappedError(c, err)
		return
	}

	RespondOK(c, gin.H{"numero_carpeta": carpeta, "record": rec})
}

// FindEscritura handles GET /api/v1/escrituras/:carpeta
func (h *Handler) FindEscritura(c *gin.Context) {
	carpeta, ok := h.folderNumber(c)
	if !ok {
		return
	}
	rec, err := h.store.Find(c.Request.Context(), carpeta)
	if err != nil {
		RespondMappedError(c, err)
		return
	}
	RespondOK(c, rec)
}

// SaveEscritura handles PUT /api/v1/escrituras/:carpeta. Row identity and
// fecha_creacion are storage-owned; a previously found result can be edited
// and sent back verbatim and only its record is persisted.
func (h *Handler) SaveEscritura(c *gin.Context) {
	carpeta, ok := h.folderNumber(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "no se pudo leer el cuerpo de la solicitud")
		return
	}
	rec, err := bindRecord(body)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "el cuerpo no es un registro de escritura válido")
		return
	}
	rec.Normalize()

	if err := h.store.Save(c.Request.Context(), carpeta, rec); err != nil {
		RespondMappedError(c, err)
		return
	}
	RespondOK(c, gin.H{"numero_carpeta": carpeta, "saved": true})
}

// bindRecord decodes a save body. Operators routinely PUT back exactly what a
// find returned, so a body carrying the storage wrapping (numero_carpeta,
// record, fecha_creacion, ultima_modificacion) is unwrapped to its inner
// record instead of being read as an all-empty one.
func bindRecord(body []byte) (*entity.Escritura, error) {
	var wrapped struct {
		Record json.RawMessage `json:"record"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil &&
		len(wrapped.Record) > 0 && string(wrapped.Record) != "null" {
		body = wrapped.Record
	}
	var rec entity.Escritura
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ExportEscritura handles GET /api/v1/escrituras/:carpeta/export
func (h *Handler) ExportEscritura(c *gin.Context) {
	carpeta, ok := h.folderNumber(c)
	if !ok {
		return
	}
	rec, err := h.store.Find(c.Request.Context(), carpeta)
	if err != nil {
		RespondMappedError(c, err)
		return
	}
	book, err := h.exporter.BuildWorkbook(rec)
	if err != nil {
		h.logger.Error("export failed", "numero_carpeta", carpeta, "error", err)
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "no se pudo generar el archivo")
		return
	}

	filename := fmt.Sprintf("carpeta-%d.xlsx", carpeta)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", book)
}

// folderNumber parses the :carpeta path param, rejecting anything that is not
// a positive integer before any pipeline or database work happens.
func (h *Handler) folderNumber(c *gin.Context) (int, bool) {
	carpeta, err := strconv.Atoi(c.Param("carpeta"))
	if err != nil || carpeta <= 0 {
		RespondMappedError(c, common.ErrInvalidFolderNumber)
		return 0, false
	}
	return carpeta, true
}
