package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"escrituras/internal/common"
	"escrituras/internal/entity"
	"escrituras/internal/export"
	"escrituras/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memStore is an in-memory Store for handler tests.
type memStore struct {
	records map[int]*repository.StoredEscritura
	pingErr error
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{records: map[int]*repository.StoredEscritura{}}
}

func (m *memStore) Save(_ context.Context, carpeta int, rec *entity.Escritura) error {
	if carpeta <= 0 {
		return common.ErrInvalidFolderNumber
	}
	if m.saveErr != nil {
		return m.saveErr
	}
	rec.Normalize()
	now := time.Now().UTC()
	if existing, ok := m.records[carpeta]; ok {
		existing.Record = *rec
		existing.UltimaModificacion = now
		return nil
	}
	m.records[carpeta] = &repository.StoredEscritura{
		NumeroCarpeta:      carpeta,
		Record:             *rec,
		FechaCreacion:      now,
		UltimaModificacion: now,
	}
	return nil
}

func (m *memStore) Find(_ context.Context, carpeta int) (*repository.StoredEscritura, error) {
	if carpeta <= 0 {
		return nil, common.ErrInvalidFolderNumber
	}
	rec, ok := m.records[carpeta]
	if !ok {
		return nil, common.ErrNotFound
	}
	return rec, nil
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }
func (m *memStore) Close()                     {}

type stubProcessor struct {
	rec      *entity.Escritura
	err      error
	lastPath string
}

func (s *stubProcessor) Process(_ context.Context, path string) (*entity.Escritura, error) {
	s.lastPath = path
	return s.rec, s.err
}

func newTestRouter(store repository.Store, proc DocumentProcessor) *gin.Engine {
	return Setup(NewHandler(proc, store, export.NewService(nil), nil))
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSaveThenFind(t *testing.T) {
	r := newTestRouter(newMemStore(), &stubProcessor{})

	rec := entity.Escritura{NumeroEscritura: "435", Escribano: "Juan Pérez"}
	w := doJSON(t, r, http.MethodPut, "/api/v1/escrituras/42", rec)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/escrituras/42", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                       `json:"success"`
		Data    repository.StoredEscritura `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 42, resp.Data.NumeroCarpeta)
	assert.Equal(t, "435", resp.Data.Record.NumeroEscritura)
}

func TestSaveToleratesFedBackFindResult(t *testing.T) {
	r := newTestRouter(newMemStore(), &stubProcessor{})

	rec := entity.Escritura{NumeroEscritura: "435", Escribano: "Juan Pérez"}
	w := doJSON(t, r, http.MethodPut, "/api/v1/escrituras/42", rec)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/escrituras/42", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))

	// PUT the find payload back without stripping anything
	req := httptest.NewRequest(http.MethodPut, "/api/v1/escrituras/42", bytes.NewReader(found.Data))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/escrituras/42", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data repository.StoredEscritura `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "435", resp.Data.Record.NumeroEscritura)
	assert.Equal(t, "Juan Pérez", resp.Data.Record.Escribano, "the stored record must survive a verbatim round trip")
}

func TestFindUnknownFolder(t *testing.T) {
	r := newTestRouter(newMemStore(), &stubProcessor{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/escrituras/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestSaveRejectsInvalidFolderNumber(t *testing.T) {
	store := newMemStore()
	r := newTestRouter(store, &stubProcessor{})

	for _, carpeta := range []string{"0", "-1", "abc"} {
		w := doJSON(t, r, http.MethodPut, "/api/v1/escrituras/"+carpeta, entity.Escritura{})
		assert.Equal(t, http.StatusBadRequest, w.Code, "carpeta=%s", carpeta)
	}
	assert.Empty(t, store.records, "no write may happen for an invalid folder number")
}

func TestSaveStorageUnavailable(t *testing.T) {
	store := newMemStore()
	store.saveErr = common.ErrStorageUnavailable
	r := newTestRouter(store, &stubProcessor{})

	w := doJSON(t, r, http.MethodPut, "/api/v1/escrituras/5", entity.Escritura{})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "STORAGE_UNAVAILABLE")
}

func multipartPDF(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestProcessDocument(t *testing.T) {
	proc := &stubProcessor{rec: &entity.Escritura{NumeroEscritura: "435"}}
	store := newMemStore()
	r := newTestRouter(store, proc)

	body, contentType := multipartPDF(t, "file", "escritura.pdf", []byte("%PDF-1.4 fake"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/escrituras/42/process", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, proc.lastPath, "the upload must be staged to a file")
	assert.Contains(t, w.Body.String(), `"numero_escritura":"435"`)
	assert.Empty(t, store.records, "processing must not persist; saving is explicit")
}

func TestProcessDocumentNoExtractableText(t *testing.T) {
	proc := &stubProcessor{err: common.ErrNoExtractableText}
	r := newTestRouter(newMemStore(), proc)

	body, contentType := multipartPDF(t, "file", "vacia.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/escrituras/7/process", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "NO_EXTRACTABLE_TEXT")
}

func TestProcessDocumentMissingFile(t *testing.T) {
	r := newTestRouter(newMemStore(), &stubProcessor{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/escrituras/7/process", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_FILE")
}

func TestExportEscritura(t *testing.T) {
	store := newMemStore()
	rec := entity.Escritura{NumeroEscritura: "435"}
	require.NoError(t, store.Save(context.Background(), 42, &rec))
	r := newTestRouter(store, &stubProcessor{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/escrituras/42/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "carpeta-42.xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestReadiness(t *testing.T) {
	store := newMemStore()
	r := newTestRouter(store, &stubProcessor{})

	w := doJSON(t, r, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	store.pingErr = common.ErrStorageUnavailable
	w = doJSON(t, r, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
