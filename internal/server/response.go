package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"escrituras/internal/common"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// RespondMappedError runs err through MapError and writes the envelope.
func RespondMappedError(c *gin.Context, err error) {
	status, code, msg := MapError(err)
	RespondError(c, status, code, msg)
}

// MapError translates pipeline and storage failures to HTTP status codes.
// Only these codes and messages cross the boundary to the presentation layer.
func MapError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, common.ErrInvalidFolderNumber):
		return http.StatusBadRequest, "INVALID_FOLDER_NUMBER", "el número de carpeta debe ser un entero positivo"
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "no se encontró ninguna carpeta con ese número"
	case errors.Is(err, common.ErrNoExtractableText):
		return http.StatusUnprocessableEntity, "NO_EXTRACTABLE_TEXT", "no se pudo extraer texto del PDF"
	case errors.Is(err, common.ErrExtractionUnavailable):
		return http.StatusServiceUnavailable, "EXTRACTION_UNAVAILABLE", "el servicio de extracción no está disponible"
	case errors.Is(err, common.ErrMalformedModelOutput):
		return http.StatusBadGateway, "MALFORMED_MODEL_OUTPUT", "la respuesta del modelo no cumple el esquema"
	case errors.Is(err, common.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "no hay conexión a la base de datos"
	default:
		return http.StatusInternalServerError, "INTERNAL", "error interno"
	}
}
