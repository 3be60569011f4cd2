package server

import "github.com/gin-gonic/gin"

// Setup configures the Gin engine with all routes.
func Setup(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)

	v1 := r.Group("/api/v1")
	escrituras := v1.Group("/escrituras")
	escrituras.POST("/:carpeta/process", h.ProcessDocument)
	escrituras.GET("/:carpeta", h.FindEscritura)
	escrituras.PUT("/:carpeta", h.SaveEscritura)
	escrituras.GET("/:carpeta/export", h.ExportEscritura)

	return r
}
