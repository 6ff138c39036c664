package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/texture-tool/internal/api/handlers/batch"
	"github.com/aliskhannn/texture-tool/internal/middleware"
)

func Setup(h *batch.Handler) *ginext.Engine {
	r := ginext.New()

	r.Use(middleware.CORSMiddleware())
	r.Use(ginext.Logger())
	r.Use(ginext.Recovery())

	api := r.Group("/api")

	api.POST("/batches", h.Submit)       // submitting a batch
	api.GET("/batches/:id", h.Get)       // job status and entries
	api.GET("/batches/:id/logs", h.Logs) // entries after a cursor
	api.DELETE("/batches/:id", h.Cancel) // canceling a batch
	api.GET("/operations", h.Operations) // available operations
	api.GET("/defaults", h.Defaults)     // initial parameter state

	return r
}
