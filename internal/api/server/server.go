package server

import (
	"net/http"

	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/texture-tool/internal/config"
)

// New wraps router in an http.Server configured from cfg. Batches run
// in the background, so every request is short and the timeouts apply to
// all routes alike.
func New(cfg config.Server, router *ginext.Engine) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
	}
}
