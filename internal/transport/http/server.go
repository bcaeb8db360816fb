package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/salonlabs/salon-server/internal/config"
	"github.com/salonlabs/salon-server/internal/core"
)

// NewServer builds the HTTP server: health, read-only REST surface, and the
// websocket endpoint every client speaks through.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	api := router.Group("/api")
	{
		h := NewAPIHandlers(hub, logger)
		api.GET("/rooms", h.ListRooms)
		api.GET("/online", h.ListOnline)
	}

	wsHandler := NewWSHandler(hub, cfg.MessageRateLimit, logger)
	router.GET("/ws", gin.WrapH(wsHandler))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
