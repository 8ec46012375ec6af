package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/romnet/lobbyd/internal/adapters/ws"
	"github.com/romnet/lobbyd/internal/app"
	"github.com/romnet/lobbyd/internal/config"
)

func SetupRouter(ctx context.Context, cfg *config.Config, coord *app.Coordinator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	ctl := ws.NewController(coord, cfg.ReadLimit, cfg.PingPeriod)

	// Emulator client transport. /ws/auth is the anonymous pairing endpoint;
	// /ws/:id is the authenticated session endpoint.
	r.GET("/ws/auth", func(c *gin.Context) {
		ctl.HandlePairing(ctx, c)
	})
	r.GET("/ws/:id", func(c *gin.Context) {
		ctl.HandleSession(ctx, c)
	})

	registerAPI(r.Group("/api"), coord)

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
