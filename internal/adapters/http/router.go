package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Ring/internal/adapters/signal"
	"github.com/dkeye/Ring/internal/app"
	"github.com/dkeye/Ring/internal/auth"
	"github.com/dkeye/Ring/internal/config"
	"github.com/dkeye/Ring/internal/metrics"
)

// AuthMiddleware derives the user identity from the jwt cookie or the
// token query parameter. Unauthenticated requests never reach the
// signaling endpoint.
func AuthMiddleware(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("jwt")
		if token == "" {
			token = c.Query("token")
		}
		uid, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set("user_id", string(uid))
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, hub *signal.Hub, reg *app.Registry, verifier *auth.Verifier) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(metrics.Middleware())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("RingSessions", store))

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	r.GET("/metrics", metrics.Handler())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	api.GET("/ws/signal", AuthMiddleware(verifier), func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("user", c.GetString("user_id")).Msg("ws signal endpoint hit")
		hub.HandleSignal(ctx, c)
	})

	api.GET("/online", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userIds": reg.Snapshot()})
	})

	internal := api.Group("/internal", InternalAuthMiddleware(cfg.InternalSecret))
	internal.POST("/emit", emitHandler(hub))

	return r
}
