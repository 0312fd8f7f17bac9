package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Ring/internal/adapters/http"
	wsignal "github.com/dkeye/Ring/internal/adapters/signal"
	"github.com/dkeye/Ring/internal/app"
	"github.com/dkeye/Ring/internal/app/call"
	"github.com/dkeye/Ring/internal/auth"
	"github.com/dkeye/Ring/internal/cache"
	"github.com/dkeye/Ring/internal/config"
	"github.com/dkeye/Ring/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	var messages store.MessageStore = store.NoopStore{}
	if cfg.MongoURI != "" {
		ms, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Error().Err(err).Msg("mongo unavailable, message fallback disabled")
		} else {
			messages = ms
			defer func() {
				closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer closeCancel()
				_ = ms.Close(closeCtx)
			}()
		}
	}

	mirror := cache.NewRosterMirror(cfg.RedisAddr)
	defer mirror.Close()

	registry := app.NewRegistry()
	rooms := app.NewRooms()
	verifier := auth.NewVerifier(cfg.Secret)

	hub := wsignal.NewHub(cfg, registry, rooms, messages, mirror)
	engine := call.NewEngine(registry, hub,
		call.WithRingTimeout(cfg.RingTimeout),
		call.WithRateLimiter(app.NewDialRateLimiter(cfg.DialLimit, cfg.DialLimitWindow)),
	)
	hub.BindEngine(engine)

	r := router.SetupRouter(ctx, cfg, hub, registry, verifier)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Ring server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
