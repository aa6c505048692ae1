package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AG-1laksh/JanPath-sub001/internal/config"
	"github.com/AG-1laksh/JanPath-sub001/internal/database"
	"github.com/AG-1laksh/JanPath-sub001/internal/events"
	"github.com/AG-1laksh/JanPath-sub001/internal/router"
	"github.com/AG-1laksh/JanPath-sub001/pkg/logger"
)

func main() {
	// config + logger
	cfg := config.Load()
	l := logger.New(cfg.Env)

	// db
	pool, err := database.Open(context.Background(), cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("db connect failed")
	}
	defer pool.Close()

	if err := database.Migrate(context.Background(), pool); err != nil {
		l.Fatal().Err(err).Msg("migrate failed")
	}

	// event hub; with Redis configured, events fan out across instances
	hub := events.NewHub(l)
	var bus events.Publisher = hub
	listenCtx, stopListen := context.WithCancel(context.Background())
	defer stopListen()
	if cfg.RedisAddr != "" {
		bridge := events.NewRedisBridge(hub, cfg.RedisAddr, l)
		defer bridge.Close()
		go bridge.Listen(listenCtx)
		bus = bridge
		l.Info().Str("addr", cfg.RedisAddr).Msg("redis event bridge enabled")
	}

	// http
	r := router.New(l, pool, cfg, hub, bus)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	l.Info().Msg("shutdown complete")
}
