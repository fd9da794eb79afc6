package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/plsp-store/backend/internal/auth"
	"github.com/plsp-store/backend/internal/catalog"
	"github.com/plsp-store/backend/internal/config"
	"github.com/plsp-store/backend/internal/db"
	"github.com/plsp-store/backend/internal/order"
	"github.com/plsp-store/backend/internal/user"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "store-api").Logger()

	cfg := config.Load()

	if err := db.Migrate(cfg.PostgresDSN, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	pool, err := db.Connect(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	router := newRouter(deps{
		issuer:         auth.NewIssuer(cfg.JWTSecret),
		adminTokenTTL:  cfg.AdminTokenTTL,
		mobileTokenTTL: cfg.MobileTokenTTL,
		users:          user.NewPGRepo(pool),
		catalog:        catalog.NewPGRepo(pool),
		orders:         order.NewPGRepo(pool),
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	log.Info().Msg("stopped")
}
