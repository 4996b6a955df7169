package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/weight-tracker-be/internal/api"
	"github.com/isdelr/weight-tracker-be/internal/auth"
	"github.com/isdelr/weight-tracker-be/internal/config"
	"github.com/isdelr/weight-tracker-be/internal/database"
	"github.com/isdelr/weight-tracker-be/internal/logger"
	"github.com/isdelr/weight-tracker-be/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if cfg.GeneratedSecret {
		log.Warn().Msg("SECRET_KEY is not set; sessions will not survive a restart")
	}

	// Set up database
	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// An unreachable store must not keep the service from starting. The
	// router retries EnsureSchema on each request until it succeeds.
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.EnsureSchema(pingCtx); err != nil {
		log.Warn().Err(err).Str("driver", cfg.Database.Driver).Msg("Database not ready; starting anyway")
	} else {
		log.Info().Str("driver", cfg.Database.Driver).Msg("Database ready")
	}
	cancelPing()

	// Set up services
	accountService := services.NewAccountService(db)
	sessionService := services.NewSessionService(db, auth.NewSigner(cfg.SecretKey), cfg.SessionTTL)
	clientService := services.NewClientService(db)
	measurementService := services.NewMeasurementService(db)

	// Set up router
	router := api.NewRouter(api.Dependencies{
		Logger:       log.Logger,
		DB:           db,
		Schema:       db,
		Accounts:     accountService,
		Sessions:     sessionService,
		Clients:      clientService,
		Measurements: measurementService,
		CORSOrigins:  cfg.CORSOrigins,
		Cookie:       auth.CookieOptions{Secure: cfg.IsProduction()},
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.Env).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
