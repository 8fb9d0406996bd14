package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tatamehub/academia/internal/agenda"
	"github.com/tatamehub/academia/internal/auth"
	"github.com/tatamehub/academia/internal/billing"
	"github.com/tatamehub/academia/internal/config"
	"github.com/tatamehub/academia/internal/db"
	"github.com/tatamehub/academia/internal/facerec"
	internalhttp "github.com/tatamehub/academia/internal/http"
	"github.com/tatamehub/academia/internal/timezone"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis parse: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)

	resolver := timezone.NewResolver(cfg.AppTimezone)

	billingLogger := log.With().Str("component", "billing").Logger()
	billingService := billing.NewService(billing.NewRepository(pool), billingLogger)

	var faces agenda.FaceClient
	if cfg.FaceAPI.Configured() {
		client, err := facerec.New(facerec.Config{
			Endpoint:      cfg.FaceAPI.Endpoint,
			Key:           cfg.FaceAPI.Key,
			PersonGroupID: cfg.FaceAPI.PersonGroupID,
		})
		if err != nil {
			return fmt.Errorf("facerec: %w", err)
		}
		faces = client
	} else {
		log.Warn().Msg("reconhecimento facial não configurado, chamada por foto degradada")
	}

	agendaRepo := agenda.NewRepository(pool)
	agendaService := agenda.NewService(agendaRepo, redisClient, resolver, billingService, faces, cfg.FaceAPI.Threshold)
	agendaHandler := agenda.NewHandler(agendaService)

	appLoc, err := time.LoadLocation(cfg.AppTimezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	scheduler := cron.New(cron.WithLocation(appLoc))
	if err := agenda.RegistrarJobs(scheduler, agendaService); err != nil {
		return fmt.Errorf("cron agenda: %w", err)
	}
	if err := billing.RegistrarJobs(scheduler, billingService); err != nil {
		return fmt.Errorf("cron billing: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	handler := internalhttp.NewRouter(cfg, pool, jwtManager, agendaHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
