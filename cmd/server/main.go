package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/config"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/infra"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/repository"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/router"
	"github.com/FranciscoAlvarezcs/sistemaPOS/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo cargar la configuración")
	}
	if cfg.Env == "production" {
		// JSON plano en producción, para el agregador de logs.
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo conectar a postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo conectar a redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Worker pool de recibos: genera el ticket PDF y lo envía por email. Se
	// cablea acá (composition root) para que tenga toda la infraestructura.
	mailer := infra.NewMailer(cfg)
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	ventaRepo := repository.NewVentaRepository(db)
	reciboWorker := worker.NewReciboWorker(ventaRepo, mailer, smtpCB, cfg)
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, reciboWorker)

	r := router.New(cfg, db, rdb, smtpCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Msgf("sistemaPOS escuchando en :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("error del servidor")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("apagando el servidor…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("apagado forzado")
	}
	log.Info().Msg("servidor finalizado")
}
