// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
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

	"github.com/Shivanand-hulikatti/concert-registration/internal/config"
	"github.com/Shivanand-hulikatti/concert-registration/internal/database"
	"github.com/Shivanand-hulikatti/concert-registration/internal/event"
	"github.com/Shivanand-hulikatti/concert-registration/internal/handler"
	"github.com/Shivanand-hulikatti/concert-registration/internal/i18n"
	"github.com/Shivanand-hulikatti/concert-registration/internal/llm"
	"github.com/Shivanand-hulikatti/concert-registration/internal/logger"
	"github.com/Shivanand-hulikatti/concert-registration/internal/queue"
	"github.com/Shivanand-hulikatti/concert-registration/internal/repository"
	"github.com/Shivanand-hulikatti/concert-registration/internal/service"
	"github.com/Shivanand-hulikatti/concert-registration/internal/storage"
	"github.com/Shivanand-hulikatti/concert-registration/internal/ticketing"
	"github.com/Shivanand-hulikatti/concert-registration/internal/worker"
	"github.com/Shivanand-hulikatti/concert-registration/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Connect to PostgreSQL ──────────────────────────────────────────
	dsn := cfg.DB.DSN()
	if cfg.Migrations {
		if err := database.RunMigrations(dsn, &log); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
	}
	pool, err := database.NewPool(ctx, dsn, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	defer pool.Close()
	log.Info().Msg("connected to PostgreSQL")

	// ── 2. Outbound clients and storage ──────────────────────────────────
	httpClient := &http.Client{Timeout: 20 * time.Second}
	tickets := ticketing.New(httpClient, cfg.Eventbrite.BaseURL, cfg.Eventbrite.Token, cfg.Eventbrite.EventID)
	if cfg.Eventbrite.Token == "" {
		log.Warn().Msg("EVENTBRITE_API_TOKEN not set, tickets get local identifiers")
	}
	completer := llm.NewOpenAI(httpClient, cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey)

	store, err := storage.NewOS(cfg.StorageDir)
	if err != nil {
		log.Fatal().Err(err).Msg("ticket storage unavailable")
	}

	var (
		jobs service.JobQueue = queue.NoopJobs{}
		rmq  *queue.Client
	)
	if cfg.AMQP.URL != "" {
		rmq, err = queue.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, &log)
		if err != nil {
			log.Fatal().Err(err).Msg("rabbitmq unavailable")
		}
		defer rmq.Close()
		jobs = queue.NewTicketJobs(rmq)
	}

	// ── 3. Wire up layers ────────────────────────────────────────────────
	svc, err := service.NewConcertService(service.Deps{
		Registrations: repository.NewRegistrationRepository(pool),
		Profiles:      repository.NewProfileRepository(pool),
		Tickets:       tickets,
		Store:         store,
		LLM:           completer,
		Jobs:          jobs,
		Concert:       event.Concert(),
		ChatModel:     cfg.OpenAI.Model,
		Logger:        &log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("service setup failed")
	}

	tr, err := i18n.NewTranslator(cfg.DefaultLocale)
	if err != nil {
		log.Fatal().Err(err).Msg("translations unavailable")
	}

	var ticketWorker *worker.TicketWorker
	if rmq != nil {
		ticketWorker = worker.NewTicketWorker(rmq, svc, &log)
		ticketWorker.Start(ctx)
	}

	// ── 4. Build the router ───────────────────────────────────────────────
	concertHandler := handler.NewConcertHandler(svc, tr, &log)
	router := handler.NewRouter(concertHandler, web.Handler(), &log)

	// ── 5. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Block until SIGINT or SIGTERM.
	<-ctx.Done()

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if ticketWorker != nil {
		ticketWorker.Stop()
	}
	log.Info().Msg("server stopped")
}
