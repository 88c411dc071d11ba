package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teamplan/planboard/internal/config"
	"github.com/teamplan/planboard/internal/contentplan"
	"github.com/teamplan/planboard/internal/database"
	"github.com/teamplan/planboard/internal/events"
	"github.com/teamplan/planboard/internal/logging"
	"github.com/teamplan/planboard/internal/roles"
	"github.com/teamplan/planboard/internal/server"
	"github.com/teamplan/planboard/internal/taskstore"
	"github.com/teamplan/planboard/internal/users"
	"github.com/teamplan/planboard/internal/worker"
)

func main() {
	configPath := flag.String("config", "", "path to optional YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	tasks, err := taskstore.New(db)
	if err != nil {
		return fmt.Errorf("failed to init task store: %w", err)
	}

	registry := contentplan.NewRegistry()

	// Redis is optional in development. Without it the API runs with no
	// change stream and no background sweep.
	var publisher *events.Publisher
	if cfg.RedisURL != "" {
		publisher, err = events.NewPublisher(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to init events publisher: %w", err)
		}
		defer publisher.Close()

		if err := worker.InitClient(cfg.RedisURL); err != nil {
			return fmt.Errorf("failed to init worker client: %w", err)
		}
		defer worker.CloseClient()

		stopWorker, err := worker.Start(cfg, log, db, registry, publisher)
		if err != nil {
			return fmt.Errorf("failed to start worker: %w", err)
		}
		defer stopWorker()

		stopScheduler, err := worker.StartScheduler(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer stopScheduler()
	} else {
		log.Warn("REDIS_URL not set, change stream and orphan sweep disabled")
	}

	var stream contentplan.ChangeStream
	if publisher != nil {
		stream = publisher
	}
	svc := contentplan.NewService(
		contentplan.NewStore(db),
		tasks,
		registry,
		stream,
		log,
		cfg.RangeLimitDays,
	)

	router := server.NewRouter(server.Deps{
		Config:  cfg,
		Log:     log,
		Content: svc,
		Users:   users.NewStore(db),
		Roles:   roles.DefaultTable(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
