package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	corecfg "github.com/tempo-lab/project-tempo/internal/core/config"
	"github.com/tempo-lab/project-tempo/internal/core/storage/postgres"
	"github.com/tempo-lab/project-tempo/internal/materialize"
	"github.com/tempo-lab/project-tempo/internal/migrations"
	"github.com/tempo-lab/project-tempo/internal/series"
	"github.com/tempo-lab/project-tempo/internal/server"
)

func main() {
	configPath := flag.String("config", "tempo.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"addr", cfg.Server.Addr(),
		"mode", cfg.Server.Mode,
		"materialize_enabled", cfg.Materialize.Enabled,
		"schedule", cfg.Materialize.Schedule,
		"horizon", cfg.Materialize.Horizon,
		"default_locale", cfg.Locale.DefaultLocale(),
	)

	// 2. Open the pool and run migrations before the adapter validates the schema.
	db, err := postgres.OpenDB(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	if err := migrations.RunMigrations(db, cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		db.Close()
		os.Exit(1)
	}

	seriesStore, err := postgres.NewAdapterFromDB(db)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		db.Close()
		os.Exit(1)
	}
	defer seriesStore.Close()
	instanceStore := postgres.NewInstanceAdapter(db)

	// 3. Initialize Materialization
	materializer := materialize.NewMaterializer(seriesStore, instanceStore, materialize.JobParameter{
		BatchSize:   cfg.Materialize.BatchSize,
		WorkerCount: cfg.Materialize.WorkerCount,
		Horizon:     cfg.Materialize.HorizonDuration(),
	})

	scheduler, err := materialize.NewScheduler(
		cfg.Materialize.Schedule,
		cfg.Materialize.RunTimeoutDuration(),
		materializer,
	)
	if err != nil {
		slog.Error("Failed to initialize materialization scheduler", "error", err)
		os.Exit(1)
	}

	// 4. Initialize the series API
	seriesSvc := series.NewService(seriesStore, materializer, series.CalendarConfig{
		ProductID:  cfg.Calendar.ProductID,
		BaseURL:    cfg.Calendar.BaseURL,
		ExportDays: cfg.Calendar.ExportDays,
	}, cfg.Locale.DefaultLocale())

	// 5. Initialize Server
	srv := server.New(cfg.Server.Addr(), db, cfg.Server.Mode, int64(cfg.Server.MaxBodySizeMB)<<20)
	srv.Mount(seriesSvc)

	// 6. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	if cfg.Materialize.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := scheduler.Start(ctx); err != nil {
				slog.Error("Scheduler stopped with error", "error", err)
			}
		}()
	} else {
		slog.Info("Materialization scheduler disabled by config")
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
		cancel()
	}

	// The scheduler finishes its final drain before the pool closes.
	wg.Wait()
	slog.Info("Shutdown complete")
}
