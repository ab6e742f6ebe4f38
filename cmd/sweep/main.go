package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/vncsmyrnk/assembly/internal/core/services"
	"github.com/vncsmyrnk/assembly/internal/platform/config"
	"github.com/vncsmyrnk/assembly/internal/platform/logging"
	"github.com/vncsmyrnk/assembly/internal/platform/storage"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Println(err)
	}

	var cfg config.Config
	if err := config.ParseEnv(&cfg); err != nil {
		log.Fatal(err)
	}

	flag.StringVar(&cfg.StorageDriver, "driver", cfg.StorageDriver, "Storage driver (postgres, sqlite)")
	flag.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database file")
	flag.StringVar(&cfg.Postgres.Host, "db-host", cfg.Postgres.Host, "Database host")
	flag.StringVar(&cfg.Postgres.Port, "db-port", cfg.Postgres.Port, "Database port")
	flag.StringVar(&cfg.Postgres.User, "db-user", cfg.Postgres.User, "Database user")
	flag.StringVar(&cfg.Postgres.Password, "db-pass", cfg.Postgres.Password, "Database password")
	flag.StringVar(&cfg.Postgres.DB, "db-name", cfg.Postgres.DB, "Database name")
	timeout := flag.Duration("timeout", 5*time.Minute, "Job timeout")
	flag.Parse()

	if cfg.StorageDriver == config.DriverMemory {
		log.Fatal("the sweep job needs a persistent storage driver")
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	repos, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer repos.Close()

	sessions := services.NewSessionService(repos.Measures, services.SystemClock(), logger)
	sweeper := services.NewSweeper(sessions, cfg.SweepInterval, *timeout, logger)

	logger.Info("starting expired session sweep")

	closed, err := sweeper.SweepOnce(ctx)
	if err != nil {
		logger.Error("sweep finished with errors", "closed", len(closed), "error", err)
		os.Exit(1)
	}

	logger.Info("sweep completed", "closed", len(closed))
}
