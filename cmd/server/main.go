package main

import (
	"context"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/vncsmyrnk/assembly/internal/adapters/eligibility"
	"github.com/vncsmyrnk/assembly/internal/adapters/handler/http"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
	"github.com/vncsmyrnk/assembly/internal/core/services"
	"github.com/vncsmyrnk/assembly/internal/platform/config"
	"github.com/vncsmyrnk/assembly/internal/platform/logging"
	"github.com/vncsmyrnk/assembly/internal/platform/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Close()
	logger.Info("storage ready", "driver", cfg.StorageDriver)

	clock := services.SystemClock()
	gate := services.NewEligibilityGate(newOracle(cfg), logger)

	measureService := services.NewMeasureService(repos.Measures, clock)
	sessionService := services.NewSessionService(repos.Measures, clock, logger, services.WithDefaultDuration(cfg.SessionDefaultDuration))
	admissionService := services.NewAdmissionService(repos.Voters, repos.Ballots, sessionService, gate, clock, logger)
	tallyService := services.NewTallyService(repos.Measures, repos.Ballots)
	voterService := services.NewVoterService(repos.Voters, gate, clock)

	handler := http.NewHandler(
		http.NewMeasureHandler(measureService, sessionService),
		http.NewBallotHandler(admissionService, tallyService),
		http.NewVoterHandler(voterService),
	)
	server := &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: handler}

	sweeper := services.NewSweeper(sessionService, cfg.SweepInterval, cfg.SweepTimeout, logger)
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		sweeper.Run(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		stop()
		<-sweeperDone
		return err
	}
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-sweeperDone
	return nil
}

func newOracle(cfg config.Config) ports.EligibilityOracle {
	switch cfg.EligibilityMode {
	case config.EligibilityHTTP:
		return eligibility.NewHTTPOracle(cfg.EligibilityURL, cfg.EligibilityTimeout)
	case config.EligibilityAllow:
		return eligibility.NewAllowOracle()
	default:
		return eligibility.NewRandomOracle(cfg.EligibilityAbleRatio)
	}
}
