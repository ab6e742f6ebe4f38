package services

import (
	"log/slog"
	"time"

	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock is the wall clock used outside tests.
func SystemClock() ports.Clock {
	return systemClock{}
}

func resolveClock(clock ports.Clock) ports.Clock {
	if clock == nil {
		return SystemClock()
	}
	return clock
}
