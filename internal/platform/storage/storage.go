package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/assembly/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/assembly/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/assembly/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
	"github.com/vncsmyrnk/assembly/internal/platform/config"
)

// Repositories groups the stores backing one process.
type Repositories struct {
	Measures ports.MeasureRepository
	Ballots  ports.BallotRepository
	Voters   ports.VoterRepository

	close func() error
}

func (r *Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// Open connects the backend selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg config.Config) (*Repositories, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.Postgres.DSN())
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return &Repositories{
			Measures: postgres.NewMeasureRepository(db),
			Ballots:  postgres.NewBallotRepository(db),
			Voters:   postgres.NewVoterRepository(db),
			close:    db.Close,
		}, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Measures: sqlite.NewMeasureRepository(store),
			Ballots:  sqlite.NewBallotRepository(store),
			Voters:   sqlite.NewVoterRepository(store),
			close:    store.Close,
		}, nil

	case config.DriverMemory:
		return &Repositories{
			Measures: memory.NewMeasureRepository(),
			Ballots:  memory.NewBallotRepository(),
			Voters:   memory.NewVoterRepository(),
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
