package integration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vncsmyrnk/assembly/internal/adapters/eligibility"
	handler "github.com/vncsmyrnk/assembly/internal/adapters/handler/http"
	repo "github.com/vncsmyrnk/assembly/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
	"github.com/vncsmyrnk/assembly/internal/core/services"
)

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), "up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dirPath, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}

	return nil
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Client      *http.Client
	Clock       *manualClock
	Measures    ports.MeasureRepository
	Ballots     ports.BallotRepository
	Voters      ports.VoterRepository
	Sessions    ports.SessionService
	Admission   ports.AdmissionService
	Sweeper     *services.Sweeper
	DBContainer testcontainers.Container
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()
	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	err = applyMigrations(db)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := &manualClock{now: time.Now().UTC().Truncate(time.Second)}

	measureRepo := repo.NewMeasureRepository(db)
	ballotRepo := repo.NewBallotRepository(db)
	voterRepo := repo.NewVoterRepository(db)

	gate := services.NewEligibilityGate(eligibility.NewAllowOracle(), logger)
	sessions := services.NewSessionService(measureRepo, clock, logger)
	admission := services.NewAdmissionService(voterRepo, ballotRepo, sessions, gate, clock, logger)
	tally := services.NewTallyService(measureRepo, ballotRepo)

	router := handler.NewHandler(
		handler.NewMeasureHandler(services.NewMeasureService(measureRepo, clock), sessions),
		handler.NewBallotHandler(admission, tally),
		handler.NewVoterHandler(services.NewVoterService(voterRepo, gate, clock)),
	)
	server := httptest.NewServer(router)

	return &TestApp{
		DB:          db,
		Server:      server,
		Client:      server.Client(),
		Clock:       clock,
		Measures:    measureRepo,
		Ballots:     ballotRepo,
		Voters:      voterRepo,
		Sessions:    sessions,
		Admission:   admission,
		Sweeper:     services.NewSweeper(sessions, time.Second, 5*time.Second, logger),
		DBContainer: dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}
