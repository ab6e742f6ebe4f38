package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/assembly/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

var errOracleDown = errors.New("oracle down")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeOracle struct {
	able  bool
	err   error
	calls atomic.Int32
}

func (o *fakeOracle) Check(_ context.Context, _ string) (bool, error) {
	o.calls.Add(1)
	return o.able, o.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type harness struct {
	clock     *fakeClock
	oracle    *fakeOracle
	measures  ports.MeasureRepository
	ballots   ports.BallotRepository
	voters    ports.VoterRepository
	sessions  ports.SessionService
	admission ports.AdmissionService
	tally     ports.TallyService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:    newFakeClock(),
		oracle:   &fakeOracle{able: true},
		measures: memory.NewMeasureRepository(),
		ballots:  memory.NewBallotRepository(),
		voters:   memory.NewVoterRepository(),
	}
	logger := discardLogger()
	gate := NewEligibilityGate(h.oracle, logger)
	h.sessions = NewSessionService(h.measures, h.clock, logger)
	h.admission = NewAdmissionService(h.voters, h.ballots, h.sessions, gate, h.clock, logger)
	h.tally = NewTallyService(h.measures, h.ballots)
	return h
}

func (h *harness) createMeasure(t *testing.T) *domain.Measure {
	t.Helper()
	m, err := NewMeasureService(h.measures, h.clock).Create(context.Background(), ports.CreateMeasureInput{Title: "Raise the reserve fund"})
	require.NoError(t, err)
	return m
}

func (h *harness) openMeasure(t *testing.T) *domain.Measure {
	t.Helper()
	m := h.createMeasure(t)
	opened, err := h.sessions.Open(context.Background(), m.ID, 0)
	require.NoError(t, err)
	return opened
}

func (h *harness) addVoter(t *testing.T, nationalID string, active bool) *domain.Voter {
	t.Helper()
	v := &domain.Voter{ID: uuid.New(), NationalID: nationalID, Active: active, CreatedAt: h.clock.Now()}
	require.NoError(t, h.voters.Create(context.Background(), v))
	return v
}

// nationalIDs returns n distinct well-formed identifiers. Voters added
// straight to the repository skip check-digit validation.
func nationalIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%011d", 70000000000+i)
	}
	return ids
}
