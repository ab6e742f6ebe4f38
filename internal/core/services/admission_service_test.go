package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

func TestCastBallot(t *testing.T) {
	ctx := context.Background()

	t.Run("records a ballot inside the window", func(t *testing.T) {
		h := newHarness(t)
		m := h.openMeasure(t)
		v := h.addVoter(t, "52998224725", true)

		ballot, err := h.admission.CastBallot(ctx, ports.BallotInput{MeasureID: m.ID, VoterID: v.ID, Choice: domain.ChoiceFor})
		require.NoError(t, err)
		assert.Equal(t, m.ID, ballot.MeasureID)
		assert.Equal(t, v.ID, ballot.VoterID)
		assert.Equal(t, domain.ChoiceFor, ballot.Choice)
		assert.True(t, ballot.CastAt.Equal(h.clock.Now()))
		assert.NotEqual(t, uuid.Nil, ballot.ID)
	})

	t.Run("second ballot from the same voter is a duplicate", func(t *testing.T) {
		h := newHarness(t)
		m := h.openMeasure(t)
		v := h.addVoter(t, "52998224725", true)

		_, err := h.admission.CastBallot(ctx, ports.BallotInput{MeasureID: m.ID, VoterID: v.ID, Choice: domain.ChoiceFor})
		require.NoError(t, err)
		_, err = h.admission.CastBallot(ctx, ports.BallotInput{MeasureID: m.ID, VoterID: v.ID, Choice: domain.ChoiceAgainst})
		assert.ErrorIs(t, err, domain.ErrDuplicateVote)

		tally, err := h.tally.Tally(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), tally.For)
		assert.Equal(t, int64(0), tally.Against)
	})

	t.Run("invalid choice is rejected before any lookup", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.admission.CastBallot(ctx, ports.BallotInput{MeasureID: uuid.New(), VoterID: uuid.New(), Choice: "MAYBE"})
		assert.ErrorIs(t, err, domain.ErrInvalidChoice)
		assert.Zero(t, h.oracle.calls.Load())
	})

	t.Run("unknown voter", func(t *testing.T) {
		h := newHarness(t)
		m := h.openMeasure(t)
		_, err := h.admission.CastBallot(ctx, ports.BallotInput{MeasureID: m.ID, VoterID: uuid.New(), Choice: domain.ChoiceFor})
		assert.ErrorIs(t, err, domain.ErrVoterNotFound)
	})

	t.Run("inactive voter never reaches the oracle", func(t *testing.T) {
		h := newHarness(t)
		m := h.openMeasure(t)
		v := h.addVoter(t, "52998224725", false)

		_, err := h.admission.CastBallot(ctx, ports.BallotInput{MeasureID: m.ID, VoterID: v.ID, Choice: domain.ChoiceFor})
		assert.ErrorIs(t, err, domain.ErrVoterInactive)
		assert.Zero(t, h.oracle.calls.Load())

		ballots, err := h.ballots.ListByMeasure(ctx, m.ID)
		require.NoError(t, err)
		assert.Empty(t, ballots)
	})

	t.Run("oracle says unable", func(t *testing.T) {
		h := newHarness(t)
		h.oracle.able = false
		m := h.openMeasure(t)
		v := h.addVoter(t, "52998224725", true)

		_, err := h.admission.CastBallot(ctx, ports.BallotInput{MeasureID: m.ID, VoterID: v.ID, Choice: domain.ChoiceFor})
		assert.ErrorIs(t, err, domain.ErrVoterNotEligible)
		assert.Equal(t, int32(1), h.oracle.calls.Load())
	})

	t.Run("oracle failure looks the same to the caller", func(t *testing.T) {
		h := newHarness(t)
		h.oracle.err = errOracleDown
		m := h.openMeasure(t)
		v := h.addVoter(t, "52998224725", true)

		_, err := h.admission.CastBallot(ctx, ports.BallotInput{MeasureID: m.ID, VoterID: v.ID, Choice: domain.ChoiceFor})
		assert.ErrorIs(t, err, domain.ErrVoterNotEligible)
		assert.NotErrorIs(t, err, errOracleDown)
	})

	t.Run("measure never opened", func(t *testing.T) {
		h := newHarness(t)
		m := h.createMeasure(t)
		v := h.addVoter(t, "52998224725", true)

		_, err := h.admission.CastBallot(ctx, ports.BallotInput{MeasureID: m.ID, VoterID: v.ID, Choice: domain.ChoiceFor})
		assert.ErrorIs(t, err, domain.ErrSessionNotOpen)
	})

	t.Run("unknown measure", func(t *testing.T) {
		h := newHarness(t)
		v := h.addVoter(t, "52998224725", true)

		_, err := h.admission.CastBallot(ctx, ports.BallotInput{MeasureID: uuid.New(), VoterID: v.ID, Choice: domain.ChoiceFor})
		assert.ErrorIs(t, err, domain.ErrMeasureNotFound)
	})

	t.Run("window elapsed but not yet swept", func(t *testing.T) {
		h := newHarness(t)
		m := h.openMeasure(t)
		v := h.addVoter(t, "52998224725", true)
		h.clock.Advance(time.Minute)

		_, err := h.admission.CastBallot(ctx, ports.BallotInput{MeasureID: m.ID, VoterID: v.ID, Choice: domain.ChoiceFor})
		assert.ErrorIs(t, err, domain.ErrSessionNotOpen)
	})
}

func TestConcurrentBallotsFromOneVoter(t *testing.T) {
	h := newHarness(t)
	m := h.openMeasure(t)
	v := h.addVoter(t, "52998224725", true)

	var wins, dupes atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			choice := domain.ChoiceFor
			if i%2 == 1 {
				choice = domain.ChoiceAgainst
			}
			_, err := h.admission.CastBallot(context.Background(), ports.BallotInput{MeasureID: m.ID, VoterID: v.ID, Choice: choice})
			if err == nil {
				wins.Add(1)
			} else if assert.ErrorIs(t, err, domain.ErrDuplicateVote) {
				dupes.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(39), dupes.Load())

	tally, err := h.tally.Tally(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), tally.Total)
}

func TestExpiredSessionScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sweeper := NewSweeper(h.sessions, time.Second, time.Second, discardLogger())

	m := h.openMeasure(t)
	v := h.addVoter(t, "52998224725", true)
	late := h.addVoter(t, "11144477735", true)

	_, err := h.admission.CastBallot(ctx, ports.BallotInput{MeasureID: m.ID, VoterID: v.ID, Choice: domain.ChoiceAgainst})
	require.NoError(t, err)

	h.clock.Advance(61 * time.Second)

	closed, err := sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{m.ID}, closed)

	stored, err := h.measures.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MeasureClosed, stored.State)

	_, err = h.admission.CastBallot(ctx, ports.BallotInput{MeasureID: m.ID, VoterID: late.ID, Choice: domain.ChoiceFor})
	assert.ErrorIs(t, err, domain.ErrSessionNotOpen)

	closed, err = sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Empty(t, closed)

	tally, err := h.tally.Tally(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, &domain.Tally{MeasureID: m.ID, For: 0, Against: 1, Total: 1}, tally)
}

func TestOneMinuteSessionFromOpenToTally(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sweeper := NewSweeper(h.sessions, time.Second, time.Second, discardLogger())

	m := h.createMeasure(t)
	opened, err := h.sessions.Open(ctx, m.ID, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, domain.MeasureOpen, opened.State)

	v1 := h.addVoter(t, "52998224725", true)
	v2 := h.addVoter(t, "11144477735", true)

	_, err = h.admission.CastBallot(ctx, ports.BallotInput{MeasureID: m.ID, VoterID: v1.ID, Choice: domain.ChoiceFor})
	require.NoError(t, err)

	_, err = h.admission.CastBallot(ctx, ports.BallotInput{MeasureID: m.ID, VoterID: v1.ID, Choice: domain.ChoiceAgainst})
	assert.ErrorIs(t, err, domain.ErrDuplicateVote)

	h.clock.Advance(61 * time.Second)
	closed, err := sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{m.ID}, closed)

	open, err := h.sessions.IsWindowOpen(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, open)

	_, err = h.admission.CastBallot(ctx, ports.BallotInput{MeasureID: m.ID, VoterID: v2.ID, Choice: domain.ChoiceFor})
	assert.ErrorIs(t, err, domain.ErrSessionNotOpen)

	tally, err := h.tally.Tally(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, &domain.Tally{MeasureID: m.ID, For: 1, Against: 0, Total: 1}, tally)
}
