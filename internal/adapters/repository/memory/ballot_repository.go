package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

type ballotKey struct {
	measureID uuid.UUID
	voterID   uuid.UUID
}

type ballotRepository struct {
	mu      sync.RWMutex
	ballots map[ballotKey]domain.Ballot
}

func NewBallotRepository() ports.BallotRepository {
	return &ballotRepository{
		ballots: make(map[ballotKey]domain.Ballot),
	}
}

func (r *ballotRepository) InsertIfAbsent(_ context.Context, ballot *domain.Ballot) error {
	key := ballotKey{measureID: ballot.MeasureID, voterID: ballot.VoterID}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ballots[key]; exists {
		return domain.ErrDuplicateVote
	}
	r.ballots[key] = *ballot
	return nil
}

func (r *ballotRepository) CountByMeasureAndChoice(_ context.Context, measureID uuid.UUID, choice domain.Choice) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for key, b := range r.ballots {
		if key.measureID == measureID && b.Choice == choice {
			n++
		}
	}
	return n, nil
}

func (r *ballotRepository) ListByMeasure(_ context.Context, measureID uuid.UUID) ([]*domain.Ballot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*domain.Ballot, 0)
	for key, b := range r.ballots {
		if key.measureID == measureID {
			b := b
			items = append(items, &b)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CastAt.Before(items[j].CastAt)
	})
	return items, nil
}
