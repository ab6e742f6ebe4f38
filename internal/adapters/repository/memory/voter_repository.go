package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

type voterRepository struct {
	mu           sync.RWMutex
	voters       map[uuid.UUID]domain.Voter
	byNationalID map[string]uuid.UUID
}

func NewVoterRepository(seed ...domain.Voter) ports.VoterRepository {
	r := &voterRepository{
		voters:       make(map[uuid.UUID]domain.Voter, len(seed)),
		byNationalID: make(map[string]uuid.UUID, len(seed)),
	}
	for _, v := range seed {
		r.voters[v.ID] = v
		r.byNationalID[v.NationalID] = v.ID
	}
	return r
}

func (r *voterRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Voter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.voters[id]
	if !ok {
		return nil, domain.ErrVoterNotFound
	}
	return &v, nil
}

func (r *voterRepository) GetByNationalID(_ context.Context, nationalID string) (*domain.Voter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byNationalID[nationalID]
	if !ok {
		return nil, domain.ErrVoterNotFound
	}
	v := r.voters[id]
	return &v, nil
}

func (r *voterRepository) Create(_ context.Context, voter *domain.Voter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byNationalID[voter.NationalID]; taken {
		return domain.ErrNationalIDTaken
	}
	r.voters[voter.ID] = *voter
	r.byNationalID[voter.NationalID] = voter.ID
	return nil
}

func (r *voterRepository) SetActive(_ context.Context, id uuid.UUID, active bool) (*domain.Voter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.voters[id]
	if !ok {
		return nil, domain.ErrVoterNotFound
	}
	v.Active = active
	r.voters[id] = v
	return &v, nil
}
