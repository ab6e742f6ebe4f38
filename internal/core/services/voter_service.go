package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

type voterService struct {
	repo  ports.VoterRepository
	gate  ports.EligibilityGate
	clock ports.Clock
}

func NewVoterService(repo ports.VoterRepository, gate ports.EligibilityGate, clock ports.Clock) ports.VoterService {
	return &voterService{
		repo:  repo,
		gate:  gate,
		clock: resolveClock(clock),
	}
}

// Register adds an active voter. The national id may be formatted; it is
// stored as bare digits and must pass the check-digit validation.
func (s *voterService) Register(ctx context.Context, nationalID string) (*domain.Voter, error) {
	normalized := domain.NormalizeNationalID(nationalID)
	if !domain.ValidNationalID(normalized) {
		return nil, domain.ErrInvalidNationalID
	}

	voter := &domain.Voter{
		ID:         uuid.New(),
		NationalID: normalized,
		Active:     true,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repo.Create(ctx, voter); err != nil {
		return nil, err
	}
	return voter, nil
}

func (s *voterService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Voter, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *voterService) GetByNationalID(ctx context.Context, nationalID string) (*domain.Voter, error) {
	return s.repo.GetByNationalID(ctx, domain.NormalizeNationalID(nationalID))
}

func (s *voterService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Voter, error) {
	return s.repo.SetActive(ctx, id, active)
}

func (s *voterService) Eligibility(ctx context.Context, nationalID string) domain.Eligibility {
	return s.gate.Check(ctx, nationalID)
}
