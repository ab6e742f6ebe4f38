package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
)

// VoterRepository is the voter registry. GetByID returns domain.ErrVoterNotFound
// when the voter does not exist.
type VoterRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Voter, error)
	GetByNationalID(ctx context.Context, nationalID string) (*domain.Voter, error)
	Create(ctx context.Context, voter *domain.Voter) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Voter, error)
}

type VoterService interface {
	Register(ctx context.Context, nationalID string) (*domain.Voter, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Voter, error)
	GetByNationalID(ctx context.Context, nationalID string) (*domain.Voter, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Voter, error)
	Eligibility(ctx context.Context, nationalID string) domain.Eligibility
}
