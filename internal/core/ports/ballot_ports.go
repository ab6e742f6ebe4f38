package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
)

// BallotRepository is the ballot store. InsertIfAbsent must check for an
// existing (measure, voter) ballot and write the new one as one atomic
// operation, returning domain.ErrDuplicateVote when one already exists.
type BallotRepository interface {
	InsertIfAbsent(ctx context.Context, ballot *domain.Ballot) error
	CountByMeasureAndChoice(ctx context.Context, measureID uuid.UUID, choice domain.Choice) (int64, error)
	ListByMeasure(ctx context.Context, measureID uuid.UUID) ([]*domain.Ballot, error)
}

type BallotInput struct {
	MeasureID uuid.UUID
	VoterID   uuid.UUID
	Choice    domain.Choice
}

type AdmissionService interface {
	CastBallot(ctx context.Context, input BallotInput) (*domain.Ballot, error)
}

type TallyService interface {
	Tally(ctx context.Context, measureID uuid.UUID) (*domain.Tally, error)
	ListBallots(ctx context.Context, measureID uuid.UUID) ([]*domain.Ballot, error)
}
