package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

type tallyService struct {
	measureRepo ports.MeasureRepository
	ballotRepo  ports.BallotRepository
}

func NewTallyService(measureRepo ports.MeasureRepository, ballotRepo ports.BallotRepository) ports.TallyService {
	return &tallyService{
		measureRepo: measureRepo,
		ballotRepo:  ballotRepo,
	}
}

// Tally counts recorded ballots by choice. It works in any session state
// and reflects what was committed when each count ran.
func (s *tallyService) Tally(ctx context.Context, measureID uuid.UUID) (*domain.Tally, error) {
	if _, err := s.measureRepo.GetByID(ctx, measureID); err != nil {
		return nil, err
	}

	var forCount, againstCount int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.ballotRepo.CountByMeasureAndChoice(gctx, measureID, domain.ChoiceFor)
		forCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.ballotRepo.CountByMeasureAndChoice(gctx, measureID, domain.ChoiceAgainst)
		againstCount = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.Tally{
		MeasureID: measureID,
		For:       forCount,
		Against:   againstCount,
		Total:     forCount + againstCount,
	}, nil
}

func (s *tallyService) ListBallots(ctx context.Context, measureID uuid.UUID) ([]*domain.Ballot, error) {
	if _, err := s.measureRepo.GetByID(ctx, measureID); err != nil {
		return nil, err
	}
	return s.ballotRepo.ListByMeasure(ctx, measureID)
}
