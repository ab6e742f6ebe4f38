package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

type admissionService struct {
	voterRepo  ports.VoterRepository
	ballotRepo ports.BallotRepository
	sessions   ports.SessionService
	gate       ports.EligibilityGate
	clock      ports.Clock
	logger     *slog.Logger
}

func NewAdmissionService(
	voterRepo ports.VoterRepository,
	ballotRepo ports.BallotRepository,
	sessions ports.SessionService,
	gate ports.EligibilityGate,
	clock ports.Clock,
	logger *slog.Logger,
) ports.AdmissionService {
	return &admissionService{
		voterRepo:  voterRepo,
		ballotRepo: ballotRepo,
		sessions:   sessions,
		gate:       gate,
		clock:      resolveClock(clock),
		logger:     resolveLogger(logger),
	}
}

// CastBallot runs the admission pipeline and stops at the first failure.
// The insert at the end is the only write; every earlier step is a read.
func (s *admissionService) CastBallot(ctx context.Context, input ports.BallotInput) (*domain.Ballot, error) {
	if !input.Choice.Valid() {
		return nil, domain.ErrInvalidChoice
	}
	log := s.logger.With("measure_id", input.MeasureID, "voter_id", input.VoterID)

	voter, err := s.voterRepo.GetByID(ctx, input.VoterID)
	if err != nil {
		return nil, err
	}
	if !voter.Active {
		log.Warn("ballot rejected: voter inactive")
		return nil, domain.ErrVoterInactive
	}

	switch s.gate.Check(ctx, voter.NationalID) {
	case domain.Eligible:
	case domain.Unavailable:
		log.Warn("ballot rejected: eligibility could not be confirmed")
		return nil, domain.ErrVoterNotEligible
	default:
		log.Warn("ballot rejected: voter not eligible")
		return nil, domain.ErrVoterNotEligible
	}

	open, err := s.sessions.IsWindowOpen(ctx, input.MeasureID)
	if err != nil {
		return nil, err
	}
	if !open {
		log.Warn("ballot rejected: session not open")
		return nil, domain.ErrSessionNotOpen
	}

	ballot := &domain.Ballot{
		ID:        uuid.New(),
		MeasureID: input.MeasureID,
		VoterID:   voter.ID,
		Choice:    input.Choice,
		CastAt:    s.clock.Now(),
	}
	if err := s.ballotRepo.InsertIfAbsent(ctx, ballot); err != nil {
		if errors.Is(err, domain.ErrDuplicateVote) {
			log.Warn("ballot rejected: duplicate vote")
		}
		return nil, err
	}

	log.Info("ballot recorded", "ballot_id", ballot.ID, "choice", ballot.Choice)
	return ballot, nil
}
