package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

const DefaultSessionDuration = time.Minute

type sessionService struct {
	repo            ports.MeasureRepository
	clock           ports.Clock
	logger          *slog.Logger
	defaultDuration time.Duration
}

type SessionOption func(*sessionService)

// WithDefaultDuration replaces the one minute used when Open receives a
// non-positive duration.
func WithDefaultDuration(d time.Duration) SessionOption {
	return func(s *sessionService) {
		if d > 0 {
			s.defaultDuration = d
		}
	}
}

func NewSessionService(repo ports.MeasureRepository, clock ports.Clock, logger *slog.Logger, opts ...SessionOption) ports.SessionService {
	s := &sessionService{
		repo:            repo,
		clock:           resolveClock(clock),
		logger:          resolveLogger(logger),
		defaultDuration: DefaultSessionDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *sessionService) Open(ctx context.Context, measureID uuid.UUID, duration time.Duration) (*domain.Measure, error) {
	if duration <= 0 {
		duration = s.defaultDuration
	}

	measure, err := s.repo.GetByID(ctx, measureID)
	if err != nil {
		return nil, err
	}
	if measure.State != domain.MeasureCreated {
		return nil, openStateError(measure.State)
	}

	now := s.clock.Now()
	window := domain.NewWindow(now, duration)
	opened, err := s.repo.CompareAndSetState(ctx, measureID, domain.MeasureCreated, domain.MeasureOpen, &window, now)
	if err != nil {
		if !errors.Is(err, domain.ErrStateConflict) {
			return nil, err
		}
		// Lost the race to another Open (or a close); report what won.
		current, getErr := s.repo.GetByID(ctx, measureID)
		if getErr != nil {
			return nil, getErr
		}
		return nil, openStateError(current.State)
	}

	s.logger.Info("voting session opened",
		"measure_id", measureID,
		"opens_at", window.OpensAt,
		"closes_at", window.ClosesAt,
	)
	return opened, nil
}

func openStateError(state domain.MeasureState) error {
	if state == domain.MeasureOpen {
		return domain.ErrSessionAlreadyOpen
	}
	return fmt.Errorf("%w: cannot open a measure in state %s", domain.ErrInvalidTransition, state)
}

func (s *sessionService) IsWindowOpen(ctx context.Context, measureID uuid.UUID) (bool, error) {
	measure, err := s.repo.GetByID(ctx, measureID)
	if err != nil {
		return false, err
	}
	return measure.AcceptsBallotsAt(s.clock.Now()), nil
}

func (s *sessionService) Close(ctx context.Context, measureID uuid.UUID) (*domain.Measure, error) {
	measure, err := s.repo.GetByID(ctx, measureID)
	if err != nil {
		return nil, err
	}
	if measure.State != domain.MeasureOpen {
		return measure, nil
	}

	closed, err := s.repo.CompareAndSetState(ctx, measureID, domain.MeasureOpen, domain.MeasureClosed, nil, s.clock.Now())
	if errors.Is(err, domain.ErrStateConflict) {
		// Someone else (usually the sweeper) closed it first.
		return s.repo.GetByID(ctx, measureID)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("voting session closed", "measure_id", measureID, "reason", "explicit")
	return closed, nil
}

func (s *sessionService) CloseIfExpired(ctx context.Context, measureID uuid.UUID) (bool, error) {
	measure, err := s.repo.GetByID(ctx, measureID)
	if err != nil {
		return false, err
	}
	return s.closeExpired(ctx, measure, s.clock.Now())
}

// closeExpired reports true only when this call performed the transition.
func (s *sessionService) closeExpired(ctx context.Context, measure *domain.Measure, now time.Time) (bool, error) {
	if !measure.ExpiredAt(now) {
		return false, nil
	}

	_, err := s.repo.CompareAndSetState(ctx, measure.ID, domain.MeasureOpen, domain.MeasureClosed, nil, now)
	if errors.Is(err, domain.ErrStateConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	s.logger.Info("voting session closed", "measure_id", measure.ID, "reason", "expired", "closes_at", measure.ClosesAt)
	return true, nil
}

func (s *sessionService) CloseExpired(ctx context.Context) ([]uuid.UUID, error) {
	now := s.clock.Now()
	measures, err := s.repo.FindOpenExpiredBefore(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expired sessions: %w", err)
	}
	if len(measures) == 0 {
		return nil, nil
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		closed []uuid.UUID
	)
	errChan := make(chan error, len(measures))

	for _, measure := range measures {
		wg.Add(1)
		go func(m *domain.Measure) {
			defer wg.Done()
			ok, err := s.closeExpired(ctx, m, now)
			if err != nil {
				errChan <- fmt.Errorf("failed to close measure %s: %w", m.ID, err)
				return
			}
			if ok {
				mu.Lock()
				closed = append(closed, m.ID)
				mu.Unlock()
			}
		}(measure)
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}

	return closed, errors.Join(errs...)
}
