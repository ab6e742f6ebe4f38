package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
)

// MeasureRepository is the session state store. CompareAndSetState is the
// only way a measure changes state: it must apply next (and window, when
// non-nil) only if the stored state still equals expected, in a single
// atomic step, and fail with domain.ErrStateConflict otherwise. Pairs that
// are not an edge of the state machine fail with domain.ErrInvalidTransition.
type MeasureRepository interface {
	Create(ctx context.Context, measure *domain.Measure) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Measure, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Measure, error)
	CompareAndSetState(ctx context.Context, id uuid.UUID, expected, next domain.MeasureState, window *domain.Window, at time.Time) (*domain.Measure, error)
	FindOpenExpiredBefore(ctx context.Context, now time.Time) ([]*domain.Measure, error)
}

type CreateMeasureInput struct {
	Title       string
	Description string
}

type ListMeasuresInput struct {
	Page int
}

type MeasureService interface {
	Create(ctx context.Context, input CreateMeasureInput) (*domain.Measure, error)
	GetMeasure(ctx context.Context, id uuid.UUID) (*domain.Measure, error)
	ListMeasures(ctx context.Context, input ListMeasuresInput) ([]*domain.Measure, error)
}

type SessionService interface {
	Open(ctx context.Context, measureID uuid.UUID, duration time.Duration) (*domain.Measure, error)
	IsWindowOpen(ctx context.Context, measureID uuid.UUID) (bool, error)
	Close(ctx context.Context, measureID uuid.UUID) (*domain.Measure, error)
	CloseIfExpired(ctx context.Context, measureID uuid.UUID) (bool, error)
	CloseExpired(ctx context.Context) ([]uuid.UUID, error)
}
