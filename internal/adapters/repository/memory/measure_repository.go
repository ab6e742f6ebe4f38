package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

type measureRepository struct {
	mu       sync.RWMutex
	measures map[uuid.UUID]domain.Measure
}

func NewMeasureRepository() ports.MeasureRepository {
	return &measureRepository{
		measures: make(map[uuid.UUID]domain.Measure),
	}
}

func (r *measureRepository) Create(_ context.Context, measure *domain.Measure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.measures[measure.ID] = cloneMeasure(*measure)
	return nil
}

func (r *measureRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Measure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.measures[id]
	if !ok {
		return nil, domain.ErrMeasureNotFound
	}
	out := cloneMeasure(m)
	return &out, nil
}

func (r *measureRepository) List(_ context.Context, limit, offset int) ([]*domain.Measure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*domain.Measure, 0, len(r.measures))
	for _, m := range r.measures {
		out := cloneMeasure(m)
		items = append(items, &out)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if offset < 0 || offset >= len(items) {
		return []*domain.Measure{}, nil
	}
	end := offset + limit
	if limit <= 0 || end < offset || end > len(items) {
		end = len(items)
	}
	return items[offset:end], nil
}

func (r *measureRepository) CompareAndSetState(_ context.Context, id uuid.UUID, expected, next domain.MeasureState, window *domain.Window, at time.Time) (*domain.Measure, error) {
	if !domain.CanTransition(expected, next) {
		return nil, domain.ErrInvalidTransition
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.measures[id]
	if !ok {
		return nil, domain.ErrMeasureNotFound
	}
	if m.State != expected {
		return nil, domain.ErrStateConflict
	}

	m.State = next
	if window != nil {
		opens, closes := window.OpensAt, window.ClosesAt
		m.OpensAt, m.ClosesAt = &opens, &closes
	}
	if next == domain.MeasureClosed {
		m.ClosedAt = &at
	}
	r.measures[id] = m

	out := cloneMeasure(m)
	return &out, nil
}

func (r *measureRepository) FindOpenExpiredBefore(_ context.Context, now time.Time) ([]*domain.Measure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var items []*domain.Measure
	for _, m := range r.measures {
		if m.ExpiredAt(now) {
			out := cloneMeasure(m)
			items = append(items, &out)
		}
	}
	return items, nil
}

func cloneMeasure(m domain.Measure) domain.Measure {
	m.OpensAt = cloneTime(m.OpensAt)
	m.ClosesAt = cloneTime(m.ClosesAt)
	m.ClosedAt = cloneTime(m.ClosedAt)
	return m
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
