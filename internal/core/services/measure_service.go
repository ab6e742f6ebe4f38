package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

const (
	measuresPageSize = 10
	maxMeasuresPage  = math.MaxInt/measuresPageSize + 1
)

type measureService struct {
	repo  ports.MeasureRepository
	clock ports.Clock
}

func NewMeasureService(repo ports.MeasureRepository, clock ports.Clock) ports.MeasureService {
	return &measureService{
		repo:  repo,
		clock: resolveClock(clock),
	}
}

func (s *measureService) Create(ctx context.Context, input ports.CreateMeasureInput) (*domain.Measure, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidMeasure)
	}

	measure := &domain.Measure{
		ID:          uuid.New(),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		State:       domain.MeasureCreated,
		CreatedAt:   s.clock.Now(),
	}

	if err := s.repo.Create(ctx, measure); err != nil {
		return nil, err
	}
	return measure, nil
}

func (s *measureService) GetMeasure(ctx context.Context, id uuid.UUID) (*domain.Measure, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *measureService) ListMeasures(ctx context.Context, input ports.ListMeasuresInput) ([]*domain.Measure, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	if page > maxMeasuresPage {
		return nil, fmt.Errorf("%w: page must be at most %d", domain.ErrInvalidPage, maxMeasuresPage)
	}
	return s.repo.List(ctx, measuresPageSize, (page-1)*measuresPageSize)
}
