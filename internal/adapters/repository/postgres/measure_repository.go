package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

const measureColumns = `id, title, description, state, created_at, opens_at, closes_at, closed_at`

type measureRepository struct {
	db *sql.DB
}

func NewMeasureRepository(db *sql.DB) ports.MeasureRepository {
	return &measureRepository{
		db: db,
	}
}

func (r *measureRepository) Create(ctx context.Context, measure *domain.Measure) error {
	query := `
		INSERT INTO measures (id, title, description, state, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, measure.ID, measure.Title, measure.Description, string(measure.State), measure.CreatedAt)
	if err != nil {
		return storeError("insert measure", err)
	}
	return nil
}

func (r *measureRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Measure, error) {
	query := `SELECT ` + measureColumns + ` FROM measures WHERE id = $1`

	measure, err := scanMeasure(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMeasureNotFound
		}
		return nil, storeError("get measure", err)
	}
	return measure, nil
}

func (r *measureRepository) List(ctx context.Context, limit, offset int) ([]*domain.Measure, error) {
	query := `
		SELECT ` + measureColumns + `
		FROM measures
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, storeError("list measures", err)
	}
	defer rows.Close()

	return scanMeasures(rows)
}

// CompareAndSetState relies on the WHERE state = $2 guard: of two concurrent
// updates with the same expected state, only the first to commit matches.
func (r *measureRepository) CompareAndSetState(ctx context.Context, id uuid.UUID, expected, next domain.MeasureState, window *domain.Window, at time.Time) (*domain.Measure, error) {
	if !domain.CanTransition(expected, next) {
		return nil, domain.ErrInvalidTransition
	}

	var opensAt, closesAt, closedAt *time.Time
	if window != nil {
		opensAt, closesAt = &window.OpensAt, &window.ClosesAt
	}
	if next == domain.MeasureClosed {
		closedAt = &at
	}

	query := `
		UPDATE measures
		SET state = $3,
		    opens_at = COALESCE($4, opens_at),
		    closes_at = COALESCE($5, closes_at),
		    closed_at = COALESCE($6, closed_at)
		WHERE id = $1 AND state = $2
		RETURNING ` + measureColumns

	measure, err := scanMeasure(r.db.QueryRowContext(ctx, query, id, string(expected), string(next), opensAt, closesAt, closedAt))
	if err == nil {
		return measure, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, storeError("transition measure", err)
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM measures WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, storeError("check measure", err)
	}
	if !exists {
		return nil, domain.ErrMeasureNotFound
	}
	return nil, domain.ErrStateConflict
}

func (r *measureRepository) FindOpenExpiredBefore(ctx context.Context, now time.Time) ([]*domain.Measure, error) {
	query := `
		SELECT ` + measureColumns + `
		FROM measures
		WHERE state = 'OPEN' AND closes_at <= $1
	`
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, storeError("find expired measures", err)
	}
	defer rows.Close()

	return scanMeasures(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeasure(row rowScanner) (*domain.Measure, error) {
	var m domain.Measure
	var state string
	err := row.Scan(&m.ID, &m.Title, &m.Description, &state, &m.CreatedAt, &m.OpensAt, &m.ClosesAt, &m.ClosedAt)
	if err != nil {
		return nil, err
	}
	m.State = domain.MeasureState(state)
	return &m, nil
}

func scanMeasures(rows *sql.Rows) ([]*domain.Measure, error) {
	measures := make([]*domain.Measure, 0)
	for rows.Next() {
		m, err := scanMeasure(rows)
		if err != nil {
			return nil, storeError("scan measure", err)
		}
		measures = append(measures, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate measures", err)
	}
	return measures, nil
}
