package sqlite

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

func NewMeasureRepository(store *Store) ports.MeasureRepository {
	return &measureRepository{db: store.db}
}

func (r *measureRepository) Create(ctx context.Context, measure *domain.Measure) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO measures (id, title, description, state, created_at) VALUES (?, ?, ?, ?, ?)`,
		measure.ID.String(), measure.Title, measure.Description, string(measure.State), toUnix(measure.CreatedAt),
	)
	if err != nil {
		return storeError("insert measure", err)
	}
	return nil
}

func (r *measureRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Measure, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+measureColumns+` FROM measures WHERE id = ?`, id.String())
	measure, err := scanMeasure(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMeasureNotFound
		}
		return nil, storeError("get measure", err)
	}
	return measure, nil
}

func (r *measureRepository) List(ctx context.Context, limit, offset int) ([]*domain.Measure, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+measureColumns+` FROM measures ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, storeError("list measures", err)
	}
	defer rows.Close()
	return scanMeasures(rows)
}

func (r *measureRepository) CompareAndSetState(ctx context.Context, id uuid.UUID, expected, next domain.MeasureState, window *domain.Window, at time.Time) (*domain.Measure, error) {
	if !domain.CanTransition(expected, next) {
		return nil, domain.ErrInvalidTransition
	}

	var opensAt, closesAt, closedAt sql.NullInt64
	if window != nil {
		opensAt = toNullUnix(&window.OpensAt)
		closesAt = toNullUnix(&window.ClosesAt)
	}
	if next == domain.MeasureClosed {
		closedAt = toNullUnix(&at)
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE measures
		SET state = ?,
		    opens_at = COALESCE(?, opens_at),
		    closes_at = COALESCE(?, closes_at),
		    closed_at = COALESCE(?, closed_at)
		WHERE id = ? AND state = ?
		RETURNING `+measureColumns,
		string(next), opensAt, closesAt, closedAt, id.String(), string(expected),
	)
	measure, err := scanMeasure(row)
	if err == nil {
		return measure, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, storeError("transition measure", err)
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM measures WHERE id = ?)`, id.String()).Scan(&exists); err != nil {
		return nil, storeError("check measure", err)
	}
	if !exists {
		return nil, domain.ErrMeasureNotFound
	}
	return nil, domain.ErrStateConflict
}

func (r *measureRepository) FindOpenExpiredBefore(ctx context.Context, now time.Time) ([]*domain.Measure, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+measureColumns+` FROM measures WHERE state = 'OPEN' AND closes_at <= ?`,
		toUnix(now),
	)
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
	var (
		m                           domain.Measure
		id, state                   string
		createdAt                   int64
		opensAt, closesAt, closedAt sql.NullInt64
	)
	if err := row.Scan(&id, &m.Title, &m.Description, &state, &createdAt, &opensAt, &closesAt, &closedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	m.ID = parsed
	m.State = domain.MeasureState(state)
	m.CreatedAt = fromUnix(createdAt)
	m.OpensAt = fromNullUnix(opensAt)
	m.ClosesAt = fromNullUnix(closesAt)
	m.ClosedAt = fromNullUnix(closedAt)
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
