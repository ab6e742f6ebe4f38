package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

type voterRepository struct {
	db *sql.DB
}

func NewVoterRepository(db *sql.DB) ports.VoterRepository {
	return &voterRepository{db: db}
}

func (r *voterRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Voter, error) {
	query := `SELECT id, national_id, active, created_at FROM voters WHERE id = $1`
	return r.get(ctx, query, id)
}

func (r *voterRepository) GetByNationalID(ctx context.Context, nationalID string) (*domain.Voter, error) {
	query := `SELECT id, national_id, active, created_at FROM voters WHERE national_id = $1`
	return r.get(ctx, query, nationalID)
}

func (r *voterRepository) get(ctx context.Context, query string, arg any) (*domain.Voter, error) {
	voter := &domain.Voter{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&voter.ID, &voter.NationalID, &voter.Active, &voter.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVoterNotFound
		}
		return nil, storeError("get voter", err)
	}
	return voter, nil
}

func (r *voterRepository) Create(ctx context.Context, voter *domain.Voter) error {
	query := `INSERT INTO voters (id, national_id, active, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, voter.ID, voter.NationalID, voter.Active, voter.CreatedAt)
	if err != nil {
		if hasCode(err, uniqueViolation) {
			return domain.ErrNationalIDTaken
		}
		return storeError("create voter", err)
	}
	return nil
}

func (r *voterRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Voter, error) {
	query := `
		UPDATE voters SET active = $2 WHERE id = $1
		RETURNING id, national_id, active, created_at
	`
	voter := &domain.Voter{}
	err := r.db.QueryRowContext(ctx, query, id, active).Scan(&voter.ID, &voter.NationalID, &voter.Active, &voter.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVoterNotFound
		}
		return nil, storeError("update voter status", err)
	}
	return voter, nil
}
