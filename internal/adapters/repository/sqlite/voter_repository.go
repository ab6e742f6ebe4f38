package sqlite

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

func NewVoterRepository(store *Store) ports.VoterRepository {
	return &voterRepository{db: store.db}
}

func (r *voterRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Voter, error) {
	return r.get(ctx, `SELECT id, national_id, active, created_at FROM voters WHERE id = ?`, id.String())
}

func (r *voterRepository) GetByNationalID(ctx context.Context, nationalID string) (*domain.Voter, error) {
	return r.get(ctx, `SELECT id, national_id, active, created_at FROM voters WHERE national_id = ?`, nationalID)
}

func (r *voterRepository) get(ctx context.Context, query string, arg any) (*domain.Voter, error) {
	voter, err := scanVoter(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVoterNotFound
		}
		return nil, storeError("get voter", err)
	}
	return voter, nil
}

func (r *voterRepository) Create(ctx context.Context, voter *domain.Voter) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO voters (id, national_id, active, created_at) VALUES (?, ?, ?, ?)`,
		voter.ID.String(), voter.NationalID, voter.Active, toUnix(voter.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrNationalIDTaken
		}
		return storeError("create voter", err)
	}
	return nil
}

func (r *voterRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Voter, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE voters SET active = ? WHERE id = ? RETURNING id, national_id, active, created_at`,
		active, id.String(),
	)
	voter, err := scanVoter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVoterNotFound
		}
		return nil, storeError("update voter status", err)
	}
	return voter, nil
}

func scanVoter(row rowScanner) (*domain.Voter, error) {
	var (
		v         domain.Voter
		id        string
		createdAt int64
	)
	if err := row.Scan(&id, &v.NationalID, &v.Active, &createdAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	v.ID = parsed
	v.CreatedAt = fromUnix(createdAt)
	return &v, nil
}
