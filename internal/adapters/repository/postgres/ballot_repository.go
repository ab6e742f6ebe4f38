package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
	"github.com/vncsmyrnk/assembly/internal/core/ports"
)

type ballotRepository struct {
	db *sql.DB
}

func NewBallotRepository(db *sql.DB) ports.BallotRepository {
	return &ballotRepository{
		db: db,
	}
}

// InsertIfAbsent leans on the ballots_measure_voter_key constraint; there is
// no separate existence check.
func (r *ballotRepository) InsertIfAbsent(ctx context.Context, ballot *domain.Ballot) error {
	query := `
		INSERT INTO ballots (id, measure_id, voter_id, choice, cast_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (measure_id, voter_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, ballot.ID, ballot.MeasureID, ballot.VoterID, string(ballot.Choice), ballot.CastAt)
	if err != nil {
		if hasCode(err, foreignKeyViolation) {
			return domain.ErrMeasureNotFound
		}
		return storeError("save ballot", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return storeError("save ballot", err)
	}
	if n == 0 {
		return domain.ErrDuplicateVote
	}
	return nil
}

func (r *ballotRepository) CountByMeasureAndChoice(ctx context.Context, measureID uuid.UUID, choice domain.Choice) (int64, error) {
	query := `SELECT COUNT(*) FROM ballots WHERE measure_id = $1 AND choice = $2`
	var n int64
	if err := r.db.QueryRowContext(ctx, query, measureID, string(choice)).Scan(&n); err != nil {
		return 0, storeError("count ballots", err)
	}
	return n, nil
}

func (r *ballotRepository) ListByMeasure(ctx context.Context, measureID uuid.UUID) ([]*domain.Ballot, error) {
	query := `
		SELECT id, measure_id, voter_id, choice, cast_at
		FROM ballots
		WHERE measure_id = $1
		ORDER BY cast_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, measureID)
	if err != nil {
		return nil, storeError("list ballots", err)
	}
	defer rows.Close()

	ballots := make([]*domain.Ballot, 0)
	for rows.Next() {
		var b domain.Ballot
		var choice string
		if err := rows.Scan(&b.ID, &b.MeasureID, &b.VoterID, &choice, &b.CastAt); err != nil {
			return nil, storeError("scan ballot", err)
		}
		b.Choice = domain.Choice(choice)
		ballots = append(ballots, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate ballots", err)
	}
	return ballots, nil
}
