package sqlite

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

func NewBallotRepository(store *Store) ports.BallotRepository {
	return &ballotRepository{db: store.db}
}

func (r *ballotRepository) InsertIfAbsent(ctx context.Context, ballot *domain.Ballot) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO ballots (id, measure_id, voter_id, choice, cast_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (measure_id, voter_id) DO NOTHING`,
		ballot.ID.String(), ballot.MeasureID.String(), ballot.VoterID.String(), string(ballot.Choice), toUnix(ballot.CastAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrMeasureNotFound
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicateVote
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
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ballots WHERE measure_id = ? AND choice = ?`,
		measureID.String(), string(choice),
	).Scan(&n)
	if err != nil {
		return 0, storeError("count ballots", err)
	}
	return n, nil
}

func (r *ballotRepository) ListByMeasure(ctx context.Context, measureID uuid.UUID) ([]*domain.Ballot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, measure_id, voter_id, choice, cast_at FROM ballots WHERE measure_id = ? ORDER BY cast_at ASC`,
		measureID.String(),
	)
	if err != nil {
		return nil, storeError("list ballots", err)
	}
	defer rows.Close()

	ballots := make([]*domain.Ballot, 0)
	for rows.Next() {
		var (
			b                    domain.Ballot
			id, mID, vID, choice string
			castAt               int64
		)
		if err := rows.Scan(&id, &mID, &vID, &choice, &castAt); err != nil {
			return nil, storeError("scan ballot", err)
		}
		if b.ID, err = uuid.Parse(id); err != nil {
			return nil, storeError("scan ballot", err)
		}
		if b.MeasureID, err = uuid.Parse(mID); err != nil {
			return nil, storeError("scan ballot", err)
		}
		if b.VoterID, err = uuid.Parse(vID); err != nil {
			return nil, storeError("scan ballot", err)
		}
		b.Choice = domain.Choice(choice)
		b.CastAt = fromUnix(castAt)
		ballots = append(ballots, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate ballots", err)
	}
	return ballots, nil
}
