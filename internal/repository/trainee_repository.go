package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
)

// TraineeRepository handles trainee data access.
type TraineeRepository struct {
	pool *pgxpool.Pool
}

// NewTraineeRepository creates a new TraineeRepository.
func NewTraineeRepository(pool *pgxpool.Pool) *TraineeRepository {
	return &TraineeRepository{pool: pool}
}

// FindByCallsign looks up a trainee by canonical callsign. Returns (nil, nil)
// when no such trainee exists.
func (r *TraineeRepository) FindByCallsign(ctx context.Context, callsign string) (*model.Trainee, error) {
	t := &model.Trainee{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, callsign, name, created_at
		 FROM trainees WHERE callsign = $1`, model.CanonicalCallsign(callsign),
	).Scan(&t.ID, &t.Callsign, &t.Name, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}
