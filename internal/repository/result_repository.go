package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
)

// ResultRepository is the append-only store of graded attempts. It implements
// engine.ResultStore. There is deliberately no update or delete path.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

const resultColumns = `id, callsign, exam_type, chapter_id, score, passed, detailed_answers, created_at`

// Insert persists a graded attempt. The candidate ID is the session ID, so a
// retried insert of the same attempt hits the conflict branch and returns the
// already-stored row instead of duplicating it.
func (r *ResultRepository) Insert(ctx context.Context, cand model.ResultCandidate) (*model.Result, error) {
	answers, err := json.Marshal(cand.DetailedAnswers)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}

	res := &model.Result{
		ID:              cand.ID,
		Callsign:        cand.Callsign,
		ExamType:        cand.ExamType,
		ChapterID:       cand.ChapterID,
		Score:           cand.Score,
		Passed:          cand.Passed,
		DetailedAnswers: cand.DetailedAnswers,
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO results (id, callsign, exam_type, chapter_id, score, passed, detailed_answers)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING
		 RETURNING created_at`,
		cand.ID, cand.Callsign, cand.ExamType, cand.ChapterID, cand.Score, cand.Passed, answers,
	).Scan(&res.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Already persisted by an earlier attempt; return the stored row.
		return r.getByID(ctx, cand.ID)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// LastPassed returns the most recent passed attempt for the trainee and exam
// kind, chapter-scoped when chapterID is set. Returns (nil, nil) when no
// passed attempt exists.
func (r *ResultRepository) LastPassed(ctx context.Context, callsign string, kind model.ExamKind, chapterID *uuid.UUID) (*model.Result, error) {
	var row pgx.Row
	if chapterID != nil {
		row = r.pool.QueryRow(ctx,
			`SELECT `+resultColumns+`
			 FROM results
			 WHERE callsign = $1 AND exam_type = $2 AND passed AND chapter_id = $3
			 ORDER BY created_at DESC
			 LIMIT 1`, callsign, kind, *chapterID)
	} else {
		row = r.pool.QueryRow(ctx,
			`SELECT `+resultColumns+`
			 FROM results
			 WHERE callsign = $1 AND exam_type = $2 AND passed
			 ORDER BY created_at DESC
			 LIMIT 1`, callsign, kind)
	}

	res, err := scanResult(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListByCallsign retrieves all attempts for a trainee, newest first, with
// chapter names joined in for display.
func (r *ResultRepository) ListByCallsign(ctx context.Context, callsign string) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.callsign, r.exam_type, r.chapter_id, c.chapter_name,
		        r.score, r.passed, r.detailed_answers, r.created_at
		 FROM results r
		 LEFT JOIN chapters c ON r.chapter_id = c.id
		 WHERE r.callsign = $1
		 ORDER BY r.created_at DESC`, callsign)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		var res model.Result
		var answers []byte
		if err := rows.Scan(
			&res.ID, &res.Callsign, &res.ExamType, &res.ChapterID, &res.ChapterName,
			&res.Score, &res.Passed, &answers, &res.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(answers, &res.DetailedAnswers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// GetOwned retrieves one attempt, enforcing that it belongs to the callsign.
// Returns (nil, nil) when not found.
func (r *ResultRepository) GetOwned(ctx context.Context, id uuid.UUID, callsign string) (*model.Result, error) {
	res, err := scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+`
		 FROM results
		 WHERE id = $1 AND callsign = $2`, id, callsign))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *ResultRepository) getByID(ctx context.Context, id uuid.UUID) (*model.Result, error) {
	return scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM results WHERE id = $1`, id))
}

func scanResult(row pgx.Row) (*model.Result, error) {
	res := &model.Result{}
	var answers []byte
	if err := row.Scan(
		&res.ID, &res.Callsign, &res.ExamType, &res.ChapterID,
		&res.Score, &res.Passed, &answers, &res.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &res.DetailedAnswers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	return res, nil
}
