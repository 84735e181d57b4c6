package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
)

// QuizRetakeCooldown is the minimum interval after a passed quiz attempt
// before the same chapter may be retaken. The cooldown applies only after a
// pass; a failed attempt may be retried immediately.
const QuizRetakeCooldown = 8 * time.Hour

// Gate decides whether a trainee may start a given assessment now. It is a
// pure read-decision over the trainee and result stores and must be
// re-evaluated at every session start, never cached.
type Gate struct {
	trainees TraineeStore
	results  ResultStore
	now      func() time.Time
}

// NewGate creates an eligibility gate.
func NewGate(trainees TraineeStore, results ResultStore) *Gate {
	return &Gate{trainees: trainees, results: results, now: time.Now}
}

// Check authorizes a session start. chapterID is required for quiz kinds and
// ignored for the final exam.
func (g *Gate) Check(ctx context.Context, callsign string, kind model.ExamKind, chapterID *uuid.UUID) error {
	trainee, err := g.trainees.FindByCallsign(ctx, callsign)
	if err != nil {
		return fmt.Errorf("find trainee: %w", err)
	}
	if trainee == nil {
		return ErrUnknownTrainee
	}

	switch kind {
	case model.ExamKindFinal:
		// Pass-once: any prior passed final bars another attempt. There is no
		// cooldown on failed finals.
		last, err := g.results.LastPassed(ctx, callsign, model.ExamKindFinal, nil)
		if err != nil {
			return fmt.Errorf("check final pass: %w", err)
		}
		if last != nil {
			return ErrAlreadyCertified
		}
	case model.ExamKindQuiz:
		last, err := g.results.LastPassed(ctx, callsign, model.ExamKindQuiz, chapterID)
		if err != nil {
			return fmt.Errorf("check last passed quiz: %w", err)
		}
		if last != nil {
			age := g.now().Sub(last.CreatedAt)
			if age < QuizRetakeCooldown {
				return &CooldownError{Remaining: QuizRetakeCooldown - age}
			}
		}
	}

	return nil
}
