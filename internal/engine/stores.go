package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
)

// QuestionFilter selects questions by exam kind and, for quizzes, chapter.
type QuestionFilter struct {
	ChapterID *uuid.UUID
	ExamType  model.ExamKind
}

// TraineeStore looks up trainee records. FindByCallsign returns (nil, nil)
// when no trainee with that callsign exists.
type TraineeStore interface {
	FindByCallsign(ctx context.Context, callsign string) (*model.Trainee, error)
}

// QuestionSource provides read access to the question bank. List must return
// questions in a stable order; the engine relies on that for quiz sampling.
type QuestionSource interface {
	List(ctx context.Context, filter QuestionFilter) ([]model.Question, error)
}

// ResultStore is the append-only store of graded attempts. Insert must be
// idempotent on candidate ID: re-inserting an already-stored attempt returns
// the stored row. LastPassed returns (nil, nil) when no passed attempt exists;
// chapterID is nil for final-exam lookups.
type ResultStore interface {
	Insert(ctx context.Context, cand model.ResultCandidate) (*model.Result, error)
	LastPassed(ctx context.Context, callsign string, kind model.ExamKind, chapterID *uuid.UUID) (*model.Result, error)
}
