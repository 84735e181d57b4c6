package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
)

type fakeTraineeStore struct {
	trainees map[string]*model.Trainee
}

func newFakeTraineeStore(callsigns ...string) *fakeTraineeStore {
	f := &fakeTraineeStore{trainees: make(map[string]*model.Trainee)}
	for _, cs := range callsigns {
		f.trainees[cs] = &model.Trainee{ID: uuid.New(), Callsign: cs}
	}
	return f
}

func (f *fakeTraineeStore) FindByCallsign(_ context.Context, callsign string) (*model.Trainee, error) {
	return f.trainees[callsign], nil
}

type fakeQuestionSource struct {
	questions []model.Question
	listErr   error
}

func (f *fakeQuestionSource) List(_ context.Context, filter QuestionFilter) ([]model.Question, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Question
	for _, q := range f.questions {
		if q.ExamType != filter.ExamType {
			continue
		}
		if filter.ChapterID != nil {
			if q.ChapterID == nil || *q.ChapterID != *filter.ChapterID {
				continue
			}
		}
		out = append(out, q)
	}
	return out, nil
}

type fakeResultStore struct {
	mu       sync.Mutex
	rows     []model.Result
	inserts  int
	failures int
}

var errStoreOffline = errors.New("result store offline")

func (f *fakeResultStore) Insert(_ context.Context, cand model.ResultCandidate) (*model.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inserts++
	if f.failures > 0 {
		f.failures--
		return nil, errStoreOffline
	}

	// Idempotent on candidate ID, matching the real store's ON CONFLICT.
	for i := range f.rows {
		if f.rows[i].ID == cand.ID {
			row := f.rows[i]
			return &row, nil
		}
	}

	row := model.Result{
		ID:              cand.ID,
		Callsign:        cand.Callsign,
		ExamType:        cand.ExamType,
		ChapterID:       cand.ChapterID,
		Score:           cand.Score,
		Passed:          cand.Passed,
		DetailedAnswers: cand.DetailedAnswers,
		CreatedAt:       time.Now(),
	}
	f.rows = append(f.rows, row)
	return &row, nil
}

func (f *fakeResultStore) LastPassed(_ context.Context, callsign string, kind model.ExamKind, chapterID *uuid.UUID) (*model.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.rows) - 1; i >= 0; i-- {
		r := f.rows[i]
		if r.Callsign != callsign || r.ExamType != kind || !r.Passed {
			continue
		}
		if chapterID != nil {
			if r.ChapterID == nil || *r.ChapterID != *chapterID {
				continue
			}
		}
		row := r
		return &row, nil
	}
	return nil, nil
}

func (f *fakeResultStore) rowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *fakeResultStore) insertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inserts
}

func strPtr(s string) *string { return &s }

// makeQuestions builds n questions with options a-d and correct answer "b".
func makeQuestions(n int, kind model.ExamKind, chapterID *uuid.UUID) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:            uuid.New(),
			ChapterID:     chapterID,
			ExamType:      kind,
			QuestionText:  fmt.Sprintf("question %d", i+1),
			OptionA:       "alpha",
			OptionB:       "bravo",
			OptionC:       strPtr("charlie"),
			OptionD:       strPtr("delta"),
			CorrectAnswer: "b",
		}
	}
	return qs
}

func answerAll(qs []model.Question, label string) map[string]string {
	answers := make(map[string]string, len(qs))
	for _, q := range qs {
		answers[q.ID.String()] = label
	}
	return answers
}
