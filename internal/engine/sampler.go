package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
)

const (
	// QuizQuestionCount is the maximum quiz size. A chapter with fewer
	// questions yields a short quiz; only an empty chapter is an error.
	QuizQuestionCount = 10
	// FinalQuestionCount is the exact size of a final exam draw.
	FinalQuestionCount = 20
)

// Sampler selects the question set for a session. The sampled set is frozen
// into the session at creation; later bank edits never perturb a running
// attempt.
type Sampler struct {
	questions QuestionSource
	intn      func(n int) int
}

// NewSampler creates a sampler over the given question source.
func NewSampler(questions QuestionSource) *Sampler {
	return &Sampler{questions: questions, intn: rand.IntN}
}

// SampleQuiz fetches up to QuizQuestionCount questions for a chapter in the
// source's stable retrieval order. Ordering is not a scored property, so no
// shuffle is applied.
func (s *Sampler) SampleQuiz(ctx context.Context, chapterID uuid.UUID) ([]model.Question, error) {
	qs, err := s.questions.List(ctx, QuestionFilter{ChapterID: &chapterID, ExamType: model.ExamKindQuiz})
	if err != nil {
		return nil, fmt.Errorf("list quiz questions: %w", err)
	}
	if len(qs) == 0 {
		return nil, ErrEmptyBank
	}
	if len(qs) > QuizQuestionCount {
		qs = qs[:QuizQuestionCount]
	}
	return qs, nil
}

// SampleFinal draws exactly FinalQuestionCount questions uniformly without
// replacement from the whole final bank. Each session draws independently, so
// consecutive attempts see different papers.
func (s *Sampler) SampleFinal(ctx context.Context) ([]model.Question, error) {
	qs, err := s.questions.List(ctx, QuestionFilter{ExamType: model.ExamKindFinal})
	if err != nil {
		return nil, fmt.Errorf("list final questions: %w", err)
	}
	if len(qs) < FinalQuestionCount {
		return nil, ErrInsufficientBank
	}

	// Partial Fisher-Yates: after k swaps the first k elements are a uniform
	// k-sample without replacement.
	pool := slices.Clone(qs)
	for i := 0; i < FinalQuestionCount; i++ {
		j := i + s.intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:FinalQuestionCount:FinalQuestionCount], nil
}
