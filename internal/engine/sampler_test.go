package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleQuizEmptyBank(t *testing.T) {
	sampler := NewSampler(&fakeQuestionSource{})

	_, err := sampler.SampleQuiz(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrEmptyBank)
}

func TestSampleQuizShortChapter(t *testing.T) {
	chapterID := uuid.New()
	src := &fakeQuestionSource{questions: makeQuestions(4, "quiz", &chapterID)}
	sampler := NewSampler(src)

	qs, err := sampler.SampleQuiz(context.Background(), chapterID)
	require.NoError(t, err)
	assert.Len(t, qs, 4, "short chapters yield short quizzes")
}

func TestSampleQuizCapsAtTenInStableOrder(t *testing.T) {
	chapterID := uuid.New()
	src := &fakeQuestionSource{questions: makeQuestions(15, "quiz", &chapterID)}
	sampler := NewSampler(src)

	qs, err := sampler.SampleQuiz(context.Background(), chapterID)
	require.NoError(t, err)
	require.Len(t, qs, QuizQuestionCount)
	for i := range qs {
		assert.Equal(t, src.questions[i].ID, qs[i].ID, "retrieval order is preserved")
	}
}

func TestSampleQuizIgnoresOtherChapters(t *testing.T) {
	chapterID := uuid.New()
	other := uuid.New()
	src := &fakeQuestionSource{questions: append(
		makeQuestions(3, "quiz", &chapterID),
		makeQuestions(3, "quiz", &other)...,
	)}
	sampler := NewSampler(src)

	qs, err := sampler.SampleQuiz(context.Background(), chapterID)
	require.NoError(t, err)
	assert.Len(t, qs, 3)
	for _, q := range qs {
		assert.Equal(t, chapterID, *q.ChapterID)
	}
}

func TestSampleFinalInsufficientBank(t *testing.T) {
	src := &fakeQuestionSource{questions: makeQuestions(19, "final", nil)}
	sampler := NewSampler(src)

	_, err := sampler.SampleFinal(context.Background())
	assert.ErrorIs(t, err, ErrInsufficientBank)
}

func TestSampleFinalExactBank(t *testing.T) {
	src := &fakeQuestionSource{questions: makeQuestions(20, "final", nil)}
	sampler := NewSampler(src)

	qs, err := sampler.SampleFinal(context.Background())
	require.NoError(t, err)
	assert.Len(t, qs, FinalQuestionCount)
	assertDistinct(t, qs)
}

func TestSampleFinalDrawsTwentyDistinct(t *testing.T) {
	src := &fakeQuestionSource{questions: makeQuestions(50, "final", nil)}
	sampler := NewSampler(src)

	// Repeated draws must always be exactly 20 distinct questions.
	for i := 0; i < 25; i++ {
		qs, err := sampler.SampleFinal(context.Background())
		require.NoError(t, err)
		require.Len(t, qs, FinalQuestionCount)
		assertDistinct(t, qs)
	}
}

func TestSampleFinalLeavesSourceSliceIntact(t *testing.T) {
	src := &fakeQuestionSource{questions: makeQuestions(30, "final", nil)}
	before := make([]uuid.UUID, len(src.questions))
	for i, q := range src.questions {
		before[i] = q.ID
	}

	sampler := NewSampler(src)
	_, err := sampler.SampleFinal(context.Background())
	require.NoError(t, err)

	for i, q := range src.questions {
		assert.Equal(t, before[i], q.ID, "sampling must not reorder the bank")
	}
}

func assertDistinct(t *testing.T, qs []model.Question) {
	t.Helper()
	seen := make(map[uuid.UUID]bool, len(qs))
	for _, q := range qs {
		assert.False(t, seen[q.ID], "duplicate question %s in sample", q.ID)
		seen[q.ID] = true
	}
}
