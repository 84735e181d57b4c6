package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCallsign = "SJX123"

func seedResult(store *fakeResultStore, callsign string, kind model.ExamKind, chapterID *uuid.UUID, passed bool, createdAt time.Time) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.rows = append(store.rows, model.Result{
		ID:        uuid.New(),
		Callsign:  callsign,
		ExamType:  kind,
		ChapterID: chapterID,
		Passed:    passed,
		CreatedAt: createdAt,
	})
}

func TestGateUnknownTrainee(t *testing.T) {
	gate := NewGate(newFakeTraineeStore(), &fakeResultStore{})

	err := gate.Check(context.Background(), "GHOST", model.ExamKindQuiz, nil)
	assert.ErrorIs(t, err, ErrUnknownTrainee)
}

func TestGateFinalPassOnce(t *testing.T) {
	store := &fakeResultStore{}
	gate := NewGate(newFakeTraineeStore(testCallsign), store)

	// A failed final never blocks a retake.
	seedResult(store, testCallsign, model.ExamKindFinal, nil, false, time.Now().Add(-time.Minute))
	require.NoError(t, gate.Check(context.Background(), testCallsign, model.ExamKindFinal, nil))

	// A passed final blocks forever, no matter how old.
	seedResult(store, testCallsign, model.ExamKindFinal, nil, true, time.Now().Add(-365*24*time.Hour))
	err := gate.Check(context.Background(), testCallsign, model.ExamKindFinal, nil)
	assert.ErrorIs(t, err, ErrAlreadyCertified)
}

func TestGateQuizCooldownBoundary(t *testing.T) {
	chapterID := uuid.New()
	store := &fakeResultStore{}
	gate := NewGate(newFakeTraineeStore(testCallsign), store)

	passedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	seedResult(store, testCallsign, model.ExamKindQuiz, &chapterID, true, passedAt)

	// 7h59m after the pass: denied with the exact remainder.
	gate.now = func() time.Time { return passedAt.Add(7*time.Hour + 59*time.Minute) }
	err := gate.Check(context.Background(), testCallsign, model.ExamKindQuiz, &chapterID)
	var cooldown *CooldownError
	require.ErrorAs(t, err, &cooldown)
	assert.Equal(t, time.Minute, cooldown.Remaining)

	// Exactly 8h after the pass: allowed.
	gate.now = func() time.Time { return passedAt.Add(QuizRetakeCooldown) }
	assert.NoError(t, gate.Check(context.Background(), testCallsign, model.ExamKindQuiz, &chapterID))
}

func TestGateQuizFailedAttemptAllowsImmediateRetake(t *testing.T) {
	chapterID := uuid.New()
	store := &fakeResultStore{}
	gate := NewGate(newFakeTraineeStore(testCallsign), store)

	seedResult(store, testCallsign, model.ExamKindQuiz, &chapterID, false, time.Now())
	assert.NoError(t, gate.Check(context.Background(), testCallsign, model.ExamKindQuiz, &chapterID))
}

func TestGateQuizCooldownIsChapterScoped(t *testing.T) {
	passedChapter := uuid.New()
	otherChapter := uuid.New()
	store := &fakeResultStore{}
	gate := NewGate(newFakeTraineeStore(testCallsign), store)

	seedResult(store, testCallsign, model.ExamKindQuiz, &passedChapter, true, time.Now())

	var cooldown *CooldownError
	assert.ErrorAs(t, gate.Check(context.Background(), testCallsign, model.ExamKindQuiz, &passedChapter), &cooldown)
	assert.NoError(t, gate.Check(context.Background(), testCallsign, model.ExamKindQuiz, &otherChapter))
}

func TestGateNotCachedAcrossChecks(t *testing.T) {
	chapterID := uuid.New()
	store := &fakeResultStore{}
	gate := NewGate(newFakeTraineeStore(testCallsign), store)

	passedAt := time.Now()
	seedResult(store, testCallsign, model.ExamKindQuiz, &chapterID, true, passedAt)

	gate.now = func() time.Time { return passedAt.Add(time.Hour) }
	require.Error(t, gate.Check(context.Background(), testCallsign, model.ExamKindQuiz, &chapterID))

	// Time advanced between attempts; the gate must re-read, not cache.
	gate.now = func() time.Time { return passedAt.Add(9 * time.Hour) }
	assert.NoError(t, gate.Check(context.Background(), testCallsign, model.ExamKindQuiz, &chapterID))
}

func TestGatePropagatesStoreErrors(t *testing.T) {
	gate := NewGate(newFakeTraineeStore(testCallsign), &fakeResultStore{})
	gate.trainees = failingTraineeStore{}

	err := gate.Check(context.Background(), testCallsign, model.ExamKindQuiz, nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownTrainee)
}

type failingTraineeStore struct{}

func (failingTraineeStore) FindByCallsign(context.Context, string) (*model.Trainee, error) {
	return nil, errors.New("trainee store unavailable")
}
