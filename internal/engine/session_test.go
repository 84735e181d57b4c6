package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(src *fakeQuestionSource, store *fakeResultStore, trainees *fakeTraineeStore) *Manager {
	return NewManager(NewGate(trainees, store), NewSampler(src), store, zerolog.Nop())
}

func TestQuizLifecycle(t *testing.T) {
	chapterID := uuid.New()
	src := &fakeQuestionSource{questions: makeQuestions(10, "quiz", &chapterID)}
	store := &fakeResultStore{}
	mgr := newTestManager(src, store, newFakeTraineeStore(testCallsign))

	s, err := mgr.StartQuiz(context.Background(), testCallsign, chapterID)
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, s.State())
	require.Len(t, s.Questions(), 10)

	// Wrong answer first, then overwrite with the correct one.
	for _, q := range s.Questions() {
		require.NoError(t, s.RecordAnswer(q.ID, "a"))
		require.NoError(t, s.RecordAnswer(q.ID, "b"))
	}

	res, err := mgr.Submit(context.Background(), s.ID, testCallsign)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)
	assert.True(t, res.Passed)
	assert.Equal(t, model.ExamKindQuiz, res.ExamType)
	require.NotNil(t, res.ChapterID)
	assert.Equal(t, chapterID, *res.ChapterID)
	assert.Equal(t, StateCompleted, s.State())
	assert.Equal(t, 1, store.rowCount())
}

func TestStartQuizDeniedDuringCooldown(t *testing.T) {
	chapterID := uuid.New()
	src := &fakeQuestionSource{questions: makeQuestions(10, "quiz", &chapterID)}
	store := &fakeResultStore{}
	seedResult(store, testCallsign, model.ExamKindQuiz, &chapterID, true, time.Now().Add(-time.Hour))
	mgr := newTestManager(src, store, newFakeTraineeStore(testCallsign))

	_, err := mgr.StartQuiz(context.Background(), testCallsign, chapterID)
	var cooldown *CooldownError
	require.ErrorAs(t, err, &cooldown)
	assert.Greater(t, cooldown.Remaining, 6*time.Hour)
}

func TestStartQuizEmptyChapter(t *testing.T) {
	store := &fakeResultStore{}
	mgr := newTestManager(&fakeQuestionSource{}, store, newFakeTraineeStore(testCallsign))

	_, err := mgr.StartQuiz(context.Background(), testCallsign, uuid.New())
	assert.ErrorIs(t, err, ErrEmptyBank)
}

func TestRecordAnswerValidation(t *testing.T) {
	chapterID := uuid.New()
	questions := makeQuestions(10, "quiz", &chapterID)
	// First question has only options a and b.
	questions[0].OptionC = nil
	questions[0].OptionD = nil
	src := &fakeQuestionSource{questions: questions}
	store := &fakeResultStore{}
	mgr := newTestManager(src, store, newFakeTraineeStore(testCallsign))

	s, err := mgr.StartQuiz(context.Background(), testCallsign, chapterID)
	require.NoError(t, err)

	assert.ErrorIs(t, s.RecordAnswer(uuid.New(), "a"), ErrQuestionNotInSession)
	assert.ErrorIs(t, s.RecordAnswer(questions[0].ID, "d"), ErrInvalidOption)
	assert.NoError(t, s.RecordAnswer(questions[0].ID, " B "), "labels are normalized for validation")

	_, err = mgr.Submit(context.Background(), s.ID, testCallsign)
	require.NoError(t, err)
	assert.ErrorIs(t, s.RecordAnswer(questions[0].ID, "a"), ErrSessionNotInProgress)
}

func TestDuplicateSubmitRejected(t *testing.T) {
	chapterID := uuid.New()
	src := &fakeQuestionSource{questions: makeQuestions(10, "quiz", &chapterID)}
	store := &fakeResultStore{}
	mgr := newTestManager(src, store, newFakeTraineeStore(testCallsign))

	s, err := mgr.StartQuiz(context.Background(), testCallsign, chapterID)
	require.NoError(t, err)

	_, err = mgr.Submit(context.Background(), s.ID, testCallsign)
	require.NoError(t, err)

	_, err = mgr.Submit(context.Background(), s.ID, testCallsign)
	assert.ErrorIs(t, err, ErrDuplicateSubmission)
	assert.Equal(t, 1, store.rowCount())
	assert.Equal(t, 1, store.insertCount())
}

func TestConcurrentSubmitAndExpiryPersistExactlyOnce(t *testing.T) {
	for i := 0; i < 50; i++ {
		store := &fakeResultStore{}
		s := newSession(model.ExamKindFinal, testCallsign)
		require.True(t, s.beginFinal(makeQuestions(20, "final", nil)))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.Submit(context.Background(), store)
		}()
		go func() {
			defer wg.Done()
			s.expire(store)
		}()
		wg.Wait()

		assert.Equal(t, 1, store.rowCount(), "exactly one Result per session")
		assert.Equal(t, 1, store.insertCount(), "loser must not reach the store")
		assert.Equal(t, StateCompleted, s.State())
	}
}

func TestCountdownForcesSubmission(t *testing.T) {
	src := &fakeQuestionSource{questions: makeQuestions(20, "final", nil)}
	store := &fakeResultStore{}
	mgr := newTestManager(src, store, newFakeTraineeStore(testCallsign))
	mgr.tick = time.Millisecond

	s, err := mgr.StartFinal(context.Background(), testCallsign)
	require.NoError(t, err)

	// Shrink the clock so the test does not wait an hour.
	s.mu.Lock()
	s.remaining = 3
	s.mu.Unlock()

	require.Eventually(t, func() bool {
		return s.State() == StateCompleted
	}, 2*time.Second, 5*time.Millisecond, "timer must force submission at zero")

	assert.Equal(t, 1, store.rowCount())
	res, err := store.LastPassed(context.Background(), testCallsign, model.ExamKindFinal, nil)
	require.NoError(t, err)
	assert.Nil(t, res, "a blank forced submission cannot pass")
}

func TestCountdownStoppedByManualSubmit(t *testing.T) {
	src := &fakeQuestionSource{questions: makeQuestions(20, "final", nil)}
	store := &fakeResultStore{}
	mgr := newTestManager(src, store, newFakeTraineeStore(testCallsign))
	mgr.tick = time.Millisecond

	s, err := mgr.StartFinal(context.Background(), testCallsign)
	require.NoError(t, err)

	_, err = mgr.Submit(context.Background(), s.ID, testCallsign)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, store.insertCount(), "stopped timer must not submit again")
}

func TestCountdownExpiryPersistFailureIsReported(t *testing.T) {
	src := &fakeQuestionSource{questions: makeQuestions(20, "final", nil)}
	store := &fakeResultStore{failures: 1}
	mgr := newTestManager(src, store, newFakeTraineeStore(testCallsign))
	mgr.tick = time.Millisecond

	var mu sync.Mutex
	var captured []model.ResultCandidate
	mgr.OnPersistFailure(func(cand model.ResultCandidate, err error) {
		mu.Lock()
		captured = append(captured, cand)
		mu.Unlock()
	})

	s, err := mgr.StartFinal(context.Background(), testCallsign)
	require.NoError(t, err)
	for _, q := range s.Questions() {
		require.NoError(t, s.RecordAnswer(q.ID, "b"))
	}

	// Shrink the clock so the test does not wait an hour.
	s.mu.Lock()
	s.remaining = 2
	s.mu.Unlock()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(captured) == 1
	}, 2*time.Second, 5*time.Millisecond, "failed expiry insert must reach the handler")

	assert.Equal(t, StateGrading, s.State(), "graded score survives the failed insert")
	assert.Equal(t, 0, store.rowCount())

	// The handed-off candidate must be persistable on its own, the way the
	// queue worker would.
	mu.Lock()
	cand := captured[0]
	mu.Unlock()
	assert.Equal(t, s.ID, cand.ID)
	assert.Equal(t, 100, cand.Score)

	res, err := store.Insert(context.Background(), cand)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, 1, store.rowCount())
}

func TestSweepPersistsOrphanedGradedSession(t *testing.T) {
	chapterID := uuid.New()
	src := &fakeQuestionSource{questions: makeQuestions(10, "quiz", &chapterID)}
	store := &fakeResultStore{failures: 1}
	mgr := newTestManager(src, store, newFakeTraineeStore(testCallsign))

	s, err := mgr.StartQuiz(context.Background(), testCallsign, chapterID)
	require.NoError(t, err)
	for _, q := range s.Questions() {
		require.NoError(t, s.RecordAnswer(q.ID, "b"))
	}

	_, err = mgr.Submit(context.Background(), s.ID, testCallsign)
	var persistErr *PersistError
	require.ErrorAs(t, err, &persistErr)
	require.Equal(t, StateGrading, s.State())

	// Age the session past the abandonment window.
	s.mu.Lock()
	s.lastTouched = time.Now().Add(-3 * time.Hour)
	s.mu.Unlock()

	mgr.sweep()

	assert.Equal(t, 1, store.rowCount(), "sweeper makes a final persistence attempt")
	assert.Equal(t, StateCompleted, s.State())
	_, err = mgr.Get(s.ID, testCallsign)
	assert.ErrorIs(t, err, ErrSessionNotFound, "orphaned session is unregistered")
}

func TestPersistRetryWithoutRegrade(t *testing.T) {
	chapterID := uuid.New()
	src := &fakeQuestionSource{questions: makeQuestions(10, "quiz", &chapterID)}
	store := &fakeResultStore{failures: 1}
	mgr := newTestManager(src, store, newFakeTraineeStore(testCallsign))

	s, err := mgr.StartQuiz(context.Background(), testCallsign, chapterID)
	require.NoError(t, err)
	for _, q := range s.Questions() {
		require.NoError(t, s.RecordAnswer(q.ID, "b"))
	}

	_, err = mgr.Submit(context.Background(), s.ID, testCallsign)
	var persistErr *PersistError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, StateGrading, s.State(), "grade survives a persistence failure")

	res, err := mgr.RetryPersist(context.Background(), s.ID, testCallsign)
	require.NoError(t, err)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, StateCompleted, s.State())
	assert.Equal(t, 1, store.rowCount())
	assert.Equal(t, 2, store.insertCount())

	// Retrying a completed session returns the stored row without inserting.
	res2, err := mgr.RetryPersist(context.Background(), s.ID, testCallsign)
	require.NoError(t, err)
	assert.Equal(t, res.ID, res2.ID)
	assert.Equal(t, 2, store.insertCount())
}

func TestStartQuizAbandonsPriorAttempt(t *testing.T) {
	chapterID := uuid.New()
	src := &fakeQuestionSource{questions: makeQuestions(10, "quiz", &chapterID)}
	store := &fakeResultStore{}
	mgr := newTestManager(src, store, newFakeTraineeStore(testCallsign))

	first, err := mgr.StartQuiz(context.Background(), testCallsign, chapterID)
	require.NoError(t, err)
	second, err := mgr.StartQuiz(context.Background(), testCallsign, chapterID)
	require.NoError(t, err)

	assert.Equal(t, StateAbandoned, first.State())
	assert.Equal(t, StateInProgress, second.State())
	assert.Zero(t, store.rowCount(), "abandonment leaves no Result")

	_, err = first.Submit(context.Background(), store)
	assert.ErrorIs(t, err, ErrSessionNotInProgress)
}

func TestFinalQuestionSetFrozenAtStart(t *testing.T) {
	src := &fakeQuestionSource{questions: makeQuestions(20, "final", nil)}
	store := &fakeResultStore{}
	mgr := newTestManager(src, store, newFakeTraineeStore(testCallsign))

	s, err := mgr.StartFinal(context.Background(), testCallsign)
	require.NoError(t, err)
	frozen := make([]uuid.UUID, 0, 20)
	for _, q := range s.Questions() {
		frozen = append(frozen, q.ID)
	}

	// Instructor edits the bank mid-attempt.
	src.questions = makeQuestions(20, "final", nil)

	for i, q := range s.Questions() {
		assert.Equal(t, frozen[i], q.ID)
	}
}

func TestManagerGetEnforcesOwnership(t *testing.T) {
	chapterID := uuid.New()
	src := &fakeQuestionSource{questions: makeQuestions(10, "quiz", &chapterID)}
	store := &fakeResultStore{}
	mgr := newTestManager(src, store, newFakeTraineeStore(testCallsign, "SJX456"))

	s, err := mgr.StartQuiz(context.Background(), testCallsign, chapterID)
	require.NoError(t, err)

	_, err = mgr.Get(s.ID, "SJX456")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = mgr.Get(uuid.New(), testCallsign)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFinalScenarioFifteenOfTwenty(t *testing.T) {
	store := &fakeResultStore{}
	s := newSession(model.ExamKindFinal, testCallsign)
	require.True(t, s.beginFinal(makeQuestions(20, "final", nil)))

	for i, q := range s.Questions() {
		label := "b"
		if i >= 15 {
			label = "a"
		}
		require.NoError(t, s.RecordAnswer(q.ID, label))
	}

	res, err := s.Submit(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, 75, res.Score)
	assert.False(t, res.Passed)
}

func TestSessionViewRedactsAnswerKey(t *testing.T) {
	src := &fakeQuestionSource{questions: makeQuestions(20, "final", nil)}
	store := &fakeResultStore{}
	mgr := newTestManager(src, store, newFakeTraineeStore(testCallsign))

	s, err := mgr.StartFinal(context.Background(), testCallsign)
	require.NoError(t, err)

	view := s.View(true)
	assert.Equal(t, string(StateInProgress), view.State)
	require.NotNil(t, view.RemainingSeconds)
	assert.Equal(t, FinalExamSeconds, *view.RemainingSeconds)
	require.Len(t, view.Questions, 20)
}
