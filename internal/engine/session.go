package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
)

// SessionState enumerates the assessment session states. Transitions only
// move forward; an illegal transition is a rejected input, never re-entrancy.
type SessionState string

const (
	StateIdentify      SessionState = "IDENTIFY"
	StateChapterSelect SessionState = "CHAPTER_SELECT"
	StateInProgress    SessionState = "IN_PROGRESS"
	StateGrading       SessionState = "GRADING"
	StateCompleted     SessionState = "COMPLETED"
	// StateAbandoned marks a session that was discarded before submission.
	// An abandoned session leaves no Result and is not an error.
	StateAbandoned SessionState = "ABANDONED"
)

// FinalExamSeconds is the fixed time allotment for a final exam.
const FinalExamSeconds = 3600

type submitTrigger int

const (
	triggerManual submitTrigger = iota
	triggerTimeout
)

// Session is one in-memory assessment attempt. It is exclusively owned by the
// trainee driving it; the countdown is the only other actor that may touch it,
// which is why every mutation goes through the mutex and the single guarded
// exit from IN_PROGRESS.
type Session struct {
	ID       uuid.UUID
	Kind     model.ExamKind
	Callsign string

	mu        sync.Mutex
	state     SessionState
	chapterID *uuid.UUID
	questions []model.Question
	answers   map[string]string
	remaining int
	countdown *countdown

	score     int
	passed    bool
	graded    bool
	persisted *model.Result

	createdAt   time.Time
	lastTouched time.Time
}

func newSession(kind model.ExamKind, callsign string) *Session {
	now := time.Now()
	return &Session{
		ID:          uuid.New(),
		Kind:        kind,
		Callsign:    callsign,
		state:       StateIdentify,
		answers:     make(map[string]string),
		createdAt:   now,
		lastTouched: now,
	}
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ChapterID returns the selected chapter, nil for final sessions.
func (s *Session) ChapterID() *uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chapterID
}

// Questions returns the frozen question set.
func (s *Session) Questions() []model.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions
}

// transitionLocked enforces forward-only transitions. Callers hold s.mu.
func (s *Session) transitionLocked(from, to SessionState) bool {
	if s.state != from {
		return false
	}
	s.state = to
	s.lastTouched = time.Now()
	return true
}

// beginChapterSelect moves a quiz session from IDENTIFY to CHAPTER_SELECT.
func (s *Session) beginChapterSelect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(StateIdentify, StateChapterSelect)
}

// selectChapter re-runs eligibility and sampling for the chosen chapter. On
// failure the session stays in CHAPTER_SELECT so another chapter can be tried.
func (s *Session) selectChapter(ctx context.Context, gate *Gate, sampler *Sampler, chapterID uuid.UUID) error {
	s.mu.Lock()
	if s.state != StateChapterSelect {
		s.mu.Unlock()
		return ErrSessionNotInProgress
	}
	s.mu.Unlock()

	if err := gate.Check(ctx, s.Callsign, model.ExamKindQuiz, &chapterID); err != nil {
		return err
	}
	questions, err := sampler.SampleQuiz(ctx, chapterID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.transitionLocked(StateChapterSelect, StateInProgress) {
		return ErrSessionNotInProgress
	}
	s.chapterID = &chapterID
	s.questions = questions
	return nil
}

// beginFinal moves a final session straight from IDENTIFY to IN_PROGRESS with
// the sampled paper and full time allotment. The countdown is not started
// here; the manager owns that.
func (s *Session) beginFinal(questions []model.Question) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.transitionLocked(StateIdentify, StateInProgress) {
		return false
	}
	s.questions = questions
	s.remaining = FinalExamSeconds
	return true
}

// RecordAnswer stores or overwrites the answer for one question. At most one
// answer is held per question; unanswered questions stay absent from the
// mapping.
func (s *Session) RecordAnswer(questionID uuid.UUID, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return ErrSessionNotInProgress
	}

	var question *model.Question
	for i := range s.questions {
		if s.questions[i].ID == questionID {
			question = &s.questions[i]
			break
		}
	}
	if question == nil {
		return ErrQuestionNotInSession
	}
	if _, ok := question.Option(normalizeLabel(label)); !ok {
		return ErrInvalidOption
	}

	s.answers[questionID.String()] = label
	s.lastTouched = time.Now()
	return nil
}

// Submit grades the session and persists the Result. Exactly one submission
// can win; a duplicate submit (or a submit racing a timer expiry) is rejected
// with ErrDuplicateSubmission. On a store failure the session keeps its graded
// score and a *PersistError is returned; see RetryPersist.
func (s *Session) Submit(ctx context.Context, results ResultStore) (*model.Result, error) {
	return s.submit(ctx, results, triggerManual)
}

// expire is the timer-driven submit path. It shares the same guard as Submit,
// so it can never double-grade; if a manual submit already won it is a no-op.
// There is nobody here to hand an error to, so callers must pass a store that
// reports its own insert failures.
func (s *Session) expire(results ResultStore) {
	_, _ = s.submit(context.Background(), results, triggerTimeout)
}

func (s *Session) submit(ctx context.Context, results ResultStore, trigger submitTrigger) (*model.Result, error) {
	s.mu.Lock()
	if s.state != StateInProgress {
		state := s.state
		s.mu.Unlock()
		if trigger == triggerTimeout {
			return nil, nil
		}
		if state == StateGrading || state == StateCompleted {
			return nil, ErrDuplicateSubmission
		}
		return nil, ErrSessionNotInProgress
	}
	s.state = StateGrading
	s.lastTouched = time.Now()
	if s.countdown != nil {
		s.countdown.stop()
	}

	s.score, s.passed = Grade(s.Kind, s.questions, s.answers)
	s.graded = true
	cand := s.candidateLocked()
	s.mu.Unlock()

	return s.persist(ctx, results, cand)
}

// RetryPersist re-attempts only the persistence step of an already graded
// session. It never re-grades. Calling it on an already completed session
// returns the stored Result.
func (s *Session) RetryPersist(ctx context.Context, results ResultStore) (*model.Result, error) {
	s.mu.Lock()
	if s.state == StateCompleted {
		res := s.persisted
		s.mu.Unlock()
		return res, nil
	}
	if s.state != StateGrading || !s.graded {
		s.mu.Unlock()
		return nil, ErrNotGraded
	}
	cand := s.candidateLocked()
	s.mu.Unlock()

	return s.persist(ctx, results, cand)
}

func (s *Session) persist(ctx context.Context, results ResultStore, cand model.ResultCandidate) (*model.Result, error) {
	res, err := results.Insert(ctx, cand)
	if err != nil {
		return nil, &PersistError{Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateGrading {
		s.state = StateCompleted
		s.persisted = res
		s.lastTouched = time.Now()
	}
	return res, nil
}

// Candidate returns the graded attempt awaiting persistence. Only valid once
// the session has been graded.
func (s *Session) Candidate() (model.ResultCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.graded {
		return model.ResultCandidate{}, ErrNotGraded
	}
	return s.candidateLocked(), nil
}

func (s *Session) candidateLocked() model.ResultCandidate {
	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return model.ResultCandidate{
		ID:              s.ID,
		Callsign:        s.Callsign,
		ExamType:        s.Kind,
		ChapterID:       s.chapterID,
		Score:           s.score,
		Passed:          s.passed,
		DetailedAnswers: answers,
	}
}

// abandon discards a session that never reached completion. The countdown is
// stopped so a stale timer can never submit on its behalf.
func (s *Session) abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateInProgress || s.state == StateChapterSelect || s.state == StateIdentify {
		if s.countdown != nil {
			s.countdown.stop()
		}
		s.state = StateAbandoned
		s.lastTouched = time.Now()
	}
}

// tickSecond advances session time by one second. Returns expired=true when
// the allotment just hit zero, and live=false once the session has left
// IN_PROGRESS and the countdown should stop.
func (s *Session) tickSecond() (expired, live bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return false, false
	}
	if s.remaining > 0 {
		s.remaining--
	}
	return s.remaining == 0, true
}

// View builds the trainee-facing representation, optionally embedding the
// redacted question payloads.
func (s *Session) View(includeQuestions bool) model.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := model.SessionView{
		SessionID:     s.ID,
		Kind:          s.Kind,
		Callsign:      s.Callsign,
		ChapterID:     s.chapterID,
		State:         string(s.state),
		AnsweredCount: len(s.answers),
		QuestionCount: len(s.questions),
	}
	if includeQuestions {
		view.Questions = model.QuestionsForTrainee(s.questions)
	}
	if s.Kind == model.ExamKindFinal {
		remaining := s.remaining
		view.RemainingSeconds = &remaining
	}
	return view
}

// snapshotIdle reports the state and idle duration for the sweeper.
func (s *Session) snapshotIdle() (SessionState, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, time.Since(s.lastTouched)
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
