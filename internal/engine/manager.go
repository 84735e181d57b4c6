package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
)

const (
	// sweepInterval controls how often terminal and stale sessions are
	// reaped from memory.
	sweepInterval = time.Minute
	// abandonAfter is the idle window after which a never-submitted session
	// is treated as abandoned.
	abandonAfter = 2 * time.Hour
	// retainTerminal keeps finished sessions queryable briefly so a trainee
	// can still read the outcome after submitting.
	retainTerminal = 10 * time.Minute
)

// PersistFailureHandler receives graded candidates whose store insert failed
// on a path with no caller to report to (timer expiry, sweeper).
type PersistFailureHandler func(cand model.ResultCandidate, err error)

// Manager owns every live Session. Starts are serialized per (trainee, scope)
// so a double-click cannot race two eligible attempts through the
// check-then-sample sequence.
type Manager struct {
	gate    *Gate
	sampler *Sampler
	results ResultStore
	log     zerolog.Logger
	tick    time.Duration

	mu            sync.Mutex
	sessions      map[uuid.UUID]*Session
	startMu       map[string]*sync.Mutex
	onPersistFail PersistFailureHandler
}

// NewManager creates a session manager with a one-second countdown tick.
func NewManager(gate *Gate, sampler *Sampler, results ResultStore, log zerolog.Logger) *Manager {
	return &Manager{
		gate:     gate,
		sampler:  sampler,
		results:  results,
		log:      log.With().Str("component", "session_manager").Logger(),
		tick:     time.Second,
		sessions: make(map[uuid.UUID]*Session),
		startMu:  make(map[string]*sync.Mutex),
	}
}

// OnPersistFailure registers a handler for graded candidates whose insert
// failed with nobody waiting on the error. The handler must not block; it
// typically queues the candidate for background retry.
func (m *Manager) OnPersistFailure(h PersistFailureHandler) {
	m.mu.Lock()
	m.onPersistFail = h
	m.mu.Unlock()
}

// StartQuiz runs the full identify → chapter-select → in-progress sequence
// for a chapter quiz. Eligibility and sampling are chapter-scoped, so both run
// only after the chapter choice.
func (m *Manager) StartQuiz(ctx context.Context, callsign string, chapterID uuid.UUID) (*Session, error) {
	unlock := m.lockStart("quiz|" + callsign + "|" + chapterID.String())
	defer unlock()

	m.abandonActive(callsign, model.ExamKindQuiz, &chapterID)

	s := newSession(model.ExamKindQuiz, callsign)
	s.beginChapterSelect()
	if err := s.selectChapter(ctx, m.gate, m.sampler, chapterID); err != nil {
		return nil, err
	}

	m.register(s)
	m.log.Info().
		Str("callsign", callsign).
		Str("chapter_id", chapterID.String()).
		Str("session_id", s.ID.String()).
		Int("questions", len(s.Questions())).
		Msg("quiz session started")
	return s, nil
}

// StartFinal authorizes, samples and starts a timed final-exam session. The
// countdown begins immediately.
func (m *Manager) StartFinal(ctx context.Context, callsign string) (*Session, error) {
	unlock := m.lockStart("final|" + callsign)
	defer unlock()

	m.abandonActive(callsign, model.ExamKindFinal, nil)

	if err := m.gate.Check(ctx, callsign, model.ExamKindFinal, nil); err != nil {
		return nil, err
	}
	questions, err := m.sampler.SampleFinal(ctx)
	if err != nil {
		return nil, err
	}

	s := newSession(model.ExamKindFinal, callsign)
	s.beginFinal(questions)
	s.startCountdown(m.tick, m.backgroundStore())

	m.register(s)
	m.log.Info().
		Str("callsign", callsign).
		Str("session_id", s.ID.String()).
		Msg("final exam session started")
	return s, nil
}

// Get returns a session owned by the given callsign.
func (m *Manager) Get(id uuid.UUID, callsign string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok || s.Callsign != callsign {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Submit grades and persists the session identified by id.
func (m *Manager) Submit(ctx context.Context, id uuid.UUID, callsign string) (*model.Result, error) {
	s, err := m.Get(id, callsign)
	if err != nil {
		return nil, err
	}
	return s.Submit(ctx, m.results)
}

// RetryPersist re-attempts only the persistence step of a graded session.
func (m *Manager) RetryPersist(ctx context.Context, id uuid.UUID, callsign string) (*model.Result, error) {
	s, err := m.Get(id, callsign)
	if err != nil {
		return nil, err
	}
	return s.RetryPersist(ctx, m.results)
}

// Snapshot returns monitor views of all in-progress sessions.
func (m *Manager) Snapshot() []model.SessionView {
	m.mu.Lock()
	defer m.mu.Unlock()

	views := make([]model.SessionView, 0, len(m.sessions))
	for _, s := range m.sessions {
		if s.State() == StateInProgress {
			views = append(views, s.View(false))
		}
	}
	return views
}

// Run sweeps finished and stale sessions until ctx is cancelled. Call in a
// goroutine.
func (m *Manager) Run(ctx context.Context) {
	m.log.Info().Msg("session sweeper started")
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("session sweeper stopped")
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Manager) sweep() {
	var orphaned []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		state, idle := s.snapshotIdle()
		switch state {
		case StateCompleted, StateAbandoned:
			if idle > retainTerminal {
				delete(m.sessions, id)
			}
		case StateGrading:
			// Graded but never persisted. Unregister, then try
			// persistence one last time outside the lock.
			if idle > abandonAfter {
				delete(m.sessions, id)
				orphaned = append(orphaned, s)
			}
		default:
			if idle > abandonAfter {
				s.abandon()
				delete(m.sessions, id)
				m.log.Debug().
					Str("session_id", id.String()).
					Str("callsign", s.Callsign).
					Msg("stale session abandoned")
			}
		}
	}
	m.mu.Unlock()

	for _, s := range orphaned {
		if _, err := s.RetryPersist(context.Background(), m.backgroundStore()); err != nil {
			m.log.Error().Err(err).
				Str("session_id", s.ID.String()).
				Str("callsign", s.Callsign).
				Msg("graded session swept before persistence succeeded")
		}
	}
}

func (m *Manager) register(s *Session) {
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
}

// abandonActive discards any earlier unfinished attempt in the same scope.
// Starting over is always legal; the old attempt simply never completes.
func (m *Manager) abandonActive(callsign string, kind model.ExamKind, chapterID *uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.sessions {
		if s.Callsign != callsign || s.Kind != kind {
			continue
		}
		if kind == model.ExamKindQuiz {
			cid := s.ChapterID()
			if cid == nil || chapterID == nil || *cid != *chapterID {
				continue
			}
		}
		switch s.State() {
		case StateInProgress, StateChapterSelect, StateIdentify:
			s.abandon()
			delete(m.sessions, id)
		}
	}
}

// backgroundStore wraps the result store for the submit paths nobody is
// waiting on. An insert failure there would otherwise vanish, so it is
// logged and handed to the persist-failure handler.
type backgroundStore struct {
	ResultStore
	m *Manager
}

func (b backgroundStore) Insert(ctx context.Context, cand model.ResultCandidate) (*model.Result, error) {
	res, err := b.ResultStore.Insert(ctx, cand)
	if err != nil {
		b.m.persistFailed(cand, err)
	}
	return res, err
}

func (m *Manager) backgroundStore() ResultStore {
	return backgroundStore{ResultStore: m.results, m: m}
}

func (m *Manager) persistFailed(cand model.ResultCandidate, err error) {
	m.log.Error().Err(err).
		Str("session_id", cand.ID.String()).
		Str("callsign", cand.Callsign).
		Msg("background result persist failed")

	m.mu.Lock()
	h := m.onPersistFail
	m.mu.Unlock()
	if h != nil {
		h(cand, err)
	}
}

func (m *Manager) lockStart(key string) func() {
	m.mu.Lock()
	lock, ok := m.startMu[key]
	if !ok {
		lock = &sync.Mutex{}
		m.startMu[key] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
