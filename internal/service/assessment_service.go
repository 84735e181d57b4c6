package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sjx-training/atc-assessment-backend/internal/config"
	"github.com/sjx-training/atc-assessment-backend/internal/engine"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
	"github.com/sjx-training/atc-assessment-backend/internal/repository"
)

// ErrResultNotFound is returned when a result does not exist or belongs to a
// different trainee.
var ErrResultNotFound = errors.New("result not found")

// chapterCacheTTL keeps the chapter list briefly cached; chapters change
// rarely but identification hits this on every trainee.
const chapterCacheTTL = time.Minute

// AssessmentService orchestrates the assessment engine against the Postgres
// stores and the Redis cache/queue.
type AssessmentService struct {
	manager  *engine.Manager
	reports  *engine.ReportBuilder
	trainees *repository.TraineeRepository
	chapters *repository.ChapterRepository
	results  *repository.ResultRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewAssessmentService creates a new AssessmentService.
func NewAssessmentService(
	manager *engine.Manager,
	reports *engine.ReportBuilder,
	trainees *repository.TraineeRepository,
	chapters *repository.ChapterRepository,
	results *repository.ResultRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *AssessmentService {
	svc := &AssessmentService{
		manager:  manager,
		reports:  reports,
		trainees: trainees,
		chapters: chapters,
		results:  results,
		rdb:      rdb,
		log:      log.With().Str("component", "assessment_service").Logger(),
	}

	// Timer expiries and the sweeper have no HTTP caller to surface a failed
	// insert to; their candidates go straight to the retry queue.
	manager.OnPersistFailure(func(cand model.ResultCandidate, _ error) {
		svc.enqueue(context.Background(), cand)
	})

	return svc
}

// Identify verifies a callsign and returns the trainee with the chapter list
// for quiz selection.
func (s *AssessmentService) Identify(ctx context.Context, rawCallsign string) (*model.Trainee, []model.Chapter, error) {
	trainee, err := s.trainees.FindByCallsign(ctx, rawCallsign)
	if err != nil {
		return nil, nil, err
	}
	if trainee == nil {
		return nil, nil, engine.ErrUnknownTrainee
	}

	chapters, err := s.listChapters(ctx)
	if err != nil {
		return nil, nil, err
	}
	return trainee, chapters, nil
}

// StartQuiz starts a chapter quiz session for the trainee.
func (s *AssessmentService) StartQuiz(ctx context.Context, callsign string, chapterID uuid.UUID) (model.SessionView, error) {
	sess, err := s.manager.StartQuiz(ctx, callsign, chapterID)
	if err != nil {
		return model.SessionView{}, err
	}
	return sess.View(true), nil
}

// StartFinal starts the timed final exam session for the trainee.
func (s *AssessmentService) StartFinal(ctx context.Context, callsign string) (model.SessionView, error) {
	sess, err := s.manager.StartFinal(ctx, callsign)
	if err != nil {
		return model.SessionView{}, err
	}
	return sess.View(true), nil
}

// RecordAnswer stores or overwrites one answer on an in-progress session.
func (s *AssessmentService) RecordAnswer(sessionID uuid.UUID, callsign string, questionID uuid.UUID, label string) error {
	sess, err := s.manager.Get(sessionID, callsign)
	if err != nil {
		return err
	}
	return sess.RecordAnswer(questionID, label)
}

// Submit grades and persists the session. When the synchronous insert fails
// the graded candidate is queued for the result worker and the persist error
// is still surfaced so the caller knows the save is pending.
func (s *AssessmentService) Submit(ctx context.Context, sessionID uuid.UUID, callsign string) (*model.Result, error) {
	res, err := s.manager.Submit(ctx, sessionID, callsign)

	var persistErr *engine.PersistError
	if errors.As(err, &persistErr) {
		s.enqueueCandidate(ctx, sessionID, callsign)
	}
	return res, err
}

// RetryPersist re-attempts only the persistence step of a graded session.
func (s *AssessmentService) RetryPersist(ctx context.Context, sessionID uuid.UUID, callsign string) (*model.Result, error) {
	return s.manager.RetryPersist(ctx, sessionID, callsign)
}

// SessionState returns the current view of a session, question payloads
// included so a reloaded page can re-render the paper.
func (s *AssessmentService) SessionState(sessionID uuid.UUID, callsign string) (model.SessionView, error) {
	sess, err := s.manager.Get(sessionID, callsign)
	if err != nil {
		return model.SessionView{}, err
	}
	return sess.View(true), nil
}

// Results lists all attempts for a trainee, newest first.
func (s *AssessmentService) Results(ctx context.Context, callsign string) ([]model.Result, error) {
	return s.results.ListByCallsign(ctx, callsign)
}

// Report builds the diagnostic (or redacted) view of one stored result.
func (s *AssessmentService) Report(ctx context.Context, resultID uuid.UUID, callsign string) (*engine.Report, error) {
	result, err := s.results.GetOwned(ctx, resultID, callsign)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrResultNotFound
	}
	return s.reports.Build(ctx, *result)
}

// MonitorSnapshot returns live views of all in-progress sessions.
func (s *AssessmentService) MonitorSnapshot() []model.SessionView {
	return s.manager.Snapshot()
}

func (s *AssessmentService) listChapters(ctx context.Context) ([]model.Chapter, error) {
	if cached, err := s.rdb.Get(ctx, config.ChapterListKey).Bytes(); err == nil {
		var chapters []model.Chapter
		if err := json.Unmarshal(cached, &chapters); err == nil {
			return chapters, nil
		}
	}

	chapters, err := s.chapters.List(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(chapters); err == nil {
		if err := s.rdb.Set(ctx, config.ChapterListKey, raw, chapterCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("chapter cache write failed")
		}
	}
	return chapters, nil
}

func (s *AssessmentService) enqueueCandidate(ctx context.Context, sessionID uuid.UUID, callsign string) {
	sess, err := s.manager.Get(sessionID, callsign)
	if err != nil {
		return
	}
	cand, err := sess.Candidate()
	if err != nil {
		return
	}
	s.enqueue(ctx, cand)
}

func (s *AssessmentService) enqueue(ctx context.Context, cand model.ResultCandidate) {
	raw, err := json.Marshal(cand)
	if err != nil {
		s.log.Error().Err(err).Msg("marshal result candidate")
		return
	}
	if err := s.rdb.RPush(ctx, config.PersistResultsQueue, raw).Err(); err != nil {
		s.log.Error().Err(err).
			Str("session_id", cand.ID.String()).
			Msg("queue result candidate failed, manual retry required")
		return
	}
	s.log.Info().
		Str("session_id", cand.ID.String()).
		Str("callsign", cand.Callsign).
		Msg("result candidate queued for background persistence")
}
