package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sjx-training/atc-assessment-backend/internal/engine"
	"github.com/sjx-training/atc-assessment-backend/internal/middleware"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
	"github.com/sjx-training/atc-assessment-backend/internal/response"
	"github.com/sjx-training/atc-assessment-backend/internal/service"
	"github.com/sjx-training/atc-assessment-backend/internal/validator"
)

// AssessmentHandler handles quiz and final exam session endpoints.
type AssessmentHandler struct {
	assessmentService *service.AssessmentService
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(assessmentService *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentService: assessmentService}
}

// StartQuiz godoc
// POST /api/v1/sessions/quiz
// Starts a chapter quiz for the authenticated trainee.
func (h *AssessmentHandler) StartQuiz(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.assessmentService.StartQuiz(c.Request.Context(), claims.Callsign, req.ChapterID)
	if err != nil {
		failEngine(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": view})
}

// StartFinal godoc
// POST /api/v1/sessions/final
// Starts the timed final exam for the authenticated trainee.
func (h *AssessmentHandler) StartFinal(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	view, err := h.assessmentService.StartFinal(c.Request.Context(), claims.Callsign)
	if err != nil {
		failEngine(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": view})
}

// GetState godoc
// GET /api/v1/sessions/:id
// Returns the current state of a session owned by the trainee.
func (h *AssessmentHandler) GetState(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	view, err := h.assessmentService.SessionState(sessionID, claims.Callsign)
	if err != nil {
		failEngine(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// RecordAnswer godoc
// PUT /api/v1/sessions/:id/answers
// Stores or overwrites one answer on an in-progress session.
func (h *AssessmentHandler) RecordAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	var req model.RecordAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.assessmentService.RecordAnswer(sessionID, claims.Callsign, req.QuestionID, req.Answer); err != nil {
		failEngine(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Submit godoc
// POST /api/v1/sessions/:id/submit
// Grades the session and persists the result.
func (h *AssessmentHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	result, err := h.assessmentService.Submit(c.Request.Context(), sessionID, claims.Callsign)
	if err != nil {
		failEngine(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// RetryPersist godoc
// POST /api/v1/sessions/:id/persist
// Re-attempts persistence of an already graded session.
func (h *AssessmentHandler) RetryPersist(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, ok := parseSessionID(c)
	if !ok {
		return
	}

	result, err := h.assessmentService.RetryPersist(c.Request.Context(), sessionID, claims.Callsign)
	if err != nil {
		failEngine(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// failEngine translates assessment engine errors into API responses.
func failEngine(c *gin.Context, err error) {
	var cooldown *engine.CooldownError
	var persist *engine.PersistError

	switch {
	case errors.Is(err, engine.ErrUnknownTrainee):
		response.Fail(c, http.StatusNotFound, response.ErrUnknownTrainee)
	case errors.Is(err, engine.ErrAlreadyCertified):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyCertified)
	case errors.As(err, &cooldown):
		response.FailWithFields(c, http.StatusConflict, response.ErrCooldownActive, map[string]string{
			"retry_after_seconds": strconv.Itoa(int(cooldown.Remaining.Seconds())),
		})
	case errors.Is(err, engine.ErrEmptyBank):
		response.Fail(c, http.StatusConflict, response.ErrEmptyBank)
	case errors.Is(err, engine.ErrInsufficientBank):
		response.Fail(c, http.StatusConflict, response.ErrInsufficientBank)
	case errors.Is(err, engine.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, engine.ErrSessionNotInProgress), errors.Is(err, engine.ErrNotGraded):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotActive)
	case errors.Is(err, engine.ErrDuplicateSubmission):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateSubmission)
	case errors.Is(err, engine.ErrQuestionNotInSession), errors.Is(err, engine.ErrInvalidOption):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidAnswer)
	case errors.As(err, &persist):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrStorePersist)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
