package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjx-training/atc-assessment-backend/internal/engine"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
	"github.com/sjx-training/atc-assessment-backend/internal/response"
	"github.com/sjx-training/atc-assessment-backend/internal/service"
	"github.com/sjx-training/atc-assessment-backend/internal/validator"
)

// TraineeHandler handles trainee identification.
type TraineeHandler struct {
	authService       *service.AuthService
	assessmentService *service.AssessmentService
}

// NewTraineeHandler creates a new TraineeHandler.
func NewTraineeHandler(authService *service.AuthService, assessmentService *service.AssessmentService) *TraineeHandler {
	return &TraineeHandler{
		authService:       authService,
		assessmentService: assessmentService,
	}
}

// Identify godoc
// POST /api/v1/identify
// Verifies a callsign, issues a trainee token and returns the chapter list.
func (h *TraineeHandler) Identify(c *gin.Context) {
	var req model.IdentifyRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	trainee, chapters, err := h.assessmentService.Identify(c.Request.Context(), req.Callsign)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownTrainee) {
			response.Fail(c, http.StatusNotFound, response.ErrUnknownTrainee)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	token, err := h.authService.GenerateTraineeToken(trainee.Callsign)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":    token,
		"trainee":  trainee,
		"chapters": chapters,
	})
}
