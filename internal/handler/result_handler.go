package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sjx-training/atc-assessment-backend/internal/middleware"
	"github.com/sjx-training/atc-assessment-backend/internal/response"
	"github.com/sjx-training/atc-assessment-backend/internal/service"
)

// ResultHandler handles stored result endpoints.
type ResultHandler struct {
	assessmentService *service.AssessmentService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(assessmentService *service.AssessmentService) *ResultHandler {
	return &ResultHandler{assessmentService: assessmentService}
}

// List godoc
// GET /api/v1/results
// Lists all attempts of the authenticated trainee, newest first.
func (h *ResultHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.assessmentService.Results(c.Request.Context(), claims.Callsign)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// Report godoc
// GET /api/v1/results/:id/report
// Returns the diagnostic report of one result. Final exam reports carry the
// score only, never the per-question breakdown.
func (h *ResultHandler) Report(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	resultID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	report, err := h.assessmentService.Report(c.Request.Context(), resultID, claims.Callsign)
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrResultNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"report": report})
}
