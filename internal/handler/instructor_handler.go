package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjx-training/atc-assessment-backend/internal/model"
	"github.com/sjx-training/atc-assessment-backend/internal/response"
	"github.com/sjx-training/atc-assessment-backend/internal/service"
	"github.com/sjx-training/atc-assessment-backend/internal/validator"
)

// InstructorHandler handles instructor authentication.
type InstructorHandler struct {
	authService *service.AuthService
}

// NewInstructorHandler creates a new InstructorHandler.
func NewInstructorHandler(authService *service.AuthService) *InstructorHandler {
	return &InstructorHandler{authService: authService}
}

// Login godoc
// POST /api/v1/instructor/login
// Exchanges the shared instructor password for an instructor token.
func (h *InstructorHandler) Login(c *gin.Context) {
	var req model.InstructorLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, err := h.authService.GenerateInstructorToken(req.Password)
	if err != nil {
		if errors.Is(err, service.ErrMonitorDisabled) {
			response.Fail(c, http.StatusForbidden, response.ErrInstructorAccessOnly)
			return
		}
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"token": token})
}
