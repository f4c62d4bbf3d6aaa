package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-booking/internal/models"
	"github.com/smarttransit/bus-booking/internal/services"
	"github.com/smarttransit/bus-booking/internal/utils"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// AdminAuthHandler handles admin authentication HTTP requests
type AdminAuthHandler struct {
	adminAuthService *services.AdminAuthService
	logger           *logrus.Logger
}

// NewAdminAuthHandler creates a new admin auth handler
func NewAdminAuthHandler(adminAuthService *services.AdminAuthService, logger *logrus.Logger) *AdminAuthHandler {
	return &AdminAuthHandler{
		adminAuthService: adminAuthService,
		logger:           logger,
	}
}

// Login handles POST /admin/login
func (h *AdminAuthHandler) Login(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Username and password are required",
		})
		return
	}

	response, err := h.adminAuthService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		client := utils.ClientFromRequest(c)
		entry := h.logger.WithFields(logrus.Fields(client.Fields())).WithField("username", req.Username)

		switch {
		case errors.Is(err, services.ErrAdminDisabled):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Admin login is not enabled",
				Code:    "ADMIN_DISABLED",
			})
		case errors.Is(err, services.ErrInvalidCredentials):
			entry.Warn("Rejected admin login")
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_credentials",
				Message: "Invalid username or password",
				Code:    "INVALID_CREDENTIALS",
			})
		default:
			entry.WithError(err).Error("Admin login error")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to log in",
			})
		}
		return
	}

	c.JSON(http.StatusOK, response)
}
