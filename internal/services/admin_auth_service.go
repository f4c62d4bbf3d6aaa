package services

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-booking/internal/models"
	"github.com/smarttransit/bus-booking/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// AdminAuthService handles admin authentication business logic
type AdminAuthService struct {
	username     string
	passwordHash []byte
	jwtService   *jwt.Service
	logger       *logrus.Logger
}

// NewAdminAuthService creates a new admin auth service. A nil jwtService disables login.
func NewAdminAuthService(username, passwordHash string, jwtService *jwt.Service, logger *logrus.Logger) *AdminAuthService {
	return &AdminAuthService{
		username:     username,
		passwordHash: []byte(passwordHash),
		jwtService:   jwtService,
		logger:       logger,
	}
}

// Enabled reports whether admin endpoints are protected
func (s *AdminAuthService) Enabled() bool {
	return s.jwtService != nil && len(s.passwordHash) > 0
}

// Login checks the operator credentials and returns a signed token
func (s *AdminAuthService) Login(_ context.Context, username, password string) (*models.AdminLoginResponse, error) {
	if !s.Enabled() {
		return nil, ErrAdminDisabled
	}

	// bcrypt runs even when the username is wrong
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		s.logger.WithField("username", username).Warn("Admin login failed")
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateAdminToken(username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate admin token: %w", err)
	}

	s.logger.WithField("username", username).Info("Admin logged in")

	return &models.AdminLoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtService.Expiry().Seconds()),
	}, nil
}
