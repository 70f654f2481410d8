package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boutique/internal/models"
	"boutique/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles authentication of dashboard operators.
type AuthService struct {
	adminRepo  repositories.AdminUserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService. A zero tokenDuration means 24 hours.
func NewAuthService(adminRepo repositories.AdminUserRepository, jwtSecret string, tokenDuration time.Duration, logger *zap.Logger) *AuthService {
	if tokenDuration <= 0 {
		tokenDuration = 24 * time.Hour
	}
	return &AuthService{
		adminRepo:  adminRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: tokenDuration,
		logger:     logger.Named("auth"),
	}
}

// RegisterAdmin hashes the admin's password and saves them.
func (s *AuthService) RegisterAdmin(ctx context.Context, admin *models.AdminUser) error {
	if existing, err := s.adminRepo.GetByUsername(ctx, admin.Username); err == nil && existing != nil {
		return fmt.Errorf("username '%s': %w", admin.Username, ErrConflict)
	}
	if existing, err := s.adminRepo.GetByEmail(ctx, admin.Email); err == nil && existing != nil {
		return fmt.Errorf("email '%s': %w", admin.Email, ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin.Password = string(hashedPassword)

	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to register admin: %w", err)
	}
	return nil
}

// SeedAdmin creates the first admin when none exists. It reports whether an
// admin was created.
func (s *AuthService) SeedAdmin(ctx context.Context, username, email, password string) (bool, error) {
	if password == "" {
		return false, nil
	}
	n, err := s.adminRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	if err := s.RegisterAdmin(ctx, &models.AdminUser{Username: username, Email: email, Password: password}); err != nil {
		return false, err
	}
	s.logger.Info("Seeded initial admin", zap.String("username", username))
	return true, nil
}

// Login authenticates an admin and returns a JWT token if successful.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return "", err
		}
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  admin.ID,
		"username": admin.Username,
		"exp":      now.Add(s.tokenDurat).Unix(),
		"iat":      now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.logger.Debug("Token validation error", zap.Error(err))
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
