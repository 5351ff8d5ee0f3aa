// Package users covers registration, login and the password-reset flow.
package users

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"nudem-backend/internal/apperr"
	"nudem-backend/internal/logger"
	"nudem-backend/internal/models"
	"nudem-backend/internal/users/db"
)

const resetTokenTTL = time.Hour

type DBLayer interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
}

type TokenIssuer interface {
	IssueToken(userID string) (string, error)
}

type Mailer interface {
	SendConfirmationEmail(user models.User) error
	SendResetEmail(user models.User, resetToken string) error
}

type Service struct {
	DB     DBLayer
	Tokens TokenIssuer
	Mailer Mailer
	Logger *logger.Logger
}

func NewService(dbLayer DBLayer, tokens TokenIssuer, mailer Mailer, log *logger.Logger) *Service {
	return &Service{DB: dbLayer, Tokens: tokens, Mailer: mailer, Logger: log}
}

// Register creates the account, sends the welcome e-mail best-effort and
// returns a fresh bearer token.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if req.Prenom == "" || req.Nom == "" || req.Email == "" || req.MotDePasse == "" {
		return nil, apperr.Validation("prenom/nom/email/motDePasse", "are all required")
	}

	email := strings.ToLower(req.Email)
	if existing, err := s.DB.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperr.Validation("email", "is already in use")
	} else if err != nil && !db.IsNoRows(err) {
		return nil, apperr.Persistence(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.MotDePasse), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.NewString(),
		Prenom:    req.Prenom,
		Nom:       req.Nom,
		Email:     email,
		Password:  string(hashed),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.DB.CreateUser(ctx, user); err != nil {
		return nil, apperr.Persistence(err)
	}

	// Welcome e-mail never blocks registration.
	if err := s.Mailer.SendConfirmationEmail(*user); err != nil {
		s.Logger.Error("MAIL", fmt.Sprintf("confirmation email to %s failed: %v", user.Email, err))
	}

	token, err := s.Tokens.IssueToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &models.AuthResponse{
		Message: "Inscription réussie.",
		Token:   token,
		User:    user.Public(),
	}, nil
}

func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if req.Email == "" || req.MotDePasse == "" {
		return nil, apperr.Validation("email/motDePasse", "are required")
	}

	user, err := s.DB.GetUserByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.Persistence(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.MotDePasse)); err != nil {
		return nil, apperr.Unauthorized(fmt.Errorf("wrong password"))
	}

	token, err := s.Tokens.IssueToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &models.AuthResponse{
		Message: "Connexion réussie.",
		Token:   token,
		User:    user.Public(),
	}, nil
}

// ForgotPassword stores a fresh random reset token with a one-hour window
// and mails the reset link.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.DB.GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if db.IsNoRows(err) {
			return apperr.Validation("email", "not found")
		}
		return apperr.Persistence(err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	user.ResetToken = hex.EncodeToString(buf)
	user.ResetTokenExp = time.Now().UTC().Add(resetTokenTTL)
	user.UpdatedAt = time.Now().UTC()

	if err := s.DB.UpdateUser(ctx, user); err != nil {
		return apperr.Persistence(err)
	}

	if err := s.Mailer.SendResetEmail(*user, user.ResetToken); err != nil {
		return err
	}
	return nil
}

// ResetPassword accepts the token only while it is unexpired, rehashes the
// password and clears the token pair.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return apperr.Validation("token/newPassword", "are required")
	}

	user, err := s.DB.GetUserByResetToken(ctx, token)
	if err != nil {
		if db.IsNoRows(err) {
			return apperr.Validation("token", "is invalid or expired")
		}
		return apperr.Persistence(err)
	}
	if user.ResetTokenExp.Before(time.Now().UTC()) {
		return apperr.Validation("token", "is invalid or expired")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = string(hashed)
	user.ResetToken = ""
	user.ResetTokenExp = time.Time{}
	user.UpdatedAt = time.Now().UTC()

	if err := s.DB.UpdateUser(ctx, user); err != nil {
		return apperr.Persistence(err)
	}
	return nil
}
