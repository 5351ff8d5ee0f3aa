package users_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"nudem-backend/internal/apperr"
	"nudem-backend/internal/logger"
	"nudem-backend/internal/models"
	"nudem-backend/internal/users"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockDBLayer) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockDBLayer) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockDBLayer) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockDBLayer) UpdateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) IssueToken(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendConfirmationEmail(user models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockMailer) SendResetEmail(user models.User, resetToken string) error {
	args := m.Called(user, resetToken)
	return args.Error(0)
}

func newTestService() (*users.Service, *MockDBLayer, *MockTokenIssuer, *MockMailer) {
	mockDB := new(MockDBLayer)
	mockTokens := new(MockTokenIssuer)
	mockMailer := new(MockMailer)
	svc := users.NewService(mockDB, mockTokens, mockMailer, logger.NewNop())
	return svc, mockDB, mockTokens, mockMailer
}

func hashed(t *testing.T, password string) string {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestRegister_Success(t *testing.T) {
	svc, mockDB, mockTokens, mockMailer := newTestService()

	mockDB.On("GetUserByEmail", mock.Anything, "awa@example.sn").Return(nil, sql.ErrNoRows)
	mockDB.On("CreateUser", mock.Anything, mock.Anything).Return(nil)
	mockMailer.On("SendConfirmationEmail", mock.Anything).Return(nil)
	mockTokens.On("IssueToken", mock.Anything).Return("jwt-token", nil)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Prenom:     "Awa",
		Nom:        "Ndiaye",
		Email:      "Awa@Example.sn",
		MotDePasse: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Inscription réussie.", resp.Message)
	assert.Equal(t, "jwt-token", resp.Token)
	// E-mail is normalized to lower case
	assert.Equal(t, "awa@example.sn", resp.User.Email)
	mockDB.AssertExpectations(t)
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "awa@example.sn"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, mockDB, _, _ := newTestService()

	existing := &models.User{ID: "u1", Email: "awa@example.sn"}
	mockDB.On("GetUserByEmail", mock.Anything, "awa@example.sn").Return(existing, nil)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Prenom:     "Awa",
		Nom:        "Ndiaye",
		Email:      "awa@example.sn",
		MotDePasse: "secret123",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	mockDB.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegister_ConfirmationEmailFailureIsNotFatal(t *testing.T) {
	svc, mockDB, mockTokens, mockMailer := newTestService()

	mockDB.On("GetUserByEmail", mock.Anything, mock.Anything).Return(nil, sql.ErrNoRows)
	mockDB.On("CreateUser", mock.Anything, mock.Anything).Return(nil)
	mockMailer.On("SendConfirmationEmail", mock.Anything).Return(errors.New("smtp down"))
	mockTokens.On("IssueToken", mock.Anything).Return("jwt-token", nil)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Prenom:     "Awa",
		Nom:        "Ndiaye",
		Email:      "awa@example.sn",
		MotDePasse: "secret123",
	})
	assert.NoError(t, err)
	assert.Equal(t, "jwt-token", resp.Token)
}

func TestLogin_Success(t *testing.T) {
	svc, mockDB, mockTokens, _ := newTestService()

	user := &models.User{ID: "u1", Email: "awa@example.sn", Password: hashed(t, "secret123")}
	mockDB.On("GetUserByEmail", mock.Anything, "awa@example.sn").Return(user, nil)
	mockTokens.On("IssueToken", "u1").Return("jwt-token", nil)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:      "awa@example.sn",
		MotDePasse: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "Connexion réussie.", resp.Message)
	assert.Equal(t, "jwt-token", resp.Token)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, mockDB, _, _ := newTestService()

	mockDB.On("GetUserByEmail", mock.Anything, mock.Anything).Return(nil, sql.ErrNoRows)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:      "nobody@example.sn",
		MotDePasse: "secret123",
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, mockDB, mockTokens, _ := newTestService()

	user := &models.User{ID: "u1", Email: "awa@example.sn", Password: hashed(t, "secret123")}
	mockDB.On("GetUserByEmail", mock.Anything, mock.Anything).Return(user, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:      "awa@example.sn",
		MotDePasse: "wrong",
	})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	mockTokens.AssertNotCalled(t, "IssueToken", mock.Anything)
}

func TestForgotPassword_StoresTokenAndMails(t *testing.T) {
	svc, mockDB, _, mockMailer := newTestService()

	user := &models.User{ID: "u1", Email: "awa@example.sn"}
	mockDB.On("GetUserByEmail", mock.Anything, "awa@example.sn").Return(user, nil)
	mockDB.On("UpdateUser", mock.Anything, mock.Anything).Return(nil)
	mockMailer.On("SendResetEmail", mock.Anything, mock.Anything).Return(nil)

	err := svc.ForgotPassword(context.Background(), "awa@example.sn")
	require.NoError(t, err)
	assert.Len(t, user.ResetToken, 64)
	assert.True(t, user.ResetTokenExp.After(time.Now()))
	mockMailer.AssertExpectations(t)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	svc, mockDB, _, _ := newTestService()

	mockDB.On("GetUserByEmail", mock.Anything, mock.Anything).Return(nil, sql.ErrNoRows)

	err := svc.ForgotPassword(context.Background(), "nobody@example.sn")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestResetPassword_Success(t *testing.T) {
	svc, mockDB, _, _ := newTestService()

	oldHash := hashed(t, "old-password")
	user := &models.User{
		ID:            "u1",
		Password:      oldHash,
		ResetToken:    "reset-token",
		ResetTokenExp: time.Now().UTC().Add(30 * time.Minute),
	}
	mockDB.On("GetUserByResetToken", mock.Anything, "reset-token").Return(user, nil)
	mockDB.On("UpdateUser", mock.Anything, mock.Anything).Return(nil)

	err := svc.ResetPassword(context.Background(), "reset-token", "new-password")
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, user.Password)
	assert.Empty(t, user.ResetToken)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("new-password")))
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	svc, mockDB, _, _ := newTestService()

	oldHash := hashed(t, "old-password")
	user := &models.User{
		ID:            "u1",
		Password:      oldHash,
		ResetToken:    "reset-token",
		ResetTokenExp: time.Now().UTC().Add(-time.Minute),
	}
	mockDB.On("GetUserByResetToken", mock.Anything, "reset-token").Return(user, nil)

	err := svc.ResetPassword(context.Background(), "reset-token", "new-password")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	// Password stays untouched
	assert.Equal(t, oldHash, user.Password)
	mockDB.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything)
}

func TestResetPassword_UnknownToken(t *testing.T) {
	svc, mockDB, _, _ := newTestService()

	mockDB.On("GetUserByResetToken", mock.Anything, mock.Anything).Return(nil, sql.ErrNoRows)

	err := svc.ResetPassword(context.Background(), "bogus", "new-password")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
