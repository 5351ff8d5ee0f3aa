package user_api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"nudem-backend/internal/auth"
	"nudem-backend/internal/logger"
	"nudem-backend/internal/models"
	"nudem-backend/internal/users"
	"nudem-backend/internal/users/user_api"
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

func setupRouter(mockDB *MockDBLayer, mockMailer *MockMailer) chi.Router {
	issuer := auth.NewIssuer("test-secret", time.Hour)
	svc := users.NewService(mockDB, issuer, mockMailer, logger.NewNop())
	h := user_api.NewHandler(svc, logger.NewNop())

	r := chi.NewRouter()
	r.Post("/auth/inscription", h.Register)
	r.Post("/auth/connexion", h.Login)
	r.Post("/auth/forgot-password", h.ForgotPassword)
	r.Post("/auth/reset-password", h.ResetPassword)
	return r
}

func TestRegister_Endpoint(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockMailer := new(MockMailer)
	r := setupRouter(mockDB, mockMailer)

	mockDB.On("GetUserByEmail", mock.Anything, "awa@example.sn").Return(nil, sql.ErrNoRows)
	mockDB.On("CreateUser", mock.Anything, mock.Anything).Return(nil)
	mockMailer.On("SendConfirmationEmail", mock.Anything).Return(nil)

	body, _ := json.Marshal(models.RegisterRequest{
		Prenom:     "Awa",
		Nom:        "Ndiaye",
		Email:      "awa@example.sn",
		MotDePasse: "secret123",
	})
	req := httptest.NewRequest(http.MethodPost, "/auth/inscription", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Inscription réussie.", resp.Message)
	assert.NotEmpty(t, resp.Token)
	// The stored password hash never leaves the API
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	mockDB := new(MockDBLayer)
	r := setupRouter(mockDB, new(MockMailer))

	existing := &models.User{ID: "u1", Email: "awa@example.sn"}
	mockDB.On("GetUserByEmail", mock.Anything, "awa@example.sn").Return(existing, nil)

	body, _ := json.Marshal(models.RegisterRequest{
		Prenom:     "Awa",
		Nom:        "Ndiaye",
		Email:      "awa@example.sn",
		MotDePasse: "secret123",
	})
	req := httptest.NewRequest(http.MethodPost, "/auth/inscription", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_Endpoint(t *testing.T) {
	mockDB := new(MockDBLayer)
	r := setupRouter(mockDB, new(MockMailer))

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: "u1", Email: "awa@example.sn", Password: string(hash)}
	mockDB.On("GetUserByEmail", mock.Anything, "awa@example.sn").Return(user, nil)

	body, _ := json.Marshal(models.LoginRequest{Email: "awa@example.sn", MotDePasse: "secret123"})
	req := httptest.NewRequest(http.MethodPost, "/auth/connexion", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Connexion réussie.", resp.Message)
	assert.NotEmpty(t, resp.Token)
}

func TestLogin_WrongPassword(t *testing.T) {
	mockDB := new(MockDBLayer)
	r := setupRouter(mockDB, new(MockMailer))

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{ID: "u1", Email: "awa@example.sn", Password: string(hash)}
	mockDB.On("GetUserByEmail", mock.Anything, "awa@example.sn").Return(user, nil)

	body, _ := json.Marshal(models.LoginRequest{Email: "awa@example.sn", MotDePasse: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/auth/connexion", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestForgotPassword_Endpoint(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockMailer := new(MockMailer)
	r := setupRouter(mockDB, mockMailer)

	user := &models.User{ID: "u1", Email: "awa@example.sn"}
	mockDB.On("GetUserByEmail", mock.Anything, "awa@example.sn").Return(user, nil)
	mockDB.On("UpdateUser", mock.Anything, mock.Anything).Return(nil)
	mockMailer.On("SendResetEmail", mock.Anything, mock.Anything).Return(nil)

	body, _ := json.Marshal(models.ForgotPasswordRequest{Email: "awa@example.sn"})
	req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockMailer.AssertExpectations(t)
}

func TestResetPassword_InvalidToken(t *testing.T) {
	mockDB := new(MockDBLayer)
	r := setupRouter(mockDB, new(MockMailer))

	mockDB.On("GetUserByResetToken", mock.Anything, "bogus").Return(nil, sql.ErrNoRows)

	body, _ := json.Marshal(models.ResetPasswordRequest{Token: "bogus", NewPassword: "new-password"})
	req := httptest.NewRequest(http.MethodPost, "/auth/reset-password", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
