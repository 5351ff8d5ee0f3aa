package user_api

import (
	"encoding/json"
	"net/http"

	"nudem-backend/internal/apperr"
	"nudem-backend/internal/logger"
	"nudem-backend/internal/models"
	"nudem-backend/internal/users"
)

type Handler struct {
	UserService *users.Service
	Logger      *logger.Logger
}

func NewHandler(userService *users.Service, log *logger.Logger) *Handler {
	return &Handler{UserService: userService, Logger: log}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	if status >= 500 {
		h.Logger.Error("AUTH", err.Error())
	}
	h.writeJSON(w, status, map[string]string{"message": apperr.Public(err)})
}

// Register handles POST /auth/inscription.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.Validation("body", "is not valid JSON"))
		return
	}

	resp, err := h.UserService.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /auth/connexion.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.Validation("body", "is not valid JSON"))
		return
	}

	resp, err := h.UserService.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// ForgotPassword handles POST /auth/forgot-password.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.Validation("body", "is not valid JSON"))
		return
	}

	if err := h.UserService.ForgotPassword(r.Context(), req.Email); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Un lien de réinitialisation a été envoyé à votre adresse email.",
	})
}

// ResetPassword handles POST /auth/reset-password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.Validation("body", "is not valid JSON"))
		return
	}

	if err := h.UserService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Mot de passe réinitialisé avec succès."})
}
