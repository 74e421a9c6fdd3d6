package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/innometrics/innometrics-backend/internal/api/respond"
	"github.com/innometrics/innometrics-backend/internal/api/validate"
	"github.com/innometrics/innometrics-backend/internal/auth"
	"github.com/innometrics/innometrics-backend/internal/model"
	"github.com/innometrics/innometrics-backend/internal/services"
)

// AuthHandler serves login and logout.
type AuthHandler struct {
	users  *services.UserService
	tokens auth.Config
	log    zerolog.Logger
}

func NewAuthHandler(users *services.UserService, tokens auth.Config, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, log: log}
}

// Login POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "Not enough data provided")
		return
	}
	if err := validate.Login(in.Email, in.Password); err != nil {
		respond.WriteBadRequest(w, "Not enough data provided")
		return
	}

	u, err := h.users.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "User not found")
			return
		}
		if errors.Is(err, model.ErrUnauthenticated) {
			respond.WriteError(w, http.StatusUnauthorized, "Failed to authenticate")
			return
		}
		h.log.Error().Stack().Err(err).Msg("login failed")
		respond.WriteInternalError(w, "Something bad happened")
		return
	}

	token, err := auth.Issue(u.UserID, h.tokens)
	if err != nil {
		h.log.Error().Stack().Err(err).Msg("token issuance failed")
		respond.WriteInternalError(w, "Something bad happened")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Success",
		"token":   token,
	})
}

// Logout POST /api/logout
//
// Tokens are stateless, so there is no server-side session to destroy;
// the endpoint is kept for client compatibility.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, respond.Message{Message: "Success"})
}
