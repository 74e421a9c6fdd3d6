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

// UserHandler serves registration and account deletion.
type UserHandler struct {
	users *services.UserService
	log   zerolog.Logger
}

func NewUserHandler(users *services.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

// Register POST /api/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Surname  string `json:"surname"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "Not enough data provided")
		return
	}
	if err := validate.Register(in.Email, in.Password, in.Name, in.Surname); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	if _, err := h.users.Register(r.Context(), in.Email, in.Password, in.Name, in.Surname); err != nil {
		if errors.Is(err, model.ErrConflict) {
			respond.WriteConflict(w, "User already exists")
			return
		}
		h.log.Error().Stack().Err(err).Msg("user registration failed")
		respond.WriteInternalError(w, "Something bad happened")
		return
	}
	respond.WriteJSON(w, http.StatusOK, respond.Message{Message: "Success"})
}

// Delete DELETE /api/users removes the authenticated user's account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "Failed to authenticate")
		return
	}
	if err := h.users.DeleteUser(r.Context(), u.UserID); err != nil {
		writeServiceError(w, err, "User not found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, respond.Message{Message: "Success"})
}
