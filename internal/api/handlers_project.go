package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/innometrics/innometrics-backend/internal/api/respond"
	"github.com/innometrics/innometrics-backend/internal/api/validate"
	"github.com/innometrics/innometrics-backend/internal/auth"
	"github.com/innometrics/innometrics-backend/internal/model"
	"github.com/innometrics/innometrics-backend/internal/services"
)

// ProjectHandler serves project creation, listing, invitations and
// project-scoped activity queries.
type ProjectHandler struct {
	projects *services.ProjectService
	log      zerolog.Logger
}

func NewProjectHandler(projects *services.ProjectService, log zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, log: log}
}

// Create POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "Failed to authenticate")
		return
	}
	var in struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "Wrong format")
		return
	}
	if err := validate.ProjectTitle(in.Title); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	p, err := h.projects.CreateProject(r.Context(), u.UserID, in.Title)
	if err != nil {
		writeServiceError(w, err, "Project not found")
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Success",
		"project_id": p.ProjectID,
	})
}

// List GET /api/projects returns projects the user manages or belongs to.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "Failed to authenticate")
		return
	}
	out, err := h.projects.ListProjects(r.Context(), u.UserID)
	if err != nil {
		writeServiceError(w, err, "Project not found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Success",
		"projects": out,
	})
}

// Invite POST /api/projects/{projectId}/invitations adds a user to the
// project by email. Manager only.
func (h *ProjectHandler) Invite(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "Failed to authenticate")
		return
	}
	var in struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "Wrong format")
		return
	}
	if err := validate.Email(in.Email); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	projectID := mux.Vars(r)["projectId"]
	if err := h.projects.Invite(r.Context(), u.UserID, projectID, in.Email); err != nil {
		if errors.Is(err, model.ErrConflict) {
			respond.WriteConflict(w, "User is already a project member")
			return
		}
		writeServiceError(w, err, "Project or user not found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, respond.Message{Message: "Success"})
}

// Activities GET /api/projects/{projectId}/activities queries records
// across all project members. Members only.
func (h *ProjectHandler) Activities(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "Failed to authenticate")
		return
	}
	req, err := parseFindRequest(r.URL.Query())
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	projectID := mux.Vars(r)["projectId"]
	out, err := h.projects.FindActivities(r.Context(), u.UserID, projectID, req)
	if err != nil {
		writeServiceError(w, err, "Project not found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Success",
		"activities": out,
	})
}
