package api

import (
	"errors"
	"net/http"

	"github.com/innometrics/innometrics-backend/internal/api/respond"
	"github.com/innometrics/innometrics-backend/internal/model"
)

// writeServiceError maps the service error taxonomy onto status codes.
// notFoundMsg lets endpoints keep their historical 404 wording.
func writeServiceError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrUnauthenticated):
		respond.WriteError(w, http.StatusUnauthorized, "Failed to authenticate")
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, notFoundMsg)
	case errors.Is(err, model.ErrConflict):
		respond.WriteConflict(w, err.Error())
	default:
		respond.WriteInternalError(w, "Something bad happened")
	}
}
