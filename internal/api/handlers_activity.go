package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/innometrics/innometrics-backend/internal/api/respond"
	"github.com/innometrics/innometrics-backend/internal/auth"
	"github.com/innometrics/innometrics-backend/internal/model"
	"github.com/innometrics/innometrics-backend/internal/services"
)

// ActivityHandler serves activity ingestion, deletion and querying.
type ActivityHandler struct {
	activities *services.ActivityService
	log        zerolog.Logger
}

func NewActivityHandler(activities *services.ActivityService, log zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{activities: activities, log: log}
}

// Submit POST /api/activities accepts either a single activity or a batch:
//
//	{"activity": {...}}            -> {"message":"Success","activity_id":...}
//	{"activities": [{...}, ...]}   -> {"message":"Success","activity_ids":[...]}
//
// A batch either lands completely or not at all.
func (h *ActivityHandler) Submit(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFrom(r.Context())
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "Failed to authenticate")
		return
	}

	var in struct {
		Activity   *model.ActivityPayload  `json:"activity"`
		Activities []model.ActivityPayload `json:"activities"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.WriteBadRequest(w, "Wrong format")
		return
	}

	switch {
	case in.Activity != nil && in.Activities == nil:
		id, err := h.activities.Submit(r.Context(), u.UserID, *in.Activity)
		if err != nil {
			writeServiceError(w, err, "Activity with this id was not found")
			return
		}
		respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
			"message":     "Success",
			"activity_id": id,
		})
	case in.Activities != nil && in.Activity == nil:
		ids, err := h.activities.SubmitBatch(r.Context(), u.UserID, in.Activities)
		if err != nil {
			writeServiceError(w, err, "Activity with this id was not found")
			return
		}
		respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
			"message":      "Success",
			"activity_ids": ids,
		})
	default:
		respond.WriteBadRequest(w, "Wrong format")
	}
}

// Delete DELETE /api/activities/{activityId}
func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFrom(r.Context()); !ok {
		respond.WriteError(w, http.StatusUnauthorized, "Failed to authenticate")
		return
	}
	id := mux.Vars(r)["activityId"]
	if err := h.activities.DeleteActivity(r.Context(), id); err != nil {
		writeServiceError(w, err, "Activity with this id was not found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, respond.Message{Message: "Success"})
}

// Find GET /api/activities returns the authenticated user's records.
func (h *ActivityHandler) Find(w http.ResponseWriter, r *http.Request) {
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
	out, err := h.activities.FindActivities(r.Context(), u.UserID, req)
	if err != nil {
		writeServiceError(w, err, "Activities of current user were not found")
		return
	}
	if len(out) == 0 {
		respond.WriteNotFound(w, "Activities of current user were not found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Success",
		"activities": out,
	})
}

// parseFindRequest decodes the shared query parameters for activity
// listing: offset, amount_to_return, an optional filters object
// (URL-encoded JSON of column to exact value), and an optional
// start_time/end_time window in RFC 3339.
func parseFindRequest(q url.Values) (model.FindActivitiesRequest, error) {
	var req model.FindActivitiesRequest

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return req, fmt.Errorf("wrong format for offset")
		}
		req.Offset = n
	}
	if v := q.Get("amount_to_return"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return req, fmt.Errorf("wrong format for amount_to_return")
		}
		req.Limit = n
	}
	if v := q.Get("filters"); v != "" {
		var filters map[string]string
		if err := json.Unmarshal([]byte(v), &filters); err != nil {
			return req, fmt.Errorf("wrong format for filters")
		}
		req.Filters = filters
	}
	if v := q.Get("start_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return req, fmt.Errorf("wrong format for start_time")
		}
		req.StartTime = &t
	}
	if v := q.Get("end_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return req, fmt.Errorf("wrong format for end_time")
		}
		req.EndTime = &t
	}
	return req, nil
}
