package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ieatsighpies/fyp-survey-website/internal/service"
	"github.com/ieatsighpies/fyp-survey-website/internal/session"
	"github.com/ieatsighpies/fyp-survey-website/internal/survey"
)

// SurveyHandler handles survey submission endpoints
type SurveyHandler struct {
	surveySvc *service.SurveyService
	sessions  *session.Store
	form      *survey.Definition
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveySvc *service.SurveyService, sessions *session.Store, form *survey.Definition) *SurveyHandler {
	return &SurveyHandler{
		surveySvc: surveySvc,
		sessions:  sessions,
		form:      form,
	}
}

// SubmitSurveyRequest is the request body for submitting the survey
type SubmitSurveyRequest struct {
	Responses map[string]string `json:"responses"`
}

// Submit handles POST /v1/sessions/{sessionId}/survey
func (h *SurveyHandler) Submit(w http.ResponseWriter, r *http.Request) {
	state, ok := loadSession(w, r, h.sessions)
	if !ok {
		return
	}

	var req SubmitSurveyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.surveySvc.Submit(r.Context(), state, req.Responses); err != nil {
		var incomplete *survey.IncompleteError
		if errors.As(err, &incomplete) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":  "incomplete survey submission",
				"fields": incomplete.Fields,
			})
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, newSessionView(h.form, state, false))
}
