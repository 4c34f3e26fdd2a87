package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ieatsighpies/fyp-survey-website/internal/service"
	"github.com/ieatsighpies/fyp-survey-website/internal/session"
)

// ReviewHandler handles the validate-stage endpoints
type ReviewHandler struct {
	reviewSvc *service.ReviewService
	sessions  *session.Store
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewSvc *service.ReviewService, sessions *session.Store) *ReviewHandler {
	return &ReviewHandler{
		reviewSvc: reviewSvc,
		sessions:  sessions,
	}
}

// SaveReviewRequest is the request body for saving a revised answer
type SaveReviewRequest struct {
	RevisedAnswer string `json:"revisedAnswer"`
}

// Select handles GET /v1/sessions/{sessionId}/review/{questionIndex}
func (h *ReviewHandler) Select(w http.ResponseWriter, r *http.Request) {
	state, ok := loadSession(w, r, h.sessions)
	if !ok {
		return
	}

	index, err := strconv.Atoi(mux.Vars(r)["questionIndex"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question index")
		return
	}

	item, err := h.reviewSvc.Select(state, index)
	if err != nil {
		writeReviewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Save handles POST /v1/sessions/{sessionId}/review/{questionIndex}
func (h *ReviewHandler) Save(w http.ResponseWriter, r *http.Request) {
	state, ok := loadSession(w, r, h.sessions)
	if !ok {
		return
	}

	index, err := strconv.Atoi(mux.Vars(r)["questionIndex"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question index")
		return
	}

	var req SaveReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := h.reviewSvc.Save(r.Context(), state, index, req.RevisedAnswer)
	if err != nil {
		writeReviewError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, answer)
}

func writeReviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrQuestionOutOfRange):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrWrongStage):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
