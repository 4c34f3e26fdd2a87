package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ieatsighpies/fyp-survey-website/internal/model"
	"github.com/ieatsighpies/fyp-survey-website/internal/session"
	"github.com/ieatsighpies/fyp-survey-website/internal/survey"
)

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	sessions *session.Store
	form     *survey.Definition
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Store, form *survey.Definition) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		form:     form,
	}
}

// sessionView is the state representation returned to the participant
type sessionView struct {
	ID         string                 `json:"id"`
	Stage      model.Stage            `json:"stage"`
	Cursor     int                    `json:"cursor"`
	Responses  model.ResponseSet      `json:"responses,omitempty"`
	Transcript []model.ChatMessage    `json:"transcript,omitempty"`
	Questions  []model.SurveyQuestion `json:"questions,omitempty"`
	Question   *currentQuestionView   `json:"currentQuestion,omitempty"`
}

type currentQuestionView struct {
	Index  int    `json:"index"`
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

func newSessionView(form *survey.Definition, state *model.SessionState, includeQuestions bool) *sessionView {
	view := &sessionView{
		ID:         state.ID,
		Stage:      state.Stage,
		Cursor:     state.Cursor,
		Responses:  state.Responses,
		Transcript: state.Transcript.Messages,
	}
	if includeQuestions {
		view.Questions = form.Questions()
	}
	if state.Stage == model.StageChat && state.Cursor >= 1 && state.Cursor < form.Count() {
		q := form.Question(state.Cursor)
		view.Question = &currentQuestionView{
			Index:  state.Cursor,
			Prompt: q.Prompt,
			Answer: state.Responses[q.Key],
		}
	}
	return view
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.Create(r.Context())
	writeJSON(w, http.StatusCreated, newSessionView(h.form, state, true))
}

// Get handles GET /v1/sessions/{sessionId}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	state, err := h.sessions.Get(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(h.form, state, true))
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func loadSession(w http.ResponseWriter, r *http.Request, sessions *session.Store) (*model.SessionState, bool) {
	state, err := sessions.Get(r.Context(), mux.Vars(r)["sessionId"])
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return state, true
}
