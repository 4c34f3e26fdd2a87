package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ieatsighpies/fyp-survey-website/internal/model"
	"github.com/ieatsighpies/fyp-survey-website/internal/service"
	"github.com/ieatsighpies/fyp-survey-website/internal/session"
	"github.com/ieatsighpies/fyp-survey-website/internal/survey"
)

// ChatHandler handles the debate endpoints. Replies stream back as
// server-sent events so the participant sees fragments as they arrive.
type ChatHandler struct {
	dialogueSvc *service.DialogueService
	sessions    *session.Store
	form        *survey.Definition
}

// NewChatHandler creates a new chat handler
func NewChatHandler(dialogueSvc *service.DialogueService, sessions *session.Store, form *survey.Definition) *ChatHandler {
	return &ChatHandler{
		dialogueSvc: dialogueSvc,
		sessions:    sessions,
		form:        form,
	}
}

// SendChatRequest is the request body for a debate message
type SendChatRequest struct {
	Message string `json:"message"`
}

// Send handles POST /v1/sessions/{sessionId}/chat
//
// Headers are withheld until the first fragment arrives, so failures before
// any output map to plain JSON error responses. Once streaming has begun,
// failures surface as a terminal error event.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	state, ok := loadSession(w, r, h.sessions)
	if !ok {
		return
	}

	var req SendChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flusher, canFlush := w.(http.Flusher)
	streaming := false
	beginStream := func() {
		if streaming {
			return
		}
		streaming = true
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
	}

	onFragment := func(fragment string) {
		if !canFlush {
			return
		}
		beginStream()
		writeEvent(w, "fragment", map[string]string{"text": fragment})
		flusher.Flush()
	}

	reply, err := h.dialogueSvc.Send(r.Context(), state, req.Message, onFragment)
	if err != nil {
		if streaming {
			writeEvent(w, "error", map[string]string{"error": err.Error()})
			flusher.Flush()
			return
		}
		switch {
		case errors.Is(err, service.ErrEmptyInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrBusy), errors.Is(err, service.ErrWrongStage):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrCompletion):
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	done := map[string]interface{}{
		"reply":  reply,
		"cursor": state.Cursor,
		"stage":  state.Stage,
	}
	if state.Stage == model.StageChat {
		q := h.form.Question(state.Cursor)
		done["nextQuestion"] = map[string]interface{}{
			"index":  state.Cursor,
			"prompt": q.Prompt,
			"answer": state.Responses[q.Key],
		}
	}

	if canFlush {
		beginStream()
		writeEvent(w, "done", done)
		flusher.Flush()
		return
	}
	writeJSON(w, http.StatusOK, done)
}

func writeEvent(w http.ResponseWriter, event string, payload interface{}) {
	data, _ := json.Marshal(payload)
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
