package model

import (
	"errors"
	"fmt"
	"time"
)

// Stage is the top-level phase of a participant session
type Stage string

const (
	StageSurvey   Stage = "survey"
	StageChat     Stage = "chat"
	StageValidate Stage = "validate"
)

// ErrBadTransition is returned for any stage edge other than
// survey -> chat and chat -> validate
var ErrBadTransition = errors.New("stage transition not allowed")

// SessionState is the complete state of one participant's run. It is owned
// by that session alone; there is no cross-session sharing.
type SessionState struct {
	ID         string         `json:"id"`
	Stage      Stage          `json:"stage"`
	Responses  ResponseSet    `json:"responses"`
	Transcript Transcript     `json:"transcript"`
	Cursor     int            `json:"cursor"`
	Revisions  map[int]string `json:"revisions,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// NewSessionState returns a fresh session in the survey stage. The cursor
// starts at 1: the name question at index 0 is never debated.
func NewSessionState(id string) *SessionState {
	now := time.Now().UTC()
	return &SessionState{
		ID:        id,
		Stage:     StageSurvey,
		Responses: ResponseSet{},
		Cursor:    1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AdvanceTo applies a stage transition. Every transition is one-way; a
// participant cannot return to an earlier stage.
func (s *SessionState) AdvanceTo(next Stage) error {
	switch {
	case s.Stage == StageSurvey && next == StageChat:
	case s.Stage == StageChat && next == StageValidate:
	default:
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, s.Stage, next)
	}
	s.Stage = next
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Touch bumps the modification timestamp
func (s *SessionState) Touch() {
	s.UpdatedAt = time.Now().UTC()
}
