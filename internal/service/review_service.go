package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ieatsighpies/fyp-survey-website/internal/model"
	"github.com/ieatsighpies/fyp-survey-website/internal/repository"
	"github.com/ieatsighpies/fyp-survey-website/internal/session"
	"github.com/ieatsighpies/fyp-survey-website/internal/survey"
)

// ErrQuestionOutOfRange rejects review access to the name question or an
// index past the question list
var ErrQuestionOutOfRange = errors.New("question index out of range")

// ReviewItem is one question presented for review: the original answer, the
// debate exchange recorded for it (if any), and the latest saved revision.
type ReviewItem struct {
	QuestionIndex  int    `json:"questionIndex"`
	QuestionText   string `json:"questionText"`
	OriginalAnswer string `json:"originalAnswer"`
	HasExchange    bool   `json:"hasExchange"`
	UserMessage    string `json:"userMessage,omitempty"`
	AssistantReply string `json:"assistantReply,omitempty"`
	RevisedAnswer  string `json:"revisedAnswer,omitempty"`
}

// ReviewService lets the participant revisit each answer after the debate.
// Saves insert independent records; the original responses and the
// transcript are never mutated.
type ReviewService struct {
	form     *survey.Definition
	sessions *session.Store
	repo     repository.ValidatedAnswerRepo
	logger   zerolog.Logger
}

// NewReviewService creates a new review service
func NewReviewService(form *survey.Definition, sessions *session.Store, repo repository.ValidatedAnswerRepo, logger zerolog.Logger) *ReviewService {
	return &ReviewService{
		form:     form,
		sessions: sessions,
		repo:     repo,
		logger:   logger,
	}
}

// Select returns the review view for question i. Any question may be
// selected repeatedly, in any order.
func (s *ReviewService) Select(state *model.SessionState, i int) (*ReviewItem, error) {
	if state.Stage != model.StageValidate {
		return nil, ErrWrongStage
	}
	if i < 1 || i >= s.form.Count() {
		return nil, ErrQuestionOutOfRange
	}

	q := s.form.Question(i)
	item := &ReviewItem{
		QuestionIndex:  i,
		QuestionText:   q.Prompt,
		OriginalAnswer: state.Responses[q.Key],
	}
	if user, assistant, ok := state.Transcript.ExchangeForQuestion(i); ok {
		item.HasExchange = true
		item.UserMessage = user.Content
		item.AssistantReply = assistant.Content
	}
	if revised, ok := state.Revisions[i]; ok {
		item.RevisedAnswer = revised
	}
	return item, nil
}

// Save records a revised answer for question i. Each save creates a new
// persisted record; a failed insert is logged and the in-session record
// still stands.
func (s *ReviewService) Save(ctx context.Context, state *model.SessionState, i int, revised string) (*model.ValidatedAnswer, error) {
	if state.Stage != model.StageValidate {
		return nil, ErrWrongStage
	}
	if i < 1 || i >= s.form.Count() {
		return nil, ErrQuestionOutOfRange
	}
	revised = strings.TrimSpace(revised)
	if revised == "" {
		return nil, ErrEmptyInput
	}

	q := s.form.Question(i)
	answer := &model.ValidatedAnswer{
		SessionID:       state.ID,
		QuestionIndex:   i,
		QuestionText:    q.Prompt,
		OriginalAnswer:  state.Responses[q.Key],
		RevisedAnswer:   revised,
		ParticipantName: state.Responses["name"],
		CreatedAt:       time.Now().UTC(),
	}

	if s.repo != nil {
		if _, err := s.repo.Insert(ctx, answer); err != nil {
			s.logger.Error().Err(err).Str("session", state.ID).Int("question", i).Msg("validated answer insert failed")
		}
	}

	if state.Revisions == nil {
		state.Revisions = make(map[int]string)
	}
	state.Revisions[i] = revised
	s.sessions.Save(ctx, state)
	return answer, nil
}
