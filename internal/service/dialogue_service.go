package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ieatsighpies/fyp-survey-website/internal/llm"
	"github.com/ieatsighpies/fyp-survey-website/internal/model"
	"github.com/ieatsighpies/fyp-survey-website/internal/repository"
	"github.com/ieatsighpies/fyp-survey-website/internal/session"
	"github.com/ieatsighpies/fyp-survey-website/internal/survey"
)

var (
	// ErrEmptyInput rejects a blank chat submission; nothing advances
	ErrEmptyInput = errors.New("chat input must not be empty")
	// ErrWrongStage rejects chat sends outside the chat stage
	ErrWrongStage = errors.New("session is not in the chat stage")
	// ErrBusy rejects a second send while a reply is still streaming
	ErrBusy = errors.New("a reply is already being generated for this session")
	// ErrCompletion wraps completion service failures; the transcript and
	// cursor are untouched and the send may be retried
	ErrCompletion = errors.New("completion service failed")
)

// DialogueService runs the devil's-advocate debate: one user/assistant
// exchange per survey question, advancing the cursor until every question
// has been debated, then handing the session to the validate stage.
type DialogueService struct {
	form      *survey.Definition
	sessions  *session.Store
	completer llm.Completer
	chatRepo  repository.ChatLogRepo
	sink      FragmentSink
	inflight  sync.Map
	logger    zerolog.Logger
}

// NewDialogueService creates a new dialogue service
func NewDialogueService(form *survey.Definition, sessions *session.Store, completer llm.Completer, chatRepo repository.ChatLogRepo, logger zerolog.Logger) *DialogueService {
	return &DialogueService{
		form:      form,
		sessions:  sessions,
		completer: completer,
		chatRepo:  chatRepo,
		logger:    logger,
	}
}

// SetSink sets the presentation event sink
func (s *DialogueService) SetSink(sink FragmentSink) {
	s.sink = sink
}

// CurrentQuestion returns the question under debate and the participant's
// original answer to it. ok is false once the cursor is exhausted.
func (s *DialogueService) CurrentQuestion(state *model.SessionState) (q model.SurveyQuestion, answer string, ok bool) {
	if state.Cursor < 1 || state.Cursor >= s.form.Count() {
		return model.SurveyQuestion{}, "", false
	}
	q = s.form.Question(state.Cursor)
	return q, state.Responses[q.Key], true
}

// Send runs one debate cycle for the question at the session's cursor:
// inject the system prompt if absent, invoke the completion service with the
// conversation so far plus the participant's text, stream fragments through
// onFragment and the sink, then append the exchange, persist it, and advance
// the cursor. When the cursor exhausts the questions the session moves to
// the validate stage.
//
// On completion failure nothing is appended and the cursor does not move, so
// the transcript never holds a user message without its assistant reply.
func (s *DialogueService) Send(ctx context.Context, state *model.SessionState, text string, onFragment func(string)) (string, error) {
	if state.Stage != model.StageChat {
		return "", fmt.Errorf("%w: stage is %s", ErrWrongStage, state.Stage)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}
	if state.Cursor >= s.form.Count() {
		return "", fmt.Errorf("%w: all questions debated", ErrWrongStage)
	}

	if _, loaded := s.inflight.LoadOrStore(state.ID, struct{}{}); loaded {
		return "", ErrBusy
	}
	defer s.inflight.Delete(state.ID)

	state.Transcript.EnsureSystemPrompt(s.systemPrompt(state))

	questionIndex := state.Cursor
	user := model.ChatMessage{Role: model.RoleUser, Content: text, QuestionIndex: questionIndex}

	// The request carries the user message before the transcript does, so a
	// failed completion leaves no dangling half of an exchange behind.
	request := make([]model.ChatMessage, 0, state.Transcript.Len()+1)
	request = append(request, state.Transcript.Messages...)
	request = append(request, user)

	emit := func(fragment string) {
		if onFragment != nil {
			onFragment(fragment)
		}
		if s.sink != nil {
			s.sink.Fragment(state.ID, questionIndex, fragment)
		}
	}

	reply, err := s.completer.Complete(ctx, request, emit)
	if err != nil {
		s.logger.Warn().Err(err).Str("session", state.ID).Int("question", questionIndex).Msg("completion failed")
		return "", fmt.Errorf("%w: %v", ErrCompletion, err)
	}

	state.Transcript.Append(user)
	state.Transcript.Append(model.ChatMessage{Role: model.RoleAssistant, Content: reply, QuestionIndex: questionIndex})

	if s.chatRepo != nil {
		log := &model.ChatLog{
			SessionID:         state.ID,
			QuestionIndex:     questionIndex,
			UserMessage:       text,
			AssistantResponse: reply,
			CreatedAt:         time.Now().UTC(),
		}
		if _, err := s.chatRepo.Insert(ctx, log); err != nil {
			s.logger.Error().Err(err).Str("session", state.ID).Int("question", questionIndex).Msg("chat log insert failed")
		}
	}

	state.Cursor++
	if s.sink != nil {
		s.sink.Done(state.ID, questionIndex)
	}

	if state.Cursor >= s.form.Count() {
		if err := state.AdvanceTo(model.StageValidate); err == nil && s.sink != nil {
			s.sink.StageChanged(state.ID, state.Stage)
		}
	}

	s.sessions.Save(ctx, state)
	return reply, nil
}

// systemPrompt embeds the full question list and the participant's non-name
// answers, instructing the assistant to argue against each of them.
func (s *DialogueService) systemPrompt(state *model.SessionState) string {
	var b strings.Builder
	b.WriteString("You are a devil's advocate. Convince the participant to pick an alternative option. ")
	b.WriteString("For multiple choice questions, argue for the option they did not pick. ")
	b.WriteString("For free-text answers, challenge the reasoning behind them. ")
	b.WriteString("Be assertive, relevant, and focus on each survey answer separately.\n\n")
	b.WriteString("Survey questions and the participant's answers:\n")
	for i, q := range s.form.Questions() {
		if i == 0 {
			continue // name is never debated
		}
		fmt.Fprintf(&b, "%d. %s They answered: %q\n", i, q.Prompt, state.Responses[q.Key])
	}
	return b.String()
}
