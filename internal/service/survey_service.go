package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ieatsighpies/fyp-survey-website/internal/model"
	"github.com/ieatsighpies/fyp-survey-website/internal/repository"
	"github.com/ieatsighpies/fyp-survey-website/internal/session"
	"github.com/ieatsighpies/fyp-survey-website/internal/survey"
)

// SurveyService accepts survey submissions and moves the session into the
// chat stage
type SurveyService struct {
	form       *survey.Definition
	sessions   *session.Store
	surveyRepo repository.SurveyResponseRepo
	sink       FragmentSink
	logger     zerolog.Logger
}

// NewSurveyService creates a new survey service
func NewSurveyService(form *survey.Definition, sessions *session.Store, surveyRepo repository.SurveyResponseRepo, logger zerolog.Logger) *SurveyService {
	return &SurveyService{
		form:       form,
		sessions:   sessions,
		surveyRepo: surveyRepo,
		logger:     logger,
	}
}

// SetSink sets the presentation event sink
func (s *SurveyService) SetSink(sink FragmentSink) {
	s.sink = sink
}

// Submit validates a candidate submission. On acceptance the session's
// responses are populated atomically, the response document is persisted,
// and the session advances to the chat stage. A rejected submission
// (*survey.IncompleteError) leaves the session untouched. A failed insert is
// logged and the session continues with in-memory state only.
func (s *SurveyService) Submit(ctx context.Context, state *model.SessionState, candidate map[string]string) error {
	if state.Stage != model.StageSurvey {
		return model.ErrBadTransition
	}

	responses, err := s.form.Submit(candidate)
	if err != nil {
		return err
	}

	state.Responses = responses
	if err := state.AdvanceTo(model.StageChat); err != nil {
		return err
	}

	if s.surveyRepo != nil {
		if _, err := s.surveyRepo.Insert(ctx, state.ID, responses); err != nil {
			s.logger.Error().Err(err).Str("session", state.ID).Msg("survey response insert failed")
		}
	}

	s.sessions.Save(ctx, state)
	if s.sink != nil {
		s.sink.StageChanged(state.ID, state.Stage)
	}
	return nil
}
