package service

import (
	"context"
	"strings"
	"sync"

	"github.com/ieatsighpies/fyp-survey-website/internal/model"
)

// fakeCompleter emits canned fragments and records every request it sees
type fakeCompleter struct {
	fragments []string
	err       error
	failAfter int // with err set, emit this many fragments before failing

	requests [][]model.ChatMessage
}

func (f *fakeCompleter) Complete(_ context.Context, messages []model.ChatMessage, onFragment func(string)) (string, error) {
	snapshot := make([]model.ChatMessage, len(messages))
	copy(snapshot, messages)
	f.requests = append(f.requests, snapshot)

	fragments := f.fragments
	if len(fragments) == 0 {
		fragments = []string{"disagree", " strongly"}
	}

	var reply strings.Builder
	for i, fragment := range fragments {
		if f.err != nil && i == f.failAfter {
			return "", f.err
		}
		reply.WriteString(fragment)
		if onFragment != nil {
			onFragment(fragment)
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return reply.String(), nil
}

type fakeChatLogRepo struct {
	logs []*model.ChatLog
	err  error
}

func (r *fakeChatLogRepo) Insert(_ context.Context, log *model.ChatLog) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.logs = append(r.logs, log)
	return "id", nil
}

type fakeSurveyRepo struct {
	inserted []model.ResponseSet
	err      error
}

func (r *fakeSurveyRepo) Insert(_ context.Context, _ string, responses model.ResponseSet) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.inserted = append(r.inserted, responses.Clone())
	return "id", nil
}

type fakeValidatedRepo struct {
	records []*model.ValidatedAnswer
	err     error
}

func (r *fakeValidatedRepo) Insert(_ context.Context, answer *model.ValidatedAnswer) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.records = append(r.records, answer)
	return "id", nil
}

// fakeSink records sink events in arrival order
type fakeSink struct {
	mu     sync.Mutex
	events []string
}

func (s *fakeSink) Fragment(_ string, _ int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "fragment:"+text)
}

func (s *fakeSink) Done(_ string, _ int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "done")
}

func (s *fakeSink) StageChanged(_ string, stage model.Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "stage:"+string(stage))
}

func (s *fakeSink) stageEvents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.events {
		if strings.HasPrefix(e, "stage:") {
			out = append(out, e)
		}
	}
	return out
}

func adaResponses() map[string]string {
	return map[string]string{
		"name":         "Ada",
		"simple_qn_1":  "Pizza",
		"simple_qn_2":  "Arts",
		"medium_qn_1":  "Bus",
		"medium_qn_2":  "Vegan",
		"complex_qn_1": "travel light",
		"complex_qn_2": "family",
	}
}
