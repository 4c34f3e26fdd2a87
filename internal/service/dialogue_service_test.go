package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieatsighpies/fyp-survey-website/internal/model"
	"github.com/ieatsighpies/fyp-survey-website/internal/session"
	"github.com/ieatsighpies/fyp-survey-website/internal/survey"
)

func newChatSession(t *testing.T) (*session.Store, *model.SessionState) {
	t.Helper()
	store := session.NewStore(nil, zerolog.Nop())
	state := store.Create(context.Background())

	form := survey.Default()
	responses, err := form.Submit(adaResponses())
	require.NoError(t, err)
	state.Responses = responses
	require.NoError(t, state.AdvanceTo(model.StageChat))
	return store, state
}

func newDialogue(store *session.Store, completer *fakeCompleter, repo *fakeChatLogRepo) *DialogueService {
	return NewDialogueService(survey.Default(), store, completer, repo, zerolog.Nop())
}

func TestSendRunsOneDebateCycle(t *testing.T) {
	store, state := newChatSession(t)
	completer := &fakeCompleter{fragments: []string{"Pizza", " is", " overrated"}}
	repo := &fakeChatLogRepo{}
	svc := newDialogue(store, completer, repo)

	reply, err := svc.Send(context.Background(), state, "I just like pizza", nil)
	require.NoError(t, err)
	assert.Equal(t, "Pizza is overrated", reply)

	// System prompt injected first, then the exchange
	require.Equal(t, 3, state.Transcript.Len())
	assert.Equal(t, model.RoleSystem, state.Transcript.Messages[0].Role)
	assert.Equal(t, model.RoleUser, state.Transcript.Messages[1].Role)
	assert.Equal(t, "I just like pizza", state.Transcript.Messages[1].Content)
	assert.Equal(t, model.RoleAssistant, state.Transcript.Messages[2].Role)
	assert.Equal(t, "Pizza is overrated", state.Transcript.Messages[2].Content)

	// The completion request was [system, user]
	require.Len(t, completer.requests, 1)
	request := completer.requests[0]
	require.Len(t, request, 2)
	assert.Equal(t, model.RoleSystem, request[0].Role)
	assert.Equal(t, model.RoleUser, request[1].Role)

	// Cursor advanced, exchange persisted
	assert.Equal(t, 2, state.Cursor)
	require.Len(t, repo.logs, 1)
	assert.Equal(t, 1, repo.logs[0].QuestionIndex)
	assert.Equal(t, "I just like pizza", repo.logs[0].UserMessage)
	assert.Equal(t, "Pizza is overrated", repo.logs[0].AssistantResponse)
}

func TestSendSystemPromptEmbedsAnswers(t *testing.T) {
	store, state := newChatSession(t)
	completer := &fakeCompleter{}
	svc := newDialogue(store, completer, &fakeChatLogRepo{})

	_, err := svc.Send(context.Background(), state, "because", nil)
	require.NoError(t, err)

	prompt := state.Transcript.Messages[0].Content
	assert.Contains(t, prompt, "devil's advocate")
	assert.Contains(t, prompt, "Do you prefer pizza or sushi?")
	assert.Contains(t, prompt, `"Pizza"`)
	assert.Contains(t, prompt, `"travel light"`)
	// The name answer is never debated
	assert.NotContains(t, prompt, "Ada")
}

func TestSendInjectsSystemPromptOnce(t *testing.T) {
	store, state := newChatSession(t)
	svc := newDialogue(store, &fakeCompleter{}, &fakeChatLogRepo{})
	ctx := context.Background()

	_, err := svc.Send(ctx, state, "first", nil)
	require.NoError(t, err)
	_, err = svc.Send(ctx, state, "second", nil)
	require.NoError(t, err)

	systemCount := 0
	for _, m := range state.Transcript.Messages {
		if m.Role == model.RoleSystem {
			systemCount++
		}
	}
	assert.Equal(t, 1, systemCount)
	assert.Equal(t, model.RoleSystem, state.Transcript.Messages[0].Role)
}

func TestSendEmptyInputDoesNotAdvance(t *testing.T) {
	store, state := newChatSession(t)
	completer := &fakeCompleter{}
	svc := newDialogue(store, completer, &fakeChatLogRepo{})

	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := svc.Send(context.Background(), state, input, nil)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}

	assert.Zero(t, state.Transcript.Len())
	assert.Equal(t, 1, state.Cursor)
	assert.Empty(t, completer.requests)
}

func TestSendWrongStage(t *testing.T) {
	store := session.NewStore(nil, zerolog.Nop())
	state := store.Create(context.Background())
	svc := newDialogue(store, &fakeCompleter{}, &fakeChatLogRepo{})

	_, err := svc.Send(context.Background(), state, "hello", nil)
	assert.ErrorIs(t, err, ErrWrongStage)
}

func TestSendCompletionFailureLeavesNoDanglingUserMessage(t *testing.T) {
	store, state := newChatSession(t)
	completer := &fakeCompleter{
		fragments: []string{"partial", " output"},
		err:       assert.AnError,
		failAfter: 1,
	}
	repo := &fakeChatLogRepo{}
	svc := newDialogue(store, completer, repo)

	_, err := svc.Send(context.Background(), state, "I just like pizza", nil)
	assert.ErrorIs(t, err, ErrCompletion)

	// No user message without its paired assistant reply, cursor untouched,
	// nothing persisted
	for _, m := range state.Transcript.Messages {
		assert.NotEqual(t, model.RoleUser, m.Role)
	}
	assert.Equal(t, 1, state.Cursor)
	assert.Empty(t, repo.logs)

	// The send can be retried
	completer.err = nil
	reply, err := svc.Send(context.Background(), state, "I just like pizza", nil)
	require.NoError(t, err)
	assert.Equal(t, "partial output", reply)
	assert.Equal(t, 2, state.Cursor)
}

func TestSendStreamsFragmentsInOrder(t *testing.T) {
	store, state := newChatSession(t)
	fragments := []string{"you", " should", " try", " sushi"}
	svc := newDialogue(store, &fakeCompleter{fragments: fragments}, &fakeChatLogRepo{})
	sink := &fakeSink{}
	svc.SetSink(sink)

	var seen []string
	reply, err := svc.Send(context.Background(), state, "pizza forever", func(fragment string) {
		seen = append(seen, fragment)
	})
	require.NoError(t, err)

	assert.Equal(t, fragments, seen)
	assert.Equal(t, strings.Join(fragments, ""), reply)

	want := []string{"fragment:you", "fragment: should", "fragment: try", "fragment: sushi", "done"}
	assert.Equal(t, want, sink.events)
}

func TestCursorExhaustionTransitionsToValidateOnce(t *testing.T) {
	store, state := newChatSession(t)
	completer := &fakeCompleter{}
	svc := newDialogue(store, completer, &fakeChatLogRepo{})
	sink := &fakeSink{}
	svc.SetSink(sink)
	ctx := context.Background()

	// Six debated questions: cursor 1 through 6
	for i := 1; i <= 6; i++ {
		_, err := svc.Send(ctx, state, fmt.Sprintf("answer %d", i), nil)
		require.NoError(t, err)
		assert.Equal(t, i+1, state.Cursor)
	}

	assert.Equal(t, model.StageValidate, state.Stage)
	assert.Equal(t, []string{"stage:validate"}, sink.stageEvents())

	// No further completion calls once the debate is over
	_, err := svc.Send(ctx, state, "one more", nil)
	assert.ErrorIs(t, err, ErrWrongStage)
	assert.Len(t, completer.requests, 6)
}

func TestExchangesRecoverableAfterFullDebate(t *testing.T) {
	store, state := newChatSession(t)
	svc := newDialogue(store, &fakeCompleter{}, &fakeChatLogRepo{})
	ctx := context.Background()

	for i := 1; i <= 6; i++ {
		_, err := svc.Send(ctx, state, fmt.Sprintf("my reasoning %d", i), nil)
		require.NoError(t, err)
	}

	for i := 1; i <= 6; i++ {
		user, assistant, ok := state.Transcript.ExchangeForQuestion(i)
		require.True(t, ok, "question %d", i)
		assert.Equal(t, fmt.Sprintf("my reasoning %d", i), user.Content)
		assert.NotEmpty(t, assistant.Content)
	}
}

func TestCurrentQuestion(t *testing.T) {
	store, state := newChatSession(t)
	svc := newDialogue(store, &fakeCompleter{}, &fakeChatLogRepo{})

	q, answer, ok := svc.CurrentQuestion(state)
	require.True(t, ok)
	assert.Equal(t, "simple_qn_1", q.Key)
	assert.Equal(t, "Pizza", answer)

	state.Cursor = 7
	_, _, ok = svc.CurrentQuestion(state)
	assert.False(t, ok)
}

func TestSendPersistenceFailureIsNotFatal(t *testing.T) {
	store, state := newChatSession(t)
	repo := &fakeChatLogRepo{err: assert.AnError}
	svc := newDialogue(store, &fakeCompleter{}, repo)

	reply, err := svc.Send(context.Background(), state, "still works", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, reply)
	assert.Equal(t, 2, state.Cursor)
}
