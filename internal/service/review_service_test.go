package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieatsighpies/fyp-survey-website/internal/model"
	"github.com/ieatsighpies/fyp-survey-website/internal/session"
	"github.com/ieatsighpies/fyp-survey-website/internal/survey"
)

// newValidateSession runs a full debate so the session sits in the validate
// stage with one exchange per question.
func newValidateSession(t *testing.T) (*session.Store, *model.SessionState) {
	t.Helper()
	store, state := newChatSession(t)
	svc := newDialogue(store, &fakeCompleter{}, &fakeChatLogRepo{})
	for i := 1; i <= 6; i++ {
		_, err := svc.Send(context.Background(), state, fmt.Sprintf("defending answer %d", i), nil)
		require.NoError(t, err)
	}
	require.Equal(t, model.StageValidate, state.Stage)
	return store, state
}

func newReview(store *session.Store, repo *fakeValidatedRepo) *ReviewService {
	return NewReviewService(survey.Default(), store, repo, zerolog.Nop())
}

func TestSelectReturnsOriginalAnswerAndExchange(t *testing.T) {
	store, state := newValidateSession(t)
	svc := newReview(store, &fakeValidatedRepo{})

	item, err := svc.Select(state, 1)
	require.NoError(t, err)

	assert.Equal(t, "Do you prefer pizza or sushi?", item.QuestionText)
	assert.Equal(t, "Pizza", item.OriginalAnswer)
	require.True(t, item.HasExchange)
	assert.Equal(t, "defending answer 1", item.UserMessage)
	assert.NotEmpty(t, item.AssistantReply)
	assert.Empty(t, item.RevisedAnswer)
}

func TestSaveRoundTrip(t *testing.T) {
	store, state := newValidateSession(t)
	repo := &fakeValidatedRepo{}
	svc := newReview(store, repo)
	ctx := context.Background()

	saved, err := svc.Save(ctx, state, 1, "Sushi")
	require.NoError(t, err)
	assert.Equal(t, "Pizza", saved.OriginalAnswer)
	assert.Equal(t, "Sushi", saved.RevisedAnswer)
	assert.Equal(t, "Ada", saved.ParticipantName)

	// Re-selecting returns the same original and the revision; the
	// response set itself is never mutated
	item, err := svc.Select(state, 1)
	require.NoError(t, err)
	assert.Equal(t, "Pizza", item.OriginalAnswer)
	assert.Equal(t, "Sushi", item.RevisedAnswer)
	assert.Equal(t, "Pizza", state.Responses["simple_qn_1"])

	require.Len(t, repo.records, 1)
}

func TestEverySaveCreatesANewRecord(t *testing.T) {
	store, state := newValidateSession(t)
	repo := &fakeValidatedRepo{}
	svc := newReview(store, repo)
	ctx := context.Background()

	_, err := svc.Save(ctx, state, 2, "Science after all")
	require.NoError(t, err)
	_, err = svc.Save(ctx, state, 2, "No, arts")
	require.NoError(t, err)

	assert.Len(t, repo.records, 2)

	// The latest revision wins on re-select
	item, err := svc.Select(state, 2)
	require.NoError(t, err)
	assert.Equal(t, "No, arts", item.RevisedAnswer)
}

func TestSelectAnyOrder(t *testing.T) {
	store, state := newValidateSession(t)
	svc := newReview(store, &fakeValidatedRepo{})

	for _, i := range []int{6, 3, 1, 3, 6} {
		item, err := svc.Select(state, i)
		require.NoError(t, err)
		assert.Equal(t, i, item.QuestionIndex)
	}
}

func TestReviewOutOfRange(t *testing.T) {
	store, state := newValidateSession(t)
	svc := newReview(store, &fakeValidatedRepo{})

	// Index 0 is the name question and is excluded from validation
	_, err := svc.Select(state, 0)
	assert.ErrorIs(t, err, ErrQuestionOutOfRange)
	_, err = svc.Select(state, 7)
	assert.ErrorIs(t, err, ErrQuestionOutOfRange)

	_, err = svc.Save(context.Background(), state, 0, "x")
	assert.ErrorIs(t, err, ErrQuestionOutOfRange)
}

func TestReviewWrongStage(t *testing.T) {
	store, state := newChatSession(t)
	svc := newReview(store, &fakeValidatedRepo{})

	_, err := svc.Select(state, 1)
	assert.ErrorIs(t, err, ErrWrongStage)
	_, err = svc.Save(context.Background(), state, 1, "x")
	assert.ErrorIs(t, err, ErrWrongStage)
}

func TestSaveEmptyRevision(t *testing.T) {
	store, state := newValidateSession(t)
	svc := newReview(store, &fakeValidatedRepo{})

	_, err := svc.Save(context.Background(), state, 1, "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestSavePersistenceFailureIsNotFatal(t *testing.T) {
	store, state := newValidateSession(t)
	svc := newReview(store, &fakeValidatedRepo{err: assert.AnError})
	ctx := context.Background()

	saved, err := svc.Save(ctx, state, 1, "Sushi")
	require.NoError(t, err)
	assert.Equal(t, "Sushi", saved.RevisedAnswer)

	// The in-session record still stands
	item, err := svc.Select(state, 1)
	require.NoError(t, err)
	assert.Equal(t, "Sushi", item.RevisedAnswer)
}
