// Package llm wraps the external chat completion service. The rest of the
// system treats it as an opaque function from an ordered conversation to an
// incrementally produced reply.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ieatsighpies/fyp-survey-website/internal/model"
)

// ErrEmptyReply is returned when the service streams to completion without
// producing any text
var ErrEmptyReply = errors.New("completion service returned an empty reply")

// Completer produces one streamed chat completion per call. onFragment is
// invoked once per text fragment, in emission order, before the call
// returns; the returned string is the full concatenated reply. The stream
// is finite and non-restartable.
type Completer interface {
	Complete(ctx context.Context, messages []model.ChatMessage, onFragment func(string)) (string, error)
}

// Client is the OpenAI-backed Completer
type Client struct {
	api       *openai.Client
	modelName string
}

// NewClient creates a completion client. baseURL is optional and allows
// pointing at any OpenAI-compatible endpoint.
func NewClient(apiKey, baseURL, modelName string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:       openai.NewClientWithConfig(cfg),
		modelName: modelName,
	}
}

func (c *Client) Complete(ctx context.Context, messages []model.ChatMessage, onFragment func(string)) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.modelName,
		Messages: toOpenAI(messages),
		Stream:   true,
	}

	stream, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create completion stream: %w", err)
	}
	defer stream.Close()

	var reply strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read completion stream: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		fragment := resp.Choices[0].Delta.Content
		if fragment == "" {
			continue
		}
		reply.WriteString(fragment)
		if onFragment != nil {
			onFragment(fragment)
		}
	}

	if reply.Len() == 0 {
		return "", ErrEmptyReply
	}
	return reply.String(), nil
}

func toOpenAI(messages []model.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return out
}
