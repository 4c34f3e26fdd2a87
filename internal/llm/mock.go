package llm

import (
	"context"
	"strings"

	"github.com/ieatsighpies/fyp-survey-website/internal/model"
)

// Mock is the Completer used when no API key is configured. It emits a
// canned devil's-advocate reply word by word so the streaming path is still
// exercised end to end.
type Mock struct{}

func (Mock) Complete(_ context.Context, messages []model.ChatMessage, onFragment func(string)) (string, error) {
	last := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == model.RoleUser {
			last = messages[i].Content
			break
		}
	}

	reply := "Consider the opposite for a moment. You said \"" + last + "\", " +
		"but have you weighed what you give up by sticking with that choice? " +
		"The alternative holds up better than you think."

	var out strings.Builder
	for i, word := range strings.Fields(reply) {
		fragment := word
		if i > 0 {
			fragment = " " + word
		}
		out.WriteString(fragment)
		if onFragment != nil {
			onFragment(fragment)
		}
	}
	return out.String(), nil
}
