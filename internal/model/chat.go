package model

// Role tags a chat message with its speaker
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry in a session transcript. QuestionIndex ties the
// message to the survey question under debate (0 for the system prompt), so
// an exchange can be recovered even when the positional pairing drifts.
type ChatMessage struct {
	Role          Role   `json:"role" bson:"role"`
	Content       string `json:"content" bson:"content"`
	QuestionIndex int    `json:"questionIndex" bson:"question_index"`
}

// Transcript is the ordered, append-only message log for one session.
// Invariants: at most one system message, always at position 0; after it,
// messages occur in alternating user/assistant pairs, one pair per question,
// in question order.
type Transcript struct {
	Messages []ChatMessage `json:"messages"`
}

// Append adds a message at the end. No reordering, no deduplication.
func (t *Transcript) Append(m ChatMessage) {
	t.Messages = append(t.Messages, m)
}

// Len returns the number of messages in the transcript
func (t *Transcript) Len() int {
	return len(t.Messages)
}

// HasSystemPrompt reports whether a system message is present
func (t *Transcript) HasSystemPrompt() bool {
	for _, m := range t.Messages {
		if m.Role == RoleSystem {
			return true
		}
	}
	return false
}

// EnsureSystemPrompt inserts a system message at position 0 iff none exists
// yet. Idempotent; returns whether a message was inserted.
func (t *Transcript) EnsureSystemPrompt(content string) bool {
	if t.HasSystemPrompt() {
		return false
	}
	msg := ChatMessage{Role: RoleSystem, Content: content}
	t.Messages = append([]ChatMessage{msg}, t.Messages...)
	return true
}

// SystemOffset returns 1 if a system message is present, else 0
func (t *Transcript) SystemOffset() int {
	if t.HasSystemPrompt() {
		return 1
	}
	return 0
}

// ExchangeForQuestion returns the user/assistant pair recorded for question
// index i (1-based; index 0 is the name question, which is never debated).
// Messages carrying a matching QuestionIndex tag win; transcripts restored
// from snapshots without tags fall back to positional pairing, where the
// pair for the cursor's i-th debated question sits at
// systemOffset + (i-1)*2.
func (t *Transcript) ExchangeForQuestion(i int) (user, assistant ChatMessage, ok bool) {
	for j := 0; j+1 < len(t.Messages); j++ {
		if t.Messages[j].Role == RoleUser && t.Messages[j].QuestionIndex == i &&
			t.Messages[j+1].Role == RoleAssistant && t.Messages[j+1].QuestionIndex == i {
			return t.Messages[j], t.Messages[j+1], true
		}
	}
	if i < 1 {
		return ChatMessage{}, ChatMessage{}, false
	}
	pos := t.SystemOffset() + (i-1)*2
	if pos+1 >= len(t.Messages) {
		return ChatMessage{}, ChatMessage{}, false
	}
	u, a := t.Messages[pos], t.Messages[pos+1]
	if u.Role != RoleUser || a.Role != RoleAssistant {
		return ChatMessage{}, ChatMessage{}, false
	}
	return u, a, true
}
