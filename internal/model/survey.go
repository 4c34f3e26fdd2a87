package model

import "time"

// QuestionKind describes the input widget a survey question is answered with
type QuestionKind string

const (
	KindFreeText     QuestionKind = "free_text"
	KindSingleChoice QuestionKind = "single_choice"
	KindEnumChoice   QuestionKind = "enum_choice"
)

// SurveyQuestion is one question in the fixed survey definition
type SurveyQuestion struct {
	Key     string       `json:"key" bson:"key"`
	Prompt  string       `json:"prompt" bson:"prompt"`
	Kind    QuestionKind `json:"kind" bson:"kind"`
	Options []string     `json:"options,omitempty" bson:"options,omitempty"`
}

// ResponseSet maps question keys to the participant's answers. Keys are
// exactly the definition's question keys; ordering lives in the definition.
type ResponseSet map[string]string

// Clone returns an independent copy of the response set
func (r ResponseSet) Clone() ResponseSet {
	if r == nil {
		return nil
	}
	out := make(ResponseSet, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ValidatedAnswer is a participant's possibly-revised answer to one question,
// recorded after the debate stage. Saved records never overwrite the original
// survey response document.
type ValidatedAnswer struct {
	SessionID       string    `json:"sessionId" bson:"session_id"`
	QuestionIndex   int       `json:"questionIndex" bson:"question_index"`
	QuestionText    string    `json:"questionText" bson:"question_text"`
	OriginalAnswer  string    `json:"originalAnswer" bson:"original_answer"`
	RevisedAnswer   string    `json:"revisedAnswer" bson:"revised_answer"`
	ParticipantName string    `json:"participantName" bson:"participant_name"`
	CreatedAt       time.Time `json:"createdAt" bson:"created_at"`
}

// ChatLog is one persisted user/assistant exchange
type ChatLog struct {
	SessionID         string    `json:"sessionId" bson:"session_id"`
	QuestionIndex     int       `json:"questionIndex" bson:"question_index"`
	UserMessage       string    `json:"userMessage" bson:"user_message"`
	AssistantResponse string    `json:"assistantResponse" bson:"assistant_response"`
	CreatedAt         time.Time `json:"createdAt" bson:"created_at"`
}
