package service

import "github.com/ieatsighpies/fyp-survey-website/internal/model"

// FragmentSink receives reply fragments and stage events for a session's
// presentation layer (avoids an import cycle with the ws hub). Fragments
// arrive in emission order; implementations must not reorder them.
type FragmentSink interface {
	Fragment(sessionID string, questionIndex int, text string)
	Done(sessionID string, questionIndex int)
	StageChanged(sessionID string, stage model.Stage)
}
