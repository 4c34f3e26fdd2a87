// Package survey holds the fixed survey definition and submission checks.
package survey

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ieatsighpies/fyp-survey-website/internal/model"
)

// questions is the fixed, ordered survey. Defined at process start,
// immutable thereafter. Index 0 is the participant's name and is excluded
// from debate and validation.
var questions = []model.SurveyQuestion{
	{Key: "name", Prompt: "What's your name?", Kind: model.KindFreeText},
	{Key: "simple_qn_1", Prompt: "Do you prefer pizza or sushi?", Kind: model.KindSingleChoice, Options: []string{"Pizza", "Sushi"}},
	{Key: "simple_qn_2", Prompt: "Do you like arts or science?", Kind: model.KindSingleChoice, Options: []string{"Arts", "Science"}},
	{Key: "medium_qn_1", Prompt: "How would you commute to Changi airport?", Kind: model.KindEnumChoice, Options: []string{"Taxi", "Bus", "MRT", "Car", "Other"}},
	{Key: "medium_qn_2", Prompt: "How would you diet?", Kind: model.KindFreeText},
	{Key: "complex_qn_1", Prompt: "What is most important when planning a trip with friends?", Kind: model.KindFreeText},
	{Key: "complex_qn_2", Prompt: "What do you treasure most in life?", Kind: model.KindFreeText},
}

// IncompleteError rejects a submission, listing every failing field.
// It never carries partial state: a rejected submission changes nothing.
type IncompleteError struct {
	Fields map[string]string
}

func (e *IncompleteError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "incomplete survey submission: " + strings.Join(keys, ", ")
}

// Definition is the ordered question list with its submission contract
type Definition struct {
	questions []model.SurveyQuestion
}

// Default returns the definition used by the running service
func Default() *Definition {
	return &Definition{questions: questions}
}

// Questions returns the ordered question list
func (d *Definition) Questions() []model.SurveyQuestion {
	return d.questions
}

// Count returns the number of questions, including the name question
func (d *Definition) Count() int {
	return len(d.questions)
}

// Question returns the question at index i
func (d *Definition) Question(i int) model.SurveyQuestion {
	return d.questions[i]
}

// Submit checks a candidate submission against the definition. Free-text
// questions need a non-empty answer; choice questions need a legal member of
// their options. On acceptance it returns a ResponseSet covering exactly the
// question keys; otherwise an *IncompleteError naming every bad field. No
// side effects either way — persistence is the caller's responsibility.
func (d *Definition) Submit(candidate map[string]string) (model.ResponseSet, error) {
	fields := map[string]string{}
	out := make(model.ResponseSet, len(d.questions))

	for _, q := range d.questions {
		answer, present := candidate[q.Key]
		switch q.Kind {
		case model.KindFreeText:
			if strings.TrimSpace(answer) == "" {
				fields[q.Key] = "answer is required"
				continue
			}
		case model.KindSingleChoice, model.KindEnumChoice:
			if !present || !contains(q.Options, answer) {
				fields[q.Key] = fmt.Sprintf("answer must be one of: %s", strings.Join(q.Options, ", "))
				continue
			}
		}
		out[q.Key] = answer
	}

	if len(fields) > 0 {
		return nil, &IncompleteError{Fields: fields}
	}
	return out, nil
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
