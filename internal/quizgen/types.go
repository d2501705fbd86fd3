package quizgen

import (
	"fmt"

	"github.com/abhisek/edugenie/internal/difficulty"
)

// Question is one multiple-choice quiz item.
type Question struct {
	// Prompt is the question text shown to the learner.
	Prompt string

	// Options holds at least two choices, usually four.
	Options []string

	// Answer is either an index into Options or a literal answer text.
	Answer Answer

	// Explanation is shown after the learner answers. May be empty.
	Explanation string
}

// Answer is the correct answer of a Question.
type Answer struct {
	IsIndex bool
	Index   int
	Text    string
}

// IndexAnswer returns an answer pointing at Options[i].
func IndexAnswer(i int) Answer { return Answer{IsIndex: true, Index: i} }

// TextAnswer returns a literal answer graded by comparison.
func TextAnswer(s string) Answer { return Answer{Text: s} }

// CorrectText returns the correct answer as display text.
func (q Question) CorrectText() string {
	if q.Answer.IsIndex {
		if q.Answer.Index >= 0 && q.Answer.Index < len(q.Options) {
			return q.Options[q.Answer.Index]
		}
		return ""
	}
	return q.Answer.Text
}

// Valid reports whether the question satisfies the index-range invariant.
func (q Question) Valid() bool {
	if q.Prompt == "" || len(q.Options) < 2 {
		return false
	}
	if q.Answer.IsIndex {
		return q.Answer.Index >= 0 && q.Answer.Index < len(q.Options)
	}
	return q.Answer.Text != ""
}

// GradingResult is the verdict for one submitted answer.
type GradingResult struct {
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback"`
}

// OutcomeKind tags a ParseOutcome.
type OutcomeKind int

const (
	// OutcomeValid means the questions came from the model.
	OutcomeValid OutcomeKind = iota
	// OutcomeFallback means the questions are placeholders.
	OutcomeFallback
)

func (k OutcomeKind) String() string {
	if k == OutcomeFallback {
		return "fallback"
	}
	return "valid"
}

// FallbackReason says why placeholder questions were used.
type FallbackReason string

const (
	ReasonNone        FallbackReason = ""
	ReasonUnavailable FallbackReason = "unavailable"
	ReasonModelError  FallbackReason = "model_error"
	ReasonNoJSON      FallbackReason = "no_json"
	ReasonDecode      FallbackReason = "decode_error"
	ReasonNoValid     FallbackReason = "no_valid_questions"
)

// ParseOutcome is the tagged result of parsing model output.
type ParseOutcome struct {
	Kind      OutcomeKind
	Questions []Question

	// Reason and Detail are set for OutcomeFallback.
	Reason FallbackReason
	Detail string

	// Padded counts placeholder questions a generator appended to reach
	// the requested count after a short valid parse.
	Padded int
}

// MaxQuestions bounds the questions in one quiz.
const MaxQuestions = 20

// GenerateInput holds what a quiz generator needs.
type GenerateInput struct {
	Topic string
	Level difficulty.Level
	N     int

	// PriorQuestions are prompts already asked, for deduplication.
	PriorQuestions []string
}

func (in GenerateInput) validate() error {
	if in.Topic == "" {
		return fmt.Errorf("topic is required")
	}
	if in.N < 1 || in.N > MaxQuestions {
		return fmt.Errorf("question count must be between 1 and %d, got %d", MaxQuestions, in.N)
	}
	return nil
}
