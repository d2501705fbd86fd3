package quizgen

import (
	"fmt"
	"strings"
)

// Validator checks a parsed question before it reaches a learner.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for logs, e.g. "structural".
	Name() string

	// Validate returns nil if q passes.
	Validate(q *Question, input GenerateInput) *ValidationError
}

// ValidationError describes why a question was dropped.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// StructuralValidator enforces length limits and distinct options.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question, _ GenerateInput) *ValidationError {
	if len(q.Prompt) > 500 {
		return &ValidationError{Validator: v.Name(), Message: "question exceeds 500 characters"}
	}
	if len(q.Explanation) > 1000 {
		return &ValidationError{Validator: v.Name(), Message: "explanation exceeds 1000 characters"}
	}
	seen := make(map[string]bool, len(q.Options))
	for _, opt := range q.Options {
		key := strings.ToLower(opt)
		if seen[key] {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("duplicate option %q", opt)}
		}
		seen[key] = true
	}
	return nil
}

// DedupValidator drops questions already asked in prior quizzes.
type DedupValidator struct{}

func (v *DedupValidator) Name() string { return "dedup" }

func (v *DedupValidator) Validate(q *Question, input GenerateInput) *ValidationError {
	for _, prior := range input.PriorQuestions {
		if strings.EqualFold(strings.TrimSpace(prior), q.Prompt) {
			return &ValidationError{Validator: v.Name(), Message: "question was already asked"}
		}
	}
	return nil
}
