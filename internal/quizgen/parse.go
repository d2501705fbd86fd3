package quizgen

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/llm"
)

// PlaceholderExplanation is attached to every fallback question.
const PlaceholderExplanation = "Placeholder question generated because the tutor model was unavailable."

var (
	promptKeys      = []string{"question", "q", "prompt"}
	answerKeys      = []string{"answer_index", "correct_index", "answer", "correct_answer"}
	explanationKeys = []string{"explanation", "explain"}
)

// ParseQuiz turns raw model text into questions. It never fails: output it
// cannot use yields exactly n placeholder questions for topic.
func ParseQuiz(raw, topic string, n int) ParseOutcome {
	switch {
	case gateway.IsUnavailable(raw):
		return fallback(topic, n, ReasonUnavailable, "")
	case gateway.IsSentinel(raw):
		return fallback(topic, n, ReasonModelError, strings.TrimPrefix(raw, gateway.ErrorPrefix))
	}

	body, ok := extractJSON(raw)
	if !ok {
		return fallback(topic, n, ReasonNoJSON, "")
	}

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return fallback(topic, n, ReasonDecode, err.Error())
	}

	items, ok := questionList(doc)
	if !ok {
		return fallback(topic, n, ReasonNoValid, "no question list")
	}

	questions := make([]Question, 0, len(items))
	for _, item := range items {
		q, err := parseCandidate(item)
		if err != nil {
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return fallback(topic, n, ReasonNoValid, fmt.Sprintf("0 of %d candidates valid", len(items)))
	}

	return ParseOutcome{Kind: OutcomeValid, Questions: questions}
}

// extractJSON returns the text from the first '{' or '[' through the last
// closer of the same kind.
func extractJSON(raw string) (string, bool) {
	start := strings.IndexAny(raw, "{[")
	if start < 0 {
		return "", false
	}
	closer := byte('}')
	if raw[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(raw, closer)
	if end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// questionList accepts a bare array or an object with a "questions" array.
func questionList(doc any) ([]any, bool) {
	switch v := doc.(type) {
	case []any:
		return v, true
	case map[string]any:
		items, ok := v["questions"].([]any)
		return items, ok
	}
	return nil, false
}

func parseCandidate(item any) (Question, error) {
	if err := llm.Validate(candidateSchema, item); err != nil {
		return Question{}, err
	}
	m := item.(map[string]any)

	q := Question{
		Prompt:      strings.TrimSpace(firstString(m, promptKeys)),
		Explanation: strings.TrimSpace(firstString(m, explanationKeys)),
	}
	if q.Prompt == "" {
		return Question{}, errors.New("empty prompt")
	}

	for _, o := range m["options"].([]any) {
		opt := strings.TrimSpace(o.(string))
		if opt == "" {
			return Question{}, errors.New("empty option")
		}
		q.Options = append(q.Options, opt)
	}

	answer, err := parseAnswer(m, q.Options)
	if err != nil {
		return Question{}, err
	}
	q.Answer = answer
	return q, nil
}

// parseAnswer reads the first present answer alias. Numbers are indexes;
// strings naming an option (by text, or by letter for answer text) become
// indexes, anything else stays a literal answer.
func parseAnswer(m map[string]any, options []string) (Answer, error) {
	for _, key := range answerKeys {
		v, ok := m[key]
		if !ok {
			continue
		}
		isIndexKey := strings.HasSuffix(key, "_index")

		switch a := v.(type) {
		case float64:
			if a != math.Trunc(a) {
				return Answer{}, fmt.Errorf("%s: %v is not an integer", key, a)
			}
			return indexInRange(int(a), len(options))

		case string:
			s := strings.TrimSpace(a)
			if s == "" {
				return Answer{}, fmt.Errorf("%s is empty", key)
			}
			if isIndexKey {
				i, err := strconv.Atoi(s)
				if err != nil {
					return Answer{}, fmt.Errorf("%s: %q is not an index", key, s)
				}
				return indexInRange(i, len(options))
			}
			for i, opt := range options {
				if strings.EqualFold(opt, s) {
					return IndexAnswer(i), nil
				}
			}
			if i, ok := letterIndex(s, len(options)); ok {
				return IndexAnswer(i), nil
			}
			return TextAnswer(s), nil
		}
		return Answer{}, fmt.Errorf("%s has unsupported type %T", key, v)
	}
	return Answer{}, errors.New("no answer field")
}

func indexInRange(i, n int) (Answer, error) {
	if i < 0 || i >= n {
		return Answer{}, fmt.Errorf("answer index %d out of range [0,%d)", i, n)
	}
	return IndexAnswer(i), nil
}

func firstString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// Placeholders returns n deterministic sample questions for topic.
func Placeholders(topic string, n int) []Question {
	if n <= 0 {
		return []Question{}
	}
	out := make([]Question, n)
	for i := range out {
		out[i] = placeholder(topic, i+1)
	}
	return out
}

func placeholder(topic string, i int) Question {
	return Question{
		Prompt:      fmt.Sprintf("SAMPLE: %s Q%d", topic, i),
		Options:     []string{"A", "B", "C", "D"},
		Answer:      IndexAnswer(0),
		Explanation: PlaceholderExplanation,
	}
}

func fallback(topic string, n int, reason FallbackReason, detail string) ParseOutcome {
	return ParseOutcome{
		Kind:      OutcomeFallback,
		Questions: Placeholders(topic, n),
		Reason:    reason,
		Detail:    detail,
	}
}

// ParseGrading reads a {correct, feedback} verdict from raw model text.
// Anything else, sentinels included, falls back to a case-insensitive
// comparison of the two answers.
func ParseGrading(raw, userAnswer, correctAnswer string) GradingResult {
	if !gateway.IsSentinel(raw) {
		if body, ok := extractJSON(raw); ok {
			var verdict struct {
				Correct  *bool  `json:"correct"`
				Feedback string `json:"feedback"`
			}
			if err := json.Unmarshal([]byte(body), &verdict); err == nil && verdict.Correct != nil {
				res := GradingResult{Correct: *verdict.Correct, Feedback: strings.TrimSpace(verdict.Feedback)}
				if res.Feedback == "" {
					res.Feedback = defaultFeedback(res.Correct, correctAnswer)
				}
				return res
			}
		}
	}
	return compareAnswers(userAnswer, correctAnswer)
}

func compareAnswers(userAnswer, correctAnswer string) GradingResult {
	correct := strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(correctAnswer))
	return GradingResult{Correct: correct, Feedback: defaultFeedback(correct, correctAnswer)}
}

func defaultFeedback(correct bool, correctAnswer string) string {
	if correct {
		return "Correct."
	}
	return "Expected: " + correctAnswer
}
