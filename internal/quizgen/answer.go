package quizgen

import (
	"strconv"
	"strings"
)

// ResolveChoice maps learner input to an option position. It matches, in
// order: option text (case-insensitive), a 1-based number, a letter A, B, ...
func ResolveChoice(options []string, input string) (int, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, false
	}
	for i, opt := range options {
		if strings.EqualFold(strings.TrimSpace(opt), input) {
			return i, true
		}
	}
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(options) {
			return n - 1, true
		}
		return 0, false
	}
	return letterIndex(input, len(options))
}

func letterIndex(s string, n int) (int, bool) {
	if len(s) != 1 {
		return 0, false
	}
	c := s[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c > 'Z' {
		return 0, false
	}
	i := int(c - 'A')
	return i, i < n
}

// CheckAnswer grades input locally. Index answers compare the resolved
// option position; text answers compare text case-insensitively, after
// resolving an option reference.
func CheckAnswer(q Question, input string) GradingResult {
	if q.Answer.IsIndex {
		i, ok := ResolveChoice(q.Options, input)
		correct := ok && i == q.Answer.Index
		return GradingResult{Correct: correct, Feedback: defaultFeedback(correct, q.CorrectText())}
	}
	return compareAnswers(choiceText(q, input), q.Answer.Text)
}

// choiceText replaces an option reference with the option text.
func choiceText(q Question, input string) string {
	if i, ok := ResolveChoice(q.Options, input); ok {
		return q.Options[i]
	}
	return strings.TrimSpace(input)
}
