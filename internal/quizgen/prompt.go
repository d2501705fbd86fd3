package quizgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/llm"
)

const systemPrompt = `You are EduGenie, a friendly and patient AI tutor writing multiple-choice practice quizzes.

Rules:
- Every question must be self-contained and answerable without outside context.
- Provide exactly 4 options per question where exactly one is correct. Distractors should reflect common misconceptions, not random values.
- Give the correct answer as the 0-based index of the correct option.
- Keep explanations to one or two sentences.
- Match the requested difficulty: easy checks recall, medium checks understanding, hard checks application.
- Do not repeat any question from the "already asked" list.
- Output JSON only, no prose before or after it.`

const gradingSystemPrompt = `You grade short student answers. Be lenient with spelling and phrasing but strict on meaning. Respond with JSON only.`

// BuildQuizPrompt builds the prompt asking for in.N questions.
func BuildQuizPrompt(in GenerateInput, cfg Config) gateway.Prompt {
	return gateway.Prompt{
		System:      systemPrompt,
		Text:        buildQuizMessage(in, cfg),
		Purpose:     llm.PurposeQuiz,
		Schema:      QuizSchema,
		MaxTokens:   cfg.tokenBudget(in.N),
		Temperature: gateway.Float(cfg.Temperature),
	}
}

// quizTokenOverhead covers the JSON wrapper around the questions.
const quizTokenOverhead = 200

func (c Config) tokenBudget(n int) int {
	budget := max(quizTokenOverhead+n*c.TokensPerQuestion, c.MaxTokens)
	if c.MaxTokensCap > 0 {
		budget = min(budget, c.MaxTokensCap)
	}
	return budget
}

func buildQuizMessage(in GenerateInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate %d multiple-choice questions about '%s'. Difficulty: %s.\n", in.N, in.Topic, strings.ToLower(in.Level.String()))
	b.WriteString(`Output as JSON: {"topic": "...", "questions": [{"question": "...", "options": ["...", "...", "...", "..."], "answer_index": 0, "explanation": "..."}]}`)
	b.WriteString("\n\nAlready asked:\n")
	b.WriteString(buildDedup(in.PriorQuestions, cfg.MaxPriorQuestions))

	return b.String()
}

// buildDedup formats prior questions for the prompt, keeping the most
// recent max entries.
func buildDedup(prior []string, max int) string {
	if len(prior) == 0 {
		return "None"
	}
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, q := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildGradingPrompt builds the prompt grading a free-text answer.
func BuildGradingPrompt(question, correctAnswer, userAnswer string) gateway.Prompt {
	var b strings.Builder
	b.WriteString("Grade this student answer.\n")
	fmt.Fprintf(&b, "Q: %s\n", question)
	fmt.Fprintf(&b, "Correct Answer: %s\n", correctAnswer)
	fmt.Fprintf(&b, "Student Answer: %s\n", userAnswer)
	b.WriteString(`Respond in JSON: {"correct": true/false, "feedback": "brief feedback"}`)

	return gateway.Prompt{
		System:      gradingSystemPrompt,
		Text:        b.String(),
		Purpose:     llm.PurposeGrading,
		Schema:      GradingSchema,
		MaxTokens:   200,
		Temperature: gateway.Float(0.2),
	}
}
