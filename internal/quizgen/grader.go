package quizgen

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/edugenie/internal/gateway"
)

// AnswerGrader grades one learner answer.
type AnswerGrader interface {
	Grade(ctx context.Context, q Question, answer string) GradingResult
}

// Grader grades index answers locally and asks the model about free-text
// answers that do not match exactly.
type Grader struct {
	gw     *gateway.Gateway
	logger *zap.Logger
}

// NewGrader creates a Grader. A nil gateway grades everything locally.
func NewGrader(gw *gateway.Gateway, logger *zap.Logger) *Grader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Grader{gw: gw, logger: logger}
}

func (g *Grader) Grade(ctx context.Context, q Question, answer string) GradingResult {
	if q.Answer.IsIndex {
		return CheckAnswer(q, answer)
	}

	user := choiceText(q, answer)
	if g.gw == nil || strings.EqualFold(user, strings.TrimSpace(q.Answer.Text)) {
		return compareAnswers(user, q.Answer.Text)
	}

	raw := g.gw.Generate(ctx, BuildGradingPrompt(q.Prompt, q.Answer.Text, user))
	if gateway.IsSentinel(raw) {
		g.logger.Debug("grading degraded to exact match", zap.String("question", q.Prompt))
	}
	return ParseGrading(raw, user, q.Answer.Text)
}
