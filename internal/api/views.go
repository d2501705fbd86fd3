package api

import (
	"time"

	"github.com/abhisek/edugenie/internal/difficulty"
	"github.com/abhisek/edugenie/internal/session"
	"github.com/abhisek/edugenie/internal/store"
)

// quizView is the JSON shape of a quiz session. Correct answers and
// explanations are revealed only for answered questions.
type quizView struct {
	ID             string           `json:"id"`
	User           string           `json:"user"`
	Topic          string           `json:"topic"`
	Phase          session.Phase    `json:"phase"`
	Requested      difficulty.Level `json:"requested_difficulty"`
	Difficulty     difficulty.Level `json:"difficulty"`
	Current        int              `json:"current"`
	Total          int              `json:"total"`
	Score          int              `json:"score"`
	Placeholder    bool             `json:"placeholder"`
	FallbackReason string           `json:"fallback_reason,omitempty"`
	Questions      []questionView   `json:"questions"`
	Record         *recordView      `json:"record,omitempty"`
	Award          *awardView       `json:"award,omitempty"`
}

type questionView struct {
	Index         int      `json:"index"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	Answered      bool     `json:"answered"`
	Answer        string   `json:"answer,omitempty"`
	Correct       *bool    `json:"correct,omitempty"`
	Feedback      string   `json:"feedback,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

type recordView struct {
	ID        int64     `json:"id"`
	Topic     string    `json:"topic"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

type awardView struct {
	XP     int    `json:"xp"`
	Rarity string `json:"rarity"`
	Reason string `json:"reason"`
	Badge  string `json:"badge,omitempty"`
}

func newQuizView(snap session.Snapshot) quizView {
	v := quizView{
		ID:             snap.ID,
		User:           snap.User,
		Topic:          snap.Topic,
		Phase:          snap.Phase,
		Requested:      snap.Requested,
		Difficulty:     snap.Effective,
		Current:        snap.Current,
		Total:          len(snap.Questions),
		Score:          snap.Score,
		Placeholder:    snap.Placeholder,
		FallbackReason: string(snap.FallbackReason),
		Questions:      make([]questionView, 0, len(snap.Questions)),
	}
	for i, q := range snap.Questions {
		qv := questionView{Index: i, Prompt: q.Prompt, Options: q.Options}
		if i < len(snap.Results) {
			correct := snap.Results[i].Correct
			qv.Answered = true
			qv.Answer = snap.Answers[i]
			qv.Correct = &correct
			qv.Feedback = snap.Results[i].Feedback
			qv.CorrectAnswer = q.CorrectText()
			qv.Explanation = q.Explanation
		}
		v.Questions = append(v.Questions, qv)
	}
	if snap.Record != nil {
		rv := newRecordView(*snap.Record)
		v.Record = &rv
	}
	if snap.Award != nil {
		v.Award = &awardView{XP: snap.Award.XP, Rarity: string(snap.Award.Rarity), Reason: snap.Award.Reason}
		if snap.Award.Badge != nil {
			v.Award.Badge = snap.Award.Badge.Name
		}
	}
	return v
}

func newRecordView(rec store.QuizRecord) recordView {
	return recordView{
		ID:        rec.ID,
		Topic:     rec.Topic,
		Score:     rec.Score,
		Total:     rec.Total,
		Timestamp: time.Unix(rec.Timestamp, 0).UTC(),
	}
}
