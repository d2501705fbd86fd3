package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/edugenie/internal/difficulty"
	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/llm"
	"github.com/abhisek/edugenie/internal/quizgen"
	"github.com/abhisek/edugenie/internal/rewards"
	"github.com/abhisek/edugenie/internal/store"
)

var testNow = time.Unix(1_760_000_000, 0)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// newGarbageSession wires a session to a model that only returns garbage.
func newGarbageSession(t *testing.T, st *store.Store) (*Session, *llm.MockProvider) {
	t.Helper()
	mock := llm.NewMockProvider(
		llm.TextResponse("garbage"),
		llm.TextResponse("garbage"),
		llm.TextResponse("garbage"),
	)
	gw := gateway.New(mock, gateway.Options{})
	return New(Deps{
		Records:   st.QuizRecords(),
		Generator: quizgen.NewLLMGenerator(gw, quizgen.DefaultConfig(), nil, nil),
		Grader:    quizgen.NewGrader(gw, nil),
		Adapter:   difficulty.DefaultAdapter(),
		Clock:     func() time.Time { return testNow },
	}, Config{}), mock
}

func TestGarbageModelSessionEndToEnd(t *testing.T) {
	st := openTestStore(t)
	s, _ := newGarbageSession(t, st)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx, "ana", "Fourier", difficulty.Easy, 3))
	assert.Equal(t, PhaseInProgress, s.Phase())

	qs := s.Questions()
	require.Len(t, qs, 3)
	for i, q := range qs {
		assert.Equal(t, fmt.Sprintf("SAMPLE: Fourier Q%d", i+1), q.Prompt)
	}
	assert.True(t, s.Snapshot().Placeholder)

	for i := range qs {
		res, err := s.SubmitAnswer(ctx, i, "A")
		require.NoError(t, err)
		assert.True(t, res.Correct)
	}

	assert.Equal(t, PhaseFinished, s.Phase())
	assert.Equal(t, 3, s.Score())

	records, err := st.QuizRecords().All(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Fourier", records[0].Topic)
	assert.Equal(t, 3, records[0].Score)
	assert.Equal(t, 3, records[0].Total)
	assert.Equal(t, testNow.Unix(), records[0].Timestamp)
	assert.Equal(t, records[0].ID, s.Record().ID)
}

func TestSubmitAfterFinishIsRejected(t *testing.T) {
	st := openTestStore(t)
	s, _ := newGarbageSession(t, st)
	ctx := context.Background()

	require.NoError(t, s.Start(ctx, "ana", "Fourier", difficulty.Easy, 1))
	_, err := s.SubmitAnswer(ctx, 0, "B")
	require.NoError(t, err)
	require.Equal(t, PhaseFinished, s.Phase())

	_, err = s.SubmitAnswer(ctx, 0, "A")
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = s.SubmitAnswer(ctx, 1, "A")
	require.ErrorIs(t, err, ErrInvalidState)

	records, err := st.QuizRecords().All(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0, records[0].Score)
}

func TestSubmitBeforeStartIsRejected(t *testing.T) {
	s, _ := newGarbageSession(t, openTestStore(t))

	_, err := s.SubmitAnswer(context.Background(), 0, "A")
	var ise *InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, PhaseIdle, ise.Phase)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSubmitWrongIndex(t *testing.T) {
	s, _ := newGarbageSession(t, openTestStore(t))
	ctx := context.Background()
	require.NoError(t, s.Start(ctx, "ana", "sets", difficulty.Easy, 2))

	_, err := s.SubmitAnswer(ctx, 1, "A")
	var ise *InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 0, ise.Want)
	assert.Equal(t, 1, ise.Got)
	assert.Equal(t, PhaseInProgress, s.Phase(), "a rejected answer must not change the phase")
	assert.Equal(t, 0, s.Current())
}

func TestStartTwiceIsRejected(t *testing.T) {
	s, _ := newGarbageSession(t, openTestStore(t))
	ctx := context.Background()
	require.NoError(t, s.Start(ctx, "ana", "sets", difficulty.Easy, 1))

	err := s.Start(ctx, "ana", "sets", difficulty.Easy, 1)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStartValidatesInput(t *testing.T) {
	tests := []struct {
		name        string
		user, topic string
		level       difficulty.Level
		n           int
	}{
		{"empty user", " ", "sets", difficulty.Easy, 3},
		{"empty topic", "ana", "", difficulty.Easy, 3},
		{"zero questions", "ana", "sets", difficulty.Easy, 0},
		{"too many questions", "ana", "sets", difficulty.Easy, quizgen.MaxQuestions + 1},
		{"huge question count", "ana", "sets", difficulty.Easy, 2_000_000_000},
		{"bad level", "ana", "sets", difficulty.Level(9), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newGarbageSession(t, openTestStore(t))
			err := s.Start(context.Background(), tt.user, tt.topic, tt.level, tt.n)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, PhaseIdle, s.Phase())
			assert.Zero(t, mock.CallCount())
		})
	}
}

func TestStartAcceptsMaxQuestions(t *testing.T) {
	s, _ := newGarbageSession(t, openTestStore(t))
	require.NoError(t, s.Start(context.Background(), "ana", "sets", difficulty.Easy, quizgen.MaxQuestions))
	assert.Len(t, s.Questions(), quizgen.MaxQuestions)
}

// failingRecords is a QuizRecordRepo whose reads or writes fail.
type failingRecords struct {
	mu        sync.Mutex
	history   []store.QuizRecord
	readErr   error
	appendErr error
	appended  int
}

func (f *failingRecords) Append(_ context.Context, rec store.QuizRecord) (store.QuizRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended++
	if f.appendErr != nil {
		return store.QuizRecord{}, f.appendErr
	}
	rec.ID = int64(f.appended)
	return rec, nil
}

func (f *failingRecords) Recent(_ context.Context, _ string, limit int) ([]store.QuizRecord, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	if len(f.history) > limit {
		return f.history[:limit], nil
	}
	return f.history, nil
}

func (f *failingRecords) All(context.Context, string) ([]store.QuizRecord, error) {
	return f.history, nil
}

func (f *failingRecords) Reset(context.Context) error { return nil }

// stubGenerator returns placeholder questions at the requested level.
type stubGenerator struct {
	mu   sync.Mutex
	last quizgen.GenerateInput
}

func (g *stubGenerator) Generate(_ context.Context, in quizgen.GenerateInput) (quizgen.ParseOutcome, error) {
	g.mu.Lock()
	g.last = in
	g.mu.Unlock()
	return quizgen.ParseOutcome{Kind: quizgen.OutcomeValid, Questions: quizgen.Placeholders(in.Topic, in.N)}, nil
}

type recordingRewards struct {
	calls []store.QuizRecord
	level difficulty.Level
}

func (r *recordingRewards) AwardQuiz(_ context.Context, rec store.QuizRecord, level difficulty.Level) (*rewards.Award, error) {
	r.calls = append(r.calls, rec)
	r.level = level
	return &rewards.Award{User: rec.User, XP: rewards.XPFor(rec.Score, rec.Total, level)}, nil
}

func TestStartHistoryReadFailureStaysIdle(t *testing.T) {
	readErr := errors.New("disk on fire")
	s := New(Deps{
		Records:   &failingRecords{readErr: readErr},
		Generator: &stubGenerator{},
		Grader:    quizgen.NewGrader(nil, nil),
	}, Config{})

	err := s.Start(context.Background(), "ana", "sets", difficulty.Easy, 2)
	require.ErrorIs(t, err, readErr)
	assert.Equal(t, PhaseIdle, s.Phase())
}

func TestPersistenceFailureStillFinishes(t *testing.T) {
	recs := &failingRecords{appendErr: &store.ErrPersistence{Op: "append quiz record", Err: errors.New("disk full")}}
	rw := &recordingRewards{}
	s := New(Deps{
		Records:   recs,
		Generator: &stubGenerator{},
		Grader:    quizgen.NewGrader(nil, nil),
		Rewards:   rw,
	}, Config{})
	ctx := context.Background()

	require.NoError(t, s.Start(ctx, "ana", "sets", difficulty.Easy, 1))
	res, err := s.SubmitAnswer(ctx, 0, "A")
	require.Error(t, err)
	assert.True(t, store.IsPersistence(err))
	assert.True(t, res.Correct)
	assert.Equal(t, PhaseFinished, s.Phase())
	assert.Empty(t, rw.calls, "unsaved attempts earn no rewards")

	_, err = s.SubmitAnswer(ctx, 1, "A")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 1, recs.appended, "no retry and no second record")
}

func TestStartAdaptsDifficulty(t *testing.T) {
	perfect := make([]store.QuizRecord, 5)
	for i := range perfect {
		perfect[i] = store.QuizRecord{User: "ana", Topic: "other", Score: 5, Total: 5}
	}
	gen := &stubGenerator{}
	rw := &recordingRewards{}
	s := New(Deps{
		Records:   &failingRecords{history: perfect},
		Generator: gen,
		Grader:    quizgen.NewGrader(nil, nil),
		Adapter:   difficulty.DefaultAdapter(),
		Rewards:   rw,
	}, Config{PriorQuestions: []string{"old"}})
	ctx := context.Background()

	require.NoError(t, s.Start(ctx, "ana", "sets", difficulty.Easy, 2))
	assert.Equal(t, difficulty.Medium, s.Effective())
	assert.Equal(t, difficulty.Medium, gen.last.Level)
	assert.Equal(t, []string{"old"}, gen.last.PriorQuestions)

	for i := 0; i < 2; i++ {
		_, err := s.SubmitAnswer(ctx, i, "1")
		require.NoError(t, err)
	}
	require.Len(t, rw.calls, 1)
	assert.Equal(t, difficulty.Medium, rw.level)
	require.NotNil(t, s.Award())
	assert.Equal(t, 2*10*2+rewards.PerfectBonus, s.Award().XP)
}

func TestFixedDifficultySkipsHistory(t *testing.T) {
	gen := &stubGenerator{}
	s := New(Deps{
		Records:   &failingRecords{readErr: errors.New("not read")},
		Generator: gen,
		Grader:    quizgen.NewGrader(nil, nil),
	}, Config{FixedDifficulty: true})

	require.NoError(t, s.Start(context.Background(), "ana", "sets", difficulty.Hard, 1))
	assert.Equal(t, difficulty.Hard, s.Effective())
}

func TestSnapshotTracksProgress(t *testing.T) {
	s := New(Deps{
		Records:   &failingRecords{},
		Generator: &stubGenerator{},
		Grader:    quizgen.NewGrader(nil, nil),
	}, Config{})
	ctx := context.Background()
	require.NoError(t, s.Start(ctx, "ana", "sets", difficulty.Easy, 2))

	_, err := s.SubmitAnswer(ctx, 0, "C")
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, s.ID(), snap.ID)
	assert.Equal(t, PhaseInProgress, snap.Phase)
	assert.Equal(t, 1, snap.Current)
	assert.Equal(t, []string{"C"}, snap.Answers)
	require.Len(t, snap.Results, 1)
	assert.False(t, snap.Results[0].Correct)
	assert.Equal(t, "Expected: A", snap.Results[0].Feedback)
	assert.Nil(t, snap.Record)
}
