package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tezbot/app/activity"
)

// fakeSource replays scripted draws.
type fakeSource struct {
	ints   []int
	floats []float64
}

func (f *fakeSource) IntN(n int) int {
	v := f.ints[0] % n
	f.ints = f.ints[1:]
	return v
}

func (f *fakeSource) Float64() float64 {
	v := f.floats[0]
	f.floats = f.floats[1:]
	return v
}

func TestNewSourceDrawsInRange(t *testing.T) {
	src := NewSource()
	for range 100 {
		v := src.IntN(10)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 10)

		f := src.Float64()
		require.GreaterOrEqual(t, f, 0.0)
		require.Less(t, f, 1.0)
	}
}

func TestCheckGuessTruthTable(t *testing.T) {
	p := &activity.NumberGuessPayload{Target: 50, Min: 1, Max: 100}

	assert.Equal(t, GuessHigher, CheckGuess(p, 3))
	assert.Equal(t, GuessHigher, CheckGuess(p, 49))
	assert.Equal(t, GuessLower, CheckGuess(p, 51))
	assert.Equal(t, GuessLower, CheckGuess(p, 1000))
	assert.Equal(t, GuessCorrect, CheckGuess(p, 50))
}

func TestNewNumberGuessRanges(t *testing.T) {
	src := &fakeSource{ints: []int{0, 9, 3}}

	easy := NewNumberGuess("easy", src)
	assert.Equal(t, 1, easy.Min)
	assert.Equal(t, 10, easy.Max)
	assert.Equal(t, 1, easy.Target)

	hard := NewNumberGuess("hard", src)
	assert.Equal(t, 1000, hard.Max)
	assert.Equal(t, 10, hard.Target)

	fallback := NewNumberGuess("nightmare", src)
	assert.Equal(t, "medium", fallback.Difficulty)
	assert.Equal(t, 100, fallback.Max)
}

func TestResolveRPS(t *testing.T) {
	tests := []struct {
		user, bot activity.RPSChoice
		want      RPSOutcome
	}{
		{activity.Rock, activity.Rock, RPSDraw},
		{activity.Rock, activity.Scissors, RPSUserWin},
		{activity.Rock, activity.Paper, RPSBotWin},
		{activity.Scissors, activity.Paper, RPSUserWin},
		{activity.Scissors, activity.Rock, RPSBotWin},
		{activity.Paper, activity.Rock, RPSUserWin},
		{activity.Paper, activity.Scissors, RPSBotWin},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveRPS(tt.user, tt.bot), "%s vs %s", tt.user, tt.bot)
	}
}

func TestDrawOpponentFavorsCounterMove(t *testing.T) {
	// First float dodges the flat override, second lands inside the
	// boosted band, so the draw must counter the previous choice.
	src := &fakeSource{floats: []float64{0.9, 0.5}}
	got := DrawOpponent(activity.Rock, activity.Paper, src)
	assert.Equal(t, activity.Paper, got)

	// No previous choice: the bias targets the current one.
	src = &fakeSource{floats: []float64{0.9, 0.5}}
	got = DrawOpponent("", activity.Scissors, src)
	assert.Equal(t, activity.Rock, got)
}

func TestDrawOpponentFlatOverride(t *testing.T) {
	src := &fakeSource{floats: []float64{0.1}, ints: []int{2}}
	got := DrawOpponent(activity.Rock, activity.Rock, src)
	assert.Equal(t, activity.Paper, got)
}

func newQuiz(total int) activity.QuizPayload {
	questions := make([]activity.QuizQuestion, total)
	for i := range questions {
		questions[i] = activity.QuizQuestion{
			Question: "q",
			Options:  []string{"a", "b", "c", "d"},
			Correct:  2,
			Hint:     "h",
		}
	}
	return activity.QuizPayload{Questions: questions, TotalCount: total}
}

func TestAnswerQuizWrongThenRight(t *testing.T) {
	p := newQuiz(10)

	verdict, p := AnswerQuiz(p, 1)
	assert.False(t, verdict.Correct)
	assert.False(t, verdict.Finished)
	assert.Equal(t, 0, p.CurrentIndex)
	assert.Equal(t, 0, p.CorrectCount)
	assert.Equal(t, 0, p.UsedHints)
	require.NotNil(t, verdict.Next)

	verdict, p = AnswerQuiz(p, 2)
	assert.True(t, verdict.Correct)
	assert.False(t, verdict.Finished)
	assert.Equal(t, 1, p.CurrentIndex)
	assert.Equal(t, 1, p.CorrectCount)
}

func TestAnswerQuizFinishes(t *testing.T) {
	p := newQuiz(2)

	_, p = AnswerQuiz(p, 2)
	verdict, p := AnswerQuiz(p, 2)

	assert.True(t, verdict.Finished)
	assert.Nil(t, verdict.Next)
	assert.Equal(t, 2, p.CorrectCount)
}

func TestUseHintBudget(t *testing.T) {
	p := newQuiz(10) // budget of 1

	hint, p, ok := UseHint(p)
	require.True(t, ok)
	assert.Equal(t, "h", hint)
	assert.Equal(t, 1, p.UsedHints)

	_, p, ok = UseHint(p)
	assert.False(t, ok)
	assert.Equal(t, 1, p.UsedHints)
}

func TestUseHintZeroBudget(t *testing.T) {
	p := newQuiz(5)

	_, p, ok := UseHint(p)
	assert.False(t, ok)
	assert.Equal(t, 0, p.UsedHints)
}

func TestQuizGrade(t *testing.T) {
	assert.Contains(t, QuizGrade(9, 10), "Отлично")
	assert.Contains(t, QuizGrade(8, 10), "Хорошо")
	assert.Contains(t, QuizGrade(5, 10), "Неплохо")
	assert.Contains(t, QuizGrade(1, 10), "подучить")
}

func TestPlayDiceTiersAndOutcomes(t *testing.T) {
	src := &fakeSource{ints: []int{5, 2}}
	result, err := PlayDice("low", src)
	require.NoError(t, err)
	assert.Equal(t, 6, result.UserRoll)
	assert.Equal(t, 3, result.BotRoll)
	assert.Equal(t, DiceUserWin, result.Outcome)

	src = &fakeSource{ints: []int{0, 0}}
	result, err = PlayDice("legendary", src)
	require.NoError(t, err)
	assert.Equal(t, 25, result.UserRoll)
	assert.Equal(t, 25, result.BotRoll)
	assert.Equal(t, DiceDraw, result.Outcome)

	_, err = PlayDice("casino", src)
	assert.Error(t, err)
}
