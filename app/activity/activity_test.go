package activity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccepts(t *testing.T) {
	tests := []struct {
		kind Kind
		text string
		want bool
	}{
		{KindNumberGuess, "42", true},
		{KindNumberGuess, "сорок два", false},
		{KindNumberGuess, "", false},
		{KindQuiz, "1", true},
		{KindQuiz, "4", true},
		{KindQuiz, "5", false},
		{KindQuiz, "12", false},
		{KindQuiz, "abc", false},
		{KindQuizSetup, "15", true},
		{KindQuizSetup, "x", false},
		{KindRPS, "камень", true},
		{KindRPS, "Rock", true},
		{KindRPS, "  НОЖНИЦЫ  ", true},
		{KindRPS, "ящерица", false},
		{KindMagicBall, "будет ли дождь?", true},
		{KindMagicBall, "   ", false},
		{KindTranslate, "привет", true},
		{KindTranslate, "", false},
		{Kind("bogus"), "anything", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Accepts(tt.kind, tt.text), "%s %q", tt.kind, tt.text)
	}
}

func TestParseRPSChoice(t *testing.T) {
	choice, ok := ParseRPSChoice("Бумага")
	require.True(t, ok)
	assert.Equal(t, Paper, choice)

	_, ok = ParseRPSChoice("well actually")
	assert.False(t, ok)
}

func TestQuizMaxHints(t *testing.T) {
	for total, want := range map[int]int{5: 0, 10: 1, 15: 2, 20: 3, 25: 4, 30: 5, 3: 0, 7: 0} {
		p := QuizPayload{TotalCount: total}
		assert.Equal(t, want, p.MaxHints(), "total=%d", total)
	}
}

func TestStateRoundTrip(t *testing.T) {
	started := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	state := State{
		Kind: KindNumberGuess,
		Payload: &NumberGuessPayload{
			Target:     7,
			Min:        1,
			Max:        10,
			Difficulty: "easy",
		},
		StartedAt: started,
	}

	data, err := json.Marshal(state)
	require.NoError(t, err)

	var decoded State
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, KindNumberGuess, decoded.Kind)
	assert.True(t, started.Equal(decoded.StartedAt))

	payload, ok := decoded.Payload.(*NumberGuessPayload)
	require.True(t, ok)
	assert.Equal(t, 7, payload.Target)
	assert.Equal(t, "easy", payload.Difficulty)

	again, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestStateRoundTripNestedTimestamps(t *testing.T) {
	deadline := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	state := State{
		Kind: KindQuizSetup,
		Payload: &QuizSetupPayload{
			Topic:         "история",
			QuestionCount: 10,
			Extra: map[string]any{
				"announced_at": deadline,
				"attempts":     []any{map[string]any{"at": deadline}},
			},
		},
		StartedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(state)
	require.NoError(t, err)

	var decoded State
	require.NoError(t, json.Unmarshal(data, &decoded))

	payload, ok := decoded.Payload.(*QuizSetupPayload)
	require.True(t, ok)
	assert.True(t, deadline.Equal(payload.Extra["announced_at"].(time.Time)))

	attempts := payload.Extra["attempts"].([]any)
	first := attempts[0].(map[string]any)
	assert.True(t, deadline.Equal(first["at"].(time.Time)))
}

func TestStateRoundTripUnknownKind(t *testing.T) {
	raw := []byte(`{"kind":"tarot","payload":{"deck":"rider","dealt_at":"2025-06-01T10:30:00Z"},"started_at":"2025-06-01T10:30:00Z"}`)

	var decoded State
	require.NoError(t, json.Unmarshal(raw, &decoded))

	payload, ok := decoded.Payload.(*RawPayload)
	require.True(t, ok)
	assert.Equal(t, Kind("tarot"), payload.Raw)
	assert.Equal(t, "rider", payload.Data["deck"])
	_, isTime := payload.Data["dealt_at"].(time.Time)
	assert.True(t, isTime)

	again, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
}
