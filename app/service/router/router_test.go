package router

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tezbot/app/activity"
	"tezbot/app/client/weather"
	"tezbot/app/config"
	"tezbot/app/service/session"
)

type memStore struct {
	records map[int64]json.RawMessage
}

func (m *memStore) Load() (map[int64]json.RawMessage, error) {
	return m.records, nil
}

func (m *memStore) Save(records map[int64]json.RawMessage) error {
	m.records = records
	return nil
}

type fakeGen struct {
	text string
	err  error
}

func (f *fakeGen) GenerateText(context.Context, string, string) (string, error) {
	return f.text, f.err
}

type fakeTranslator struct {
	gotLang string
	gotText string
	err     error
}

func (f *fakeTranslator) Translate(_ context.Context, lang, text string) (string, error) {
	f.gotLang = lang
	f.gotText = text
	if f.err != nil {
		return "", f.err
	}
	return "translated: " + text, nil
}

type fakeWeather struct {
	report *weather.Report
	err    error
	asked  string
}

func (f *fakeWeather) Current(_ context.Context, city string) (*weather.Report, error) {
	f.asked = city
	return f.report, f.err
}

type fakeFun struct{}

func (fakeFun) Fact(context.Context) string  { return "факт" }
func (fakeFun) Joke(context.Context) string  { return "шутка" }
func (fakeFun) Quote(context.Context) string { return "цитата" }

type fakeQuizSource struct {
	questions []activity.QuizQuestion
	err       error
}

func (f *fakeQuizSource) Generate(context.Context, string, int) ([]activity.QuizQuestion, error) {
	return f.questions, f.err
}

type scriptedSource struct {
	ints   []int
	floats []float64
}

func (s *scriptedSource) IntN(int) int {
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v
}

func (s *scriptedSource) Float64() float64 {
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

type fixture struct {
	svc        *Service
	sessions   *session.Service
	gen        *fakeGen
	translator *fakeTranslator
	weather    *fakeWeather
	rand       *scriptedSource
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.Session.MaxHistory = 20
	cfg.Session.MaxAgeHours = 24

	sessions, err := session.NewWithStore(cfg, &memStore{})
	require.NoError(t, err)

	f := &fixture{
		sessions:   sessions,
		gen:        &fakeGen{text: "ответ"},
		translator: &fakeTranslator{},
		weather: &fakeWeather{report: &weather.Report{
			City: "Ташкент", Temperature: 28, Condition: "жарко, солнечно",
			Humidity: 35, WindSpeed: 3.2, WindDirection: "северный",
		}},
		rand: &scriptedSource{},
	}

	f.svc = NewWithDeps(Deps{
		Sessions:   sessions,
		Gen:        f.gen,
		Translator: f.translator,
		Weather:    f.weather,
		Fun:        fakeFun{},
		Quizzes:    &fakeQuizSource{},
		Rand:       f.rand,
	})

	return f
}

func TestWeatherBeatsArithmetic(t *testing.T) {
	f := newFixture(t)

	out := f.svc.Route(context.Background(), 1, "погода 2+2")

	handled, ok := out.(ToolHandled)
	require.True(t, ok)
	assert.Equal(t, ToolWeather, handled.Tool)
}

func TestWeatherExtractsCity(t *testing.T) {
	f := newFixture(t)

	out := f.svc.Route(context.Background(), 1, "Какая погода в Ташкенте сейчас?")

	handled, ok := out.(ToolHandled)
	require.True(t, ok)
	assert.Equal(t, ToolWeather, handled.Tool)
	assert.Equal(t, "ташкенте", f.weather.asked)
	assert.Contains(t, handled.Text, "Ташкент")
}

func TestWeatherUnknownCity(t *testing.T) {
	f := newFixture(t)
	f.weather.report = nil
	f.weather.err = &weather.ErrUnknownCity{City: "лондоне"}

	out := f.svc.Route(context.Background(), 1, "погода в Лондоне")

	handled, ok := out.(ToolHandled)
	require.True(t, ok)
	assert.Contains(t, handled.Text, "не найден")
}

func TestWeatherWithoutCityGivesUsageHint(t *testing.T) {
	f := newFixture(t)

	out := f.svc.Route(context.Background(), 1, "погода")

	handled, ok := out.(ToolHandled)
	require.True(t, ok)
	assert.Equal(t, ToolWeather, handled.Tool)
	assert.Contains(t, handled.Text, "города")
	assert.Empty(t, f.weather.asked)
}

func TestTranslateExtraction(t *testing.T) {
	f := newFixture(t)

	out := f.svc.Route(context.Background(), 1, "переведи на английский привет мир")

	handled, ok := out.(ToolHandled)
	require.True(t, ok)
	assert.Equal(t, ToolTranslate, handled.Tool)
	assert.Equal(t, "en", f.translator.gotLang)
	assert.Equal(t, "привет мир", f.translator.gotText)
}

func TestTranslateUnsupportedLanguage(t *testing.T) {
	f := newFixture(t)

	out := f.svc.Route(context.Background(), 1, "переведи на клингонский привет")

	handled, ok := out.(ToolHandled)
	require.True(t, ok)
	assert.Contains(t, handled.Text, "не поддерживается")
	assert.Empty(t, f.translator.gotLang)
}

func TestTranslateBareKeywordGivesUsageHint(t *testing.T) {
	f := newFixture(t)

	out := f.svc.Route(context.Background(), 1, "переведи")

	handled, ok := out.(ToolHandled)
	require.True(t, ok)
	assert.Equal(t, ToolTranslate, handled.Tool)
	assert.Contains(t, handled.Text, "переведи на")
}

func TestArithmetic(t *testing.T) {
	f := newFixture(t)

	out := f.svc.Route(context.Background(), 1, "2 + 2 * 2")

	handled, ok := out.(ToolHandled)
	require.True(t, ok)
	assert.Equal(t, ToolCalc, handled.Tool)
	assert.Contains(t, handled.Text, "= 6")
}

func TestFunTriggers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for text, tool := range map[string]string{
		"расскажи факт":  ToolFact,
		"пошути":         ToolJoke,
		"мотивируй меня": ToolQuote,
	} {
		out := f.svc.Route(ctx, 1, text)
		handled, ok := out.(ToolHandled)
		require.True(t, ok, text)
		assert.Equal(t, tool, handled.Tool, text)
	}
}

func TestPlainChatIsPassthrough(t *testing.T) {
	f := newFixture(t)

	out := f.svc.Route(context.Background(), 1, "привет, как дела?")
	assert.IsType(t, Passthrough{}, out)
}

func TestGuessFullRound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.sessions.SetActivity(1, activity.KindNumberGuess, &activity.NumberGuessPayload{
		Target: 7, Min: 1, Max: 10, Difficulty: "easy",
	})

	out := f.svc.Route(ctx, 1, "3")
	reply, ok := out.(ActivityReply)
	require.True(t, ok)
	assert.False(t, reply.Completed)
	assert.Contains(t, reply.Text, "больше")
	require.NotNil(t, f.sessions.Activity(1))

	out = f.svc.Route(ctx, 1, "7")
	reply, ok = out.(ActivityReply)
	require.True(t, ok)
	assert.True(t, reply.Completed)
	assert.Nil(t, f.sessions.Activity(1))
}

func TestGuessIgnoresNonNumericReply(t *testing.T) {
	f := newFixture(t)

	f.sessions.SetActivity(1, activity.KindNumberGuess, &activity.NumberGuessPayload{
		Target: 7, Min: 1, Max: 10,
	})

	out := f.svc.Route(context.Background(), 1, "не знаю")
	assert.IsType(t, Passthrough{}, out)
	assert.NotNil(t, f.sessions.Activity(1))
}

func testQuizPayload(total int) *activity.QuizPayload {
	questions := make([]activity.QuizQuestion, total)
	for i := range questions {
		questions[i] = activity.QuizQuestion{
			Question: fmt.Sprintf("q%d", i),
			Options:  []string{"a", "b", "c", "d"},
			Correct:  2,
			Hint:     "подумай",
		}
	}
	return &activity.QuizPayload{Questions: questions, TotalCount: total}
}

func TestQuizWrongThenRight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.sessions.SetActivity(1, activity.KindQuiz, testQuizPayload(10))

	out := f.svc.Route(ctx, 1, "1")
	reply, ok := out.(ActivityReply)
	require.True(t, ok)
	assert.Contains(t, reply.Text, "Неверно")

	payload := f.sessions.Activity(1).Payload.(*activity.QuizPayload)
	assert.Zero(t, payload.CurrentIndex)
	assert.Zero(t, payload.UsedHints)

	out = f.svc.Route(ctx, 1, "2")
	reply, ok = out.(ActivityReply)
	require.True(t, ok)
	assert.Contains(t, reply.Text, "Верно")

	payload = f.sessions.Activity(1).Payload.(*activity.QuizPayload)
	assert.Equal(t, 1, payload.CurrentIndex)
	assert.Equal(t, 1, payload.CorrectCount)
}

func TestQuizHintRequest(t *testing.T) {
	f := newFixture(t)

	f.sessions.SetActivity(1, activity.KindQuiz, testQuizPayload(10))

	out := f.svc.Route(context.Background(), 1, "подсказка")
	reply, ok := out.(ActivityReply)
	require.True(t, ok)
	assert.Contains(t, reply.Text, "подумай")

	payload := f.sessions.Activity(1).Payload.(*activity.QuizPayload)
	assert.Equal(t, 1, payload.UsedHints)
}

func TestRPSRound(t *testing.T) {
	f := newFixture(t)
	// No flat override, then the counter-move band.
	f.rand.floats = []float64{0.9, 0.5}

	f.sessions.SetActivity(1, activity.KindRPS, &activity.RPSPayload{
		PreviousChoice: activity.Rock,
	})

	// Bot counters rock with paper; scissors beat paper.
	out := f.svc.Route(context.Background(), 1, "ножницы")
	reply, ok := out.(ActivityReply)
	require.True(t, ok)
	assert.True(t, reply.Completed)
	assert.Contains(t, reply.Text, "Ты победил")
}

func TestRPSRemembersPreviousChoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.rand.floats = []float64{0.9, 0.5, 0.9, 0.5}

	f.sessions.SetActivity(1, activity.KindRPS, &activity.RPSPayload{})

	// First round has no history, so the bias counters the current
	// choice: rock gets countered by paper.
	out := f.svc.Route(ctx, 1, "камень")
	reply, ok := out.(ActivityReply)
	require.True(t, ok)
	assert.Contains(t, reply.Text, "Я выбрал: бумага")

	act := f.sessions.Activity(1)
	require.NotNil(t, act)
	require.Equal(t, activity.KindRPS, act.Kind)
	assert.Equal(t, activity.Rock, act.Payload.(*activity.RPSPayload).PreviousChoice)

	// Second round biases against the remembered rock, not the current
	// scissors, so the bot again throws paper and loses.
	out = f.svc.Route(ctx, 1, "ножницы")
	reply, ok = out.(ActivityReply)
	require.True(t, ok)
	assert.Contains(t, reply.Text, "Я выбрал: бумага")
	assert.Contains(t, reply.Text, "Ты победил")

	act = f.sessions.Activity(1)
	require.NotNil(t, act)
	assert.Equal(t, activity.Scissors, act.Payload.(*activity.RPSPayload).PreviousChoice)
}

func TestMagicBallRetriesOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.sessions.SetActivity(1, activity.KindMagicBall, &activity.MagicBallPayload{})

	f.gen.err = fmt.Errorf("model down")
	out := f.svc.Route(ctx, 1, "повезет ли мне?")
	reply, ok := out.(ActivityReply)
	require.True(t, ok)
	assert.False(t, reply.Completed)
	require.NotNil(t, f.sessions.Activity(1))

	f.gen.err = nil
	f.gen.text = "Знаки говорят: да."
	out = f.svc.Route(ctx, 1, "повезет ли мне?")
	reply, ok = out.(ActivityReply)
	require.True(t, ok)
	assert.True(t, reply.Completed)
	assert.Nil(t, f.sessions.Activity(1))
}

func TestPendingTranslateConsumesNextMessage(t *testing.T) {
	f := newFixture(t)

	f.sessions.SetActivity(1, activity.KindTranslate, &activity.TranslatePayload{TargetLang: "en"})

	out := f.svc.Route(context.Background(), 1, "доброе утро")
	reply, ok := out.(ActivityReply)
	require.True(t, ok)
	assert.True(t, reply.Completed)
	assert.Equal(t, "en", f.translator.gotLang)
	assert.Equal(t, "доброе утро", f.translator.gotText)
	assert.Nil(t, f.sessions.Activity(1))
}

func TestQuizSetupStartsQuiz(t *testing.T) {
	f := newFixture(t)
	questions := testQuizPayload(5).Questions
	f.svc.quizzes = &fakeQuizSource{questions: questions}

	f.sessions.SetActivity(1, activity.KindQuizSetup, &activity.QuizSetupPayload{Topic: "космос"})

	out := f.svc.Route(context.Background(), 1, "5")
	reply, ok := out.(ActivityReply)
	require.True(t, ok)
	assert.Equal(t, activity.KindQuiz, reply.Kind)

	act := f.sessions.Activity(1)
	require.NotNil(t, act)
	assert.Equal(t, activity.KindQuiz, act.Kind)
}

func TestQuizSetupRejectsBadCount(t *testing.T) {
	f := newFixture(t)

	f.sessions.SetActivity(1, activity.KindQuizSetup, &activity.QuizSetupPayload{})

	out := f.svc.Route(context.Background(), 1, "3")
	reply, ok := out.(ActivityReply)
	require.True(t, ok)
	assert.Equal(t, activity.KindQuizSetup, reply.Kind)
	assert.Equal(t, activity.KindQuizSetup, f.sessions.Activity(1).Kind)
}

func TestLooksLikeArithmetic(t *testing.T) {
	assert.True(t, looksLikeArithmetic("2+2"))
	assert.True(t, looksLikeArithmetic("(1 + 2) * 3"))
	assert.False(t, looksLikeArithmetic("7"))
	assert.False(t, looksLikeArithmetic("привет"))
	assert.False(t, looksLikeArithmetic("+"))
	assert.False(t, looksLikeArithmetic("счет 2:1"))
}
