package router

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/do"

	"tezbot/app/activity"
	"tezbot/app/client/gemini"
	"tezbot/app/client/translate"
	"tezbot/app/client/weather"
	"tezbot/app/game"
	"tezbot/app/service/fun"
	"tezbot/app/service/quizgen"
	"tezbot/app/service/session"
)

type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, prompt string) (string, error)
}

type Translator interface {
	Translate(ctx context.Context, targetLang, text string) (string, error)
}

type WeatherProvider interface {
	Current(ctx context.Context, city string) (*weather.Report, error)
}

type FunProvider interface {
	Fact(ctx context.Context) string
	Joke(ctx context.Context) string
	Quote(ctx context.Context) string
}

type QuizSource interface {
	Generate(ctx context.Context, topic string, count int) ([]activity.QuizQuestion, error)
}

type Service struct {
	sessions   *session.Service
	gen        TextGenerator
	translator Translator
	weather    WeatherProvider
	fun        FunProvider
	quizzes    QuizSource
	rand       game.Source
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		sessions:   do.MustInvoke[*session.Service](di),
		gen:        do.MustInvoke[*gemini.Client](di),
		translator: do.MustInvoke[*translate.Client](di),
		weather:    do.MustInvoke[*weather.Client](di),
		fun:        do.MustInvoke[*fun.Service](di),
		quizzes:    do.MustInvoke[*quizgen.Service](di),
		rand:       game.NewSource(),
	}, nil
}

type Deps struct {
	Sessions   *session.Service
	Gen        TextGenerator
	Translator Translator
	Weather    WeatherProvider
	Fun        FunProvider
	Quizzes    QuizSource
	Rand       game.Source
}

func NewWithDeps(d Deps) *Service {
	return &Service{
		sessions:   d.Sessions,
		gen:        d.Gen,
		translator: d.Translator,
		weather:    d.Weather,
		fun:        d.Fun,
		quizzes:    d.Quizzes,
		rand:       d.Rand,
	}
}

// Route classifies one inbound message. Precedence is strict: an active
// activity is offered the message first; if it declines, the tool
// triggers run in fixed order; anything left is a generic chat turn.
func (s *Service) Route(ctx context.Context, userID int64, text string) Outcome {
	text = strings.TrimSpace(text)
	if text == "" {
		return Passthrough{}
	}

	if act := s.sessions.Activity(userID); act != nil {
		if out, handled := s.routeActivity(ctx, userID, act, text); handled {
			return out
		}
	}

	if out, handled := s.routeTool(ctx, text); handled {
		return out
	}

	return Passthrough{}
}

func (s *Service) routeActivity(ctx context.Context, userID int64, act *activity.State, text string) (Outcome, bool) {
	// Hint requests bypass the numeric-answer predicate.
	if act.Kind == activity.KindQuiz && isHintRequest(text) {
		return s.handleQuizHint(userID, act), true
	}

	if !activity.Accepts(act.Kind, text) {
		return nil, false
	}

	switch act.Kind {
	case activity.KindNumberGuess:
		return s.handleGuess(userID, act, text), true
	case activity.KindQuiz:
		return s.handleQuizAnswer(userID, act, text), true
	case activity.KindQuizSetup:
		return s.handleQuizSetup(ctx, userID, act, text), true
	case activity.KindRPS:
		return s.handleRPS(userID, act, text), true
	case activity.KindMagicBall:
		return s.handleMagicBall(ctx, userID, text), true
	case activity.KindTranslate:
		return s.handlePendingTranslate(ctx, userID, act, text), true
	default:
		// Unknown persisted kind: leave it alone, treat as chat.
		return nil, false
	}
}

func (s *Service) handleGuess(userID int64, act *activity.State, text string) Outcome {
	payload, ok := act.Payload.(*activity.NumberGuessPayload)
	if !ok {
		s.sessions.ClearActivity(userID)
		return Passthrough{}
	}

	guess, err := strconv.Atoi(text)
	if err != nil {
		return Passthrough{}
	}

	switch game.CheckGuess(payload, guess) {
	case game.GuessCorrect:
		s.sessions.ClearActivity(userID)
		return ActivityReply{
			Kind:      activity.KindNumberGuess,
			Text:      "🎉 Правильно! Ты угадал! 🎊",
			Completed: true,
		}
	case game.GuessHigher:
		return ActivityReply{
			Kind: activity.KindNumberGuess,
			Text: "📈 Загаданное число больше! ⬆️",
		}
	default:
		return ActivityReply{
			Kind: activity.KindNumberGuess,
			Text: "📉 Загаданное число меньше! ⬇️",
		}
	}
}

func (s *Service) handleQuizAnswer(userID int64, act *activity.State, text string) Outcome {
	payload, ok := act.Payload.(*activity.QuizPayload)
	if !ok {
		s.sessions.ClearActivity(userID)
		return Passthrough{}
	}

	answer, err := strconv.Atoi(text)
	if err != nil {
		return Passthrough{}
	}

	verdict, updated := game.AnswerQuiz(*payload, answer)

	if verdict.Finished {
		s.sessions.ClearActivity(userID)
		return ActivityReply{
			Kind: activity.KindQuiz,
			Text: fmt.Sprintf("🏁 Викторина окончена!\n\nПравильных ответов: %d из %d\n%s",
				updated.CorrectCount, updated.TotalCount,
				game.QuizGrade(updated.CorrectCount, updated.TotalCount)),
			Completed: true,
		}
	}

	s.sessions.UpdateActivityPayload(userID, &updated)

	if verdict.Correct {
		return ActivityReply{
			Kind: activity.KindQuiz,
			Text: "✅ Верно!\n\n" + renderQuizQuestion(verdict.Next, updated.CurrentIndex, updated.TotalCount),
		}
	}

	hintNote := ""
	if updated.UsedHints < updated.MaxHints() {
		hintNote = "\n\n💡 Напиши «подсказка», чтобы получить подсказку."
	}

	return ActivityReply{
		Kind: activity.KindQuiz,
		Text: "❌ Неверно! Попробуй еще раз." + hintNote,
	}
}

func (s *Service) handleQuizHint(userID int64, act *activity.State) Outcome {
	payload, ok := act.Payload.(*activity.QuizPayload)
	if !ok {
		s.sessions.ClearActivity(userID)
		return Passthrough{}
	}

	hint, updated, ok := game.UseHint(*payload)
	if !ok {
		return ActivityReply{
			Kind: activity.KindQuiz,
			Text: fmt.Sprintf("🚫 Подсказки закончились (лимит: %d).", payload.MaxHints()),
		}
	}

	s.sessions.UpdateActivityPayload(userID, &updated)

	return ActivityReply{
		Kind: activity.KindQuiz,
		Text: fmt.Sprintf("💡 Подсказка: %s\n\n(использовано %d из %d)",
			hint, updated.UsedHints, updated.MaxHints()),
	}
}

const (
	quizMinQuestions = 5
	quizMaxQuestions = 30
)

func (s *Service) handleQuizSetup(ctx context.Context, userID int64, act *activity.State, text string) Outcome {
	payload, ok := act.Payload.(*activity.QuizSetupPayload)
	if !ok {
		s.sessions.ClearActivity(userID)
		return Passthrough{}
	}

	count, err := strconv.Atoi(text)
	if err != nil || count < quizMinQuestions || count > quizMaxQuestions {
		return ActivityReply{
			Kind: activity.KindQuizSetup,
			Text: fmt.Sprintf("Выбери количество вопросов от %d до %d.", quizMinQuestions, quizMaxQuestions),
		}
	}

	topic := payload.Topic
	if topic == "" {
		topic = "общие знания"
	}

	questions, err := s.quizzes.Generate(ctx, topic, count)
	if err != nil {
		return ActivityReply{
			Kind: activity.KindQuizSetup,
			Text: "❌ Не удалось создать викторину. Попробуй еще раз.",
		}
	}

	quiz := &activity.QuizPayload{
		Questions:  questions,
		TotalCount: count,
	}
	s.sessions.SetActivity(userID, activity.KindQuiz, quiz)

	return ActivityReply{
		Kind: activity.KindQuiz,
		Text: "🧠 Викторина началась!\n\n" + renderQuizQuestion(&questions[0], 0, count),
	}
}

func (s *Service) handleRPS(userID int64, act *activity.State, text string) Outcome {
	choice, _ := activity.ParseRPSChoice(text)

	var previous activity.RPSChoice
	if payload, ok := act.Payload.(*activity.RPSPayload); ok {
		previous = payload.PreviousChoice
	}

	bot := game.DrawOpponent(previous, choice, s.rand)

	// The game stays armed so the next throw plays another round, with
	// this round's choice feeding the opponent bias.
	s.sessions.SetActivity(userID, activity.KindRPS, &activity.RPSPayload{PreviousChoice: choice})

	var result string
	switch game.ResolveRPS(choice, bot) {
	case game.RPSUserWin:
		result = "🎉 Ты победил!"
	case game.RPSBotWin:
		result = "😢 Я победил!"
	default:
		result = "🤝 Ничья!"
	}

	return ActivityReply{
		Kind: activity.KindRPS,
		Text: fmt.Sprintf("🤖 Я выбрал: %s\n🧑 Ты выбрал: %s\n\n%s\n\nСыграем еще? ✊✌️✋",
			rpsLabel(bot), rpsLabel(choice), result),
		Completed: true,
	}
}

func rpsLabel(c activity.RPSChoice) string {
	switch c {
	case activity.Rock:
		return "камень"
	case activity.Scissors:
		return "ножницы"
	default:
		return "бумага"
	}
}

func (s *Service) handleMagicBall(ctx context.Context, userID int64, text string) Outcome {
	prompt := fmt.Sprintf("Ты - магический шар предсказаний. "+
		"Ответь на вопрос «%s» коротко, загадочно и с долей юмора, "+
		"одним-двумя предложениями на русском языке.", text)

	answer, err := s.gen.GenerateText(ctx, "", prompt)
	if err != nil {
		// Activity stays active so the user can just ask again.
		return ActivityReply{
			Kind: activity.KindMagicBall,
			Text: "🔮 Шар затуманился... Задай вопрос еще раз.",
		}
	}

	s.sessions.ClearActivity(userID)

	return ActivityReply{
		Kind:      activity.KindMagicBall,
		Text:      "🔮 " + answer,
		Completed: true,
	}
}

func (s *Service) handlePendingTranslate(ctx context.Context, userID int64, act *activity.State, text string) Outcome {
	payload, ok := act.Payload.(*activity.TranslatePayload)
	if !ok {
		s.sessions.ClearActivity(userID)
		return Passthrough{}
	}

	translated, err := s.translator.Translate(ctx, payload.TargetLang, text)
	if err != nil {
		return ActivityReply{
			Kind: activity.KindTranslate,
			Text: "❌ Не удалось перевести. Попробуй еще раз.",
		}
	}

	s.sessions.ClearActivity(userID)

	return ActivityReply{
		Kind:      activity.KindTranslate,
		Text:      fmt.Sprintf("🌐 Перевод (%s):\n\n%s", payload.TargetLang, translated),
		Completed: true,
	}
}

func renderQuizQuestion(q *activity.QuizQuestion, index, total int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "❓ Вопрос %d из %d:\n%s\n\n", index+1, total, q.Question)
	for i, opt := range q.Options {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, opt)
	}
	sb.WriteString("\nОтветь номером правильного варианта!")
	return sb.String()
}

var hintWords = map[string]bool{
	"подсказка": true,
	"подсказку": true,
	"hint":      true,
}

func isHintRequest(text string) bool {
	return hintWords[strings.ToLower(strings.TrimSpace(text))]
}
