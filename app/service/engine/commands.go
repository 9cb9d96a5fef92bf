package engine

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tezbot/app/activity"
	"tezbot/app/client/translate"
	"tezbot/app/game"
	"tezbot/app/service/session"
	"tezbot/app/service/stats"
	"tezbot/app/tool/calc"
)

const helpText = `Я умею:

💬 Просто общаться — пиши что угодно
🧮 Считать: «2 + 2 * 2» или /calc
🌤️ Погоду: «погода в Ташкенте»
🌐 Переводить: «переведи на английский привет»
🎮 Играть:
  /guess [easy|medium|hard] — угадай число
  /rps — камень-ножницы-бумага
  /dice [low|medium|high|ultra|legendary] — кости
  /quiz [тема] — викторина
  /ball — магический шар
😄 Развлекать: /fact /joke /quote
🎭 Режимы общения: /mode
🗑️ /clear — забыть нашу переписку
📊 /stats — твоя статистика`

func (s *Service) handleCommand(ctx context.Context, userID, chatID int64, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	s.sessions.AppendMessage(userID, session.RoleUser, "/"+cmd, session.KindCommand)
	s.stats.LogEvent(ctx, userID, "command", "/"+cmd, "")

	if p, ok := s.personas.ByCommand(cmd); ok {
		s.sessions.SetPersona(userID, p.Key)
		s.send(chatID, fmt.Sprintf("🎭 Режим: %s\n%s", p.Name, p.Description))
		return
	}

	switch cmd {
	case "start":
		s.send(chatID, "Привет! 👋 Я твой ИИ-помощник.\n\n"+helpText)

	case "help":
		s.send(chatID, helpText)

	case "mode":
		s.sendModeList(chatID)

	case "clear":
		if s.sessions.ClearAll(userID) {
			s.send(chatID, "🗑️ Память очищена. Начнем с чистого листа!")
		} else {
			s.send(chatID, "Мне и так нечего о тебе забывать 🙂")
		}

	case "stats":
		s.sendStats(ctx, userID, chatID)

	case "calc":
		s.handleCalcCommand(ctx, userID, chatID, args)

	case "guess":
		payload := game.NewNumberGuess(args, s.rand)
		s.sessions.SetActivity(userID, activity.KindNumberGuess, payload)
		s.send(chatID, fmt.Sprintf("🔢 Я загадал число от %d до %d. Попробуй угадать!\n\n💡 %s",
			payload.Min, payload.Max, guessHint(ctx, s.gemini, payload)))

	case "rps":
		s.sessions.SetActivity(userID, activity.KindRPS, &activity.RPSPayload{})
		s.send(chatID, "✊ Камень, ножницы или бумага?")

	case "dice":
		s.handleDiceCommand(ctx, userID, chatID, args)

	case "quiz":
		s.sessions.SetActivity(userID, activity.KindQuizSetup, &activity.QuizSetupPayload{Topic: args})
		s.send(chatID, "🧠 Сколько вопросов? Напиши число от 5 до 30.")

	case "ball":
		s.sessions.SetActivity(userID, activity.KindMagicBall, &activity.MagicBallPayload{})
		s.send(chatID, "🔮 Задай вопрос магическому шару!")

	case "translate":
		s.handleTranslateCommand(userID, chatID, args)

	case "fact":
		s.stats.Increment(ctx, userID, stats.CounterFacts)
		s.send(chatID, s.fun.Fact(ctx))

	case "joke":
		s.stats.Increment(ctx, userID, stats.CounterJokes)
		s.send(chatID, s.fun.Joke(ctx))

	case "quote":
		s.stats.Increment(ctx, userID, stats.CounterQuotes)
		s.send(chatID, s.fun.Quote(ctx))

	default:
		s.send(chatID, "🤔 Не знаю такой команды. Посмотри /help.")
	}
}

type textGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// guessHint asks the model for a playful clue about the hidden number,
// falling back to a half-of-range hint when the call fails.
func guessHint(ctx context.Context, gen textGenerator, p *activity.NumberGuessPayload) string {
	prompt := fmt.Sprintf("Я загадал число %d в диапазоне от %d до %d. "+
		"Дай одну короткую шутливую подсказку об этом числе на русском языке, не называя его.",
		p.Target, p.Min, p.Max)

	hint, err := gen.GenerateText(ctx, "", prompt)
	if err != nil || strings.TrimSpace(hint) == "" {
		if p.Target > (p.Min+p.Max)/2 {
			return "Число прячется в верхней половине диапазона."
		}
		return "Число прячется в нижней половине диапазона."
	}

	return strings.TrimSpace(hint)
}

func (s *Service) sendModeList(chatID int64) {
	var sb strings.Builder
	sb.WriteString("🎭 Режимы общения:\n\n")
	for _, p := range s.personas.All() {
		fmt.Fprintf(&sb, "%s — %s\n%s\n\n", p.Commands[0], p.Name, p.Description)
	}
	s.send(chatID, sb.String())
}

func (s *Service) sendStats(ctx context.Context, userID, chatID int64) {
	sess := s.sessions.Stats(userID)

	usage, err := s.stats.User(ctx, userID)
	if err != nil {
		s.send(chatID, "😔 Не получилось собрать статистику. Попробуй позже.")
		return
	}

	s.send(chatID, fmt.Sprintf(`📊 Твоя статистика

💬 Всего сообщений: %d
🗂️ В памяти сейчас: %d
🎮 Игр сыграно: %d
✊ Раундов камень-ножницы-бумага: %d
🧮 Вычислений: %d
🌐 Переводов: %d
🌤️ Запросов погоды: %d
🧠 Фактов: %d, шуток: %d, цитат: %d

🕐 Общаемся с: %s`,
		usage.Messages, sess.CurrentMessages, usage.Games, usage.RPSGames,
		usage.Calculations, usage.Translations, usage.Weather,
		usage.Facts, usage.Jokes, usage.Quotes,
		sess.CreatedAt.Format("02.01.2006 15:04")))
}

func (s *Service) handleCalcCommand(ctx context.Context, userID, chatID int64, args string) {
	if args == "" {
		s.send(chatID, "🧮 Напиши выражение: /calc 2 + 2 * 2")
		return
	}

	result, err := calc.Evaluate(args)
	if err != nil {
		s.send(chatID, "❌ Не удалось вычислить выражение.")
		return
	}

	s.stats.Increment(ctx, userID, stats.CounterCalculations)
	s.send(chatID, fmt.Sprintf("🔢 %s = %s", args, calc.Format(result)))
}

func (s *Service) handleDiceCommand(ctx context.Context, userID, chatID int64, args string) {
	tier := args
	if tier == "" {
		tier = "medium"
	}

	result, err := game.PlayDice(tier, s.rand)
	if err != nil {
		s.send(chatID, fmt.Sprintf("🎲 Ставки: %s. Например: /dice high",
			strings.Join(game.DiceTiers(), ", ")))
		return
	}

	var verdict string
	switch result.Outcome {
	case game.DiceUserWin:
		verdict = "🎉 Ты победил! 🎲"
	case game.DiceBotWin:
		verdict = "😢 Я победил! 🎲"
	default:
		verdict = "🤝 Ничья! 🎲"
	}

	s.stats.Increment(ctx, userID, stats.CounterGames)
	s.send(chatID, fmt.Sprintf("🎯 Игра в кости\n\nТвои кости: %d\nМои кости: %d\n\n%s",
		result.UserRoll, result.BotRoll, verdict))
}

func (s *Service) handleTranslateCommand(userID, chatID int64, args string) {
	code, ok := translate.ResolveLang(args)
	if !ok {
		s.send(chatID, fmt.Sprintf("🌐 Укажи язык: /translate английский\n\nДоступные: %s.",
			strings.Join(translate.SupportedList(), ", ")))
		return
	}

	s.sessions.SetActivity(userID, activity.KindTranslate, &activity.TranslatePayload{TargetLang: code})
	s.send(chatID, "🌐 Отправь текст, который нужно перевести.")
}
