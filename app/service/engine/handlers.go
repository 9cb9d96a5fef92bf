package engine

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tezbot/app/activity"
	"tezbot/app/service/router"
	"tezbot/app/service/session"
	"tezbot/app/service/stats"
)

// Replies longer than this are cut before sending; the transport caps
// message length anyway.
const maxReplyRunes = 4000

func (s *Service) handleText(ctx context.Context, userID, chatID int64, text string) {
	s.routeAndReply(ctx, userID, chatID, text, session.KindText)
}

func (s *Service) routeAndReply(ctx context.Context, userID, chatID int64, text string, kind session.MessageKind) {
	s.tg.SendTyping(chatID)

	switch outcome := s.router.Route(ctx, userID, text).(type) {
	case router.ActivityReply:
		s.stats.LogEvent(ctx, userID, "activity", text, outcome.Text)
		if outcome.Completed {
			s.stats.Increment(ctx, userID, counterForActivity(outcome.Kind))
		}
		s.send(chatID, outcome.Text)

	case router.ToolHandled:
		s.stats.LogEvent(ctx, userID, "tool", text, outcome.Text)
		s.stats.Increment(ctx, userID, counterForTool(outcome.Tool))
		s.send(chatID, outcome.Text)

	case router.Passthrough:
		s.chat(ctx, userID, chatID, text, kind)
	}
}

// chat is the generic conversational turn: history in, model out.
func (s *Service) chat(ctx context.Context, userID, chatID int64, text string, kind session.MessageKind) {
	s.sessions.AppendMessage(userID, session.RoleUser, text, kind)

	p := s.personas.Get(s.sessions.Persona(userID))

	prompt := text
	if transcript := s.sessions.Context(userID, 0); transcript != "" {
		prompt = fmt.Sprintf("Контекст беседы:\n%s\n\nНовое сообщение пользователя: %s", transcript, text)
	}

	answer, err := s.gemini.GenerateText(ctx, p.SystemPrompt, prompt)
	if err != nil {
		slog.Warn("Chat generation failed", "user", userID, "error", err)
		s.send(chatID, "😔 Не получилось ответить. Попробуй еще раз.")
		return
	}

	answer = truncateRunes(answer, maxReplyRunes)

	s.sessions.AppendMessage(userID, session.RoleAssistant, answer, session.KindText)
	s.stats.LogEvent(ctx, userID, "chat", text, answer)
	s.send(chatID, answer)
}

func (s *Service) handlePhoto(ctx context.Context, userID, chatID int64, msg *tgbotapi.Message) {
	s.tg.SendTyping(chatID)

	// The last entry is the largest rendition.
	fileID := msg.Photo[len(msg.Photo)-1].FileID

	data, err := s.tg.DownloadFile(fileID)
	if err != nil {
		slog.Warn("Photo download failed", "user", userID, "error", err)
		s.send(chatID, "😔 Не получилось загрузить картинку.")
		return
	}

	answer, err := s.gemini.AnalyzeImage(ctx, "image/jpeg", data, msg.Caption)
	if err != nil {
		slog.Warn("Image analysis failed", "user", userID, "error", err)
		s.send(chatID, "😔 Не получилось разобрать картинку. Попробуй еще раз.")
		return
	}

	answer = truncateRunes(answer, maxReplyRunes)

	s.sessions.AppendMessage(userID, session.RoleUser, "[изображение]", session.KindImage)
	s.sessions.AppendMessage(userID, session.RoleAssistant, answer, session.KindText)
	s.stats.LogEvent(ctx, userID, "photo", msg.Caption, answer)
	s.send(chatID, answer)
}

func (s *Service) handleVoice(ctx context.Context, userID, chatID int64, msg *tgbotapi.Message) {
	s.tg.SendTyping(chatID)

	data, err := s.tg.DownloadFile(msg.Voice.FileID)
	if err != nil {
		slog.Warn("Voice download failed", "user", userID, "error", err)
		s.send(chatID, "😔 Не получилось загрузить голосовое сообщение.")
		return
	}

	transcript, err := s.transcribe(ctx, data)
	if err != nil {
		slog.Warn("Voice transcription failed", "user", userID, "error", err)
		s.send(chatID, "😔 Не получилось распознать голосовое сообщение.")
		return
	}

	// The reply is logged by whichever branch handles the transcript;
	// this entry records the transcription itself.
	s.stats.LogEvent(ctx, userID, "voice", transcript, "")

	// The transcript goes through the same routing as typed text, so a
	// spoken guess or weather question works too.
	s.routeAndReply(ctx, userID, chatID, transcript, session.KindVoice)
}

func (s *Service) transcribe(ctx context.Context, audio []byte) (string, error) {
	if s.stt != nil {
		return s.stt.Transcribe(ctx, audio)
	}
	return s.gemini.TranscribeAudio(ctx, "audio/ogg", audio)
}

func counterForTool(tool string) string {
	switch tool {
	case router.ToolWeather:
		return stats.CounterWeather
	case router.ToolTranslate:
		return stats.CounterTranslations
	case router.ToolCalc:
		return stats.CounterCalculations
	case router.ToolFact:
		return stats.CounterFacts
	case router.ToolJoke:
		return stats.CounterJokes
	case router.ToolQuote:
		return stats.CounterQuotes
	default:
		return stats.CounterMessages
	}
}

func counterForActivity(kind activity.Kind) string {
	switch kind {
	case activity.KindRPS:
		return stats.CounterRPSGames
	case activity.KindTranslate:
		return stats.CounterTranslations
	default:
		return stats.CounterGames
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
