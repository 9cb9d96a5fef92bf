package router

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"tezbot/app/client/translate"
	"tezbot/app/client/weather"
	"tezbot/app/tool/calc"
)

// Tool names carried in ToolHandled outcomes.
const (
	ToolWeather   = "weather"
	ToolTranslate = "translate"
	ToolCalc      = "calc"
	ToolFact      = "fact"
	ToolJoke      = "joke"
	ToolQuote     = "quote"
)

// Longer phrases first so city extraction strips them whole.
var weatherKeywords = []string{
	"какая погода", "прогноз погоды", "погодка", "погода",
	"температура", "прогноз", "weather",
}

var (
	reTranslateRu = regexp.MustCompile(`(?i)переведи\s+на\s+(\S+)\s+(.+)`)
	reTranslateEn = regexp.MustCompile(`(?i)translate\s+to\s+(\S+)\s+(.+)`)
)

var funTriggers = []struct {
	tool  string
	words []string
}{
	{ToolFact, []string{"интересный факт", "расскажи факт", "факт"}},
	{ToolJoke, []string{"расскажи шутку", "пошути", "анекдот", "шутка", "шутку"}},
	{ToolQuote, []string{"мотивационная цитата", "мотивируй", "мотивация", "цитата", "цитату"}},
}

// routeTool tests the trigger categories in fixed order: weather, then
// translation, then arithmetic, then fun content. The order is part of
// the contract, keyword sets can overlap.
func (s *Service) routeTool(ctx context.Context, text string) (Outcome, bool) {
	lower := strings.ToLower(text)

	if matchesAny(lower, weatherKeywords) {
		return s.handleWeather(ctx, text), true
	}

	if strings.Contains(lower, "переведи") || strings.Contains(lower, "translate") {
		return s.handleTranslate(ctx, text), true
	}

	if looksLikeArithmetic(text) {
		return s.handleCalc(text), true
	}

	for _, trig := range funTriggers {
		if matchesAny(lower, trig.words) {
			return s.handleFun(ctx, trig.tool), true
		}
	}

	return nil, false
}

func matchesAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func (s *Service) handleWeather(ctx context.Context, text string) Outcome {
	city := extractCity(text)
	if city == "" {
		return ToolHandled{
			Tool: ToolWeather,
			Text: "🌤️ Напиши название города, например: «погода в Ташкенте».",
		}
	}

	report, err := s.weather.Current(ctx, city)

	var unknown *weather.ErrUnknownCity
	if errors.As(err, &unknown) {
		return ToolHandled{
			Tool: ToolWeather,
			Text: fmt.Sprintf("❌ Город «%s» не найден.\n\nДоступные города: %s и другие.",
				city, strings.Join(weather.KnownCities(), ", ")),
		}
	}
	if err != nil {
		return ToolHandled{
			Tool: ToolWeather,
			Text: "❌ Не удалось получить погоду. Попробуй позже.",
		}
	}

	return ToolHandled{
		Tool: ToolWeather,
		Text: formatWeather(report),
	}
}

func formatWeather(r *weather.Report) string {
	return fmt.Sprintf("🌤️ Погода в %s\n\n"+
		"🌡️ Температура: %.1f°C\n"+
		"🌥️ Состояние: %s\n"+
		"💧 Влажность: %d%%\n"+
		"💨 Ветер: %.1f м/с, %s",
		r.City, r.Temperature, r.Condition, r.Humidity, r.WindSpeed, r.WindDirection)
}

// extractCity strips the weather keywords and filler words; whatever
// remains is taken as the place name.
func extractCity(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range weatherKeywords {
		lower = strings.ReplaceAll(lower, kw, " ")
	}

	var parts []string
	for _, field := range strings.Fields(lower) {
		word := strings.Trim(field, " ,.!?")
		switch word {
		case "", "в", "на", "во", "какая", "сейчас", "сегодня", "завтра":
			continue
		}
		parts = append(parts, word)
	}

	return strings.Join(parts, " ")
}

func (s *Service) handleTranslate(ctx context.Context, text string) Outcome {
	match := reTranslateRu.FindStringSubmatch(text)
	if match == nil {
		match = reTranslateEn.FindStringSubmatch(text)
	}
	if match == nil {
		return ToolHandled{
			Tool: ToolTranslate,
			Text: "🌐 Напиши так: «переведи на английский привет мир».",
		}
	}

	langName, payload := match[1], strings.TrimSpace(match[2])

	code, ok := translate.ResolveLang(langName)
	if !ok {
		return ToolHandled{
			Tool: ToolTranslate,
			Text: fmt.Sprintf("🌐 Язык «%s» не поддерживается.\n\nДоступные: %s.",
				langName, strings.Join(translate.SupportedList(), ", ")),
		}
	}

	translated, err := s.translator.Translate(ctx, code, payload)
	if err != nil {
		return ToolHandled{
			Tool: ToolTranslate,
			Text: "❌ Не удалось перевести. Попробуй позже.",
		}
	}

	return ToolHandled{
		Tool: ToolTranslate,
		Text: fmt.Sprintf("🌐 Перевод (%s):\n\n%s", code, translated),
	}
}

// looksLikeArithmetic: at least one digit and one operator once the
// whitespace is gone, and more than a single character overall.
func looksLikeArithmetic(text string) bool {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	if len([]rune(stripped)) <= 1 {
		return false
	}

	hasDigit := false
	hasOperator := false
	for _, r := range stripped {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune("+-*/^()", r):
			hasOperator = true
		}
	}

	return hasDigit && hasOperator
}

func (s *Service) handleCalc(text string) Outcome {
	result, err := calc.Evaluate(text)
	if err != nil {
		return ToolHandled{
			Tool: ToolCalc,
			Text: "❌ Не удалось вычислить выражение.",
		}
	}

	return ToolHandled{
		Tool: ToolCalc,
		Text: fmt.Sprintf("🔢 %s = %s", strings.TrimSpace(text), calc.Format(result)),
	}
}

func (s *Service) handleFun(ctx context.Context, tool string) Outcome {
	switch tool {
	case ToolFact:
		return ToolHandled{Tool: ToolFact, Text: s.fun.Fact(ctx)}
	case ToolJoke:
		return ToolHandled{Tool: ToolJoke, Text: s.fun.Joke(ctx)}
	default:
		return ToolHandled{Tool: ToolQuote, Text: s.fun.Quote(ctx)}
	}
}
