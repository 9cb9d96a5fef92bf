package quizgen

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/do"

	"tezbot/app/activity"
	"tezbot/app/client/gemini"
)

type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, prompt string) (string, error)
}

type Service struct {
	gen TextGenerator
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		gen: do.MustInvoke[*gemini.Client](di),
	}, nil
}

func NewWithGenerator(gen TextGenerator) *Service {
	return &Service{gen: gen}
}

// Generate asks the model for count quiz questions on a topic and parses
// them into the payload shape. An unparseable response is an error, the
// caller decides whether to retry.
func (s *Service) Generate(ctx context.Context, topic string, count int) ([]activity.QuizQuestion, error) {
	prompt := fmt.Sprintf(`Создай %d вопросов викторины на русском языке по теме "%s".

Требования:
1. Вопросы должны быть интересными и познавательными
2. У каждого вопроса 4 варианта ответа (1, 2, 3, 4)
3. Только один правильный ответ
4. Укажи номер правильного ответа
5. Добавь небольшую подсказку

Формат каждого вопроса (повтори блок %d раз):
Вопрос: [вопрос]
1. [вариант 1]
2. [вариант 2]
3. [вариант 3]
4. [вариант 4]
Правильный ответ: [номер]
Подсказка: [краткая подсказка]`, count, topic, count)

	response, err := s.gen.GenerateText(ctx, "", prompt)
	if err != nil {
		return nil, fmt.Errorf("quiz generation failed: %w", err)
	}

	questions, err := parseQuestions(response)
	if err != nil {
		return nil, err
	}
	if len(questions) < count {
		return nil, fmt.Errorf("model produced %d of %d questions", len(questions), count)
	}

	return questions[:count], nil
}

func parseQuestions(response string) ([]activity.QuizQuestion, error) {
	var questions []activity.QuizQuestion
	var current *activity.QuizQuestion

	flush := func() {
		if current != nil && current.Question != "" &&
			len(current.Options) == 4 && current.Correct >= 1 && current.Correct <= 4 {
			questions = append(questions, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "Вопрос:"):
			flush()
			current = &activity.QuizQuestion{
				Question: strings.TrimSpace(strings.TrimPrefix(line, "Вопрос:")),
			}

		case current != nil && len(line) > 2 && line[1] == '.' && line[0] >= '1' && line[0] <= '4':
			current.Options = append(current.Options, strings.TrimSpace(line[2:]))

		case current != nil && strings.HasPrefix(line, "Правильный ответ:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "Правильный ответ:"))
			if n, err := strconv.Atoi(strings.Trim(raw, ".")); err == nil {
				current.Correct = n
			}

		case current != nil && strings.HasPrefix(line, "Подсказка:"):
			current.Hint = strings.TrimSpace(strings.TrimPrefix(line, "Подсказка:"))
		}
	}
	flush()

	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions parsed from model response")
	}

	return questions, nil
}
