package quizgen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `Вопрос: Какая планета ближе всего к Солнцу?
1. Меркурий
2. Венера
3. Земля
4. Марс
Правильный ответ: 1
Подсказка: Самая маленькая планета Солнечной системы.

Вопрос: Сколько континентов на Земле?
1. 5
2. 6
3. 7
4. 8
Правильный ответ: 3
Подсказка: Австралия тоже считается.`

func TestParseQuestions(t *testing.T) {
	questions, err := parseQuestions(sampleResponse)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	assert.Equal(t, "Какая планета ближе всего к Солнцу?", questions[0].Question)
	assert.Equal(t, []string{"Меркурий", "Венера", "Земля", "Марс"}, questions[0].Options)
	assert.Equal(t, 1, questions[0].Correct)
	assert.NotEmpty(t, questions[0].Hint)

	assert.Equal(t, 3, questions[1].Correct)
}

func TestParseQuestionsSkipsMalformedBlocks(t *testing.T) {
	response := `Вопрос: Неполный вопрос?
1. Один
2. Два
Правильный ответ: 1

` + sampleResponse

	questions, err := parseQuestions(response)
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}

func TestParseQuestionsRejectsGarbage(t *testing.T) {
	_, err := parseQuestions("Извините, я не могу помочь с этим.")
	assert.Error(t, err)
}

type fakeGen struct {
	response string
}

func (f *fakeGen) GenerateText(context.Context, string, string) (string, error) {
	return f.response, nil
}

func TestGenerateTrimsToRequestedCount(t *testing.T) {
	svc := NewWithGenerator(&fakeGen{response: sampleResponse})

	questions, err := svc.Generate(context.Background(), "космос", 1)
	require.NoError(t, err)
	assert.Len(t, questions, 1)

	_, err = svc.Generate(context.Background(), "космос", 5)
	assert.Error(t, err)
}
