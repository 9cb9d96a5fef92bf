package fun

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/samber/do"

	"tezbot/app/client/gemini"
)

// TextGenerator is the model call this service depends on.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, prompt string) (string, error)
}

type Service struct {
	gen TextGenerator
	rng func(n int) int
}

func New(di *do.Injector) (*Service, error) {
	gen := do.MustInvoke[*gemini.Client](di)

	return &Service{
		gen: gen,
		rng: rand.IntN,
	}, nil
}

func NewWithGenerator(gen TextGenerator, rng func(n int) int) *Service {
	return &Service{gen: gen, rng: rng}
}

var factCategories = []string{
	"наука и открытия",
	"животные и природа",
	"космос и астрономия",
	"история и цивилизации",
	"технологии и изобретения",
	"человеческое тело",
	"океан и моря",
	"растения и экология",
	"погода и климат",
	"археология и древности",
}

var factFallbacks = []string{
	"🧬 ДНК была открыта в 1953 году, но до сих пор ученые изучают только 2% ее функций!",
	"🐘 Самый большой слон в истории весил целых 12 тонн!",
	"🌟 Звезды, которые мы видим ночью, могут уже не существовать!",
	"🏺 Древние римляне использовали мочу как отбеливатель для зубов!",
	"💡 Первая компьютерная мышь была сделана из дерева в 1964 году!",
}

var quoteThemes = []string{
	"успех и достижения",
	"настойчивость и преодоление трудностей",
	"мечты и цели",
	"саморазвитие и обучение",
	"работа и карьера",
	"отношения и дружба",
	"здоровье и спорт",
	"творчество и искусство",
	"время и жизнь",
	"счастье и позитив",
}

var quoteFallbacks = []string{
	"«Успех - это не окончание, неудача - не фатальна: смелость продолжать - вот что важно!»",
	"«Будущее принадлежит тем, кто верит в красоту своих мечтаний.»",
	"«Не бойся отказов. Каждый отказ - это шаг ближе к успеху.»",
	"«Ваше время ограничено, не тратьте его на чужую жизнь.»",
	"«Единственный способ сделать великую работу - любить то, что делаешь.»",
}

var jokeCategories = []string{
	"программирование и IT",
	"повседневная жизнь",
	"животные и природа",
	"еда и кулинария",
	"спорт и здоровье",
	"школа и образование",
	"семья и отношения",
	"путешествия",
	"техника и гаджеты",
	"искусство и творчество",
}

var jokeFallbacks = []string{
	"🤣 Почему программисты путают Хэллоуин и Рождество?\nПотому что Oct 31 = Dec 25!",
	"😄 Почему зонт не идет в школу?\nПотому что он уже раскрыт!",
	"🐘 Почему слон не пользуется компьютером?\nОн боится мышки!",
	"🍕 Почему пицца никогда не бывает грустной?\nПотому что у нее много друзей сверху!",
	"⚽ Почему футболисты всегда носят шорты?\nПотому что в длинных штанах не забьешь гол!",
}

// Fact produces a short generated fact from a random category, with a
// static fallback when the model is unavailable.
func (s *Service) Fact(ctx context.Context) string {
	category := factCategories[s.rng(len(factCategories))]

	prompt := fmt.Sprintf("Придумай один уникальный и удивительный факт про %s. "+
		"Факт должен быть настоящим и научно обоснованным, коротким (1-2 предложения), "+
		"захватывающим и малоизвестным, на русском языке. "+
		"Верни только сам факт без дополнительных комментариев.", category)

	text, err := s.gen.GenerateText(ctx, "", prompt)
	if err != nil {
		slog.Warn("fact generation failed, using fallback", "error", err)
		text = factFallbacks[s.rng(len(factFallbacks))]
	}

	return "🧠 Интересный факт:\n\n" + cleanup(text)
}

// Quote produces a motivational quote from a random theme.
func (s *Service) Quote(ctx context.Context) string {
	theme := quoteThemes[s.rng(len(quoteThemes))]

	prompt := fmt.Sprintf("Создай одну оригинальную мотивационную цитату на русском языке про %s. "+
		"Цитата должна быть короткой и запоминающейся (1-2 предложения), позитивной и вдохновляющей, "+
		"оригинальной. Верни только саму цитату без кавычек, автора и дополнительных комментариев.", theme)

	text, err := s.gen.GenerateText(ctx, "", prompt)
	if err != nil {
		slog.Warn("quote generation failed, using fallback", "error", err)
		return "💭 Мотивационная цитата:\n\n" + quoteFallbacks[s.rng(len(quoteFallbacks))]
	}

	return "💭 Мотивационная цитата:\n\n«" + cleanup(text) + "»"
}

// Joke produces a short generated joke from a random category.
func (s *Service) Joke(ctx context.Context) string {
	category := jokeCategories[s.rng(len(jokeCategories))]

	prompt := fmt.Sprintf("Придумай одну оригинальную и смешную шутку на русском языке про %s. "+
		"Шутка должна быть короткой и понятной (1-3 предложения), без грубостей, "+
		"с неожиданным punchline. Верни только саму шутку без дополнительных комментариев.", category)

	text, err := s.gen.GenerateText(ctx, "", prompt)
	if err != nil {
		slog.Warn("joke generation failed, using fallback", "error", err)
		text = jokeFallbacks[s.rng(len(jokeFallbacks))]
	}

	return "😂 Шутка:\n\n" + cleanup(text)
}

func cleanup(text string) string {
	return strings.Trim(strings.TrimSpace(text), `"'«»`)
}
