package game

import "tezbot/app/activity"

type QuizVerdict struct {
	Correct  bool
	Finished bool
	// Next is the question to present after this answer: the following
	// one on a correct answer, the same one again on a wrong answer.
	// Nil when the quiz finished.
	Next *activity.QuizQuestion
}

// AnswerQuiz scores a 1..4 answer against the current question. A wrong
// answer does not advance the index, the same question is asked again.
func AnswerQuiz(p activity.QuizPayload, answer int) (QuizVerdict, activity.QuizPayload) {
	if p.CurrentIndex >= len(p.Questions) {
		return QuizVerdict{Finished: true}, p
	}

	current := p.Questions[p.CurrentIndex]

	if answer != current.Correct {
		next := current
		return QuizVerdict{Correct: false, Next: &next}, p
	}

	p.CurrentIndex++
	p.CorrectCount++

	if p.CurrentIndex >= p.TotalCount {
		return QuizVerdict{Correct: true, Finished: true}, p
	}

	next := p.Questions[p.CurrentIndex]
	return QuizVerdict{Correct: true, Next: &next}, p
}

// UseHint reveals the current question's hint, spending one unit of the
// budget. Past the budget nothing is mutated and ok is false.
func UseHint(p activity.QuizPayload) (hint string, updated activity.QuizPayload, ok bool) {
	if p.UsedHints >= p.MaxHints() {
		return "", p, false
	}
	if p.CurrentIndex >= len(p.Questions) {
		return "", p, false
	}

	p.UsedHints++
	return p.Questions[p.CurrentIndex].Hint, p, true
}

// QuizGrade maps the final score to a grade line.
func QuizGrade(correct, total int) string {
	if total == 0 {
		return "Нужно подучить материал! 📚"
	}

	switch percent := float64(correct) / float64(total) * 100; {
	case percent >= 90:
		return "Отлично! Ты эксперт! 🏆"
	case percent >= 75:
		return "Хорошо! Продолжай в том же духе! 👏"
	case percent >= 50:
		return "Неплохо! Можно лучше! 💪"
	default:
		return "Нужно подучить материал! 📚"
	}
}
