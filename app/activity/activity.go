// Package activity is the catalog of multi-turn mini-interactions.
// An activity claims all of a user's replies until it resolves; the
// session layer stores at most one per user and treats the payload as
// opaque, only the matching engine interprets it.
package activity

import (
	"strings"
	"time"
)

type Kind string

const (
	KindNumberGuess Kind = "number_guess"
	KindQuiz        Kind = "quiz"
	KindQuizSetup   Kind = "quiz_setup"
	KindRPS         Kind = "rps"
	KindMagicBall   Kind = "magic_ball"
	KindTranslate   Kind = "translate"
)

// Payload is the per-kind activity data. The set of implementations is
// closed: one struct per Kind plus RawPayload for records persisted by
// older builds with kinds this build does not know.
type Payload interface {
	ActivityKind() Kind
}

type NumberGuessPayload struct {
	Target     int    `json:"target"`
	Min        int    `json:"min"`
	Max        int    `json:"max"`
	Difficulty string `json:"difficulty"`
}

func (*NumberGuessPayload) ActivityKind() Kind { return KindNumberGuess }

type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	// Correct is the 1-based index of the right option
	Correct int    `json:"correct"`
	Hint    string `json:"hint,omitempty"`
}

type QuizPayload struct {
	Questions    []QuizQuestion `json:"questions"`
	CurrentIndex int            `json:"current_index"`
	CorrectCount int            `json:"correct_count"`
	TotalCount   int            `json:"total_count"`
	UsedHints    int            `json:"used_hints"`
}

func (*QuizPayload) ActivityKind() Kind { return KindQuiz }

// MaxHints is the hint budget: one hint per five questions past the
// first five. A 10-question quiz grants 1, a 30-question quiz 5.
func (p *QuizPayload) MaxHints() int {
	n := (p.TotalCount - 5) / 5
	if n < 0 {
		return 0
	}
	return n
}

type QuizSetupPayload struct {
	Topic         string `json:"topic"`
	QuestionCount int    `json:"question_count"`
	// Extra is an open bag for setup state that older or newer builds
	// may attach; nested dates round-trip through timetree.
	Extra map[string]any `json:"extra,omitempty"`
}

func (*QuizSetupPayload) ActivityKind() Kind { return KindQuizSetup }

type RPSPayload struct {
	// PreviousChoice feeds the counter-move bias of the opponent draw
	PreviousChoice RPSChoice `json:"previous_choice,omitempty"`
}

func (*RPSPayload) ActivityKind() Kind { return KindRPS }

type MagicBallPayload struct{}

func (*MagicBallPayload) ActivityKind() Kind { return KindMagicBall }

type TranslatePayload struct {
	TargetLang string `json:"target_lang"`
}

func (*TranslatePayload) ActivityKind() Kind { return KindTranslate }

// RawPayload carries an unknown kind through a load/save cycle without
// data loss.
type RawPayload struct {
	Raw  Kind
	Data map[string]any
}

func (p *RawPayload) ActivityKind() Kind { return p.Raw }

type RPSChoice string

const (
	Rock     RPSChoice = "rock"
	Scissors RPSChoice = "scissors"
	Paper    RPSChoice = "paper"
)

var rpsSynonyms = map[string]RPSChoice{
	"rock":     Rock,
	"камень":   Rock,
	"scissors": Scissors,
	"ножницы":  Scissors,
	"paper":    Paper,
	"бумага":   Paper,
}

// ParseRPSChoice maps localized synonyms to a canonical choice.
func ParseRPSChoice(text string) (RPSChoice, bool) {
	choice, ok := rpsSynonyms[strings.ToLower(strings.TrimSpace(text))]
	return choice, ok
}

// Accepts reports whether text is a plausible reply for an in-progress
// activity of the given kind. A rejected reply must not terminate the
// activity, the router just falls through to the other branches.
func Accepts(kind Kind, text string) bool {
	text = strings.TrimSpace(text)

	switch kind {
	case KindNumberGuess, KindQuizSetup:
		return isDigits(text)
	case KindQuiz:
		return len(text) == 1 && text >= "1" && text <= "4"
	case KindRPS:
		_, ok := ParseRPSChoice(text)
		return ok
	case KindMagicBall, KindTranslate:
		return text != ""
	default:
		return false
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// State is the single active activity of a user.
type State struct {
	Kind      Kind
	Payload   Payload
	StartedAt time.Time
}
