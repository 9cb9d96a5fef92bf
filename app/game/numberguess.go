package game

import "tezbot/app/activity"

type GuessVerdict int

const (
	// GuessHigher means the hidden number is above the guess
	GuessHigher GuessVerdict = iota
	// GuessLower means the hidden number is below the guess
	GuessLower
	GuessCorrect
)

var guessRanges = map[string][2]int{
	"easy":   {1, 10},
	"medium": {1, 100},
	"hard":   {1, 1000},
}

// NewNumberGuess draws a hidden number for the given difficulty.
// Unknown difficulties fall back to medium.
func NewNumberGuess(difficulty string, src Source) *activity.NumberGuessPayload {
	bounds, ok := guessRanges[difficulty]
	if !ok {
		difficulty = "medium"
		bounds = guessRanges[difficulty]
	}

	return &activity.NumberGuessPayload{
		Target:     bounds[0] + src.IntN(bounds[1]-bounds[0]+1),
		Min:        bounds[0],
		Max:        bounds[1],
		Difficulty: difficulty,
	}
}

// CheckGuess compares a guess against the payload's target. The game
// ends only on GuessCorrect; directional verdicts keep it running.
func CheckGuess(p *activity.NumberGuessPayload, guess int) GuessVerdict {
	switch {
	case guess < p.Target:
		return GuessHigher
	case guess > p.Target:
		return GuessLower
	default:
		return GuessCorrect
	}
}
