package game

import "fmt"

type DiceOutcome int

const (
	DiceDraw DiceOutcome = iota
	DiceUserWin
	DiceBotWin
)

type DiceResult struct {
	UserRoll int
	BotRoll  int
	Outcome  DiceOutcome
}

// Bet tiers are contiguous integer sub-ranges; the exact bounds are a
// product decision carried over as-is.
var diceTiers = map[string][2]int{
	"low":       {1, 6},
	"medium":    {7, 12},
	"high":      {13, 18},
	"ultra":     {19, 24},
	"legendary": {25, 30},
}

// DiceTiers lists the known bet names.
func DiceTiers() []string {
	return []string{"low", "medium", "high", "ultra", "legendary"}
}

// PlayDice rolls twice within the tier's range, strict greater-than
// wins, equal rolls are a draw. Always a single-shot game.
func PlayDice(tier string, src Source) (DiceResult, error) {
	bounds, ok := diceTiers[tier]
	if !ok {
		return DiceResult{}, fmt.Errorf("unknown dice bet %q", tier)
	}

	span := bounds[1] - bounds[0] + 1
	result := DiceResult{
		UserRoll: bounds[0] + src.IntN(span),
		BotRoll:  bounds[0] + src.IntN(span),
	}

	switch {
	case result.UserRoll > result.BotRoll:
		result.Outcome = DiceUserWin
	case result.UserRoll < result.BotRoll:
		result.Outcome = DiceBotWin
	default:
		result.Outcome = DiceDraw
	}

	return result, nil
}
