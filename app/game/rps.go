package game

import "tezbot/app/activity"

// The opponent draw is deliberately skewed so the bot feels smart
// without being deterministic: the move countering the user's previous
// (or current) choice gets a fixed probability boost, and a flat
// distribution overrides the whole skew some of the time.
const (
	counterMoveBoost   = 0.30
	flatOverrideChance = 0.20
)

type RPSOutcome int

const (
	RPSDraw RPSOutcome = iota
	RPSUserWin
	RPSBotWin
)

var rpsChoices = [3]activity.RPSChoice{activity.Rock, activity.Scissors, activity.Paper}

// counterTo returns the move that beats c.
func counterTo(c activity.RPSChoice) activity.RPSChoice {
	switch c {
	case activity.Rock:
		return activity.Paper
	case activity.Scissors:
		return activity.Rock
	default:
		return activity.Scissors
	}
}

// DrawOpponent picks the bot's move. previous is the user's choice from
// the last round and may be empty, in which case the bias targets the
// current choice instead.
func DrawOpponent(previous, current activity.RPSChoice, src Source) activity.RPSChoice {
	if src.Float64() < flatOverrideChance {
		return rpsChoices[src.IntN(len(rpsChoices))]
	}

	reference := previous
	if reference == "" {
		reference = current
	}

	favored := counterTo(reference)
	pFavored := 1.0/3.0 + counterMoveBoost

	roll := src.Float64()
	if roll < pFavored {
		return favored
	}

	rest := make([]activity.RPSChoice, 0, 2)
	for _, c := range rpsChoices {
		if c != favored {
			rest = append(rest, c)
		}
	}

	if roll < pFavored+(1.0-pFavored)/2 {
		return rest[0]
	}
	return rest[1]
}

// ResolveRPS applies the standard rules: rock > scissors > paper > rock.
func ResolveRPS(user, bot activity.RPSChoice) RPSOutcome {
	if user == bot {
		return RPSDraw
	}
	if counterTo(bot) == user {
		return RPSUserWin
	}
	return RPSBotWin
}
