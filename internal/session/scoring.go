package session

import "math"

type Rules struct {
	BaseAward      int
	ForfeitPercent int
}

func DefaultRules() Rules {
	return Rules{BaseAward: 100, ForfeitPercent: 10}
}

type Outcome struct {
	WinnerScore  int
	LoserScore   int
	LoserChanged bool
}

// Score computes post-match scores. A loser with at least the winner's score
// forfeits ForfeitPercent of it to the winner on top of the base award; ties
// forfeit too.
func (r Rules) Score(winnerScore, loserScore int, loserIsBot bool) Outcome {
	if loserIsBot || loserScore < winnerScore {
		return Outcome{
			WinnerScore: winnerScore + r.BaseAward,
			LoserScore:  loserScore,
		}
	}
	forfeit := int(math.Round(float64(loserScore) * float64(r.ForfeitPercent) / 100))
	return Outcome{
		WinnerScore:  winnerScore + r.BaseAward + forfeit,
		LoserScore:   loserScore - forfeit,
		LoserChanged: true,
	}
}
