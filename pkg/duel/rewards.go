package duel

import (
	"time"

	"destinydeck-server/pkg/game"
)

// experience and reputation awards
const (
	xpWin         = 50
	xpLoss        = 20
	xpDraw        = 30
	xpPerRoundWon = 10

	repRankedWin  = 5
	repRankedLoss = -2
	repForfeit    = -5
)

// Outcome is the final settlement of a duel. The reward deltas are handed to
// the character service; the engine itself never touches character records.
type Outcome struct {
	WinnerID    int64                  `json:"winnerId"` // 0 on a draw
	LoserID     int64                  `json:"loserId,omitempty"`
	IsForfeit   bool                   `json:"isForfeit"`
	IsDraw      bool                   `json:"isDraw"`
	RoundsWon   map[int64]int          `json:"roundsWon"`
	WagerPaid   int                    `json:"wagerPaid"`
	Rewards     map[int64]*game.Reward `json:"rewards"`
	CompletedAt time.Time              `json:"completedAt"`
}

// baseRewards starts from chips won or lost at the table and folds in any
// accumulated cheat penalties
func (d *Duel) baseRewards() map[int64]*game.Reward {
	rewards := make(map[int64]*game.Reward)
	for _, p := range []*Participant{d.challenger, d.challenged} {
		reward := &game.Reward{Gold: p.bankroll - p.initialBankroll}
		if penalty, ok := d.penalties[p.CharacterID]; ok {
			reward.Gold += penalty.Gold
			reward.Reputation += penalty.Reputation
			reward.JailRounds += penalty.JailRounds
		}

		rewards[p.CharacterID] = reward
	}

	return rewards
}

func (d *Duel) roundsWonByID() map[int64]int {
	return map[int64]int{
		d.challenger.CharacterID: d.challenger.roundsWon,
		d.challenged.CharacterID: d.challenged.roundsWon,
	}
}

func (d *Duel) computeOutcome(winner, loser *Participant, isForfeit bool) *Outcome {
	rewards := d.baseRewards()

	rewards[winner.CharacterID].XP += xpWin + xpPerRoundWon*winner.roundsWon
	rewards[loser.CharacterID].XP += xpLoss + xpPerRoundWon*loser.roundsWon

	if d.options.Type == TypeRanked {
		rewards[winner.CharacterID].Reputation += repRankedWin
		rewards[loser.CharacterID].Reputation += repRankedLoss
	}

	if isForfeit {
		rewards[loser.CharacterID].Reputation += repForfeit
	}

	var wagerPaid int
	if d.options.Type == TypeWager {
		wagerPaid = d.options.Wager
		rewards[winner.CharacterID].Gold += wagerPaid
		rewards[loser.CharacterID].Gold -= wagerPaid
	}

	return &Outcome{
		WinnerID:    winner.CharacterID,
		LoserID:     loser.CharacterID,
		IsForfeit:   isForfeit,
		RoundsWon:   d.roundsWonByID(),
		WagerPaid:   wagerPaid,
		Rewards:     rewards,
		CompletedAt: time.Now(),
	}
}

// computeDraw settles a duel nobody clinched. The wager is returned untouched.
func (d *Duel) computeDraw() *Outcome {
	rewards := d.baseRewards()
	for _, p := range []*Participant{d.challenger, d.challenged} {
		rewards[p.CharacterID].XP += xpDraw + xpPerRoundWon*p.roundsWon
	}

	return &Outcome{
		IsDraw:      true,
		RoundsWon:   d.roundsWonByID(),
		Rewards:     rewards,
		CompletedAt: time.Now(),
	}
}
