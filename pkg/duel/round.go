package duel

import (
	"time"

	"destinydeck-server/pkg/handeval"
)

// roundState tracks one deal-select-bet-showdown cycle
type roundState struct {
	number        int
	pot           int
	currentBet    int
	turnID        int64 // 0 means no single player holds the turn
	turnDeadline  time.Time
	turnTimeLimit time.Duration
	dealerID      int64

	// committed is every chip moved out of a bankroll this round; the
	// invariant pot + both current bets == committed must always hold
	committed int
}

// RoundResult is the archived outcome of one round
type RoundResult struct {
	Round       int                            `json:"round"`
	WinnerID    int64                          `json:"winnerId"` // 0 on a split
	Pot         int                            `json:"pot"`
	Split       bool                           `json:"split"`
	FoldedID    int64                          `json:"foldedId,omitempty"`
	Evaluations map[int64]*handeval.Evaluation `json:"evaluations,omitempty"`
}

func (r *roundState) startTurn(characterID int64) {
	r.turnID = characterID
	r.turnDeadline = time.Now().Add(r.turnTimeLimit)
}

// startWindow opens a window in which both players act (ready, selection)
func (r *roundState) startWindow(limit time.Duration) {
	r.turnID = 0
	r.turnDeadline = time.Now().Add(limit)
}

func (r *roundState) clearTurn() {
	r.turnID = 0
	r.turnDeadline = time.Time{}
}
