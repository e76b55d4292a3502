package duel

import (
	"time"

	"destinydeck-server/pkg/deck"
)

// CharacterRef is the snapshot of a character consumed from the character
// service when the duel is created. The engine never mutates the character
// record directly; it only reports reward deltas when the duel completes.
type CharacterRef struct {
	ID        int64
	Name      string
	Level     int
	Gold      int
	Energy    int
	MaxEnergy int
}

// LastAction records the most recent visible action a player took
type LastAction struct {
	Action string    `json:"action"`
	Amount int       `json:"amount,omitempty"`
	Time   time.Time `json:"time"`
}

// Participant is the server-authoritative state for one side of a duel
type Participant struct {
	CharacterID int64
	Name        string
	Level       int

	hand          deck.Hand
	heldIndices   []int
	holdSubmitted bool

	currentBet  int
	contributed int
	roundsWon   int
	folded      bool
	allIn       bool
	betActed    bool

	isReady        bool
	connected      bool
	disconnectedAt time.Time

	lastAction      *LastAction
	bankroll        int
	initialBankroll int
	abilities       *AbilityState

	rematchRequested bool
}

func newParticipant(ref CharacterRef) *Participant {
	return &Participant{
		CharacterID:     ref.ID,
		Name:            ref.Name,
		Level:           ref.Level,
		bankroll:        ref.Gold,
		initialBankroll: ref.Gold,
		abilities:       newAbilityState(ref.Level, ref.Energy, ref.MaxEnergy),
	}
}

// resetForRound clears everything that does not survive a round boundary
func (p *Participant) resetForRound() {
	p.hand = nil
	p.heldIndices = nil
	p.holdSubmitted = false
	p.currentBet = 0
	p.contributed = 0
	p.folded = false
	p.allIn = false
	p.betActed = false
}

func (p *Participant) recordAction(action string, amount int) {
	p.lastAction = &LastAction{
		Action: action,
		Amount: amount,
		Time:   time.Now(),
	}
}

// holdAll is the documented default when a selection phase times out:
// the player stands pat and keeps all five cards
func (p *Participant) holdAll() {
	p.heldIndices = []int{0, 1, 2, 3, 4}
	p.holdSubmitted = true
}

func (p *Participant) holdsIndex(i int) bool {
	for _, held := range p.heldIndices {
		if held == i {
			return true
		}
	}

	return false
}

// Bankroll returns the gold the player still has behind
func (p *Participant) Bankroll() int {
	return p.bankroll
}

// RoundsWon returns the number of rounds the player has taken
func (p *Participant) RoundsWon() int {
	return p.roundsWon
}
