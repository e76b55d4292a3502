package duel

import (
	"time"

	"destinydeck-server/pkg/deck"
	"destinydeck-server/pkg/game"
)

// PlayerView is the viewer's own side of the duel, private cards included
type PlayerView struct {
	CharacterID   int64         `json:"characterId"`
	Name          string        `json:"name"`
	Level         int           `json:"level"`
	Hand          deck.Hand     `json:"hand"`
	HeldIndices   []int         `json:"heldIndices"`
	HoldSubmitted bool          `json:"holdSubmitted"`
	Bankroll      int           `json:"bankroll"`
	CurrentBet    int           `json:"currentBet"`
	Contributed   int           `json:"contributed"`
	RoundsWon     int           `json:"roundsWon"`
	Folded        bool          `json:"folded"`
	AllIn         bool          `json:"allIn"`
	Ready         bool          `json:"ready"`
	Connected     bool          `json:"connected"`
	LastAction    *LastAction   `json:"lastAction"`
	Abilities     *AbilityState `json:"abilities"`
}

// OpponentView is what a player may know about the other side. The hand is
// structurally absent until the showdown reveal; ability internals never
// appear beyond the openly worn poker face.
type OpponentView struct {
	CharacterID     int64       `json:"characterId"`
	Name            string      `json:"name"`
	Level           int         `json:"level"`
	CardCount       int         `json:"cardCount"`
	RevealedHand    deck.Hand   `json:"revealedHand,omitempty"`
	HoldSubmitted   bool        `json:"holdSubmitted"`
	Bankroll        int         `json:"bankroll"`
	CurrentBet      int         `json:"currentBet"`
	RoundsWon       int         `json:"roundsWon"`
	Folded          bool        `json:"folded"`
	AllIn           bool        `json:"allIn"`
	Ready           bool        `json:"ready"`
	Connected       bool        `json:"connected"`
	LastAction      *LastAction `json:"lastAction"`
	PokerFaceActive bool        `json:"pokerFaceActive"`
}

// ClientState is the full projection sent to one player
type ClientState struct {
	DuelID       string         `json:"duelId"`
	Phase        Phase          `json:"phase"`
	Status       Status         `json:"status"`
	Round        int            `json:"round"`
	TotalRounds  int            `json:"totalRounds"`
	Type         Type           `json:"type"`
	Wager        int            `json:"wager"`
	Pot          int            `json:"pot"`
	CurrentBet   int            `json:"currentBet"`
	TurnID       int64          `json:"turnId"`
	TurnEndsAt   *time.Time     `json:"turnEndsAt,omitempty"`
	DealerID     int64          `json:"dealerId"`
	Player       *PlayerView    `json:"player"`
	Opponent     *OpponentView  `json:"opponent"`
	Results      []*RoundResult `json:"results"`
	CheatNotices []*cheatNotice `json:"cheatNotices,omitempty"`
	Outcome      *Outcome       `json:"outcome,omitempty"`
}

// GetPlayerState returns the duel projected for the character. Projection is
// pure: it never mutates the duel and two calls for the two players differ
// only in perspective.
func (d *Duel) GetPlayerState(characterID int64) (*game.Response, error) {
	p, opp, err := d.participants(characterID)
	if err != nil {
		return nil, err
	}

	var turnEndsAt *time.Time
	if !d.round.turnDeadline.IsZero() {
		deadline := d.round.turnDeadline
		turnEndsAt = &deadline
	}

	state := &ClientState{
		DuelID:       d.id,
		Phase:        d.phase,
		Status:       d.status,
		Round:        d.round.number,
		TotalRounds:  d.options.TotalRounds,
		Type:         d.options.Type,
		Wager:        d.options.Wager,
		Pot:          d.round.pot,
		CurrentBet:   d.round.currentBet,
		TurnID:       d.round.turnID,
		TurnEndsAt:   turnEndsAt,
		DealerID:     d.round.dealerID,
		Player:       playerView(p),
		Opponent:     d.opponentView(opp),
		Results:      d.results,
		CheatNotices: d.cheatNotices,
		Outcome:      d.outcome,
	}

	return &game.Response{
		Key:   "game",
		Value: d.Name(),
		Data:  state,
	}, nil
}

func playerView(p *Participant) *PlayerView {
	return &PlayerView{
		CharacterID:   p.CharacterID,
		Name:          p.Name,
		Level:         p.Level,
		Hand:          p.hand,
		HeldIndices:   p.heldIndices,
		HoldSubmitted: p.holdSubmitted,
		Bankroll:      p.bankroll,
		CurrentBet:    p.currentBet,
		Contributed:   p.contributed,
		RoundsWon:     p.roundsWon,
		Folded:        p.folded,
		AllIn:         p.allIn,
		Ready:         p.isReady,
		Connected:     p.connected,
		LastAction:    p.lastAction,
		Abilities:     p.abilities,
	}
}

func (d *Duel) opponentView(opp *Participant) *OpponentView {
	view := &OpponentView{
		CharacterID:     opp.CharacterID,
		Name:            opp.Name,
		Level:           opp.Level,
		CardCount:       len(opp.hand),
		HoldSubmitted:   opp.holdSubmitted,
		Bankroll:        opp.bankroll,
		CurrentBet:      opp.currentBet,
		RoundsWon:       opp.roundsWon,
		Folded:          opp.folded,
		AllIn:           opp.allIn,
		Ready:           opp.isReady,
		Connected:       opp.connected,
		LastAction:      opp.lastAction,
		PokerFaceActive: opp.abilities.PokerFaceRounds > 0,
	}

	if d.revealed {
		view.RevealedHand = opp.hand
	}

	return view
}
