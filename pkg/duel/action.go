package duel

import (
	"fmt"

	"destinydeck-server/pkg/game"
)

// ActionType identifies a client intent
type ActionType string

// intent constants
const (
	ActionReady      ActionType = "ready"
	ActionHold       ActionType = "hold"
	ActionBet        ActionType = "bet"
	ActionUseAbility ActionType = "use_ability"
	ActionForfeit    ActionType = "forfeit"
	ActionRematch    ActionType = "request_rematch"
	ActionEmote      ActionType = "emote"
)

var allowedActions = map[ActionType]bool{
	ActionReady:      true,
	ActionHold:       true,
	ActionBet:        true,
	ActionUseAbility: true,
	ActionForfeit:    true,
	ActionRematch:    true,
	ActionEmote:      true,
}

// BetAction is a move within a betting round
type BetAction string

// betting constants
const (
	BetCheck BetAction = "check"
	BetBet   BetAction = "bet"
	BetCall  BetAction = "call"
	BetRaise BetAction = "raise"
	BetFold  BetAction = "fold"
	BetAllIn BetAction = "all_in"
)

var allowedBetActions = map[BetAction]bool{
	BetCheck: true,
	BetBet:   true,
	BetCall:  true,
	BetRaise: true,
	BetFold:  true,
	BetAllIn: true,
}

func (b BetAction) String() string {
	switch b {
	case BetCheck:
		return "Check"
	case BetBet:
		return "Bet"
	case BetCall:
		return "Call"
	case BetRaise:
		return "Raise"
	case BetFold:
		return "Fold"
	case BetAllIn:
		return "All in"
	}

	panic("unknown bet action")
}

// Intent is the tagged union of every action a client may submit.
// Exactly one arm is meaningful based on Type; the state machine dispatches
// on Type exhaustively so a new intent cannot be silently ignored.
type Intent struct {
	Type        ActionType
	Bet         BetAction
	Amount      int
	HoldIndices []int
	Ability     AbilityID
	Target      int
	Emote       string
}

func intentFromPayload(msg *game.PayloadIn) (*Intent, error) {
	action := ActionType(msg.Action)
	if !allowedActions[action] {
		return nil, ErrUnknownAction
	}

	intent := &Intent{Type: action}

	switch action {
	case ActionHold:
		indices, _ := msg.AdditionalData.GetIntSlice("hold")
		intent.HoldIndices = indices
	case ActionBet:
		betAction, ok := msg.AdditionalData.GetString("betAction")
		if !ok || !allowedBetActions[BetAction(betAction)] {
			return nil, &Error{Code: "unknown_bet_action", Message: fmt.Sprintf("unknown bet action: %s", betAction)}
		}

		intent.Bet = BetAction(betAction)
		intent.Amount, _ = msg.AdditionalData.GetInt("amount")
	case ActionUseAbility:
		ability, _ := msg.AdditionalData.GetString("ability")
		intent.Ability = AbilityID(ability)
		intent.Target, _ = msg.AdditionalData.GetInt("target")
	case ActionEmote:
		intent.Emote, _ = msg.AdditionalData.GetString("emote")
	}

	return intent, nil
}
