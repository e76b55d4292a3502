package duel

import "encoding/json"

// Error is a duel-domain error that is safe to surface to a client.
// Code is a symbolic string scoped to the duel domain, never an HTTP code.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// MarshalJSON encodes the error into JSON
func (e *Error) MarshalJSON() ([]byte, error) {
	type alias Error
	return json.Marshal(alias(*e))
}

// protocol errors: the action is rejected and state is unchanged
var (
	ErrNotYourTurn        = &Error{Code: "not_your_turn", Message: "it is not your turn"}
	ErrInvalidPhaseAction = &Error{Code: "invalid_action_for_phase", Message: "that action is not legal in the current phase"}
	ErrUnknownAction      = &Error{Code: "unknown_action", Message: "unknown action"}
	ErrNotInDuel          = &Error{Code: "not_in_duel", Message: "you are not part of this duel"}
	ErrDuelOver           = &Error{Code: "duel_over", Message: "the duel is already over"}
	ErrInvalidHold        = &Error{Code: "invalid_hold_indices", Message: "held cards must be unique indices between 0 and 4"}
	ErrHoldAlreadyMade    = &Error{Code: "hold_already_made", Message: "you already chose which cards to keep"}
	ErrAlreadyReady       = &Error{Code: "already_ready", Message: "you already signalled ready"}
)

// resource errors: rejected, but the player may retry before the turn expires
var (
	ErrInsufficientBankroll = &Error{Code: "insufficient_bankroll", Message: "you do not have enough gold"}
	ErrInsufficientEnergy   = &Error{Code: "insufficient_energy", Message: "you do not have enough energy"}
	ErrAbilityOnCooldown    = &Error{Code: "ability_on_cooldown", Message: "that ability is still on cooldown"}
	ErrAbilityNotKnown      = &Error{Code: "ability_not_available", Message: "you have not learned that ability"}
)

// betting errors
var (
	ErrCheckNotAllowed = &Error{Code: "check_not_allowed", Message: "you cannot check a live bet"}
	ErrBetNotAllowed   = &Error{Code: "bet_not_allowed", Message: "there is already a live bet; raise instead"}
	ErrRaiseTooSmall   = &Error{Code: "raise_too_small", Message: "a raise must exceed the current bet"}
	ErrBetTooSmall     = &Error{Code: "bet_too_small", Message: "the bet must be greater than zero"}
)
