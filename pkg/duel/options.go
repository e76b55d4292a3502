package duel

import (
	"errors"
	"time"
)

// Type describes the stakes of a duel
type Type string

// duel type constants
const (
	TypeCasual Type = "casual"
	TypeRanked Type = "ranked"
	TypeWager  Type = "wager"
)

// Options configures a duel
type Options struct {
	Type        Type
	Wager       int
	TotalRounds int

	// TurnTimeLimit bounds every phase that waits on player input
	TurnTimeLimit time.Duration

	// ReadyTimeout is the grace period to signal ready before forfeiting
	ReadyTimeout time.Duration

	// ReconnectGrace is how long a disconnected player has to come back
	ReconnectGrace time.Duration

	// EnergyRegen is restored to each player at the end of every round
	EnergyRegen int

	// Seed fixes the deck shuffle; 0 shuffles off the clock
	Seed int64
}

// DefaultOptions returns the default duel options
func DefaultOptions() Options {
	return Options{
		Type:           TypeCasual,
		Wager:          0,
		TotalRounds:    3,
		TurnTimeLimit:  time.Second * 30,
		ReadyTimeout:   time.Second * 30,
		ReconnectGrace: time.Second * 60,
		EnergyRegen:    10,
	}
}

func validateOptions(opts Options) error {
	if opts.TotalRounds <= 0 || opts.TotalRounds%2 == 0 {
		return errors.New("total rounds must be a positive odd number")
	}

	if opts.Wager < 0 {
		return errors.New("wager must be >= 0")
	}

	if opts.Type == TypeWager && opts.Wager == 0 {
		return errors.New("a wager duel requires a wager amount")
	}

	if opts.Type != TypeWager && opts.Wager > 0 {
		return errors.New("only a wager duel may carry a wager amount")
	}

	if opts.TurnTimeLimit <= 0 || opts.ReadyTimeout <= 0 || opts.ReconnectGrace <= 0 {
		return errors.New("timeouts must be positive")
	}

	return nil
}
