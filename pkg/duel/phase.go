package duel

import (
	"encoding/json"
	"time"
)

// Phase is the duel's current state-machine stage
type Phase int

// constants for Phase
const (
	PhaseWaiting Phase = iota
	PhaseReadyCheck
	PhaseDealing
	PhaseSelection
	PhaseReveal
	PhaseBetting
	PhaseShowdown
	PhaseRoundEnd
	PhaseDuelEnd
)

type pendingPhase struct {
	Next  Phase
	After time.Time
}

func (d *Duel) setPendingPhase(next Phase, after time.Duration) {
	if d.pendingPhase != nil {
		panic("cannot set pending phase if one is already present")
	}

	d.pendingPhase = &pendingPhase{
		Next:  next,
		After: time.Now().Add(after),
	}
}

func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseReadyCheck:
		return "ready-check"
	case PhaseDealing:
		return "dealing"
	case PhaseSelection:
		return "selection"
	case PhaseReveal:
		return "reveal"
	case PhaseBetting:
		return "betting"
	case PhaseShowdown:
		return "showdown"
	case PhaseRoundEnd:
		return "round-end"
	case PhaseDuelEnd:
		return "duel-end"
	}

	return ""
}

// MarshalJSON encodes JSON
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}{
		ID:   int(p),
		Name: p.String(),
	})
}

// Status is the duel's lifecycle status
type Status string

// constants for Status
const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusDeclined   Status = "declined"
	StatusExpired    Status = "expired"
	StatusCancelled  Status = "cancelled"
)
