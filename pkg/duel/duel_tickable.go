package duel

import (
	"time"

	"destinydeck-server/pkg/game"
)

const tickDelay = time.Second
const turnWarning = time.Second * 10

// Delay is how long the dealer waits between ticks
func (d *Duel) Delay() time.Duration {
	return tickDelay
}

// Tick drives every time-based transition: matured pending phases, turn
// deadlines, and reconnect grace expiry. With no client input after the deal,
// Tick alone carries the duel to its end.
func (d *Duel) Tick() (bool, error) {
	if d.finished {
		return false, nil
	}

	if d.phase == PhaseDuelEnd {
		d.finished = true
		return true, nil
	}

	if p := d.graceExpired(); p != nil {
		d.sendLogMessages(game.SimpleLogMessageSlice(p.CharacterID, "%s did not return in time", p.Name))
		d.endWithForfeit(p)
		return true, nil
	}

	if d.pendingPhase != nil {
		if time.Now().After(d.pendingPhase.After) {
			d.advancePhase()
			return true, nil
		}

		return false, nil
	}

	deadline := d.round.turnDeadline
	if deadline.IsZero() {
		return false, nil
	}

	if time.Now().After(deadline) {
		return d.expireTurn()
	}

	if time.Until(deadline) <= turnWarning && !d.warnedDeadline.Equal(deadline) {
		d.warnedDeadline = deadline
		d.sendLogMessages(game.SimpleLogMessageSlice(0, "10 seconds left"))
		return true, nil
	}

	return false, nil
}

// graceExpired returns a player who has been gone longer than the reconnect
// grace, or nil
func (d *Duel) graceExpired() *Participant {
	for _, p := range []*Participant{d.challenger, d.challenged} {
		if !p.connected && !p.disconnectedAt.IsZero() &&
			time.Since(p.disconnectedAt) > d.options.ReconnectGrace {
			return p
		}
	}

	return nil
}

// expireTurn applies the documented timeout default for the current phase
func (d *Duel) expireTurn() (bool, error) {
	switch d.phase {
	case PhaseReadyCheck:
		// a player who never signalled ready forfeits; if neither did, the
		// duel is called off
		if !d.challenger.isReady && !d.challenged.isReady {
			d.cancelDuel()
			return true, nil
		}

		late := d.challenger
		if late.isReady {
			late = d.challenged
		}

		d.sendLogMessages(game.SimpleLogMessageSlice(late.CharacterID, "%s never signalled ready", late.Name))
		d.endWithForfeit(late)
		return true, nil

	case PhaseSelection:
		// stand pat: a player who ran out the clock keeps all five cards
		for _, p := range []*Participant{d.challenger, d.challenged} {
			if p.holdSubmitted {
				continue
			}

			p.holdAll()
			d.sendLogMessages(game.SimpleLogMessageSlice(p.CharacterID, "%s ran out of time and stands pat", p.Name))
		}

		d.round.clearTurn()
		d.setPendingPhase(PhaseReveal, delayShort)
		return true, nil

	case PhaseBetting:
		// check if legal, otherwise fold
		p, opp, err := d.participants(d.round.turnID)
		if err != nil {
			d.round.clearTurn()
			return false, nil
		}

		action := BetCheck
		outcome, err := d.applyBet(p, opp, BetCheck, 0)
		if err != nil {
			action = BetFold
			outcome, _ = d.applyBet(p, opp, BetFold, 0)
		}

		d.sendLogMessages(game.SimpleLogMessageSlice(p.CharacterID, "%s ran out of time (%s)", p.Name, action))
		d.resolveBetOutcome(p, opp, outcome)
		return true, nil
	}

	d.round.clearTurn()
	return false, nil
}
