package duel

// betOutcome describes what a betting action did to the round
type betOutcome int

const (
	bettingContinues betOutcome = iota
	bettingClosed
	bettingFolded
)

// commitTo moves chips from the player's bankroll until their current bet
// reaches the target amount
func (d *Duel) commitTo(p *Participant, target int) {
	diff := target - p.currentBet
	p.currentBet = target
	p.bankroll -= diff
	p.contributed += diff
	d.round.committed += diff
}

// refundExcess returns the portion of a bet the opponent can no longer win,
// which happens when the other player goes all in below the live bet
func (d *Duel) refundExcess(p *Participant, target int) {
	if p.currentBet <= target {
		return
	}

	diff := p.currentBet - target
	p.currentBet = target
	p.bankroll += diff
	p.contributed -= diff
	d.round.committed -= diff
}

// applyBet validates and applies one betting action for p. Validation
// failures leave all state untouched; the player may retry before their turn
// expires.
func (d *Duel) applyBet(p, opp *Participant, action BetAction, amount int) (betOutcome, error) {
	r := d.round

	switch action {
	case BetCheck:
		if r.currentBet != p.currentBet {
			return 0, ErrCheckNotAllowed
		}
	case BetBet:
		if r.currentBet != 0 {
			return 0, ErrBetNotAllowed
		}
		if amount <= 0 {
			return 0, ErrBetTooSmall
		}
		if amount > p.bankroll {
			return 0, ErrInsufficientBankroll
		}
	case BetCall:
		if r.currentBet-p.currentBet > p.bankroll {
			return 0, ErrInsufficientBankroll
		}
	case BetRaise:
		if amount <= r.currentBet {
			return 0, ErrRaiseTooSmall
		}
		if amount-p.currentBet > p.bankroll {
			return 0, ErrInsufficientBankroll
		}
	case BetFold, BetAllIn:
		// always legal on your turn
	default:
		return 0, ErrUnknownAction
	}

	p.betActed = true
	p.recordAction(action.String(), amount)

	switch action {
	case BetCheck:
		// no chips move

	case BetBet:
		d.commitTo(p, amount)
		r.currentBet = amount
		opp.betActed = false

	case BetCall:
		d.commitTo(p, r.currentBet)

	case BetRaise:
		d.commitTo(p, amount)
		r.currentBet = amount
		opp.betActed = false

	case BetFold:
		p.folded = true
		return bettingFolded, nil

	case BetAllIn:
		target := p.currentBet + p.bankroll
		d.commitTo(p, target)
		p.allIn = true

		if target > r.currentBet {
			r.currentBet = target
			opp.betActed = false
		} else if target < r.currentBet {
			// short all in: the round closes against the lower bet and the
			// opponent takes back the part nobody can call
			d.refundExcess(opp, target)
			r.currentBet = target
			return bettingClosed, nil
		}
	}

	if p.betActed && opp.betActed && p.currentBet == opp.currentBet {
		return bettingClosed, nil
	}

	if opp.allIn && p.currentBet == opp.currentBet {
		return bettingClosed, nil
	}

	return bettingContinues, nil
}

// sweepBets moves both players' live bets into the pot at the end of a
// betting round
func (d *Duel) sweepBets() {
	d.round.pot += d.challenger.currentBet + d.challenged.currentBet
	d.challenger.currentBet = 0
	d.challenged.currentBet = 0
	d.round.currentBet = 0
}

// committedThisRound is the conservation check: every chip that left a
// bankroll is either in the pot or in a live bet
func (d *Duel) committedThisRound() int {
	return d.round.pot + d.challenger.currentBet + d.challenged.currentBet
}
