package duel

import (
	"fmt"
	"time"

	"destinydeck-server/internal/rng"
	"destinydeck-server/pkg/deck"
	"destinydeck-server/pkg/game"
	"destinydeck-server/pkg/handeval"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const initialHandSize = 5

// transition delays give clients a beat to render each phase
const (
	delayShort    = time.Second
	delayRoundEnd = time.Second * 3
)

const maxEmoteLength = 64

var _ game.Game = (*Duel)(nil)
var _ game.Tickable = (*Duel)(nil)

// Duel is one best-of-N confrontation between two characters. All mutation
// happens on the dealer's run loop; the struct itself is not safe for
// concurrent use.
type Duel struct {
	id      string
	options Options
	logger  logrus.FieldLogger

	deck       *deck.Deck
	challenger *Participant
	challenged *Participant

	phase        Phase
	pendingPhase *pendingPhase
	status       Status
	round        *roundState
	results      []*RoundResult

	cheatNotices []*cheatNotice
	penalties    map[int64]*game.Reward

	rand    rng.Generator
	logChan chan []*game.LogMessage

	outcome  *Outcome
	revealed bool
	finished bool

	warnedDeadline time.Time
	createdAt      time.Time
	startedAt      time.Time
}

// NewDuel creates a duel between the two characters. The refs are snapshots;
// nothing is written back to the character service until the duel settles.
func NewDuel(logger logrus.FieldLogger, challenger, challenged CharacterRef, options Options) (*Duel, error) {
	if err := validateOptions(options); err != nil {
		return nil, err
	}

	if options.Type == TypeWager {
		if challenger.Gold < options.Wager || challenged.Gold < options.Wager {
			return nil, ErrInsufficientBankroll
		}
	}

	d := &Duel{
		id:         uuid.New().String(),
		options:    options,
		logger:     logger.WithField("game", "destiny-duel"),
		challenger: newParticipant(challenger),
		challenged: newParticipant(challenged),
		phase:      PhaseWaiting,
		status:     StatusAccepted,
		round: &roundState{
			number:        1,
			turnTimeLimit: options.TurnTimeLimit,
			dealerID:      challenger.ID,
		},
		penalties: make(map[int64]*game.Reward),
		rand:      rng.Crypto{},
		logChan:   make(chan []*game.LogMessage, 256),
		createdAt: time.Now(),
	}

	return d, nil
}

// ID returns the duel's unique identifier
func (d *Duel) ID() string {
	return d.id
}

// Name returns the game name
func (d *Duel) Name() string {
	return "destiny-duel"
}

// Options returns the options the duel was created with
func (d *Duel) Options() Options {
	return d.options
}

// CharacterIDs returns both participant ids, challenger first
func (d *Duel) CharacterIDs() []int64 {
	return []int64{d.challenger.CharacterID, d.challenged.CharacterID}
}

// Status returns the duel's lifecycle status
func (d *Duel) Status() Status {
	return d.status
}

// Outcome returns the final settlement, or nil while the duel is live
func (d *Duel) Outcome() *Outcome {
	return d.outcome
}

// LogChan returns the channel the dealer consumes log messages from
func (d *Duel) LogChan() <-chan []*game.LogMessage {
	return d.logChan
}

func (d *Duel) sendLogMessages(msgs []*game.LogMessage) {
	d.logChan <- msgs
}

func (d *Duel) participants(characterID int64) (p, opp *Participant, err error) {
	switch characterID {
	case d.challenger.CharacterID:
		return d.challenger, d.challenged, nil
	case d.challenged.CharacterID:
		return d.challenged, d.challenger, nil
	}

	return nil, nil, ErrNotInDuel
}

func (d *Duel) other(p *Participant) *Participant {
	if p == d.challenger {
		return d.challenged
	}

	return d.challenger
}

func (d *Duel) dealer() *Participant {
	if d.round.dealerID == d.challenger.CharacterID {
		return d.challenger
	}

	return d.challenged
}

func (d *Duel) nonDealer() *Participant {
	return d.other(d.dealer())
}

// SetConnected tracks websocket presence. The duel leaves the waiting phase
// once both players are at the table, and a player who stays gone past the
// reconnect grace forfeits (enforced in Tick).
func (d *Duel) SetConnected(characterID int64, connected bool) bool {
	p, _, err := d.participants(characterID)
	if err != nil {
		return false
	}

	if !connected {
		p.connected = false
		p.disconnectedAt = time.Now()
		d.sendLogMessages(game.SimpleLogMessageSlice(p.CharacterID, "%s left the table", p.Name))
		return true
	}

	rejoined := !p.connected && !p.disconnectedAt.IsZero()
	p.connected = true
	p.disconnectedAt = time.Time{}

	if rejoined {
		d.sendLogMessages(game.SimpleLogMessageSlice(p.CharacterID, "%s is back at the table", p.Name))
	}

	if d.phase == PhaseWaiting && d.challenger.connected && d.challenged.connected {
		d.phase = PhaseReadyCheck
		d.round.startWindow(d.options.ReadyTimeout)
		d.sendLogMessages(game.SimpleLogMessageSlice(0, "both duelists are at the table"))
	}

	return true
}

// Action performs an intent on behalf of the character
func (d *Duel) Action(characterID int64, message *game.PayloadIn) (*game.Response, bool, error) {
	p, opp, err := d.participants(characterID)
	if err != nil {
		return nil, false, err
	}

	intent, err := intentFromPayload(message)
	if err != nil {
		return nil, false, err
	}

	switch intent.Type {
	case ActionReady:
		if err := d.markReady(p); err != nil {
			return nil, false, err
		}

		return game.OK(message.Context), true, nil

	case ActionHold:
		if err := d.submitHold(p, intent.HoldIndices); err != nil {
			return nil, false, err
		}

		return game.OK(message.Context), true, nil

	case ActionBet:
		if d.phase != PhaseBetting || d.pendingPhase != nil {
			return nil, false, ErrInvalidPhaseAction
		}

		if d.round.turnID != p.CharacterID {
			return nil, false, ErrNotYourTurn
		}

		outcome, err := d.applyBet(p, opp, intent.Bet, intent.Amount)
		if err != nil {
			return nil, false, err
		}

		d.sendLogMessages(game.SimpleLogMessageSlice(p.CharacterID, "%s: %s", p.Name, betDescription(intent.Bet, intent.Amount)))
		d.resolveBetOutcome(p, opp, outcome)
		return game.OK(message.Context), true, nil

	case ActionUseAbility:
		result, err := d.useAbility(p, opp, intent.Ability, intent.Target)
		if err != nil {
			return nil, false, err
		}

		key := "ability_result"
		if len(result.Hints) > 0 {
			key = "perception_result"
		}

		return &game.Response{
			Key:     key,
			Value:   string(result.Ability),
			Data:    result,
			Context: message.Context,
		}, true, nil

	case ActionForfeit:
		if d.phase == PhaseDuelEnd || d.status == StatusCompleted || d.status == StatusCancelled {
			return nil, false, ErrDuelOver
		}

		d.endWithForfeit(p)
		return game.OK(message.Context), true, nil

	case ActionRematch:
		if d.phase != PhaseDuelEnd || d.status != StatusCompleted {
			return nil, false, ErrInvalidPhaseAction
		}

		if !p.rematchRequested {
			p.rematchRequested = true
			d.sendLogMessages(game.SimpleLogMessageSlice(p.CharacterID, "%s wants a rematch", p.Name))
		}

		return game.OK(message.Context), true, nil

	case ActionEmote:
		if intent.Emote == "" || len(intent.Emote) > maxEmoteLength {
			return nil, false, &Error{Code: "invalid_emote", Message: "emote must be between 1 and 64 characters"}
		}

		d.sendLogMessages(game.SimpleLogMessageSlice(p.CharacterID, "%s: %s", p.Name, intent.Emote))
		return game.OK(message.Context), false, nil
	}

	// intentFromPayload already rejected anything not in the union
	panic("unhandled intent type: " + string(intent.Type))
}

func (d *Duel) markReady(p *Participant) error {
	if d.phase != PhaseReadyCheck {
		return ErrInvalidPhaseAction
	}

	if p.isReady {
		return ErrAlreadyReady
	}

	p.isReady = true
	p.recordAction("Ready", 0)
	d.sendLogMessages(game.SimpleLogMessageSlice(p.CharacterID, "%s is ready", p.Name))

	if d.challenger.isReady && d.challenged.isReady {
		d.round.clearTurn()
		d.status = StatusInProgress
		d.startedAt = time.Now()
		d.setPendingPhase(PhaseDealing, delayShort)
	}

	return nil
}

func (d *Duel) submitHold(p *Participant, indices []int) error {
	if d.phase != PhaseSelection || d.pendingPhase != nil {
		return ErrInvalidPhaseAction
	}

	if p.holdSubmitted {
		return ErrHoldAlreadyMade
	}

	if len(indices) > initialHandSize {
		return ErrInvalidHold
	}

	seen := make(map[int]bool)
	for _, i := range indices {
		if i < 0 || i >= initialHandSize || seen[i] {
			return ErrInvalidHold
		}

		seen[i] = true
	}

	p.heldIndices = indices
	p.holdSubmitted = true
	p.recordAction("Hold", 0)

	if d.challenger.holdSubmitted && d.challenged.holdSubmitted {
		d.round.clearTurn()
		d.setPendingPhase(PhaseReveal, delayShort)
	}

	return nil
}

func betDescription(action BetAction, amount int) string {
	switch action {
	case BetBet, BetRaise:
		return fmt.Sprintf("%s %d", action, amount)
	}

	return action.String()
}

func (d *Duel) resolveBetOutcome(p, opp *Participant, outcome betOutcome) {
	switch outcome {
	case bettingFolded:
		d.winRoundByFold(opp, p)
	case bettingClosed:
		d.closeBetting()
	default:
		d.round.startTurn(opp.CharacterID)
	}
}

// advancePhase applies a matured pending transition and performs the new
// phase's entry work
func (d *Duel) advancePhase() {
	next := d.pendingPhase.Next
	d.pendingPhase = nil
	d.phase = next

	switch next {
	case PhaseDealing:
		d.startRound()
	case PhaseSelection:
		d.round.startWindow(d.options.TurnTimeLimit)
	case PhaseReveal:
		d.applyReveal()
	case PhaseBetting:
		d.openBetting()
	case PhaseShowdown:
		d.showdown()
	case PhaseRoundEnd:
		d.finishRound()
	case PhaseDuelEnd:
		d.completeDuel()
	default:
		panic("no entry work for phase: " + next.String())
	}
}

func (d *Duel) startRound() {
	d.deck = deck.New()

	var seed int64
	if d.options.Seed > 0 {
		seed = d.options.Seed + int64(d.round.number) - 1
	}
	d.deck.Shuffle(seed)
	d.revealed = false

	first, second := d.nonDealer(), d.dealer()
	for i := 0; i < initialHandSize; i++ {
		for _, p := range []*Participant{first, second} {
			card, err := d.deck.Draw()
			if err != nil {
				panic("deck exhausted during the deal")
			}

			p.hand.AddCard(card)
		}
	}

	d.logger.WithFields(logrus.Fields{
		"duel":  d.id,
		"round": d.round.number,
		"deck":  d.deck.HashCode(),
	}).Info("round started")

	d.sendLogMessages(game.SimpleLogMessageSlice(0, "round %d begins; %s deals", d.round.number, second.Name))
	d.setPendingPhase(PhaseSelection, delayShort)
}

// applyReveal discards everything not held and replaces it from the deck
func (d *Duel) applyReveal() {
	for _, p := range []*Participant{d.nonDealer(), d.dealer()} {
		kept := make(deck.Hand, 0, initialHandSize)
		for _, i := range p.heldIndices {
			kept = append(kept, p.hand[i])
		}

		drawn := initialHandSize - len(kept)
		for i := 0; i < drawn; i++ {
			card, err := d.deck.Draw()
			if err != nil {
				panic("deck exhausted during the draw")
			}

			kept = append(kept, card)
		}

		p.hand = kept

		if drawn == 0 {
			d.sendLogMessages(game.SimpleLogMessageSlice(p.CharacterID, "%s stands pat", p.Name))
		} else {
			d.sendLogMessages(game.SimpleLogMessageSlice(p.CharacterID, "%s draws %d", p.Name, drawn))
		}
	}

	d.setPendingPhase(PhaseBetting, delayShort)
}

func (d *Duel) openBetting() {
	d.round.startTurn(d.nonDealer().CharacterID)
	d.sendLogMessages(game.SimpleLogMessageSlice(0, "betting opens on %s", d.nonDealer().Name))
}

func (d *Duel) closeBetting() {
	d.round.clearTurn()
	d.sweepBets()
	d.setPendingPhase(PhaseShowdown, delayShort)
}

func (d *Duel) winRoundByFold(winner, folder *Participant) {
	d.round.clearTurn()
	d.sweepBets()

	pot := d.round.pot
	winner.bankroll += pot
	d.round.pot = 0
	winner.roundsWon++

	d.results = append(d.results, &RoundResult{
		Round:    d.round.number,
		WinnerID: winner.CharacterID,
		Pot:      pot,
		FoldedID: folder.CharacterID,
	})

	d.sendLogMessages(game.SimpleLogMessageSlice(winner.CharacterID, "%s folds; %s takes the pot of %d", folder.Name, winner.Name, pot))
	d.setPendingPhase(PhaseRoundEnd, delayRoundEnd)
}

func (d *Duel) showdown() {
	d.revealed = true

	chEval, err := handeval.Evaluate(d.challenger.hand)
	if err != nil {
		panic(err)
	}

	cdEval, err := handeval.Evaluate(d.challenged.hand)
	if err != nil {
		panic(err)
	}

	pot := d.round.pot
	result := &RoundResult{
		Round: d.round.number,
		Pot:   pot,
		Evaluations: map[int64]*handeval.Evaluation{
			d.challenger.CharacterID: chEval,
			d.challenged.CharacterID: cdEval,
		},
	}

	msgs := []*game.LogMessage{
		handLogMessage(d.challenger, chEval),
		handLogMessage(d.challenged, cdEval),
	}

	switch cmp := handeval.Compare(chEval, cdEval); {
	case cmp > 0:
		d.awardPot(d.challenger, result)
		msgs = append(msgs, game.SimpleLogMessage(d.challenger.CharacterID, "%s wins the pot of %d", d.challenger.Name, pot))
	case cmp < 0:
		d.awardPot(d.challenged, result)
		msgs = append(msgs, game.SimpleLogMessage(d.challenged.CharacterID, "%s wins the pot of %d", d.challenged.Name, pot))
	default:
		d.splitPot(result)
		msgs = append(msgs, game.SimpleLogMessage(0, "dead heat; the pot of %d is split", pot))
	}

	d.results = append(d.results, result)
	d.sendLogMessages(msgs)
	d.setPendingPhase(PhaseRoundEnd, delayRoundEnd)
}

func handLogMessage(p *Participant, ev *handeval.Evaluation) *game.LogMessage {
	msg := game.SimpleLogMessage(p.CharacterID, "%s shows %s", p.Name, ev.Rank)
	msg.Cards = p.hand
	return msg
}

func (d *Duel) awardPot(winner *Participant, result *RoundResult) {
	winner.bankroll += d.round.pot
	winner.roundsWon++
	result.WinnerID = winner.CharacterID
	d.round.pot = 0
}

// splitPot divides an exact tie evenly; the odd chip goes to the non-dealer
func (d *Duel) splitPot(result *RoundResult) {
	half := d.round.pot / 2
	odd := d.round.pot - half*2

	d.challenger.bankroll += half
	d.challenged.bankroll += half
	d.nonDealer().bankroll += odd

	result.Split = true
	d.round.pot = 0
}

// winsNeeded is the majority of the configured rounds
func (d *Duel) winsNeeded() int {
	return d.options.TotalRounds/2 + 1
}

// duelWinner returns the player who has clinched the duel, or nil
func (d *Duel) duelWinner() *Participant {
	if d.challenger.roundsWon >= d.winsNeeded() {
		return d.challenger
	}

	if d.challenged.roundsWon >= d.winsNeeded() {
		return d.challenged
	}

	return nil
}

func (d *Duel) finishRound() {
	d.challenger.abilities.endRound(d.options.EnergyRegen)
	d.challenged.abilities.endRound(d.options.EnergyRegen)

	if d.duelWinner() != nil || d.round.number >= d.options.TotalRounds {
		d.setPendingPhase(PhaseDuelEnd, delayShort)
		return
	}

	d.round = &roundState{
		number:        d.round.number + 1,
		turnTimeLimit: d.options.TurnTimeLimit,
		dealerID:      d.other(d.dealer()).CharacterID,
	}
	d.challenger.resetForRound()
	d.challenged.resetForRound()
	d.setPendingPhase(PhaseDealing, delayShort)
}

func (d *Duel) completeDuel() {
	d.round.clearTurn()

	if d.outcome == nil {
		if winner := d.duelWinner(); winner != nil {
			d.outcome = d.computeOutcome(winner, d.other(winner), false)
		} else {
			d.outcome = d.computeDraw()
		}
	}

	d.status = StatusCompleted
	d.sendLogMessages(game.SimpleLogMessageSlice(0, "the duel is over"))
}

// endWithForfeit immediately ends the duel in the opponent's favor. Any live
// bets and pot go to the winner.
func (d *Duel) endWithForfeit(loser *Participant) {
	winner := d.other(loser)

	d.round.clearTurn()
	d.sweepBets()
	winner.bankroll += d.round.pot
	d.round.pot = 0

	d.pendingPhase = nil
	d.phase = PhaseDuelEnd
	d.status = StatusCompleted
	d.outcome = d.computeOutcome(winner, loser, true)

	d.sendLogMessages(game.SimpleLogMessageSlice(winner.CharacterID, "%s forfeits; %s wins the duel", loser.Name, winner.Name))
}

// cancelDuel tears the duel down before it ever started
func (d *Duel) cancelDuel() {
	d.round.clearTurn()
	d.pendingPhase = nil
	d.phase = PhaseDuelEnd
	d.status = StatusCancelled
	d.sendLogMessages(game.SimpleLogMessageSlice(0, "the duel was called off"))
}

// RematchRequested returns true once both players have asked for a rematch
func (d *Duel) RematchRequested() bool {
	return d.phase == PhaseDuelEnd &&
		d.status == StatusCompleted &&
		d.challenger.rematchRequested &&
		d.challenged.rematchRequested
}

// GetEndOfGameDetails returns the settlement once the duel has finished
func (d *Duel) GetEndOfGameDetails() (*game.OverDetails, bool) {
	if !d.finished {
		return nil, false
	}

	rewards := make(map[int64]*game.Reward)
	var winnerID int64
	if d.outcome != nil {
		winnerID = d.outcome.WinnerID
		rewards = d.outcome.Rewards
	}

	return &game.OverDetails{
		WinnerID: winnerID,
		Rewards:  rewards,
		Log: struct {
			Results []*RoundResult `json:"results"`
			Outcome *Outcome       `json:"outcome"`
		}{
			Results: d.results,
			Outcome: d.outcome,
		},
	}, true
}
