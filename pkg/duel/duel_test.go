package duel

import (
	"testing"
	"time"

	"destinydeck-server/pkg/deck"
	"destinydeck-server/pkg/game"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRand returns the scripted values in order and zero once exhausted
type scriptedRand struct {
	values []int
}

func (s *scriptedRand) Intn(n int) int {
	if len(s.values) == 0 {
		return 0
	}

	v := s.values[0] % n
	s.values = s.values[1:]
	return v
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Seed = 42
	return opts
}

func newTestDuel(t *testing.T, opts Options) *Duel {
	t.Helper()

	d, err := NewDuel(logrus.StandardLogger(),
		CharacterRef{ID: 1, Name: "Ana", Level: 6, Gold: 500, Energy: 100, MaxEnergy: 100},
		CharacterRef{ID: 2, Name: "Bram", Level: 6, Gold: 500, Energy: 100, MaxEnergy: 100},
		opts)
	require.NoError(t, err)
	go func() {
		for range d.logChan {
		}
	}()

	return d
}

func payload(action string, data game.AdditionalData) *game.PayloadIn {
	return &game.PayloadIn{Action: action, AdditionalData: data}
}

// forceAdvance matures the pending transition and ticks it through
func forceAdvance(t *testing.T, d *Duel) {
	t.Helper()

	require.NotNil(t, d.pendingPhase, "expected a pending phase transition")
	d.pendingPhase.After = time.Now().Add(-time.Second)

	changed, err := d.Tick()
	require.NoError(t, err)
	require.True(t, changed)
}

func bothReady(t *testing.T, d *Duel) {
	t.Helper()

	d.SetConnected(1, true)
	d.SetConnected(2, true)
	require.Equal(t, PhaseReadyCheck, d.phase)

	_, _, err := d.Action(1, payload("ready", nil))
	require.NoError(t, err)
	_, _, err = d.Action(2, payload("ready", nil))
	require.NoError(t, err)
}

func toSelection(t *testing.T, d *Duel) {
	t.Helper()

	bothReady(t, d)
	forceAdvance(t, d) // dealing
	forceAdvance(t, d) // selection
	require.Equal(t, PhaseSelection, d.phase)
}

func holdAllPayload() *game.PayloadIn {
	return payload("hold", game.AdditionalData{"hold": []float64{0, 1, 2, 3, 4}})
}

func toBetting(t *testing.T, d *Duel) {
	t.Helper()

	toSelection(t, d)
	_, _, err := d.Action(1, holdAllPayload())
	require.NoError(t, err)
	_, _, err = d.Action(2, holdAllPayload())
	require.NoError(t, err)

	forceAdvance(t, d) // reveal
	forceAdvance(t, d) // betting
	require.Equal(t, PhaseBetting, d.phase)
}

func betPayload(action BetAction, amount int) *game.PayloadIn {
	return payload("bet", game.AdditionalData{"betAction": string(action), "amount": float64(amount)})
}

func TestNewDuel(t *testing.T) {
	d := newTestDuel(t, testOptions())
	assert.Equal(t, PhaseWaiting, d.phase)
	assert.Equal(t, StatusAccepted, d.status)
	assert.Equal(t, "destiny-duel", d.Name())
	assert.Equal(t, []int64{1, 2}, d.CharacterIDs())
	assert.NotEmpty(t, d.ID())

	_, isOver := d.GetEndOfGameDetails()
	assert.False(t, isOver)

	opts := testOptions()
	opts.TotalRounds = 2
	_, err := NewDuel(logrus.StandardLogger(), CharacterRef{ID: 1}, CharacterRef{ID: 2}, opts)
	assert.EqualError(t, err, "total rounds must be a positive odd number")

	opts = testOptions()
	opts.Type = TypeWager
	opts.Wager = 1000
	_, err = NewDuel(logrus.StandardLogger(),
		CharacterRef{ID: 1, Gold: 500},
		CharacterRef{ID: 2, Gold: 500},
		opts)
	assert.Equal(t, ErrInsufficientBankroll, err)
}

func TestDuel_readyCheck(t *testing.T) {
	d := newTestDuel(t, testOptions())

	_, _, err := d.Action(1, payload("ready", nil))
	assert.Equal(t, ErrInvalidPhaseAction, err)

	d.SetConnected(1, true)
	assert.Equal(t, PhaseWaiting, d.phase)
	d.SetConnected(2, true)
	assert.Equal(t, PhaseReadyCheck, d.phase)
	assert.False(t, d.round.turnDeadline.IsZero())

	_, _, err = d.Action(99, payload("ready", nil))
	assert.Equal(t, ErrNotInDuel, err)

	_, _, err = d.Action(1, payload("nope", nil))
	assert.Equal(t, ErrUnknownAction, err)

	res, updateState, err := d.Action(1, payload("ready", nil))
	require.NoError(t, err)
	assert.True(t, updateState)
	assert.Equal(t, "OK", res.Value)

	_, _, err = d.Action(1, payload("ready", nil))
	assert.Equal(t, ErrAlreadyReady, err)
	assert.Nil(t, d.pendingPhase)

	_, _, err = d.Action(2, payload("ready", nil))
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, d.status)
	require.NotNil(t, d.pendingPhase)
	assert.Equal(t, PhaseDealing, d.pendingPhase.Next)
}

func TestDuel_dealAndSelection(t *testing.T) {
	d := newTestDuel(t, testOptions())
	toSelection(t, d)

	assert.Len(t, d.challenger.hand, 5)
	assert.Len(t, d.challenged.hand, 5)
	assert.Equal(t, 42, d.deck.CardsLeft())
	assert.Equal(t, int64(1), d.round.dealerID)

	_, _, err := d.Action(1, payload("hold", game.AdditionalData{"hold": []float64{0, 0, 1}}))
	assert.Equal(t, ErrInvalidHold, err)

	_, _, err = d.Action(1, payload("hold", game.AdditionalData{"hold": []float64{5}}))
	assert.Equal(t, ErrInvalidHold, err)

	_, _, err = d.Action(1, payload("hold", game.AdditionalData{"hold": []float64{0, 2}}))
	require.NoError(t, err)
	assert.True(t, d.challenger.holdSubmitted)

	_, _, err = d.Action(1, holdAllPayload())
	assert.Equal(t, ErrHoldAlreadyMade, err)

	_, _, err = d.Action(2, payload("hold", nil))
	require.NoError(t, err)
	assert.Equal(t, []int(nil), d.challenged.heldIndices)

	require.NotNil(t, d.pendingPhase)
	assert.Equal(t, PhaseReveal, d.pendingPhase.Next)

	kept := []*deck.Card{d.challenger.hand[0], d.challenger.hand[2]}
	forceAdvance(t, d) // reveal

	assert.Len(t, d.challenger.hand, 5)
	assert.True(t, d.challenger.hand[0].Equal(kept[0]))
	assert.True(t, d.challenger.hand[1].Equal(kept[1]))
	assert.Len(t, d.challenged.hand, 5)
	assert.Equal(t, 42-3-5, d.deck.CardsLeft())
}

func TestDuel_fullRound(t *testing.T) {
	opts := testOptions()
	opts.TotalRounds = 1
	d := newTestDuel(t, opts)
	toBetting(t, d)

	// the non-dealer opens
	assert.Equal(t, int64(2), d.round.turnID)

	d.challenger.hand = deck.CardsFromString("14u,14s,9b,6f,2u")
	d.challenged.hand = deck.CardsFromString("13u,12s,9f,6b,2s")

	_, _, err := d.Action(1, betPayload(BetBet, 50))
	assert.Equal(t, ErrNotYourTurn, err)

	_, _, err = d.Action(2, betPayload(BetBet, 50))
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.round.turnID)

	_, _, err = d.Action(1, betPayload(BetCall, 0))
	require.NoError(t, err)

	require.NotNil(t, d.pendingPhase)
	assert.Equal(t, PhaseShowdown, d.pendingPhase.Next)
	assert.Equal(t, 100, d.round.pot)

	forceAdvance(t, d) // showdown
	assert.True(t, d.revealed)
	require.Len(t, d.results, 1)
	assert.Equal(t, int64(1), d.results[0].WinnerID)
	assert.Equal(t, 100, d.results[0].Pot)
	assert.Equal(t, 550, d.challenger.Bankroll())
	assert.Equal(t, 450, d.challenged.Bankroll())

	forceAdvance(t, d) // round end
	require.NotNil(t, d.pendingPhase)
	assert.Equal(t, PhaseDuelEnd, d.pendingPhase.Next)

	forceAdvance(t, d) // duel end
	assert.Equal(t, StatusCompleted, d.status)
	require.NotNil(t, d.outcome)
	assert.Equal(t, int64(1), d.outcome.WinnerID)
	assert.False(t, d.outcome.IsForfeit)

	// one more tick marks the duel as settled
	changed, err := d.Tick()
	require.NoError(t, err)
	assert.True(t, changed)

	details, isOver := d.GetEndOfGameDetails()
	require.True(t, isOver)
	assert.Equal(t, int64(1), details.WinnerID)
	assert.Equal(t, 50, details.Rewards[1].Gold)
	assert.Equal(t, -50, details.Rewards[2].Gold)
	assert.Equal(t, xpWin+xpPerRoundWon, details.Rewards[1].XP)
	assert.Equal(t, xpLoss, details.Rewards[2].XP)
}

func TestDuel_splitPot(t *testing.T) {
	opts := testOptions()
	opts.TotalRounds = 1
	d := newTestDuel(t, opts)
	toBetting(t, d)

	d.challenger.hand = deck.CardsFromString("14u,13u,9b,6f,2u")
	d.challenged.hand = deck.CardsFromString("14s,13s,9f,6b,2s")

	_, _, err := d.Action(2, betPayload(BetBet, 25))
	require.NoError(t, err)
	_, _, err = d.Action(1, betPayload(BetCall, 0))
	require.NoError(t, err)

	forceAdvance(t, d) // showdown
	require.Len(t, d.results, 1)
	assert.True(t, d.results[0].Split)
	assert.Equal(t, int64(0), d.results[0].WinnerID)
	assert.Equal(t, 500, d.challenger.Bankroll())
	assert.Equal(t, 500, d.challenged.Bankroll())

	forceAdvance(t, d) // round end
	forceAdvance(t, d) // duel end

	require.NotNil(t, d.outcome)
	assert.True(t, d.outcome.IsDraw)
	assert.Equal(t, int64(0), d.outcome.WinnerID)
}

func TestDuel_winByFold(t *testing.T) {
	d := newTestDuel(t, testOptions())
	toBetting(t, d)

	_, _, err := d.Action(2, betPayload(BetBet, 40))
	require.NoError(t, err)
	_, _, err = d.Action(1, betPayload(BetFold, 0))
	require.NoError(t, err)

	require.Len(t, d.results, 1)
	assert.Equal(t, int64(2), d.results[0].WinnerID)
	assert.Equal(t, int64(1), d.results[0].FoldedID)
	assert.Equal(t, 540, d.challenged.Bankroll())
	assert.Equal(t, 1, d.challenged.RoundsWon())

	require.NotNil(t, d.pendingPhase)
	assert.Equal(t, PhaseRoundEnd, d.pendingPhase.Next)

	forceAdvance(t, d) // round end; best of three continues
	require.NotNil(t, d.pendingPhase)
	assert.Equal(t, PhaseDealing, d.pendingPhase.Next)
	assert.Equal(t, 2, d.round.number)
	assert.Equal(t, int64(2), d.round.dealerID)
	assert.Nil(t, d.challenger.hand)
	assert.False(t, d.challenger.folded)
}

func TestDuel_forfeit(t *testing.T) {
	d := newTestDuel(t, testOptions())
	toBetting(t, d)

	_, _, err := d.Action(2, betPayload(BetBet, 30))
	require.NoError(t, err)

	_, _, err = d.Action(2, payload("forfeit", nil))
	require.NoError(t, err)

	assert.Equal(t, PhaseDuelEnd, d.phase)
	assert.Equal(t, StatusCompleted, d.status)
	require.NotNil(t, d.outcome)
	assert.Equal(t, int64(1), d.outcome.WinnerID)
	assert.True(t, d.outcome.IsForfeit)
	assert.Equal(t, repForfeit, d.outcome.Rewards[2].Reputation)

	// the abandoned bet goes to the winner
	assert.Equal(t, 530, d.challenger.Bankroll())
	assert.Equal(t, 30, d.outcome.Rewards[1].Gold)

	_, _, err = d.Action(1, payload("forfeit", nil))
	assert.Equal(t, ErrDuelOver, err)
}

func TestDuel_wagerSettlement(t *testing.T) {
	opts := testOptions()
	opts.Type = TypeWager
	opts.Wager = 100
	opts.TotalRounds = 1
	d := newTestDuel(t, opts)
	toBetting(t, d)

	d.challenger.hand = deck.CardsFromString("14u,14s,9b,6f,2u")
	d.challenged.hand = deck.CardsFromString("13u,12s,9f,6b,2s")

	_, _, err := d.Action(2, betPayload(BetCheck, 0))
	require.NoError(t, err)
	_, _, err = d.Action(1, betPayload(BetCheck, 0))
	require.NoError(t, err)

	forceAdvance(t, d) // showdown
	forceAdvance(t, d) // round end
	forceAdvance(t, d) // duel end

	require.NotNil(t, d.outcome)
	assert.Equal(t, 100, d.outcome.WagerPaid)
	assert.Equal(t, 100, d.outcome.Rewards[1].Gold)
	assert.Equal(t, -100, d.outcome.Rewards[2].Gold)
}

func TestDuel_rematch(t *testing.T) {
	d := newTestDuel(t, testOptions())
	toBetting(t, d)

	_, _, err := d.Action(1, payload("request_rematch", nil))
	assert.Equal(t, ErrInvalidPhaseAction, err)

	d.endWithForfeit(d.challenged)
	assert.False(t, d.RematchRequested())

	_, _, err = d.Action(1, payload("request_rematch", nil))
	require.NoError(t, err)
	assert.False(t, d.RematchRequested())

	_, _, err = d.Action(2, payload("request_rematch", nil))
	require.NoError(t, err)
	assert.True(t, d.RematchRequested())
}

func TestDuel_emote(t *testing.T) {
	d := newTestDuel(t, testOptions())
	toSelection(t, d)

	res, updateState, err := d.Action(1, payload("emote", game.AdditionalData{"emote": "tips hat"}))
	require.NoError(t, err)
	assert.False(t, updateState)
	assert.Equal(t, "OK", res.Value)

	_, _, err = d.Action(1, payload("emote", game.AdditionalData{"emote": ""}))
	assert.EqualError(t, err, "emote must be between 1 and 64 characters")
}
