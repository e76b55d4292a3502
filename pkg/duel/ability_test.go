package duel

import (
	"testing"

	"destinydeck-server/pkg/game"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func abilityPayload(id AbilityID, target int) *game.PayloadIn {
	return payload("use_ability", game.AdditionalData{
		"ability": string(id),
		"target":  float64(target),
	})
}

func TestAbilitiesForLevel(t *testing.T) {
	assert.Equal(t, []AbilityID{AbilityReadOpponent, AbilityPokerFace}, abilitiesForLevel(1))
	assert.Len(t, abilitiesForLevel(3), 5)
	assert.Len(t, abilitiesForLevel(6), 8)
}

func TestUseAbility_validation(t *testing.T) {
	d := newTestDuel(t, testOptions())
	toSelection(t, d)
	p, opp := d.challenger, d.challenged

	_, err := d.useAbility(p, opp, "mind_control", 0)
	assert.Equal(t, ErrAbilityNotKnown, err)

	p.abilities.Cooldowns[AbilityPeek] = 1
	_, err = d.useAbility(p, opp, AbilityPeek, 0)
	assert.Equal(t, ErrAbilityOnCooldown, err)
	delete(p.abilities.Cooldowns, AbilityPeek)

	p.abilities.Energy = 5
	_, err = d.useAbility(p, opp, AbilityPeek, 0)
	assert.Equal(t, ErrInsufficientEnergy, err)
	p.abilities.Energy = 100
}

func TestUseAbility_levelGate(t *testing.T) {
	d, err := NewDuel(logrus.StandardLogger(),
		CharacterRef{ID: 1, Name: "Ana", Level: 6, Gold: 500, Energy: 100, MaxEnergy: 100},
		CharacterRef{ID: 2, Name: "Novice", Level: 1, Gold: 500, Energy: 100, MaxEnergy: 100},
		testOptions())
	require.NoError(t, err)
	go func() {
		for range d.logChan {
		}
	}()
	toSelection(t, d)

	_, err = d.useAbility(d.challenged, d.challenger, AbilityColdRead, 0)
	assert.Equal(t, ErrAbilityNotKnown, err)

	_, err = d.useAbility(d.challenged, d.challenger, AbilityReadOpponent, 0)
	assert.NoError(t, err)
}

func TestUseAbility_phaseGate(t *testing.T) {
	d := newTestDuel(t, testOptions())
	toBetting(t, d)

	// selection-only abilities are illegal once betting opens
	_, err := d.useAbility(d.challenged, d.challenger, AbilityPeek, 0)
	assert.Equal(t, ErrInvalidPhaseAction, err)

	_, err = d.useAbility(d.challenged, d.challenger, AbilityReroll, 0)
	assert.Equal(t, ErrInvalidPhaseAction, err)

	// perception is legal during betting, but only on your own turn
	_, err = d.useAbility(d.challenger, d.challenged, AbilityReadOpponent, 0)
	assert.Equal(t, ErrNotYourTurn, err)

	_, err = d.useAbility(d.challenged, d.challenger, AbilityReadOpponent, 0)
	assert.NoError(t, err)
}

func TestUseAbility_peek(t *testing.T) {
	d := newTestDuel(t, testOptions())
	toSelection(t, d)
	p := d.challenger

	top := d.deck.Cards[0]
	cardsLeft := d.deck.CardsLeft()

	res, _, err := d.Action(1, abilityPayload(AbilityPeek, 0))
	require.NoError(t, err)
	assert.Equal(t, "ability_result", res.Key)

	result := res.Data.(*AbilityUseResult)
	assert.True(t, result.Card.Equal(top))
	assert.Equal(t, cardsLeft, d.deck.CardsLeft())
	assert.Equal(t, 90, p.abilities.Energy)
	assert.Equal(t, 1, p.abilities.Cooldowns[AbilityPeek])
}

func TestUseAbility_reroll(t *testing.T) {
	d := newTestDuel(t, testOptions())
	toSelection(t, d)
	p := d.challenger

	result, err := d.useAbility(p, d.challenged, AbilityReroll, 7)
	assert.EqualError(t, err, "reroll target must be a card index between 0 and 4")
	assert.Nil(t, result)
	assert.Equal(t, 100, p.abilities.Energy)

	old := p.hand[2]
	top := d.deck.Cards[0]

	result, err = d.useAbility(p, d.challenged, AbilityReroll, 2)
	require.NoError(t, err)
	assert.True(t, result.Card.Equal(top))
	assert.True(t, p.hand[2].Equal(top))
	assert.False(t, p.hand[2].Equal(old))
	assert.Equal(t, 75, p.abilities.Energy)
	assert.Equal(t, 75, result.EnergyLeft)
}

func TestUseAbility_pokerFaceBlocksPerception(t *testing.T) {
	d := newTestDuel(t, testOptions())
	toSelection(t, d)

	_, err := d.useAbility(d.challenger, d.challenged, AbilityPokerFace, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, d.challenger.abilities.PokerFaceRounds)

	// a blocked read learns nothing, and cannot even tell it was blocked
	result, err := d.useAbility(d.challenged, d.challenger, AbilityReadOpponent, 0)
	require.NoError(t, err)
	assert.Empty(t, result.Hints)
	assert.Equal(t, 85, d.challenged.abilities.Energy)
}

func TestUseAbility_falseTellFeedsDecoy(t *testing.T) {
	d := newTestDuel(t, testOptions())
	toSelection(t, d)

	_, err := d.useAbility(d.challenger, d.challenged, AbilityPokerFace, 0)
	require.NoError(t, err)
	_, err = d.useAbility(d.challenger, d.challenged, AbilityFalseTell, 0)
	require.NoError(t, err)
	assert.True(t, d.challenger.abilities.falseTellArmed)

	result, err := d.useAbility(d.challenged, d.challenger, AbilityReadOpponent, 0)
	require.NoError(t, err)
	require.Len(t, result.Hints, 1)
	assert.True(t, result.Hints[0].fabricated)
	assert.False(t, d.challenger.abilities.falseTellArmed)

	// the decoy is spent; the next blocked read comes back empty
	d.challenged.abilities.Cooldowns = make(map[AbilityID]int)
	result, err = d.useAbility(d.challenged, d.challenger, AbilityReadOpponent, 0)
	require.NoError(t, err)
	assert.Empty(t, result.Hints)
}

func TestUseAbility_coldReadExactRank(t *testing.T) {
	d := newTestDuel(t, testOptions())
	toSelection(t, d)
	d.rand = &scriptedRand{} // success roll always passes

	result, err := d.useAbility(d.challenger, d.challenged, AbilityColdRead, 0)
	require.NoError(t, err)
	require.Len(t, result.Hints, 1)
	require.NotNil(t, result.Hints[0].Exact)
	assert.Equal(t, 100, result.Hints[0].Confidence)
}

func TestUseAbility_markCardsDetected(t *testing.T) {
	d := newTestDuel(t, testOptions())
	toSelection(t, d)
	d.rand = &scriptedRand{values: []int{0}} // roll under the detection chance

	result, err := d.useAbility(d.challenger, d.challenged, AbilityMarkCards, 0)
	require.NoError(t, err)
	require.NotNil(t, result.Cheat)
	assert.True(t, result.Cheat.Detected)
	assert.Equal(t, cheatGoldPenalty, result.Cheat.GoldPenalty)
	assert.False(t, d.challenger.abilities.cardsMarked)

	require.Len(t, d.cheatNotices, 1)
	assert.Equal(t, int64(1), d.cheatNotices[0].CheaterID)

	penalty := d.penalties[1]
	require.NotNil(t, penalty)
	assert.Equal(t, -cheatGoldPenalty, penalty.Gold)
	assert.Equal(t, -cheatReputationPenalty, penalty.Reputation)
	assert.Equal(t, 0, penalty.JailRounds)

	// energy and cooldown are spent either way
	assert.Equal(t, 80, d.challenger.abilities.Energy)
}

func TestUseAbility_palmCardUndetected(t *testing.T) {
	d := newTestDuel(t, testOptions())
	toSelection(t, d)
	d.rand = &scriptedRand{values: []int{99}} // roll over the detection chance
	p := d.challenger

	lowest := 0
	for i, c := range p.hand {
		if c.Rank < p.hand[lowest].Rank {
			lowest = i
		}
	}
	top := d.deck.Cards[0]

	result, err := d.useAbility(p, d.challenged, AbilityPalmCard, 0)
	require.NoError(t, err)
	assert.False(t, result.Cheat.Detected)
	assert.Equal(t, 0, result.Cheat.JailRounds)
	require.NotNil(t, result.Card)
	assert.True(t, p.hand[lowest].Equal(top))
	assert.Empty(t, d.cheatNotices)
}

func TestUseAbility_palmCardDetectedJails(t *testing.T) {
	d := newTestDuel(t, testOptions())
	toSelection(t, d)
	d.rand = &scriptedRand{values: []int{0}}

	result, err := d.useAbility(d.challenger, d.challenged, AbilityPalmCard, 0)
	require.NoError(t, err)
	assert.True(t, result.Cheat.Detected)
	assert.Equal(t, palmCardJailRounds, result.Cheat.JailRounds)
	assert.Equal(t, palmCardJailRounds, d.penalties[1].JailRounds)
}

func TestAbilityState_endRound(t *testing.T) {
	s := newAbilityState(6, 40, 100)
	s.Cooldowns[AbilityPeek] = 1
	s.Cooldowns[AbilityMarkCards] = 3
	s.PokerFaceRounds = 2

	s.endRound(10)
	assert.Equal(t, 50, s.Energy)
	assert.Equal(t, 1, s.PokerFaceRounds)
	assert.NotContains(t, s.Cooldowns, AbilityPeek)
	assert.Equal(t, 2, s.Cooldowns[AbilityMarkCards])

	s.Energy = 95
	s.endRound(10)
	assert.Equal(t, 100, s.Energy)
	assert.Equal(t, 0, s.PokerFaceRounds)
}
