package handeval

import (
	"testing"

	"destinydeck-server/pkg/deck"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEvaluate(t *testing.T, cards string) *Evaluation {
	t.Helper()
	ev, err := Evaluate(deck.CardsFromString(cards))
	require.NoError(t, err)
	return ev
}

func TestEvaluate_badInput(t *testing.T) {
	_, err := Evaluate(deck.CardsFromString("2u,3u,4u,5u"))
	assert.Equal(t, ErrInvalidHandSize, err)

	_, err = Evaluate(deck.CardsFromString("2u,3u,4u,5u,6u,7u"))
	assert.Equal(t, ErrInvalidHandSize, err)

	_, err = Evaluate(deck.CardsFromString("2u,2u,4u,5u,6u"))
	assert.Equal(t, ErrDuplicateCard, err)
}

func TestEvaluate_classification(t *testing.T) {
	tests := []struct {
		cards string
		rank  HandRank
	}{
		{"2u,7s,9b,11u,14f", HighCard},
		{"2u,2s,9b,11u,14f", OnePair},
		{"5u,5s,9b,9u,13f", TwoPair},
		{"5u,5s,5b,9u,13f", ThreeOfAKind},
		{"5u,6s,7b,8u,9f", Straight},
		{"14u,2s,3b,4u,5f", Straight},
		{"2u,7u,9u,11u,14u", Flush},
		{"4f,4u,4s,9b,9u", FullHouse},
		{"4f,4u,4s,4b,9u", FourOfAKind},
		{"5b,6b,7b,8b,9b", StraightFlush},
		{"14b,2b,3b,4b,5b", StraightFlush},
		{"10s,11s,12s,13s,14s", RoyalFlush},
	}

	for _, test := range tests {
		ev := mustEvaluate(t, test.cards)
		assert.Equal(t, test.rank, ev.Rank, test.cards)
	}
}

func TestEvaluate_rankOrdering(t *testing.T) {
	// one sample per class, weakest to strongest
	samples := []string{
		"2u,7s,9b,11u,14f",
		"2u,2s,9b,11u,14f",
		"5u,5s,9b,9u,13f",
		"5u,5s,5b,9u,13f",
		"5u,6s,7b,8u,9f",
		"2u,7u,9u,11u,14u",
		"4f,4u,4s,9b,9u",
		"4f,4u,4s,4b,9u",
		"5b,6b,7b,8b,9b",
		"10s,11s,12s,13s,14s",
	}

	prev := 0
	for _, cards := range samples {
		ev := mustEvaluate(t, cards)
		assert.Greater(t, ev.Score, prev, cards)
		prev = ev.Score
	}
}

func TestEvaluate_highCardTiebreaks(t *testing.T) {
	// hand from the drifter's manual: keyed by (Ace, Jack, 9, 7, 2)
	ev := mustEvaluate(t, "2u,7s,9f,11u,14b")
	assert.Equal(t, HighCard, ev.Rank)
	assert.Equal(t, []int{14, 11, 9, 7, 2}, ev.Primary)

	lower := mustEvaluate(t, "2u,7s,9f,11u,13b")
	assert.Greater(t, ev.Score, lower.Score)

	kicker := mustEvaluate(t, "3u,7s,9f,11u,14s")
	assert.Greater(t, kicker.Score, ev.Score)
}

func TestEvaluate_fullHouseBeatsAnyFlush(t *testing.T) {
	fullHouse := mustEvaluate(t, "4f,4u,4s,9b,9u")
	assert.Equal(t, FullHouse, fullHouse.Rank)
	assert.Equal(t, []int{4, 9}, fullHouse.Primary)

	bestFlush := mustEvaluate(t, "14u,13u,12u,11u,9u")
	assert.Equal(t, Flush, bestFlush.Rank)
	assert.Greater(t, fullHouse.Score, bestFlush.Score)
}

func TestEvaluate_mirroredHandsTie(t *testing.T) {
	a := mustEvaluate(t, "5u,5s,9b,9u,13f")
	b := mustEvaluate(t, "5b,5f,9s,9f,13u")
	assert.Equal(t, a.Score, b.Score)
	assert.Equal(t, 0, Compare(a, b))
}

func TestEvaluate_wheelIsFiveHigh(t *testing.T) {
	wheel := mustEvaluate(t, "14u,2s,3b,4u,5f")
	assert.Equal(t, Straight, wheel.Rank)
	assert.Equal(t, 5, wheel.Primary[0])
	assert.Equal(t, deck.LowAce, wheel.Primary[4])

	sixHigh := mustEvaluate(t, "2s,3b,4u,5f,6u")
	assert.Greater(t, sixHigh.Score, wheel.Score)

	// the wheel still beats any non-straight
	trips := mustEvaluate(t, "14u,14s,14b,13u,12f")
	assert.Greater(t, wheel.Score, trips.Score)
}

func TestEvaluate_pairAndTwoPairTiebreaks(t *testing.T) {
	highPair := mustEvaluate(t, "10u,10s,4b,3u,2f")
	lowPair := mustEvaluate(t, "9u,9s,14b,13u,12f")
	assert.Greater(t, highPair.Score, lowPair.Score)

	a := mustEvaluate(t, "10u,10s,9b,9u,2f")
	b := mustEvaluate(t, "10b,10f,8s,8f,14u")
	assert.Greater(t, a.Primary[0], 9)
	assert.Greater(t, a.Score, b.Score, "higher second pair wins over better kicker")
}

// every distinct pair of sample hands in different classes must have distinct
// scores, and within a class only mirrored ranks may tie
func TestEvaluate_totalOrdering(t *testing.T) {
	hands := []string{
		"2u,7s,9b,11u,14f",
		"2s,7b,9f,11s,14u", // mirror of the first
		"3u,7s,9b,11u,14f",
		"2u,2s,9b,11u,14f",
		"5u,5s,9b,9u,13f",
		"5b,5f,9s,9f,13u", // mirror
		"5u,5s,5b,9u,13f",
		"5u,6s,7b,8u,9f",
		"6u,7s,8b,9u,10f",
		"2u,7u,9u,11u,14u",
		"4f,4u,4s,9b,9u",
		"4f,4u,4s,4b,9u",
		"5b,6b,7b,8b,9b",
		"10s,11s,12s,13s,14s",
	}

	type scored struct {
		cards string
		ev    *Evaluation
	}

	evs := make([]scored, len(hands))
	for i, cards := range hands {
		evs[i] = scored{cards, mustEvaluate(t, cards)}
	}

	for i := 0; i < len(evs); i++ {
		for j := i + 1; j < len(evs); j++ {
			a, b := evs[i], evs[j]
			sameShape := a.ev.Rank == b.ev.Rank &&
				assert.ObjectsAreEqual(a.ev.Primary, b.ev.Primary) &&
				assert.ObjectsAreEqual(a.ev.Kickers, b.ev.Kickers)

			if sameShape {
				assert.Equal(t, a.ev.Score, b.ev.Score, "%s vs %s", a.cards, b.cards)
			} else {
				assert.NotEqual(t, a.ev.Score, b.ev.Score, "%s vs %s", a.cards, b.cards)
			}
		}
	}
}

func TestHandRank_String(t *testing.T) {
	assert.Equal(t, "High card", HighCard.String())
	assert.Equal(t, "Royal flush", RoyalFlush.String())
	assert.Panics(t, func() {
		_ = HandRank(99).String()
	})
}
