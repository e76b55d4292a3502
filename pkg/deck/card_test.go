package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardFromString(t *testing.T) {
	card := CardFromString("14u")
	assert.Equal(t, Ace, card.Rank)
	assert.Equal(t, Cunning, card.Suit)

	card = CardFromString("2f")
	assert.Equal(t, 2, card.Rank)
	assert.Equal(t, Craft, card.Suit)

	assert.Nil(t, CardFromString(""))
	assert.PanicsWithValue(t, "could not parse card: 15u", func() {
		CardFromString("15u")
	})
	assert.Panics(t, func() {
		CardFromString("5x")
	})
}

func TestCard_String(t *testing.T) {
	assert.Equal(t, "A✦", CardFromString("14u").String())
	assert.Equal(t, "K☽", CardFromString("13s").String())
	assert.Equal(t, "Q⚔", CardFromString("12b").String())
	assert.Equal(t, "J⚒", CardFromString("11f").String())
	assert.Equal(t, "10✦", CardFromString("10u").String())
}

func TestCard_Equal(t *testing.T) {
	assert.True(t, CardFromString("5b").Equal(CardFromString("5b")))
	assert.False(t, CardFromString("5b").Equal(CardFromString("5s")))
	assert.False(t, CardFromString("5b").Equal(CardFromString("6b")))
}

func TestCard_AceLowRank(t *testing.T) {
	assert.Equal(t, 1, CardFromString("14u").AceLowRank())
	assert.Equal(t, 13, CardFromString("13u").AceLowRank())
	assert.Equal(t, 2, CardFromString("2u").AceLowRank())
}

func TestCardsToString(t *testing.T) {
	cards := CardsFromString("2u,3s,4b,14f")
	assert.Equal(t, "2u,3s,4b,14f", CardsToString(cards))
	assert.Equal(t, "", CardToString(nil))
	assert.Equal(t, []*Card{}, CardsFromString(""))
}
