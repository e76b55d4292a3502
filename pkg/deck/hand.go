package deck

import "sort"

// Hand represents a collection of cards
type Hand []*Card

// AddCard adds a card to the hand
func (h *Hand) AddCard(card *Card) {
	*h = append(*h, card)
}

// HasCard returns true if the hand contains the specified card
func (h *Hand) HasCard(card *Card) bool {
	for _, c := range *h {
		if c.Equal(card) {
			return true
		}
	}

	return false
}

// Discard will discard the specified card and return the number of cards removed
func (h *Hand) Discard(card *Card) int {
	count := 0
	newHand := make([]*Card, 0, len(*h))
	for _, c := range *h {
		if c.Equal(card) {
			count++
		} else {
			newHand = append(newHand, c)
		}
	}

	*h = newHand
	return count
}

// FirstCard returns the first card in the hand or nil if the cards are empty
func (h Hand) FirstCard() *Card {
	if len(h) == 0 {
		return nil
	}

	return h[0]
}

// LastCard returns the last card in the hand or nil if the cards are empty
func (h Hand) LastCard() *Card {
	n := len(h)
	if n == 0 {
		return nil
	}

	return h[n-1]
}

// Clone returns a copy of the hand. The cards themselves are shared
func (h Hand) Clone() Hand {
	clone := make(Hand, len(h))
	copy(clone, h)
	return clone
}

// SortByRankDescending sorts a copy of the hand from the highest rank down
func (h Hand) SortByRankDescending() Hand {
	clone := h.Clone()
	sort.SliceStable(clone, func(i, j int) bool {
		return clone[i].Rank > clone[j].Rank
	})

	return clone
}

func (h Hand) String() string {
	return CardsToString(h)
}
