// Package handeval evaluates exactly five cards from the Destiny Deck into a
// totally ordered hand strength.
//
// The ace-low straight (A-2-3-4-5) counts as a five-high straight; the ace
// contributes a rank of 1 to the tiebreak in that hand.
package handeval

import (
	"errors"
	"sort"

	"destinydeck-server/pkg/deck"
)

// HandSize is the number of cards in an evaluated hand
const HandSize = 5

// ErrInvalidHandSize is returned unless exactly five cards are evaluated
var ErrInvalidHandSize = errors.New("invalid hand size")

// ErrDuplicateCard is returned if the same card appears twice.
// A dealt hand can never contain duplicates, so this is a contract violation
// by the caller, not a game state.
var ErrDuplicateCard = errors.New("duplicate card in hand")

// Evaluation is the result of evaluating a five-card hand.
// Score comparison alone totally orders any two evaluations; Primary and
// Kickers exist for display and explanation only.
type Evaluation struct {
	Rank    HandRank `json:"rank"`
	Score   int      `json:"score"`
	Primary []int    `json:"primary"`
	Kickers []int    `json:"kickers"`
}

// Evaluate classifies a five-card hand and computes its tiebreak score
func Evaluate(hand deck.Hand) (*Evaluation, error) {
	if len(hand) != HandSize {
		return nil, ErrInvalidHandSize
	}

	for i := 0; i < HandSize; i++ {
		for j := i + 1; j < HandSize; j++ {
			if hand[i].Equal(hand[j]) {
				return nil, ErrDuplicateCard
			}
		}
	}

	sorted := hand.SortByRankDescending()

	rankCounts := make(map[int]int)
	flush := true
	for i, card := range sorted {
		rankCounts[card.Rank]++
		if i > 0 && card.Suit != sorted[0].Suit {
			flush = false
		}
	}

	straightHigh := straightHighCard(sorted)

	// groups of equal rank, biggest group first, then highest rank first
	type group struct {
		rank  int
		count int
	}
	groups := make([]group, 0, len(rankCounts))
	for rank, count := range rankCounts {
		groups = append(groups, group{rank, count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	ev := &Evaluation{}

	switch {
	case flush && straightHigh == deck.Ace:
		ev.Rank = RoyalFlush
		ev.Primary = ranksDescending(sorted, straightHigh)
	case flush && straightHigh > 0:
		ev.Rank = StraightFlush
		ev.Primary = ranksDescending(sorted, straightHigh)
		ev.Kickers = nil
	case groups[0].count == 4:
		ev.Rank = FourOfAKind
		ev.Primary = []int{groups[0].rank}
		ev.Kickers = []int{groups[1].rank}
	case groups[0].count == 3 && groups[1].count == 2:
		ev.Rank = FullHouse
		ev.Primary = []int{groups[0].rank, groups[1].rank}
	case flush:
		ev.Rank = Flush
		ev.Primary = ranksDescending(sorted, 0)
	case straightHigh > 0:
		ev.Rank = Straight
		ev.Primary = ranksDescending(sorted, straightHigh)
	case groups[0].count == 3:
		ev.Rank = ThreeOfAKind
		ev.Primary = []int{groups[0].rank}
		ev.Kickers = []int{groups[1].rank, groups[2].rank}
	case groups[0].count == 2 && groups[1].count == 2:
		ev.Rank = TwoPair
		ev.Primary = []int{groups[0].rank, groups[1].rank}
		ev.Kickers = []int{groups[2].rank}
	case groups[0].count == 2:
		ev.Rank = OnePair
		ev.Primary = []int{groups[0].rank}
		ev.Kickers = []int{groups[1].rank, groups[2].rank, groups[3].rank}
	default:
		ev.Rank = HighCard
		ev.Primary = ranksDescending(sorted, 0)
	}

	ev.Score = calculateScore(ev.Rank, tiebreaks(ev))
	return ev, nil
}

// Compare returns a negative value if a loses to b, a positive value if a
// beats b, and zero on a true tie
func Compare(a, b *Evaluation) int {
	return a.Score - b.Score
}

// straightHighCard returns the high card of a straight, or 0 if the sorted
// hand is not five consecutive ranks. The wheel (A-2-3-4-5) returns 5.
func straightHighCard(sorted deck.Hand) int {
	consecutive := true
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Rank != sorted[i-1].Rank-1 {
			consecutive = false
			break
		}
	}

	if consecutive {
		return sorted[0].Rank
	}

	// ace-low: A,5,4,3,2 in descending order
	if sorted[0].Rank == deck.Ace {
		for i := 1; i < len(sorted); i++ {
			if sorted[i].Rank != 6-i {
				return 0
			}
		}
		return 5
	}

	return 0
}

// ranksDescending returns the hand's ranks from high to low. If straightHigh
// is 5 the hand is a wheel and the ace counts as 1.
func ranksDescending(sorted deck.Hand, straightHigh int) []int {
	ranks := make([]int, len(sorted))
	for i, card := range sorted {
		ranks[i] = card.Rank
	}

	if straightHigh == 5 && ranks[0] == deck.Ace {
		copy(ranks, ranks[1:])
		ranks[len(ranks)-1] = deck.LowAce
	}

	return ranks
}

func tiebreaks(ev *Evaluation) []int {
	switch ev.Rank {
	case Straight, StraightFlush:
		// the high card fully determines the straight
		return []int{ev.Primary[0]}
	case RoyalFlush:
		return nil
	}

	vals := make([]int, 0, HandSize)
	vals = append(vals, ev.Primary...)
	vals = append(vals, ev.Kickers...)
	return vals
}

// calculateScore packs the hand rank and up to five tiebreak ranks into a
// single monotonic integer. Each position is base 15 so a higher rank class
// always dominates every tiebreak.
func calculateScore(rank HandRank, vals []int) int {
	fiveVals := make([]int, HandSize)
	copy(fiveVals, vals)

	score := int(rank)
	for _, val := range fiveVals {
		score = score*15 + val
	}

	return score
}
