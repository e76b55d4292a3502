package handeval

import "fmt"

// HandRank is the classification of a five-card hand, i.e., full house
type HandRank int

// constants for HandRank, ordered from weakest to strongest
const (
	HighCard HandRank = iota + 1
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns the string representation of a hand rank
func (h HandRank) String() string {
	switch h {
	case HighCard:
		return "High card"
	case OnePair:
		return "Pair"
	case TwoPair:
		return "Two pair"
	case ThreeOfAKind:
		return "Three of a kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full house"
	case FourOfAKind:
		return "Four of a kind"
	case StraightFlush:
		return "Straight flush"
	case RoyalFlush:
		return "Royal flush"
	default:
		panic(fmt.Sprintf("unknown hand rank: %d", h))
	}
}

// MarshalJSON encodes the hand rank into JSON
func (h HandRank) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"id":%d,"name":%q}`, int(h), h.String())), nil
}
