package duel

import (
	"destinydeck-server/pkg/deck"
	"destinydeck-server/pkg/handeval"

	poker "github.com/paulhankin/poker"
)

// equitySamples is how many random opposing hands the Monte Carlo estimate
// draws when grading hand strength
const equitySamples = 200

// PerceptionHint is probabilistic information about the opponent's hand.
// Strength is a descriptive bucket; only a successful cold read carries the
// exact hand rank.
type PerceptionHint struct {
	Ability    AbilityID          `json:"ability"`
	Strength   string             `json:"strength"`
	Exact      *handeval.HandRank `json:"exact,omitempty"`
	Confidence int                `json:"confidence"`

	// fabricated marks a False Tell decoy. The perceiving player must not be
	// able to tell, so this never serializes.
	fabricated bool
}

var strengthBuckets = []string{"feeble", "shaky", "steady", "strong", "fearsome"}

func bucketForEquity(equity float64) string {
	switch {
	case equity < 0.25:
		return strengthBuckets[0]
	case equity < 0.45:
		return strengthBuckets[1]
	case equity < 0.60:
		return strengthBuckets[2]
	case equity < 0.80:
		return strengthBuckets[3]
	default:
		return strengthBuckets[4]
	}
}

// perceive resolves a perception ability against the opponent. The target's
// poker face is checked before any real information is produced: a blocked
// read either comes back empty or, if a false tell is armed, yields a decoy.
func (d *Duel) perceive(p, opp *Participant, id AbilityID) *AbilityUseResult {
	if opp.abilities.PokerFaceRounds > 0 {
		if opp.abilities.falseTellArmed {
			opp.abilities.falseTellArmed = false
			return &AbilityUseResult{
				Ability: id,
				Hints:   []*PerceptionHint{d.fabricateHint(id)},
			}
		}

		// fail silently; the perceiver learns nothing, not even that they
		// were blocked
		return &AbilityUseResult{Ability: id}
	}

	confidence := 50 + (p.Level-opp.Level)*5
	if p.abilities.cardsMarked {
		confidence += 25
	}
	confidence = clamp(confidence, 25, 95)

	if id == AbilityColdRead {
		successChance := clamp(55+(p.Level-opp.Level)*5, 25, 90)
		if d.rand.Intn(100) < successChance {
			ev, err := handeval.Evaluate(opp.hand)
			if err == nil {
				rank := ev.Rank
				return &AbilityUseResult{
					Ability: id,
					Hints: []*PerceptionHint{{
						Ability:    id,
						Strength:   bucketForEquity(d.handEquity(opp.hand, p.hand)),
						Exact:      &rank,
						Confidence: 100,
					}},
				}
			}
		}
		// a failed cold read degrades to an ordinary read
	}

	equity := d.handEquity(opp.hand, p.hand)

	// low confidence smears the estimate; the jitter can push the hint a
	// bucket or two off the truth
	jitter := float64(d.rand.Intn(100-confidence+1)-((100-confidence)/2)) / 150.0
	equity = clampFloat(equity+jitter, 0, 1)

	return &AbilityUseResult{
		Ability: id,
		Hints: []*PerceptionHint{{
			Ability:    id,
			Strength:   bucketForEquity(equity),
			Confidence: confidence,
		}},
	}
}

// fabricateHint synthesizes a confident, deliberately wrong read
func (d *Duel) fabricateHint(id AbilityID) *PerceptionHint {
	return &PerceptionHint{
		Ability:    id,
		Strength:   strengthBuckets[d.rand.Intn(len(strengthBuckets))],
		Confidence: 70 + d.rand.Intn(25),
		fabricated: true,
	}
}

// handEquity estimates how a five-card hand fares against random hands drawn
// from the cards neither player holds. Monte Carlo with the poker evaluator
// as the oracle; the engine knows both hands so both are excluded from the
// sample pool.
func (d *Duel) handEquity(hand, otherKnown deck.Hand) float64 {
	var hero [5]poker.Card
	for i, c := range hand {
		hero[i] = toLibCard(c)
	}
	heroScore := poker.Eval5(&hero)

	pool := make([]*deck.Card, 0, 42)
	for _, suit := range deck.Suits {
		for rank := 2; rank <= 14; rank++ {
			card := &deck.Card{Rank: rank, Suit: suit}
			if hand.HasCard(card) || otherKnown.HasCard(card) {
				continue
			}
			pool = append(pool, card)
		}
	}

	wins, ties := 0, 0
	var villain [5]poker.Card
	for n := 0; n < equitySamples; n++ {
		// partial Fisher-Yates for a 5-card sample
		for i := 0; i < 5; i++ {
			j := i + d.rand.Intn(len(pool)-i)
			pool[i], pool[j] = pool[j], pool[i]
			villain[i] = toLibCard(pool[i])
		}

		villainScore := poker.Eval5(&villain)
		if heroScore > villainScore {
			wins++
		} else if heroScore == villainScore {
			ties++
		}
	}

	return (float64(wins) + 0.5*float64(ties)) / float64(equitySamples)
}

// toLibCard maps a Destiny Deck card onto the poker evaluator's card space.
// The suit mapping is an arbitrary bijection; only rank structure matters.
func toLibCard(c *deck.Card) poker.Card {
	var s poker.Suit
	switch c.Suit {
	case deck.Cunning:
		s = poker.Club
	case deck.Spirit:
		s = poker.Heart
	case deck.Combat:
		s = poker.Spade
	default:
		s = poker.Diamond
	}

	// the evaluator wants aces as rank 1
	r := poker.Rank(c.Rank)
	if c.Rank == deck.Ace {
		r = poker.Rank(1)
	}

	card, err := poker.MakeCard(s, r)
	if err != nil {
		panic(err)
	}

	return card
}

func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func clampFloat(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
