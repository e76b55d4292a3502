package duel

import (
	"destinydeck-server/pkg/deck"
)

// AbilityID identifies a duel ability
type AbilityID string

// ability constants
const (
	AbilityReadOpponent AbilityID = "read_opponent"
	AbilityColdRead     AbilityID = "cold_read"
	AbilityPokerFace    AbilityID = "poker_face"
	AbilityFalseTell    AbilityID = "false_tell"
	AbilityPeek         AbilityID = "peek"
	AbilityReroll       AbilityID = "reroll"
	AbilityMarkCards    AbilityID = "mark_cards"
	AbilityPalmCard     AbilityID = "palm_card"
)

type abilityCategory int

const (
	categoryPerception abilityCategory = iota
	categoryDefense
	categoryCard
	categoryCheat
)

type abilitySpec struct {
	Name            string
	EnergyCost      int
	Cooldown        int // rounds
	Category        abilityCategory
	DetectionChance int // percent, cheating abilities only
	MinLevel        int
	legalPhases     map[Phase]bool
}

var selectionAndBetting = map[Phase]bool{PhaseSelection: true, PhaseBetting: true}
var selectionOnly = map[Phase]bool{PhaseSelection: true}

var abilityCatalog = map[AbilityID]abilitySpec{
	AbilityReadOpponent: {
		Name:        "Read Opponent",
		EnergyCost:  15,
		Cooldown:    1,
		Category:    categoryPerception,
		MinLevel:    1,
		legalPhases: selectionAndBetting,
	},
	AbilityColdRead: {
		Name:        "Cold Read",
		EnergyCost:  30,
		Cooldown:    2,
		Category:    categoryPerception,
		MinLevel:    3,
		legalPhases: selectionAndBetting,
	},
	AbilityPokerFace: {
		Name:        "Poker Face",
		EnergyCost:  20,
		Cooldown:    2,
		Category:    categoryDefense,
		MinLevel:    1,
		legalPhases: selectionAndBetting,
	},
	AbilityFalseTell: {
		Name:        "False Tell",
		EnergyCost:  15,
		Cooldown:    1,
		Category:    categoryDefense,
		MinLevel:    3,
		legalPhases: selectionAndBetting,
	},
	AbilityPeek: {
		Name:        "Peek",
		EnergyCost:  10,
		Cooldown:    1,
		Category:    categoryCard,
		MinLevel:    2,
		legalPhases: selectionOnly,
	},
	AbilityReroll: {
		Name:        "Reroll",
		EnergyCost:  25,
		Cooldown:    2,
		Category:    categoryCard,
		MinLevel:    4,
		legalPhases: selectionOnly,
	},
	AbilityMarkCards: {
		Name:            "Mark Cards",
		EnergyCost:      20,
		Cooldown:        3,
		Category:        categoryCheat,
		DetectionChance: 25,
		MinLevel:        5,
		legalPhases:     selectionOnly,
	},
	AbilityPalmCard: {
		Name:            "Palm Card",
		EnergyCost:      35,
		Cooldown:        3,
		Category:        categoryCheat,
		DetectionChance: 35,
		MinLevel:        6,
		legalPhases:     selectionOnly,
	},
}

// canonical display order
var abilityOrder = []AbilityID{
	AbilityReadOpponent,
	AbilityPokerFace,
	AbilityPeek,
	AbilityColdRead,
	AbilityFalseTell,
	AbilityReroll,
	AbilityMarkCards,
	AbilityPalmCard,
}

func abilitiesForLevel(level int) []AbilityID {
	ids := make([]AbilityID, 0, len(abilityOrder))
	for _, id := range abilityOrder {
		if level >= abilityCatalog[id].MinLevel {
			ids = append(ids, id)
		}
	}

	return ids
}

// AbilityState is the uniform energy and cooldown record consumed by the
// ability engine. Individual abilities never get their own state machinery;
// everything flows through this record plus variant dispatch.
type AbilityState struct {
	Available []AbilityID       `json:"available"`
	Cooldowns map[AbilityID]int `json:"cooldowns"`
	Energy    int               `json:"energy"`
	MaxEnergy int               `json:"maxEnergy"`

	// PokerFaceRounds blocks the opponent's perception while > 0
	PokerFaceRounds int `json:"pokerFaceRounds"`

	// secrets the opponent must never see in a projection
	falseTellArmed bool
	cardsMarked    bool
}

func newAbilityState(level, energy, maxEnergy int) *AbilityState {
	return &AbilityState{
		Available: abilitiesForLevel(level),
		Cooldowns: make(map[AbilityID]int),
		Energy:    energy,
		MaxEnergy: maxEnergy,
	}
}

func (s *AbilityState) knows(id AbilityID) bool {
	for _, a := range s.Available {
		if a == id {
			return true
		}
	}

	return false
}

// endRound decrements every cooldown and the poker face window by one round
// and restores energy
func (s *AbilityState) endRound(regen int) {
	for id, remaining := range s.Cooldowns {
		if remaining <= 1 {
			delete(s.Cooldowns, id)
		} else {
			s.Cooldowns[id] = remaining - 1
		}
	}

	if s.PokerFaceRounds > 0 {
		s.PokerFaceRounds--
	}

	s.Energy += regen
	if s.Energy > s.MaxEnergy {
		s.Energy = s.MaxEnergy
	}
}

// AbilityUseResult is what an ability invocation produced. Only the invoker
// sees this; state fan-out stays asymmetric.
type AbilityUseResult struct {
	Ability    AbilityID         `json:"ability"`
	Hints      []*PerceptionHint `json:"hints,omitempty"`
	Card       *deck.Card        `json:"card,omitempty"`
	Cheat      *CheatOutcome     `json:"cheat,omitempty"`
	EnergyLeft int               `json:"energyLeft"`
}

// useAbility validates and resolves one ability invocation. All rejections
// are non-fatal; the player may retry before their window closes.
func (d *Duel) useAbility(p, opp *Participant, id AbilityID, target int) (*AbilityUseResult, error) {
	spec, ok := abilityCatalog[id]
	if !ok || !p.abilities.knows(id) {
		return nil, ErrAbilityNotKnown
	}

	if !spec.legalPhases[d.phase] {
		return nil, ErrInvalidPhaseAction
	}

	if d.round.turnID != 0 && d.round.turnID != p.CharacterID {
		return nil, ErrNotYourTurn
	}

	if p.abilities.Cooldowns[id] > 0 {
		return nil, ErrAbilityOnCooldown
	}

	if p.abilities.Energy < spec.EnergyCost {
		return nil, ErrInsufficientEnergy
	}

	var result *AbilityUseResult
	var err error

	switch spec.Category {
	case categoryPerception:
		result = d.perceive(p, opp, id)
	case categoryDefense:
		result = d.applyDefense(p, id)
	case categoryCard:
		result, err = d.applyCardAbility(p, id, target)
	case categoryCheat:
		result = d.attemptCheat(p, opp, id, spec)
	default:
		panic("unknown ability category")
	}

	if err != nil {
		return nil, err
	}

	p.abilities.Energy -= spec.EnergyCost
	p.abilities.Cooldowns[id] = spec.Cooldown
	p.recordAction(spec.Name, 0)
	result.EnergyLeft = p.abilities.Energy

	return result, nil
}

func (d *Duel) applyDefense(p *Participant, id AbilityID) *AbilityUseResult {
	switch id {
	case AbilityPokerFace:
		p.abilities.PokerFaceRounds = 2
	case AbilityFalseTell:
		p.abilities.falseTellArmed = true
	}

	return &AbilityUseResult{Ability: id}
}

func (d *Duel) applyCardAbility(p *Participant, id AbilityID, target int) (*AbilityUseResult, error) {
	switch id {
	case AbilityPeek:
		// a glance at the top of the deck without drawing
		if !d.deck.CanDraw(1) {
			return nil, ErrInvalidPhaseAction
		}

		return &AbilityUseResult{Ability: id, Card: d.deck.Cards[0]}, nil

	case AbilityReroll:
		if target < 0 || target >= len(p.hand) {
			return nil, &Error{Code: "invalid_target", Message: "reroll target must be a card index between 0 and 4"}
		}

		card, err := d.deck.Draw()
		if err != nil {
			return nil, &Error{Code: "deck_exhausted", Message: "no cards left to draw"}
		}

		p.hand[target] = card
		return &AbilityUseResult{Ability: id, Card: card}, nil
	}

	panic("unknown card ability")
}
