package duel

import "destinydeck-server/pkg/game"

// cheat penalties on detection
const (
	cheatGoldPenalty       = 50
	cheatReputationPenalty = 10
	palmCardJailRounds     = 2
)

// CheatOutcome is the resolution of one cheating attempt. Detection is
// rolled independently per attempt; a detected cheat voids the advantage and
// carries gold, reputation, and possibly jail consequences applied by the
// character service when the duel settles.
type CheatOutcome struct {
	Ability           AbilityID `json:"ability"`
	Detected          bool      `json:"detected"`
	GoldPenalty       int       `json:"goldPenalty,omitempty"`
	ReputationPenalty int       `json:"reputationPenalty,omitempty"`
	JailRounds        int       `json:"jailRounds,omitempty"`
}

func (d *Duel) attemptCheat(p, opp *Participant, id AbilityID, spec abilitySpec) *AbilityUseResult {
	outcome := &CheatOutcome{Ability: id}

	if d.rand.Intn(100) < spec.DetectionChance {
		outcome.Detected = true
		outcome.GoldPenalty = cheatGoldPenalty
		outcome.ReputationPenalty = cheatReputationPenalty
		if id == AbilityPalmCard {
			outcome.JailRounds = palmCardJailRounds
		}

		d.recordPenalty(p.CharacterID, outcome)
		d.cheatNotices = append(d.cheatNotices, &cheatNotice{
			CheaterID: p.CharacterID,
			Outcome:   outcome,
		})
		d.sendLogMessages(game.SimpleLogMessageSlice(p.CharacterID, "%s was caught cheating!", p.Name))

		return &AbilityUseResult{Ability: id, Cheat: outcome}
	}

	result := &AbilityUseResult{Ability: id, Cheat: outcome}

	switch id {
	case AbilityMarkCards:
		// marked cards sharpen every later read this duel
		p.abilities.cardsMarked = true

	case AbilityPalmCard:
		// quietly swap out the weakest card
		if card, err := d.deck.Draw(); err == nil {
			lowest := 0
			for i, c := range p.hand {
				if c.Rank < p.hand[lowest].Rank {
					lowest = i
				}
			}

			p.hand[lowest] = card
			result.Card = card
		}
	}

	return result
}

// recordPenalty accumulates detection consequences to settle with the
// character service at duel end
func (d *Duel) recordPenalty(characterID int64, outcome *CheatOutcome) {
	reward, ok := d.penalties[characterID]
	if !ok {
		reward = &game.Reward{}
		d.penalties[characterID] = reward
	}

	reward.Gold -= outcome.GoldPenalty
	reward.Reputation -= outcome.ReputationPenalty
	reward.JailRounds += outcome.JailRounds
}

// cheatNotice is broadcast to both players when a cheat is detected
type cheatNotice struct {
	CheaterID int64         `json:"cheaterId"`
	Outcome   *CheatOutcome `json:"outcome"`
}
