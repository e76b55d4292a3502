package character

import (
	"context"
	"database/sql"
	"time"

	"destinydeck-server/pkg/db"
	"destinydeck-server/pkg/game"
)

// maxLevel caps character progression
const maxLevel = 10

// xpForLevel is the total experience needed to reach the given level.
// Level 1 is free; each step up costs 100 more than the last.
func xpForLevel(level int) int {
	if level <= 1 {
		return 0
	}

	steps := level - 1
	return 100 * steps * (steps + 1) / 2
}

// LevelForXP returns the level a character with the given experience holds
func LevelForXP(xp int) int {
	level := 1
	for level < maxLevel && xp >= xpForLevel(level+1) {
		level++
	}

	return level
}

// ApplyOutcome settles a finished duel against the character records in one
// transaction: gold, experience, reputation, and any jail time. A duelist
// also leaves the table rested, so energy comes back to full.
func ApplyOutcome(ctx context.Context, rewards map[int64]*game.Reward) error {
	tx, err := db.Instance().BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for id, reward := range rewards {
		if err := applyReward(ctx, tx, id, reward); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func applyReward(ctx context.Context, tx *sql.Tx, characterID int64, reward *game.Reward) error {
	const query = `
UPDATE characters
SET gold       = GREATEST(gold + $1, 0),
    xp         = xp + $2,
    reputation = reputation + $3,
    energy     = max_energy,
    updated    = (NOW() AT TIME ZONE 'UTC')
WHERE id = $4
RETURNING xp`

	var xp int
	if err := tx.QueryRowContext(ctx, query, reward.Gold, reward.XP, reward.Reputation, characterID).Scan(&xp); err != nil {
		return err
	}

	const levelQuery = `
UPDATE characters
SET level = $1
WHERE id = $2`

	if _, err := tx.ExecContext(ctx, levelQuery, LevelForXP(xp), characterID); err != nil {
		return err
	}

	if reward.JailRounds > 0 {
		return jail(ctx, tx, characterID, reward.JailRounds)
	}

	return nil
}

// jail extends the character's sentence; time already being served counts
func jail(ctx context.Context, tx *sql.Tx, characterID int64, rounds int) error {
	const query = `
UPDATE characters
SET jailed_until = GREATEST(COALESCE(jailed_until, NOW() AT TIME ZONE 'UTC'), NOW() AT TIME ZONE 'UTC') + $1::interval
WHERE id = $2`

	interval := time.Duration(rounds) * jailRoundDuration
	_, err := tx.ExecContext(ctx, query, interval.String(), characterID)
	return err
}
