package challenge

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"destinydeck-server/pkg/db"
	"destinydeck-server/pkg/duel"

	"github.com/google/uuid"
)

const duelColumns = `
duels.uuid,
duels.challenge_uuid,
duels.challenger_id,
duels.challenged_id,
duels.duel_type,
duels.wager,
duels.total_rounds,
duels.status,
duels.outcome,
duels.created,
duels.completed`

// DuelRecord is a row in the `duels` table. The live engine state never
// touches the database; only the pairing and, once finished, the archived
// outcome are persisted.
type DuelRecord struct {
	UUID          string      `json:"uuid"`
	ChallengeUUID string      `json:"challengeUuid,omitempty"`
	ChallengerID  int64       `json:"challengerId"`
	ChallengedID  int64       `json:"challengedId"`
	Type          duel.Type   `json:"type"`
	Wager         int         `json:"wager"`
	TotalRounds   int         `json:"totalRounds"`
	Status        duel.Status `json:"status"`
	Outcome       *duel.Outcome `json:"outcome,omitempty"`
	Created       time.Time   `json:"created"`
	Completed     *time.Time  `json:"completed,omitempty"`
}

func getDuelRecordByRow(row db.Scanner) (*DuelRecord, error) {
	var d DuelRecord
	var challengeUUID sql.NullString
	var outcome []byte
	var completed sql.NullTime
	if err := row.Scan(&d.UUID, &challengeUUID, &d.ChallengerID, &d.ChallengedID, &d.Type,
		&d.Wager, &d.TotalRounds, &d.Status, &outcome, &d.Created, &completed); err != nil {
		return nil, err
	}

	d.ChallengeUUID = challengeUUID.String
	if completed.Valid {
		d.Completed = &completed.Time
	}

	if len(outcome) > 0 {
		if err := json.Unmarshal(outcome, &d.Outcome); err != nil {
			return nil, err
		}
	}

	return &d, nil
}

func createDuelRecord(ctx context.Context, challengeUUID string, challengerID, challengedID int64, duelType duel.Type, wager, totalRounds int) (*DuelRecord, error) {
	const query = `
INSERT INTO duels (uuid, challenge_uuid, challenger_id, challenged_id, duel_type, wager, total_rounds, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + duelColumns

	var challenge interface{}
	if challengeUUID != "" {
		challenge = challengeUUID
	}

	row := db.Instance().QueryRowContext(ctx, query, uuid.New().String(), challenge,
		challengerID, challengedID, string(duelType), wager, totalRounds, string(duel.StatusAccepted))
	return getDuelRecordByRow(row)
}

// GetDuelRecordByUUID returns a duel record by its UUID
func GetDuelRecordByUUID(ctx context.Context, id string) (*DuelRecord, error) {
	const query = `
SELECT ` + duelColumns + `
FROM duels
WHERE uuid = $1`

	row := db.Instance().QueryRowContext(ctx, query, id)
	return getDuelRecordByRow(row)
}

// SetStatus updates the lifecycle status
func (d *DuelRecord) SetStatus(ctx context.Context, status duel.Status) error {
	const query = `
UPDATE duels
SET status = $1
WHERE uuid = $2`

	if _, err := db.Instance().ExecContext(ctx, query, string(status), d.UUID); err != nil {
		return err
	}

	d.Status = status
	return nil
}

// Archive stores the final outcome and closes the record
func (d *DuelRecord) Archive(ctx context.Context, status duel.Status, outcome *duel.Outcome) error {
	raw, err := json.Marshal(outcome)
	if err != nil {
		return err
	}

	if outcome == nil {
		raw = nil
	}

	const query = `
UPDATE duels
SET status = $1, outcome = $2, completed = (NOW() AT TIME ZONE 'UTC')
WHERE uuid = $3
RETURNING completed`

	var completed time.Time
	if err := db.Instance().QueryRowContext(ctx, query, string(status), raw, d.UUID).Scan(&completed); err != nil {
		return err
	}

	d.Status = status
	d.Outcome = outcome
	d.Completed = &completed
	return nil
}

// CreateRematch creates a fresh duel between the same pairing with the same
// stakes, skipping the challenge handshake
func (d *DuelRecord) CreateRematch(ctx context.Context) (*DuelRecord, error) {
	// the loser gets to deal first next time, so swap the seats
	return createDuelRecord(ctx, "", d.ChallengedID, d.ChallengerID, d.Type, d.Wager, d.TotalRounds)
}

// ActiveDuelForCharacter returns the character's unfinished duel, if any
func ActiveDuelForCharacter(ctx context.Context, characterID int64) (*DuelRecord, error) {
	const query = `
SELECT ` + duelColumns + `
FROM duels
WHERE (challenger_id = $1 OR challenged_id = $1)
  AND status IN ($2, $3)
ORDER BY created DESC
LIMIT 1`

	row := db.Instance().QueryRowContext(ctx, query, characterID,
		string(duel.StatusAccepted), string(duel.StatusInProgress))
	return getDuelRecordByRow(row)
}

// RecentDuelsForCharacter returns the character's duel history, newest first
func RecentDuelsForCharacter(ctx context.Context, characterID int64, offset int64, limit int) ([]*DuelRecord, error) {
	const query = `
SELECT ` + duelColumns + `
FROM duels
WHERE challenger_id = $1 OR challenged_id = $1
ORDER BY created DESC
OFFSET $2
LIMIT $3`

	rows, err := db.Instance().QueryContext(ctx, query, characterID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*DuelRecord, 0)
	for rows.Next() {
		record, err := getDuelRecordByRow(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}
