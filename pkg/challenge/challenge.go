package challenge

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"destinydeck-server/pkg/db"
	"destinydeck-server/pkg/duel"
	"destinydeck-server/pkg/token"

	"github.com/google/uuid"
)

// challengeTTL is how long a pending challenge may sit before it expires
const challengeTTL = time.Hour * 24

const challengeColumns = `
challenges.uuid,
challenges.challenger_id,
challenges.challenged_id,
challenges.duel_type,
challenges.wager,
challenges.total_rounds,
challenges.status,
challenges.invite_token,
challenges.created,
challenges.updated`

// ErrChallengeNotPending happens when accepting or declining a settled challenge
var ErrChallengeNotPending = errors.New("challenge is no longer pending")

// ErrChallengeExpired happens when accepting a challenge past its TTL
var ErrChallengeExpired = errors.New("challenge has expired")

// ErrNotChallenged happens when someone other than the challenged party responds
var ErrNotChallenged = errors.New("this challenge is not addressed to you")

// Challenge is a record in the `challenges` table
type Challenge struct {
	UUID         string      `json:"uuid"`
	ChallengerID int64       `json:"challengerId"`
	ChallengedID int64       `json:"challengedId"` // 0 for an open invite-token challenge
	Type         duel.Type   `json:"type"`
	Wager        int         `json:"wager"`
	TotalRounds  int         `json:"totalRounds"`
	Status       duel.Status `json:"status"`
	InviteToken  string      `json:"-"`
	Created      time.Time   `json:"created"`
	Updated      time.Time   `json:"updated"`
}

// Notification is a pending challenge decorated for delivery to the
// challenged player
type Notification struct {
	*Challenge
	ChallengerName string `json:"challengerName"`
}

func getChallengeByRow(row db.Scanner) (*Challenge, error) {
	var c Challenge
	var challengedID sql.NullInt64
	if err := row.Scan(&c.UUID, &c.ChallengerID, &challengedID, &c.Type, &c.Wager,
		&c.TotalRounds, &c.Status, &c.InviteToken, &c.Created, &c.Updated); err != nil {
		return nil, err
	}

	c.ChallengedID = challengedID.Int64
	return &c, nil
}

// CreateChallenge issues a challenge from one character to another. When
// challengedID is 0 the challenge is open and can only be accepted through
// its invite token.
func CreateChallenge(ctx context.Context, challengerID, challengedID int64, duelType duel.Type, wager, totalRounds int) (*Challenge, error) {
	inviteToken, err := token.Generate(20)
	if err != nil {
		return nil, err
	}

	const query = `
INSERT INTO challenges (uuid, challenger_id, challenged_id, duel_type, wager, total_rounds, status, invite_token)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + challengeColumns

	var challenged interface{}
	if challengedID > 0 {
		challenged = challengedID
	}

	row := db.Instance().QueryRowContext(ctx, query, uuid.New().String(), challengerID, challenged,
		string(duelType), wager, totalRounds, string(duel.StatusPending), inviteToken)
	return getChallengeByRow(row)
}

// GetChallengeByUUID returns a challenge by its UUID
func GetChallengeByUUID(ctx context.Context, id string) (*Challenge, error) {
	const query = `
SELECT ` + challengeColumns + `
FROM challenges
WHERE uuid = $1`

	row := db.Instance().QueryRowContext(ctx, query, id)
	return getChallengeByRow(row)
}

// GetChallengeByInviteToken returns a challenge by its invite token
func GetChallengeByInviteToken(ctx context.Context, inviteToken string) (*Challenge, error) {
	const query = `
SELECT ` + challengeColumns + `
FROM challenges
WHERE invite_token = $1`

	row := db.Instance().QueryRowContext(ctx, query, inviteToken)
	return getChallengeByRow(row)
}

// Expired returns true once the pending window has closed
func (c *Challenge) Expired() bool {
	return time.Since(c.Created) > challengeTTL
}

// Accept accepts the challenge on behalf of the character and creates the
// duel record the websocket room will run
func (c *Challenge) Accept(ctx context.Context, characterID int64) (*DuelRecord, error) {
	if c.Status != duel.StatusPending {
		return nil, ErrChallengeNotPending
	}

	if c.Expired() {
		_ = c.setStatus(ctx, duel.StatusExpired)
		return nil, ErrChallengeExpired
	}

	if c.ChallengedID != 0 && c.ChallengedID != characterID {
		return nil, ErrNotChallenged
	}

	if c.ChallengerID == characterID {
		return nil, ErrNotChallenged
	}

	record, err := createDuelRecord(ctx, c.UUID, c.ChallengerID, characterID, c.Type, c.Wager, c.TotalRounds)
	if err != nil {
		return nil, err
	}

	if err := c.setStatus(ctx, duel.StatusAccepted); err != nil {
		return nil, err
	}

	return record, nil
}

// Decline declines the challenge
func (c *Challenge) Decline(ctx context.Context, characterID int64) error {
	if c.Status != duel.StatusPending {
		return ErrChallengeNotPending
	}

	if c.ChallengedID != 0 && c.ChallengedID != characterID {
		return ErrNotChallenged
	}

	return c.setStatus(ctx, duel.StatusDeclined)
}

func (c *Challenge) setStatus(ctx context.Context, status duel.Status) error {
	const query = `
UPDATE challenges
SET status = $1, updated = (NOW() AT TIME ZONE 'UTC')
WHERE uuid = $2
RETURNING updated`

	var updated time.Time
	if err := db.Instance().QueryRowContext(ctx, query, string(status), c.UUID).Scan(&updated); err != nil {
		return err
	}

	c.Status = status
	c.Updated = updated
	return nil
}

// ExpireStale marks every pending challenge past its TTL as expired and
// returns how many were closed
func ExpireStale(ctx context.Context) (int64, error) {
	const query = `
UPDATE challenges
SET status = $1, updated = (NOW() AT TIME ZONE 'UTC')
WHERE status = $2
  AND created < $3`

	res, err := db.Instance().ExecContext(ctx, query, string(duel.StatusExpired), string(duel.StatusPending),
		time.Now().In(time.UTC).Add(-challengeTTL))
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// PendingForCharacter returns pending challenges addressed to the character,
// newest first. These are the challenge notifications.
func PendingForCharacter(ctx context.Context, characterID int64, offset int64, limit int) ([]*Notification, error) {
	const query = `
SELECT ` + challengeColumns + `, characters.display_name
FROM challenges
INNER JOIN characters ON characters.id = challenges.challenger_id
WHERE challenges.challenged_id = $1
  AND challenges.status = $2
ORDER BY challenges.created DESC
OFFSET $3
LIMIT $4`

	rows, err := db.Instance().QueryContext(ctx, query, characterID, string(duel.StatusPending), offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*Notification, 0)
	for rows.Next() {
		var c Challenge
		var challengedID sql.NullInt64
		var challengerName string
		if err := rows.Scan(&c.UUID, &c.ChallengerID, &challengedID, &c.Type, &c.Wager,
			&c.TotalRounds, &c.Status, &c.InviteToken, &c.Created, &c.Updated, &challengerName); err != nil {
			return nil, err
		}

		c.ChallengedID = challengedID.Int64
		notifications = append(notifications, &Notification{Challenge: &c, ChallengerName: challengerName})
	}

	return notifications, nil
}
