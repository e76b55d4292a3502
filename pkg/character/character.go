package character

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"destinydeck-server/pkg/db"

	"github.com/lib/pq"
	"github.com/synacor/argon2id"
)

// starting stats for a freshly created character
const (
	startingGold      = 500
	startingEnergy    = 100
	startingMaxEnergy = 100
)

// jailRoundDuration is how long one jail round keeps a character away from
// the tables
const jailRoundDuration = time.Hour

const characterColumns = `
characters.id,
characters.email,
characters.display_name,
characters.is_game_master,
characters.level,
characters.xp,
characters.gold,
characters.energy,
characters.max_energy,
characters.reputation,
characters.jailed_until,
characters.password_hash,
characters.created,
characters.updated`

const pqDuplicateKeyErrorCode pq.ErrorCode = "23505"

// ErrInvalidEmailOrPassword is an error for an invalid email or password
var ErrInvalidEmailOrPassword = errors.New("invalid email address and/or password")

// ErrDuplicateKey happens if a user tries to create a character with a taken email
var ErrDuplicateKey = errors.New("duplicate key constraint violation")

// ErrCharacterJailed is an error if a jailed character tries to duel
var ErrCharacterJailed = UserError("you are in jail and cannot duel")

// Character is a record in the `characters` table
type Character struct {
	ID           int64  `json:"id"`
	Email        string `json:"-"`
	DisplayName  string `json:"displayName"`
	IsGameMaster bool   `json:"isGameMaster"`
	Level        int    `json:"level"`
	XP           int    `json:"xp"`
	Gold         int    `json:"gold"`
	Energy       int    `json:"energy"`
	MaxEnergy    int    `json:"maxEnergy"`
	Reputation   int    `json:"reputation"`
	JailedUntil  *time.Time `json:"jailedUntil,omitempty"`
	passwordHash string
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
}

func getCharacterByRow(row db.Scanner) (*Character, error) {
	var c Character
	var jailedUntil sql.NullTime
	if err := row.Scan(&c.ID, &c.Email, &c.DisplayName, &c.IsGameMaster, &c.Level, &c.XP,
		&c.Gold, &c.Energy, &c.MaxEnergy, &c.Reputation, &jailedUntil,
		&c.passwordHash, &c.Created, &c.Updated); err != nil {
		return nil, err
	}

	if jailedUntil.Valid {
		c.JailedUntil = &jailedUntil.Time
	}

	return &c, nil
}

// GetCharacterByID returns a character based on the ID
func GetCharacterByID(ctx context.Context, id int64) (*Character, error) {
	const query = `
SELECT ` + characterColumns + `
FROM characters
WHERE id = $1`

	row := db.Instance().QueryRowContext(ctx, query, id)
	return getCharacterByRow(row)
}

// GetCharacterByEmail will return a character by the email address
func GetCharacterByEmail(ctx context.Context, email string) (*Character, error) {
	const query = `
SELECT ` + characterColumns + `
FROM characters
WHERE lower(email) = lower($1)`

	row := db.Instance().QueryRowContext(ctx, query, email)
	return getCharacterByRow(row)
}

// GetCharacterByEmailAndPassword will return a character if the email and password are valid
func GetCharacterByEmailAndPassword(ctx context.Context, email, password string) (*Character, error) {
	c, err := GetCharacterByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			// prevent timing attacks
			_ = argon2id.Compare("", "")
			return nil, ErrInvalidEmailOrPassword
		}

		return nil, err
	}

	if err := argon2id.Compare(c.passwordHash, password); err != nil {
		return nil, ErrInvalidEmailOrPassword
	}

	return c, nil
}

// LastCharacterCreatedAt returns the last time a character was created by the remote address
// If one hasn't been created yet, this returns a nil error and a zero time.Time
func LastCharacterCreatedAt(ctx context.Context, remoteAddr string) (time.Time, error) {
	const query = `
SELECT MAX(created)
FROM characters
WHERE remote_addr = $1`

	var created sql.NullTime
	if err := db.Instance().QueryRowContext(ctx, query, remoteAddr).Scan(&created); err != nil {
		return time.Time{}, err
	}

	return created.Time, nil
}

// CreateCharacter creates a new character with the starting stats
func CreateCharacter(ctx context.Context, email, displayName, password, remoteAddr string) (*Character, error) {
	hashPassword, err := argon2id.DefaultHashPassword(password)
	if err != nil {
		return nil, err
	}

	const query = `
INSERT INTO characters (email, display_name, password_hash, gold, energy, max_energy, remote_addr)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + characterColumns

	row := db.Instance().QueryRowContext(ctx, query, email, displayName, hashPassword,
		startingGold, startingEnergy, startingMaxEnergy, remoteAddr)
	c, err := getCharacterByRow(row)
	if err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == pqDuplicateKeyErrorCode {
			return nil, ErrDuplicateKey
		}

		return nil, err
	}

	return c, nil
}

// SetPassword will set a new password
func (c *Character) SetPassword(password string) error {
	newHash, err := argon2id.DefaultHashPassword(password)
	if err != nil {
		return err
	}

	const query = `
UPDATE characters
SET password_hash = $1, updated = (NOW() AT TIME ZONE 'UTC')
WHERE id = $2`

	_, err = db.Instance().Exec(query, newHash, c.ID)
	return err
}

// Save persists changes to the email address and display name
func (c *Character) Save(ctx context.Context) error {
	const query = `
UPDATE characters
SET email = $1, display_name = $2, updated = (NOW() AT TIME ZONE 'UTC')
WHERE id = $3
RETURNING updated`

	var updated time.Time
	if err := db.Instance().QueryRowContext(ctx, query, c.Email, c.DisplayName, c.ID).Scan(&updated); err != nil {
		if err, ok := err.(*pq.Error); ok && err.Code == pqDuplicateKeyErrorCode {
			return ErrDuplicateKey
		}

		return err
	}

	c.Updated = updated
	return nil
}

// SetIsGameMaster sets whether the character can administer the site
func (c *Character) SetIsGameMaster(ctx context.Context, isGameMaster bool) error {
	if c.IsGameMaster == isGameMaster {
		return nil
	}

	const query = `
UPDATE characters
SET is_game_master = $1, updated = (NOW() AT TIME ZONE 'UTC')
WHERE id = $2
RETURNING updated`

	var updated sql.NullTime
	if err := db.Instance().QueryRowContext(ctx, query, isGameMaster, c.ID).Scan(&updated); err != nil {
		return err
	}

	c.IsGameMaster = isGameMaster
	c.Updated = updated.Time
	return nil
}

// CanDuel returns an error if the character is not currently allowed to duel
func (c *Character) CanDuel() error {
	if c.JailedUntil != nil && c.JailedUntil.After(time.Now()) {
		return ErrCharacterJailed
	}

	return nil
}

func getCharacters(rows *sql.Rows, err error) ([]*Character, error) {
	if err != nil {
		return nil, err
	}

	characters := make([]*Character, 0)
	for rows.Next() {
		c, err := getCharacterByRow(rows)
		if err != nil {
			return nil, err
		}

		characters = append(characters, c)
	}

	return characters, nil
}

// GetCharacters returns a list of characters
func GetCharacters(ctx context.Context, offset int64, limit int) ([]*Character, error) {
	const query = `
SELECT ` + characterColumns + `
FROM characters
ORDER BY id ASC
OFFSET $1
LIMIT $2`

	return getCharacters(db.Instance().QueryContext(ctx, query, offset, limit))
}

// GetCharactersWithSearch returns characters matching the search string
func GetCharactersWithSearch(ctx context.Context, search string, offset int64, limit int) ([]*Character, error) {
	if search == "" {
		return GetCharacters(ctx, offset, limit)
	}

	const query = `
SELECT ` + characterColumns + `
FROM characters
WHERE display_name LIKE $1 || '%' OR email LIKE $1 || '%'
ORDER BY id ASC
OFFSET $2
LIMIT $3`

	return getCharacters(db.Instance().QueryContext(ctx, query, search, offset, limit))
}
