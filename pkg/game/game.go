// Package game defines the contract between the room layer and a playable
// duel. The room never reaches into game state; everything flows through
// Action, GetPlayerState, and the log channel.
package game

import (
	"fmt"
	"time"

	"destinydeck-server/pkg/deck"

	"github.com/google/uuid"
)

// Game is a duel (or any future game mode) that a dealer can run
type Game interface {
	// Action performs a message on behalf of the character
	// If playerResponse is not nil, that's the response sent directly to the client
	// If updateState is true, the dealer will fan out fresh state to all connected clients
	Action(characterID int64, message *PayloadIn) (playerResponse *Response, updateState bool, err error)

	// GetPlayerState returns the current state of the game projected for the character
	GetPlayerState(characterID int64) (*Response, error)

	// GetEndOfGameDetails returns the details after a game is over
	// If the game is still in progress, nil will be returned and the second param will be false
	GetEndOfGameDetails() (details *OverDetails, isOver bool)

	// Name returns the name of the game
	Name() string

	// LogChan should return a channel that a game will send log messages to
	LogChan() <-chan []*LogMessage
}

// Tickable allows a periodic tick to update the game state
type Tickable interface {
	// Delay is how long the wait between each tick should be
	Delay() time.Duration

	// Tick will be called periodically
	// Return true if the dealer should fan out updated state
	Tick() (bool, error)
}

// Response is a message destined for a client
type Response struct {
	Key     string      `json:"key"`
	Value   string      `json:"value"`
	Data    interface{} `json:"data"`
	Context string      `json:"context"`
}

// OK returns a generic success response
func OK(ctx ...string) *Response {
	res := &Response{
		Key:   "status",
		Value: "OK",
	}

	if len(ctx) == 1 {
		res.Context = ctx[0]
	}

	return res
}

// PayloadIn is the format we expect from the client
type PayloadIn struct {
	Action         string         `json:"action"`
	AdditionalData AdditionalData `json:"additionalData"`
	// Context will be passed back on any outgoing message
	Context string `json:"context"`
}

// Reward is the per-character settlement owed to the character service when
// a game completes
type Reward struct {
	Gold       int `json:"gold"`
	XP         int `json:"xp"`
	Reputation int `json:"reputation"`
	JailRounds int `json:"jailRounds"`
}

// OverDetails provides details on how the game ended
type OverDetails struct {
	WinnerID int64
	Rewards  map[int64]*Reward
	Log      interface{}
}

// AdditionalData provides additional data in a payload
type AdditionalData map[string]interface{}

// GetString returns a string for the given key
func (a AdditionalData) GetString(key string) (string, bool) {
	s, ok := a[key].(string)
	return s, ok
}

// GetInt returns an integer value for the given key
func (a AdditionalData) GetInt(key string) (int, bool) {
	floatVal, ok := a[key].(float64)
	if !ok {
		return 0, false
	}

	return int(floatVal), true
}

// GetBool returns a boolean value for the given key
func (a AdditionalData) GetBool(key string) (bool, bool) {
	boolVal, ok := a[key].(bool)
	return boolVal, ok
}

// GetIntSlice returns a slice of integers
func (a AdditionalData) GetIntSlice(key string) ([]int, bool) {
	switch slice := a[key].(type) {
	case []float64:
		ints := make([]int, len(slice))
		for i, val := range slice {
			ints[i] = int(val)
		}
		return ints, true
	case []interface{}:
		ints := make([]int, len(slice))
		for i, val := range slice {
			floatVal, ok := val.(float64)
			if !ok {
				return nil, false
			}

			ints[i] = int(floatVal)
		}
		return ints, true
	}

	return nil, false
}

// LogMessage is the format a game should send log messages in
// If CharacterIDs is empty, assume it's a general statement
type LogMessage struct {
	UUID         string       `json:"uuid"`
	CharacterIDs []int64      `json:"characterIds"`
	Cards        []*deck.Card `json:"cards"`
	Message      string       `json:"message"`
	Time         time.Time    `json:"time"`
}

// SimpleLogMessage returns a new LogMessage
func SimpleLogMessage(characterID int64, format string, a ...interface{}) *LogMessage {
	var characterIDs []int64
	if characterID > 0 {
		characterIDs = []int64{characterID}
	}

	return &LogMessage{
		UUID:         uuid.New().String(),
		CharacterIDs: characterIDs,
		Message:      fmt.Sprintf(format, a...),
		Time:         time.Now(),
	}
}

// SimpleLogMessageSlice returns a single log message in a slice
func SimpleLogMessageSlice(characterID int64, format string, a ...interface{}) []*LogMessage {
	return []*LogMessage{SimpleLogMessage(characterID, format, a...)}
}
