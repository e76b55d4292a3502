package room

import (
	"fmt"

	"destinydeck-server/pkg/challenge"
	"destinydeck-server/pkg/character"
	"destinydeck-server/pkg/game"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client is a character connected to a duel via websockets
type Client struct {
	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// send is a channel for sending messages to the client
	send chan interface{}

	// Close is a channel for closing the client
	Close chan string

	// CloseError contains the reason why the connection was closed
	CloseError error

	dealer *Dealer

	character *character.Character
	record    *challenge.DuelRecord
}

// NewClient returns a new client object
func NewClient(conn *websocket.Conn, c *character.Character, record *challenge.DuelRecord) *Client {
	return &Client{
		send:      make(chan interface{}, 256),
		Close:     make(chan string),
		Conn:      conn,
		character: c,
		record:    record,
	}
}

// Send sends a message to the web client without blocking.
// Returns false if the client's buffer is full and the message was dropped.
func (c *Client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// SendChan returns a read-only channel of outbound messages
func (c *Client) SendChan() <-chan interface{} {
	return c.send
}

// String returns a traceable identifier for the character and duel
func (c *Client) String() string {
	return fmt.Sprintf("%s:%s", c.character.Email, c.record.UUID)
}

// ReceivedMessage is called when the server receives a message from a connected client
func (c *Client) ReceivedMessage(msg *game.PayloadIn) {
	if c.dealer == nil {
		logrus.WithField("msg", msg).Warn("received message, but dealer not found")
		return
	}

	c.dealer.ReceivedMessage(c, msg)
}
