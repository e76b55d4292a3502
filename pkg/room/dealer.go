package room

import (
	"context"
	"sync"
	"time"

	"destinydeck-server/internal/config"
	"destinydeck-server/pkg/challenge"
	"destinydeck-server/pkg/character"
	"destinydeck-server/pkg/duel"
	"destinydeck-server/pkg/game"

	"github.com/sirupsen/logrus"
)

// Game is what the dealer needs from a running duel
type Game interface {
	game.Game
	game.Tickable
	SetConnected(characterID int64, connected bool) bool
	RematchRequested() bool
	Status() duel.Status
	Outcome() *duel.Outcome
}

var _ Game = (*duel.Duel)(nil)

// Dealer runs a single duel. All game mutation happens on the dealer's run
// loop, so the engine itself never needs locking.
type Dealer struct {
	pitBoss *PitBoss
	record  *challenge.DuelRecord
	clients map[*Client]bool
	lock    sync.RWMutex
	game    Game

	logMessages []*game.LogMessage
	settled     bool

	execInRunLoop chan func()
	close         chan bool
}

// NewDealer creates a new dealer for the duel record.
// This is called from a blocking state, so it needs to return quickly.
func NewDealer(pitBoss *PitBoss, record *challenge.DuelRecord) (*Dealer, error) {
	g, err := newDuelGame(record)
	if err != nil {
		return nil, err
	}

	return &Dealer{
		pitBoss:       pitBoss,
		record:        record,
		clients:       make(map[*Client]bool),
		game:          g,
		execInRunLoop: make(chan func(), 256),
		close:         make(chan bool),
	}, nil
}

// newDuelGame builds the engine from fresh character snapshots
func newDuelGame(record *challenge.DuelRecord) (*duel.Duel, error) {
	ctx := context.Background()

	challenger, err := character.GetCharacterByID(ctx, record.ChallengerID)
	if err != nil {
		return nil, err
	}

	challenged, err := character.GetCharacterByID(ctx, record.ChallengedID)
	if err != nil {
		return nil, err
	}

	for _, c := range []*character.Character{challenger, challenged} {
		if err := c.CanDuel(); err != nil {
			return nil, err
		}
	}

	opts := duel.DefaultOptions()
	opts.Type = record.Type
	opts.Wager = record.Wager
	opts.TotalRounds = record.TotalRounds

	timing := config.Instance().Duel
	if timing.TurnTimeLimit > 0 {
		opts.TurnTimeLimit = time.Duration(timing.TurnTimeLimit) * time.Second
	}
	if timing.ReadyTimeout > 0 {
		opts.ReadyTimeout = time.Duration(timing.ReadyTimeout) * time.Second
	}
	if timing.ReconnectGrace > 0 {
		opts.ReconnectGrace = time.Duration(timing.ReconnectGrace) * time.Second
	}

	return duel.NewDuel(logrus.WithField("duel", record.UUID), characterRef(challenger), characterRef(challenged), opts)
}

func characterRef(c *character.Character) duel.CharacterRef {
	return duel.CharacterRef{
		ID:        c.ID,
		Name:      c.DisplayName,
		Level:     c.Level,
		Gold:      c.Gold,
		Energy:    c.Energy,
		MaxEnergy: c.MaxEnergy,
	}
}

// Clients will return a slice of connected (at the time) clients
func (d *Dealer) Clients() []*Client {
	d.lock.RLock()
	defer d.lock.RUnlock()

	clients := make([]*Client, 0, len(d.clients))
	for client := range d.clients {
		clients = append(clients, client)
	}

	return clients
}

// StartShift starts the run loop
func (d *Dealer) StartShift() {
	go d.runLoop()
}

func (d *Dealer) runLoop() {
	log := logrus.WithField("duel", d.record.UUID)
	log.Debug("creating dealer run loop")

	ticker := time.NewTicker(d.game.Delay())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.tick()
		case msgs := <-d.game.LogChan():
			d.addLogMessages(msgs)
			d.broadcast(&game.Response{Key: "logs", Data: msgs})
		case fn := <-d.execInRunLoop:
			fn()
		case <-d.close:
			log.Debug("terminating dealer run loop")
			return
		}
	}
}

// NOTE: must only be called from the run loop
func (d *Dealer) tick() {
	changed, err := d.game.Tick()
	if err != nil {
		logrus.WithError(err).WithField("duel", d.record.UUID).Error("tick failed")
		return
	}

	if changed {
		d.sendGameData()
	}

	d.checkGameOver()
}

// checkGameOver archives the outcome and settles character rewards exactly
// once per duel
// NOTE: must only be called from the run loop
func (d *Dealer) checkGameOver() {
	if d.settled {
		return
	}

	details, isOver := d.game.GetEndOfGameDetails()
	if !isOver {
		return
	}

	ctx := context.Background()
	if err := d.record.Archive(ctx, d.game.Status(), d.game.Outcome()); err != nil {
		logrus.WithError(err).WithField("duel", d.record.UUID).Error("could not archive duel")
	}

	if len(details.Rewards) > 0 {
		if err := character.ApplyOutcome(ctx, details.Rewards); err != nil {
			logrus.WithError(err).WithField("duel", d.record.UUID).Error("could not settle rewards")
		}
	}

	d.settled = true
	d.sendGameEnded()
}

// maybeStartRematch swaps in a fresh duel once both players have asked for one
// NOTE: must only be called from the run loop
func (d *Dealer) maybeStartRematch() {
	if !d.settled || !d.game.RematchRequested() {
		return
	}

	record, err := d.record.CreateRematch(context.Background())
	if err != nil {
		logrus.WithError(err).WithField("duel", d.record.UUID).Error("could not create rematch")
		return
	}

	g, err := newDuelGame(record)
	if err != nil {
		logrus.WithError(err).WithField("duel", record.UUID).Error("could not start rematch")
		d.broadcast(newErrorResponse("", err))
		return
	}

	d.record = record
	d.game = g
	d.settled = false
	d.logMessages = nil

	for _, client := range d.Clients() {
		g.SetConnected(client.character.ID, true)
	}

	d.sendGameData()
}

// AddClient adds a client
// This method must return quickly
func (d *Dealer) AddClient(client *Client) {
	d.lock.Lock()
	client.dealer = d
	d.clients[client] = true
	d.lock.Unlock()

	d.execInRunLoop <- func() {
		d.game.SetConnected(client.character.ID, true)

		if len(d.logMessages) > 0 {
			client.Send(&game.Response{Key: "logs", Data: d.logMessages})
		}

		d.sendGameData()
	}
}

// RemoveClient removes a client
// This method must return quickly
func (d *Dealer) RemoveClient(client *Client) (lastClient bool) {
	d.lock.Lock()
	delete(d.clients, client)
	nClients := len(d.clients)
	d.lock.Unlock()

	if nClients > 0 {
		d.execInRunLoop <- func() {
			d.game.SetConnected(client.character.ID, false)
			d.sendGameData()
		}

		return false
	}

	return true
}

// EndShift is called when the dealer is no longer needed
func (d *Dealer) EndShift() {
	close(d.close)
}

// NOTE: must only be called from the run loop
func (d *Dealer) sendGameEnded() {
	d.broadcast(&game.Response{
		Key:  "gameEnded",
		Data: d.game.Outcome(),
	})
}

// NOTE: must only be called from the run loop
func (d *Dealer) sendGameData() {
	for _, client := range d.Clients() {
		data, err := d.game.GetPlayerState(client.character.ID)
		if err != nil {
			logrus.WithError(err).WithField("client", client.String()).Error("could not get player state")
			continue
		}

		client.Send(data)
	}
}

func (d *Dealer) broadcast(msg interface{}) {
	for _, client := range d.Clients() {
		client.Send(msg)
	}
}

// ReceivedMessage is called when a client sends a message to the server
func (d *Dealer) ReceivedMessage(c *Client, msg *game.PayloadIn) {
	d.execInRunLoop <- func() {
		response, updateState, err := d.game.Action(c.character.ID, msg)
		if err != nil {
			logrus.WithError(err).WithField("client", c.String()).Debug("could not perform action")
			c.Send(newErrorResponse(msg.Context, err))
			return
		}

		if response != nil {
			response.Context = msg.Context
			c.Send(response)
		}

		if updateState {
			d.sendGameData()
		}

		d.checkGameOver()
		d.maybeStartRematch()
	}
}
