package room

import (
	"github.com/sirupsen/logrus"
)

// PitBoss is responsible for dispatching duelists to their tables
type PitBoss struct {
	dealers    map[string]*Dealer
	connect    chan *Client
	disconnect chan *Client
}

// NewPitBoss returns a new dispatch object
func NewPitBoss() *PitBoss {
	return &PitBoss{
		dealers:    make(map[string]*Dealer),
		connect:    make(chan *Client, 256),
		disconnect: make(chan *Client, 256),
	}
}

// StartShift starts the PitBoss run loop
func (p *PitBoss) StartShift() {
	go p.runLoop()
}

func (p *PitBoss) runLoop() {
	for {
		select {
		case client := <-p.connect:
			logrus.WithField("client", client.String()).Debug("client connected")
			dealer, found := p.dealers[client.record.UUID]
			if !found {
				var err error
				dealer, err = NewDealer(p, client.record)
				if err != nil {
					logrus.WithError(err).WithField("duel", client.record.UUID).Error("could not seat dealer")
					client.Send(newErrorResponse("", err))
					go func() {
						client.Close <- err.Error()
					}()
					continue
				}

				dealer.StartShift()
				p.dealers[client.record.UUID] = dealer
			}

			dealer.AddClient(client)
		case client := <-p.disconnect:
			logrus.WithField("client", client.String()).Debug("client disconnected")
			dealer, found := p.dealers[client.record.UUID]
			if !found {
				logrus.WithField("duel", client.record.UUID).Error("duel not found")
				continue
			}

			if dealer.RemoveClient(client) {
				dealer.EndShift()
				delete(p.dealers, client.record.UUID)
			}
		}
	}
}

// ClientConnected is called when a client connects to the server
func (p *PitBoss) ClientConnected(client *Client) {
	p.connect <- client
}

// ClientDisconnected is called when a client disconnects from the server
func (p *PitBoss) ClientDisconnected(client *Client) {
	p.disconnect <- client
}
