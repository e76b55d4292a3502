package room

import "destinydeck-server/pkg/game"

const logMessageLimit = 25

// addLogMessages appends messages to the rolling table log
// Note: this must only be called from within the run loop
func (d *Dealer) addLogMessages(messages []*game.LogMessage) {
	m := append(d.logMessages, messages...)
	count := len(m)
	if count > logMessageLimit {
		m = m[count-logMessageLimit:]
	}

	d.logMessages = m
}
