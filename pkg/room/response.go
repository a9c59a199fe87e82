package room

import (
	"recall-server/pkg/playable"
	"recall-server/pkg/recall"
)

// gameState is sent to a client on every state change
type gameState struct {
	*recall.Snapshot
	LogMessages []*playable.LogMessage `json:"logMessages"`
}

// AddClient connects a client to the match
// This method must return quickly
func (m *Match) AddClient(client *Client) {
	m.lock.Lock()
	client.match = m
	m.clients[client] = true
	m.lock.Unlock()

	m.post(func() {
		m.round.SetConnected(client.playerID, true)
		client.Send(m.gameState(client.playerID))
	})
}

// RemoveClient disconnects a client
// The seat is reported disconnected once its last client is gone
func (m *Match) RemoveClient(client *Client) (lastClient bool) {
	m.lock.Lock()
	delete(m.clients, client)
	seatConnected := false
	for c := range m.clients {
		if c.playerID == client.playerID {
			seatConnected = true
			break
		}
	}
	nClients := len(m.clients)
	m.lock.Unlock()

	if !seatConnected {
		m.post(func() {
			m.round.SetConnected(client.playerID, false)
		})
	}

	return nClients == 0
}

// Clients will return a slice of connected (at the time) clients
func (m *Match) Clients() []*Client {
	m.lock.RLock()
	defer m.lock.RUnlock()

	clients := make([]*Client, 0, len(m.clients))
	for client := range m.clients {
		clients = append(clients, client)
	}

	return clients
}

// NOTE: must only be called from the run loop
func (m *Match) gameState(playerID string) *playable.Response {
	return &playable.Response{
		Key: "gameState",
		Data: &gameState{
			Snapshot:    m.round.State().View(playerID),
			LogMessages: append([]*playable.LogMessage{}, m.logMessages...),
		},
	}
}

// sendGameData refreshes the cached snapshot and sends every client its view
// NOTE: must only be called from the run loop
func (m *Match) sendGameData() {
	m.snapshot.Store(m.round.State().Snapshot())

	for _, client := range m.Clients() {
		if !client.Send(m.gameState(client.playerID)) {
			m.logger.WithField("client", client.String()).Warn("client is not keeping up, dropping game state")
		}
	}
}

// NOTE: must only be called from the run loop
func (m *Match) sendToPlayer(playerID string, msg interface{}) {
	for _, client := range m.Clients() {
		if client.playerID == playerID {
			client.Send(msg)
		}
	}
}
