package room

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"recall-server/pkg/deck"
	"recall-server/pkg/playable"
	"recall-server/pkg/recall"
	"recall-server/pkg/statesink"
)

// callback bridges a round to the state sink and the connected clients
// Every method is called from the match's run loop and must not block
type callback struct {
	m *Match
}

var _ recall.GameStateCallback = (*callback)(nil)

func (c *callback) OnPlayerStatusChanged(status recall.PlayerStatus, playerID string, updateMainState, triggerInstructions bool) {
	m := c.m
	m.stateChanged = true

	updates := map[string]interface{}{
		fmt.Sprintf("playerStatus:%s", playerID): status,
	}

	if updateMainState {
		updates["players"] = m.round.State().Snapshot().Players
	}

	m.merge(updates)

	if triggerInstructions {
		m.sendToPlayer(playerID, &playable.Response{
			Key:   "instructions",
			Value: string(status),
		})
	}
}

func (c *callback) OnGameStateChanged(update recall.StateUpdate) {
	m := c.m
	m.stateChanged = true

	updates := make(map[string]interface{}, len(update))
	for k, v := range update {
		updates[string(k)] = v
	}

	m.merge(updates)
}

func (c *callback) OnDiscardPileChanged() {
	m := c.m
	m.stateChanged = true

	st := m.round.State()
	pile := make([]*deck.Card, len(st.DiscardPile))
	for i, card := range st.DiscardPile {
		pile[i] = card.FaceUp()
	}

	m.merge(map[string]interface{}{string(recall.KeyDiscardPile): pile})
}

func (c *callback) OnActionError(message string, data map[string]interface{}) {
	m := c.m
	playerID, _ := data["playerId"].(string)

	m.logger.WithFields(logrus.Fields{
		"playerId": playerID,
		"event":    data["event"],
	}).Debug(message)

	m.publish(statesink.Event{
		Kind:     "actionError",
		PlayerID: playerID,
		Message:  message,
		Data:     data,
	})
}

func (c *callback) GetCardByID(state *recall.GameState, cardID string) *deck.Card {
	if state == nil {
		return nil
	}

	return state.CardByID(cardID)
}

func (c *callback) GetCurrentGameState() *recall.Snapshot {
	return c.m.round.State().Snapshot()
}

func (c *callback) CurrentGamesMap() map[string]*recall.Snapshot {
	games := c.m.engine.CurrentGamesMap()
	games[c.m.id] = c.GetCurrentGameState()
	return games
}
