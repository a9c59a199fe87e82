package recall

import (
	"time"

	"recall-server/pkg/deck"
	"recall-server/pkg/playable"
)

// StateKey is a key in a StateUpdate
type StateKey string

// StateKey constants
const (
	KeyPhase          StateKey = "phase"
	KeyCurrentPlayer  StateKey = "currentPlayer"
	KeyTurnNumber     StateKey = "turnNumber"
	KeyDrawPileCount  StateKey = "drawPileCount"
	KeyDiscardPile    StateKey = "discardPile"
	KeyRecallCalledBy StateKey = "recallCalledBy"
	KeyWinners        StateKey = "winners"
	KeySameRankRank   StateKey = "sameRankRank"
	KeyActiveSpecial  StateKey = "activeSpecial"
	KeyGameEnded      StateKey = "gameEnded"
	KeyResult         StateKey = "result"
	KeyLogMessages    StateKey = "logMessages"
)

// StateUpdate is a partial state change
type StateUpdate map[StateKey]interface{}

// GameStateCallback receives every state change of a round
// Implementations must not block, they are called from the match's run loop
type GameStateCallback interface {
	// OnPlayerStatusChanged is called when a player's status changes
	// updateMainState is true when the match-wide state changed too, triggerInstructions
	// when the player should be prompted to act
	OnPlayerStatusChanged(status PlayerStatus, playerID string, updateMainState, triggerInstructions bool)
	OnGameStateChanged(update StateUpdate)
	OnDiscardPileChanged()
	OnActionError(message string, data map[string]interface{})
	GetCardByID(state *GameState, cardID string) *deck.Card
	GetCurrentGameState() *Snapshot
	CurrentGamesMap() map[string]*Snapshot
}

// NopCallback ignores every notification
type NopCallback struct {
	State *GameState
}

var _ GameStateCallback = (*NopCallback)(nil)

func (n *NopCallback) OnPlayerStatusChanged(PlayerStatus, string, bool, bool) {}
func (n *NopCallback) OnGameStateChanged(StateUpdate)                         {}
func (n *NopCallback) OnDiscardPileChanged()                                  {}
func (n *NopCallback) OnActionError(string, map[string]interface{})           {}

// GetCardByID resolves a card through the state's index
func (n *NopCallback) GetCardByID(state *GameState, cardID string) *deck.Card {
	if state == nil {
		return nil
	}

	return state.CardByID(cardID)
}

// GetCurrentGameState returns the snapshot of State
func (n *NopCallback) GetCurrentGameState() *Snapshot {
	if n.State == nil {
		return nil
	}

	return n.State.Snapshot()
}

// CurrentGamesMap returns a map holding the snapshot of State
func (n *NopCallback) CurrentGamesMap() map[string]*Snapshot {
	if n.State == nil {
		return map[string]*Snapshot{}
	}

	return map[string]*Snapshot{n.State.MatchID: n.State.Snapshot()}
}

// Decider chooses actions for computer players
type Decider interface {
	Decide(difficulty Difficulty, state *GameState, playerID string, kind EventKind) (Decision, error)
	ThinkingDelay(difficulty Difficulty) time.Duration
}

// Decision is a computer player's choice for one event
type Decision struct {
	Kind EventKind `json:"kind"`
	// Act is false when the player passes (same-rank, collect, specials)
	Act        bool       `json:"act"`
	CallRecall bool       `json:"callRecall,omitempty"`
	Source     DrawSource `json:"source,omitempty"`
	CardID     string     `json:"cardId,omitempty"`
	CardIDs    []string   `json:"cardIds,omitempty"`
	First      CardTarget `json:"first"`
	Second     CardTarget `json:"second"`
	Reason     string     `json:"reason,omitempty"`
}

// Event converts the decision to the inbound event it stands for
// A declined special becomes a SkipSpecialEvent, other declined decisions return nil
func (d Decision) Event(playerID string) Event {
	switch d.Kind {
	case EventCompletedInitialPeek:
		return &CompletedInitialPeekEvent{PlayerID: playerID, CardIDs: d.CardIDs}
	case EventDrawCard:
		if d.CallRecall {
			return &CallRecallEvent{PlayerID: playerID}
		}

		return &DrawCardEvent{PlayerID: playerID, Source: d.Source}
	case EventPlayCard:
		return &PlayCardEvent{PlayerID: playerID, CardID: d.CardID}
	case EventSameRankPlay:
		if d.Act {
			return &SameRankPlayEvent{PlayerID: playerID, CardID: d.CardID}
		}
	case EventJackSwap:
		if d.Act {
			return &JackSwapEvent{PlayerID: playerID, First: d.First, Second: d.Second}
		}

		return &SkipSpecialEvent{PlayerID: playerID}
	case EventQueenPeek:
		if d.Act {
			return &QueenPeekEvent{PlayerID: playerID, Target: d.First}
		}

		return &SkipSpecialEvent{PlayerID: playerID}
	case EventCollectFromDiscard:
		if d.Act {
			return &CollectFromDiscardEvent{PlayerID: playerID}
		}
	}

	return nil
}

// LogSink receives the round's human-readable log messages
type LogSink func(msgs []*playable.LogMessage)
