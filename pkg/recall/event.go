package recall

import (
	"fmt"

	"recall-server/pkg/playable"
)

// EventKind is the name of an inbound event
type EventKind string

// EventKind constants
const (
	EventStartMatch           EventKind = "start_match"
	EventCompletedInitialPeek EventKind = "completed_initial_peek"
	EventDrawCard             EventKind = "draw_card"
	EventPlayCard             EventKind = "play_card"
	EventSameRankPlay         EventKind = "same_rank_play"
	EventJackSwap             EventKind = "jack_swap"
	EventQueenPeek            EventKind = "queen_peek"
	EventCollectFromDiscard   EventKind = "collect_from_discard"
	EventCallRecall           EventKind = "call_recall"
	EventSkipSpecial          EventKind = "skip_special"
)

// DrawSource is where a card is drawn from
type DrawSource string

// DrawSource constants
const (
	SourceDeck    DrawSource = "deck"
	SourceDiscard DrawSource = "discard"
)

// CardTarget addresses a card in a player's hand
type CardTarget struct {
	PlayerID string `json:"playerId"`
	CardID   string `json:"cardId"`
}

// Event is an inbound game event
type Event interface {
	Kind() EventKind
	// Player is the ID of the acting player
	Player() string
}

// StartMatchEvent creates a match
type StartMatchEvent struct {
	PlayerID        string
	MatchID         string
	Players         []PlayerSpec
	ComputerPlayers int
	Difficulty      Difficulty
	// IncludeJokers is nil when the payload does not say
	IncludeJokers *bool
}

// CompletedInitialPeekEvent reports the cards a player looked at during the initial peek
type CompletedInitialPeekEvent struct {
	PlayerID string
	CardIDs  []string
}

// DrawCardEvent draws from the deck or the discard pile
type DrawCardEvent struct {
	PlayerID string
	Source   DrawSource
}

// PlayCardEvent plays a hand card or the drawn card
type PlayCardEvent struct {
	PlayerID string
	CardID   string
}

// SameRankPlayEvent contests the open same-rank window
type SameRankPlayEvent struct {
	PlayerID string
	CardID   string
}

// JackSwapEvent swaps two hand cards
type JackSwapEvent struct {
	PlayerID string
	First    CardTarget
	Second   CardTarget
}

// QueenPeekEvent looks at a hand card
type QueenPeekEvent struct {
	PlayerID string
	Target   CardTarget
}

// CollectFromDiscardEvent takes the top discard into the collection
type CollectFromDiscardEvent struct {
	PlayerID string
}

// CallRecallEvent starts the final lap
type CallRecallEvent struct {
	PlayerID string
}

// SkipSpecialEvent declines the active special power
type SkipSpecialEvent struct {
	PlayerID string
}

func (e *StartMatchEvent) Kind() EventKind           { return EventStartMatch }
func (e *CompletedInitialPeekEvent) Kind() EventKind { return EventCompletedInitialPeek }
func (e *DrawCardEvent) Kind() EventKind             { return EventDrawCard }
func (e *PlayCardEvent) Kind() EventKind             { return EventPlayCard }
func (e *SameRankPlayEvent) Kind() EventKind         { return EventSameRankPlay }
func (e *JackSwapEvent) Kind() EventKind             { return EventJackSwap }
func (e *QueenPeekEvent) Kind() EventKind            { return EventQueenPeek }
func (e *CollectFromDiscardEvent) Kind() EventKind   { return EventCollectFromDiscard }
func (e *CallRecallEvent) Kind() EventKind           { return EventCallRecall }
func (e *SkipSpecialEvent) Kind() EventKind          { return EventSkipSpecial }

func (e *StartMatchEvent) Player() string           { return e.PlayerID }
func (e *CompletedInitialPeekEvent) Player() string { return e.PlayerID }
func (e *DrawCardEvent) Player() string             { return e.PlayerID }
func (e *PlayCardEvent) Player() string             { return e.PlayerID }
func (e *SameRankPlayEvent) Player() string         { return e.PlayerID }
func (e *JackSwapEvent) Player() string             { return e.PlayerID }
func (e *QueenPeekEvent) Player() string            { return e.PlayerID }
func (e *CollectFromDiscardEvent) Player() string   { return e.PlayerID }
func (e *CallRecallEvent) Player() string           { return e.PlayerID }
func (e *SkipSpecialEvent) Player() string          { return e.PlayerID }

// ParseEvent builds a typed event from an event name and its payload
// playerID is the authenticated sender and wins over any playerId in the payload
func ParseEvent(name string, playerID string, data playable.AdditionalData) (Event, error) {
	kind := EventKind(name)
	if playerID == "" {
		playerID, _ = data.GetString("playerId")
	}

	if playerID == "" && kind != EventStartMatch {
		return nil, PayloadError{Event: kind, Field: "playerId"}
	}

	requireString := func(key string) (string, error) {
		s, ok := data.GetString(key)
		if !ok || s == "" {
			return "", PayloadError{Event: kind, Field: key}
		}

		return s, nil
	}

	switch kind {
	case EventStartMatch:
		return parseStartMatch(playerID, data)
	case EventCompletedInitialPeek:
		ids, ok := data.GetStringSlice("cardIds")
		if !ok {
			return nil, PayloadError{Event: kind, Field: "cardIds"}
		}

		return &CompletedInitialPeekEvent{PlayerID: playerID, CardIDs: ids}, nil
	case EventDrawCard:
		source, _ := data.GetString("source")
		switch DrawSource(source) {
		case SourceDeck, SourceDiscard:
		case "":
			source = string(SourceDeck)
		default:
			return nil, PayloadError{Event: kind, Field: "source"}
		}

		return &DrawCardEvent{PlayerID: playerID, Source: DrawSource(source)}, nil
	case EventPlayCard, EventSameRankPlay:
		cardID, err := requireString("cardId")
		if err != nil {
			return nil, err
		}

		if kind == EventPlayCard {
			return &PlayCardEvent{PlayerID: playerID, CardID: cardID}, nil
		}

		return &SameRankPlayEvent{PlayerID: playerID, CardID: cardID}, nil
	case EventJackSwap:
		var ev JackSwapEvent
		ev.PlayerID = playerID

		fields := []struct {
			key    string
			target *string
		}{
			{"firstCardId", &ev.First.CardID},
			{"firstPlayerId", &ev.First.PlayerID},
			{"secondCardId", &ev.Second.CardID},
			{"secondPlayerId", &ev.Second.PlayerID},
		}

		for _, f := range fields {
			s, err := requireString(f.key)
			if err != nil {
				return nil, err
			}

			*f.target = s
		}

		return &ev, nil
	case EventQueenPeek:
		cardID, err := requireString("cardId")
		if err != nil {
			return nil, err
		}

		ownerID, err := requireString("ownerId")
		if err != nil {
			return nil, err
		}

		return &QueenPeekEvent{PlayerID: playerID, Target: CardTarget{PlayerID: ownerID, CardID: cardID}}, nil
	case EventCollectFromDiscard:
		return &CollectFromDiscardEvent{PlayerID: playerID}, nil
	case EventCallRecall:
		return &CallRecallEvent{PlayerID: playerID}, nil
	case EventSkipSpecial:
		return &SkipSpecialEvent{PlayerID: playerID}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, name)
}

func parseStartMatch(playerID string, data playable.AdditionalData) (*StartMatchEvent, error) {
	ev := &StartMatchEvent{PlayerID: playerID}
	ev.MatchID, _ = data.GetString("matchId")
	ev.ComputerPlayers, _ = data.GetInt("computerPlayers")
	if includeJokers, ok := data.GetBool("includeJokers"); ok {
		ev.IncludeJokers = &includeJokers
	}

	if d, ok := data.GetString("difficulty"); ok && d != "" {
		difficulty, ok := ParseDifficulty(d)
		if !ok {
			return nil, PayloadError{Event: EventStartMatch, Field: "difficulty"}
		}

		ev.Difficulty = difficulty
	}

	if raw, ok := data["players"].([]interface{}); ok {
		for _, r := range raw {
			m, ok := r.(map[string]interface{})
			if !ok {
				return nil, PayloadError{Event: EventStartMatch, Field: "players"}
			}

			pd := playable.AdditionalData(m)
			spec := PlayerSpec{}
			spec.ID, _ = pd.GetString("id")
			spec.DisplayName, _ = pd.GetString("displayName")
			spec.IsHuman, _ = pd.GetBool("isHuman")
			if d, _ := pd.GetString("difficulty"); d != "" {
				difficulty, ok := ParseDifficulty(d)
				if !ok {
					return nil, PayloadError{Event: EventStartMatch, Field: "players.difficulty"}
				}

				spec.Difficulty = difficulty
			}

			if spec.ID == "" {
				return nil, PayloadError{Event: EventStartMatch, Field: "players.id"}
			}

			ev.Players = append(ev.Players, spec)
		}
	}

	if len(ev.Players) == 0 && playerID != "" {
		name, _ := data.GetString("displayName")
		ev.Players = []PlayerSpec{{ID: playerID, DisplayName: name, IsHuman: true}}
	}

	return ev, nil
}
