package recall

import (
	"time"

	"recall-server/pkg/deck"
)

// PendingSpecial is a played power card waiting for its window
type PendingSpecial struct {
	PlayerID string            `json:"playerId"`
	Card     *deck.Card        `json:"card"`
	Power    deck.SpecialPower `json:"power"`
}

// GameState is the complete state of a match
// It is owned by a single Round and must only be touched from the match's run loop
type GameState struct {
	MatchID            string
	Players            []*Player
	CurrentPlayerIndex int

	// DrawPile holds face-down projections, index 0 is the top
	DrawPile []*deck.Card
	// DiscardPile holds face-up cards, the last element is the top
	DiscardPile []*deck.Card

	Phase        Phase
	OriginalDeck []*deck.Card
	Index        *deck.Index

	TurnTimeLimit  time.Duration
	TurnNumber     int
	RecallCallerID string
	Winners        []string

	// SameRankRank is the rank the open same-rank window accepts
	SameRankRank    deck.Rank
	PendingSpecials []*PendingSpecial
	ActiveSpecial   *PendingSpecial

	GameStartTime    time.Time
	LastActivityTime time.Time
}

// NewGameState returns a waiting state for the players and deck
func NewGameState(matchID string, players []*Player, cards []*deck.Card) *GameState {
	return &GameState{
		MatchID:      matchID,
		Players:      players,
		Phase:        PhaseWaitingForPlayers,
		OriginalDeck: cards,
		Index:        deck.NewIndex(cards),
		DrawPile:     []*deck.Card{},
		DiscardPile:  []*deck.Card{},
	}
}

// PlayerByID returns the player by ID
func (g *GameState) PlayerByID(id string) (*Player, bool) {
	for _, p := range g.Players {
		if p.ID == id {
			return p, true
		}
	}

	return nil, false
}

// CurrentPlayer returns the player whose turn it is
func (g *GameState) CurrentPlayer() *Player {
	if g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(g.Players) {
		return nil
	}

	return g.Players[g.CurrentPlayerIndex]
}

// TopDiscard returns the top of the discard pile, or nil
func (g *GameState) TopDiscard() *deck.Card {
	if len(g.DiscardPile) == 0 {
		return nil
	}

	return g.DiscardPile[len(g.DiscardPile)-1]
}

// CardByID resolves a card ID to its full data
func (g *GameState) CardByID(id string) *deck.Card {
	if g.Index == nil {
		return nil
	}

	return g.Index.Lookup(id)
}

// CardCount returns the number of cards across the piles, hands and the drawn card
func (g *GameState) CardCount() int {
	n := len(g.DrawPile) + len(g.DiscardPile)
	for _, p := range g.Players {
		n += p.Hand.Len()
		if p.DrawnCard != nil {
			n++
		}
	}

	return n
}

// IsOver returns true once the match has ended
func (g *GameState) IsOver() bool {
	return g.Phase == PhaseGameEnded
}

// Snapshot is the public state of a match
type Snapshot struct {
	MatchID           string            `json:"matchId"`
	Phase             Phase             `json:"phase"`
	CurrentPlayerID   string            `json:"currentPlayerId"`
	TurnNumber        int               `json:"turnNumber"`
	DrawPileCount     int               `json:"drawPileCount"`
	DiscardPile       []*deck.Card      `json:"discardPile"`
	RecallCalledBy    string            `json:"recallCalledBy,omitempty"`
	Winners           []string          `json:"winners"`
	SameRankRank      string            `json:"sameRankRank,omitempty"`
	ActiveSpecial     *PendingSpecial   `json:"activeSpecial,omitempty"`
	TurnTimeLimitSecs int               `json:"turnTimeLimitSeconds"`
	GameStartTime     time.Time         `json:"gameStartTime"`
	LastActivityTime  time.Time         `json:"lastActivityTime"`
	Players           []*PlayerSnapshot `json:"players"`

	// ViewerID is set when the snapshot is rendered for a specific player
	ViewerID  string     `json:"viewerId,omitempty"`
	DrawnCard *deck.Card `json:"drawnCard,omitempty"`
}

// PlayerSnapshot is the public state of a player
// Hand cards are face down unless the viewer knows them or they are collection cards
type PlayerSnapshot struct {
	ID                  string       `json:"id"`
	DisplayName         string       `json:"displayName"`
	IsHuman             bool         `json:"isHuman"`
	Difficulty          Difficulty   `json:"difficulty,omitempty"`
	Status              PlayerStatus `json:"status"`
	Connected           bool         `json:"connected"`
	Hand                []*deck.Card `json:"hand"`
	HandSize            int          `json:"handSize"`
	HasDrawnCard        bool         `json:"hasDrawnCard"`
	CollectionRank      string       `json:"collectionRank,omitempty"`
	CollectionRankCards []*deck.Card `json:"collectionRankCards"`
	HasCalledRecall     bool         `json:"hasCalledRecall"`
	Score               int          `json:"score"`
}

// Snapshot returns the state as seen by a spectator
func (g *GameState) Snapshot() *Snapshot {
	return g.View("")
}

// View returns the state as seen by the viewer
// Cards the viewer knows are shown face up, the viewer's drawn card is included
func (g *GameState) View(viewerID string) *Snapshot {
	viewer, _ := g.PlayerByID(viewerID)

	snap := &Snapshot{
		MatchID:           g.MatchID,
		Phase:             g.Phase,
		TurnNumber:        g.TurnNumber,
		DrawPileCount:     len(g.DrawPile),
		DiscardPile:       make([]*deck.Card, len(g.DiscardPile)),
		RecallCalledBy:    g.RecallCallerID,
		Winners:           append([]string{}, g.Winners...),
		TurnTimeLimitSecs: int(g.TurnTimeLimit / time.Second),
		GameStartTime:     g.GameStartTime,
		LastActivityTime:  g.LastActivityTime,
		Players:           make([]*PlayerSnapshot, 0, len(g.Players)),
	}

	for i, c := range g.DiscardPile {
		snap.DiscardPile[i] = c.FaceUp()
	}

	if cp := g.CurrentPlayer(); cp != nil && g.TurnNumber > 0 {
		snap.CurrentPlayerID = cp.ID
	}

	if g.Phase == PhaseSameRankWindow {
		snap.SameRankRank = g.SameRankRank.String()
	}

	if g.ActiveSpecial != nil {
		as := *g.ActiveSpecial
		snap.ActiveSpecial = &as
	}

	if viewer != nil {
		snap.ViewerID = viewer.ID
		if viewer.DrawnCard != nil {
			snap.DrawnCard = viewer.DrawnCard.FaceUp()
		}
	}

	for _, p := range g.Players {
		ps := &PlayerSnapshot{
			ID:                  p.ID,
			DisplayName:         p.DisplayName,
			IsHuman:             p.IsHuman,
			Status:              p.Status,
			Connected:           p.Connected,
			Hand:                make([]*deck.Card, len(p.Hand)),
			HandSize:            p.Hand.Len(),
			HasDrawnCard:        p.DrawnCard != nil,
			CollectionRankCards: make([]*deck.Card, len(p.CollectionRankCards)),
			HasCalledRecall:     p.HasCalledRecall,
			Score:               p.Score,
		}

		if !p.IsHuman {
			ps.Difficulty = p.Difficulty
		}

		if p.HasCollection() {
			ps.CollectionRank = p.CollectionRank.String()
		}

		for i, c := range p.CollectionRankCards {
			ps.CollectionRankCards[i] = c.FaceUp()
		}

		for i, c := range p.Hand {
			if c == nil {
				continue
			}

			ps.Hand[i] = g.projectHandCard(viewer, p, c)
		}

		snap.Players = append(snap.Players, ps)
	}

	return snap
}

func (g *GameState) projectHandCard(viewer, owner *Player, c *deck.Card) *deck.Card {
	if owner.IsCollectionCard(c.ID) || g.Phase == PhaseGameEnded {
		if full := g.Index.Resolve(c); full != nil {
			return full
		}
	}

	if viewer != nil {
		if known := viewer.Knows(owner.ID, c.ID); known != nil {
			return known
		}
	}

	return c.FaceDown()
}
