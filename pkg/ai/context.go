package ai

import (
	"recall-server/pkg/deck"
	"recall-server/pkg/recall"
)

// Context is what a computer player can legitimately see when deciding
// Cards the player has not seen are ID-only projections
type Context struct {
	State  *recall.GameState
	Player *recall.Player
	Tuning Tuning

	Available []*deck.Card
	Playable  []*deck.Card
	Known     []*deck.Card
	Unknown   []*deck.Card
	// Matching and Mismatched split Playable by the open same-rank window's rank
	Matching   []*deck.Card
	Mismatched []*deck.Card
	Collection map[string]bool

	optimal bool
	mistake bool
	intn    func(n int) int
}

// NewContext assembles the decision context of the player
func NewContext(state *recall.GameState, player *recall.Player, tuning Tuning, intn func(n int) int) *Context {
	c := &Context{
		State:      state,
		Player:     player,
		Tuning:     tuning,
		Collection: make(map[string]bool, len(player.CollectionRankCards)),
		intn:       intn,
	}

	for _, card := range player.CollectionRankCards {
		c.Collection[card.ID] = true
	}

	for _, card := range player.Hand.Cards() {
		seen := player.Knows(player.ID, card.ID)
		if seen == nil {
			seen = card.FaceDown()
		}

		c.Available = append(c.Available, seen)
		if c.Collection[card.ID] {
			continue
		}

		c.Playable = append(c.Playable, seen)
		if seen.IsFaceDown() {
			c.Unknown = append(c.Unknown, seen)
		} else {
			c.Known = append(c.Known, seen)
		}
	}

	if player.DrawnCard != nil {
		drawn := player.DrawnCard.FaceUp()
		c.Available = append(c.Available, drawn)
		c.Playable = append(c.Playable, drawn)
		c.Known = append(c.Known, drawn)
	}

	if state.Phase == recall.PhaseSameRankWindow {
		for _, card := range c.Playable {
			if !card.IsFaceDown() && card.Rank == state.SameRankRank && card.ID != drawnID(player) {
				c.Matching = append(c.Matching, card)
			} else if card.ID != drawnID(player) {
				c.Mismatched = append(c.Mismatched, card)
			}
		}
	}

	return c
}

func drawnID(p *recall.Player) string {
	if p.DrawnCard == nil {
		return ""
	}

	return p.DrawnCard.ID
}

// Set returns the candidate set by name
func (c *Context) Set(name string) []*deck.Card {
	switch name {
	case SetAvailable:
		return c.Available
	case SetPlayable:
		return c.Playable
	case SetKnown:
		return c.Known
	case SetUnknown:
		return c.Unknown
	case SetMatching:
		return c.Matching
	case SetMismatched:
		return c.Mismatched
	}

	return nil
}

// KnownScore returns the points of the cards the player knows it holds, collection cards included
// The second return value is false if any hand card is unknown
func (c *Context) KnownScore() (int, bool) {
	score := 0
	for _, card := range c.Player.CollectionRankCards {
		score += card.Points
	}

	for _, card := range c.Known {
		if card.ID != drawnID(c.Player) {
			score += card.Points
		}
	}

	return score, len(c.Unknown) == 0
}

// opponentCards returns the non-collection hand cards of every other player
func (c *Context) opponentCards() []recall.CardTarget {
	targets := make([]recall.CardTarget, 0)
	for _, p := range c.State.Players {
		if p.ID == c.Player.ID {
			continue
		}

		for _, card := range p.Hand.Cards() {
			if !p.IsCollectionCard(card.ID) {
				targets = append(targets, recall.CardTarget{PlayerID: p.ID, CardID: card.ID})
			}
		}
	}

	return targets
}
