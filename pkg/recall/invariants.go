package recall

import (
	"fmt"
)

// CheckInvariants returns an error describing the first broken rule of the state
// Every card of the original deck must be in exactly one place, piles must hold the right
// projection, and collection cards must be in their owner's hand and never in their known cards.
func (g *GameState) CheckInvariants() error {
	if g.Phase == PhaseWaitingForPlayers {
		return nil
	}

	seen := make(map[string]string, len(g.OriginalDeck))
	place := func(id, where string) error {
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("card %s is in %s and %s", id, prev, where)
		}

		seen[id] = where
		return nil
	}

	for _, c := range g.DrawPile {
		if !c.IsFaceDown() {
			return fmt.Errorf("draw pile card %s is face up", c.ID)
		}

		if err := place(c.ID, "draw pile"); err != nil {
			return err
		}
	}

	for _, c := range g.DiscardPile {
		if c.IsFaceDown() {
			return fmt.Errorf("discard pile card %s is face down", c.ID)
		}

		if err := place(c.ID, "discard pile"); err != nil {
			return err
		}
	}

	for _, p := range g.Players {
		for _, c := range p.Hand.Cards() {
			if err := place(c.ID, p.ID+"'s hand"); err != nil {
				return err
			}
		}

		if p.DrawnCard != nil {
			if err := place(p.DrawnCard.ID, p.ID+"'s drawn card"); err != nil {
				return err
			}
		}

		for _, c := range p.CollectionRankCards {
			if !p.Hand.HasCard(c.ID) {
				return fmt.Errorf("collection card %s is not in %s's hand", c.ID, p.ID)
			}

			if p.Knows(p.ID, c.ID) != nil {
				return fmt.Errorf("collection card %s is in %s's known cards", c.ID, p.ID)
			}
		}
	}

	if len(seen) != len(g.OriginalDeck) {
		return fmt.Errorf("expected %d cards, found %d", len(g.OriginalDeck), len(seen))
	}

	for _, c := range g.OriginalDeck {
		if _, ok := seen[c.ID]; !ok {
			return fmt.Errorf("card %s is missing", c.ID)
		}
	}

	return nil
}
