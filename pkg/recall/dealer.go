package recall

import (
	"recall-server/internal/rng"
	"recall-server/pkg/deck"
)

// HandSize is the number of cards dealt to every player
const HandSize = 4

// Deal shuffles the cards and deals HandSize cards to every player
// Jokers are kept out of the deal and the first discard, and are shuffled into the draw pile afterwards.
// When predefined hands are enabled, each seat receives its listed cards if they are
// still in the deck, and a random card otherwise.
// The returned draw pile and hands hold face-down projections, the first discard is face up.
func Deal(players []*Player, cards []*deck.Card, gen rng.Generator, predefined deck.PredefinedHands) ([]*deck.Card, *deck.Card, error) {
	jokers := make([]*deck.Card, 0)
	others := make([]*deck.Card, 0, len(cards))
	for _, c := range cards {
		if c.IsJoker() {
			jokers = append(jokers, c)
		} else {
			others = append(others, c)
		}
	}

	if len(others) < len(players)*HandSize+1 {
		return nil, nil, ErrNotEnoughCards
	}

	d := deck.New(others)
	d.Shuffle(gen)

	for seat, p := range players {
		var wanted []string
		if predefined.Enabled {
			wanted = predefined.Hands[seat]
		}

		hand := make(deck.Hand, 0, HandSize)
		for j := 0; j < HandSize; j++ {
			var card *deck.Card
			if j < len(wanted) {
				if want := deck.CardFromString(wanted[j]); want != nil {
					card, _ = d.Take(want.Rank, want.Suit)
				}
			}

			if card == nil {
				var err error
				if card, err = d.Draw(); err != nil {
					return nil, nil, ErrNotEnoughCards
				}
			}

			hand = append(hand, card.FaceDown())
		}

		p.Hand = hand
	}

	// the first discard is turned before the jokers join the pile
	var first *deck.Card
	if predefined.Enabled && predefined.FirstDiscard != "" {
		if want := deck.CardFromString(predefined.FirstDiscard); want != nil {
			first, _ = d.Take(want.Rank, want.Suit)
		}
	}

	if first == nil {
		var err error
		if first, err = d.Draw(); err != nil {
			return nil, nil, ErrNotEnoughCards
		}
	}

	remaining := make([]*deck.Card, 0, len(d.Cards)+len(jokers))
	remaining = append(remaining, d.Cards...)
	remaining = append(remaining, jokers...)
	deck.Shuffle(remaining, gen)

	drawPile := make([]*deck.Card, len(remaining))
	for i, c := range remaining {
		drawPile[i] = c.FaceDown()
	}

	return drawPile, first.FaceUp(), nil
}
