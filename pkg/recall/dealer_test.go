package recall

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"recall-server/internal/rng"
	"recall-server/pkg/deck"
)

func testDeck(t *testing.T, includeJokers bool) []*deck.Card {
	t.Helper()

	f, err := deck.NewFactory(deck.DefaultConfig())
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	cards, err := f.BuildDeck("m1", includeJokers)
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	return cards
}

func TestDeal(t *testing.T) {
	a := assert.New(t)

	cards := testDeck(t, true)
	index := deck.NewIndex(cards)
	players := humans(4)

	drawPile, first, err := Deal(players, cards, rng.NewSeeded(1), deck.PredefinedHands{})
	a.NoError(err)
	a.Equal(37, len(drawPile))
	a.NotNil(first)
	a.False(first.IsFaceDown())

	seen := map[string]bool{first.ID: true}
	for _, p := range players {
		a.Equal(HandSize, p.Hand.Len())
		for _, c := range p.Hand {
			a.True(c.IsFaceDown())
			a.False(index.Lookup(c.ID).IsJoker())
			a.False(seen[c.ID])
			seen[c.ID] = true
		}
	}

	for _, c := range drawPile {
		a.True(c.IsFaceDown())
		a.False(seen[c.ID])
		seen[c.ID] = true
	}

	a.Equal(54, len(seen))
}

func TestDeal_sameSeedSameDeal(t *testing.T) {
	a := assert.New(t)

	cards := testDeck(t, true)
	p1 := humans(2)
	p2 := humans(2)

	pile1, first1, err := Deal(p1, cards, rng.NewSeeded(42), deck.PredefinedHands{})
	a.NoError(err)
	pile2, first2, err := Deal(p2, cards, rng.NewSeeded(42), deck.PredefinedHands{})
	a.NoError(err)

	a.Equal(first1.ID, first2.ID)
	a.Equal(p1[0].Hand.IDs(), p2[0].Hand.IDs())
	a.Equal(len(pile1), len(pile2))
	a.Equal(pile1[0].ID, pile2[0].ID)
}

func TestDeal_predefinedHands(t *testing.T) {
	a := assert.New(t)

	cards := testDeck(t, false)
	index := deck.NewIndex(cards)
	players := humans(3)

	predefined := deck.PredefinedHands{
		Enabled: true,
		Hands: map[int][]string{
			0: {"1h", "2h", "3h", "4h"},
			// 1h is already dealt to seat 0, the slot is filled at random
			1: {"1h", "13s"},
		},
		FirstDiscard: "12d",
	}

	drawPile, first, err := Deal(players, cards, rng.NewSeeded(1), predefined)
	a.NoError(err)
	a.Equal("12d", deck.CardToString(first))
	a.Equal(52-12-1, len(drawPile))

	resolve := func(h deck.Hand) []*deck.Card {
		out := make([]*deck.Card, 0)
		for _, c := range h {
			out = append(out, index.Resolve(c))
		}
		return out
	}

	a.Equal("1h,2h,3h,4h", deck.CardsToString(resolve(players[0].Hand)))

	seat1 := resolve(players[1].Hand)
	a.NotEqual("1h", deck.CardToString(seat1[0]))
	a.Equal("13s", deck.CardToString(seat1[1]))
	a.Equal(HandSize, players[2].Hand.Len())
}

func TestDeal_notEnoughCards(t *testing.T) {
	a := assert.New(t)

	cards := deck.CardsFromString("1h,2h,3h,4h,5h,6h,7h,8h")
	_, _, err := Deal(humans(2), cards, rng.NewSeeded(1), deck.PredefinedHands{})
	a.Equal(ErrNotEnoughCards, err)
}

func TestDeal_firstDiscardIsNeverJoker(t *testing.T) {
	a := assert.New(t)

	cards := testDeck(t, true)
	index := deck.NewIndex(cards)

	for seed := int64(1); seed <= 500; seed++ {
		drawPile, first, err := Deal(humans(4), cards, rng.NewSeeded(seed), deck.PredefinedHands{})
		if !a.NoError(err) {
			return
		}

		if !a.False(first.IsJoker(), "seed %d", seed) {
			return
		}

		jokers := 0
		for _, c := range drawPile {
			if index.Lookup(c.ID).IsJoker() {
				jokers++
			}
		}

		a.Equal(2, jokers, "seed %d", seed)
	}
}

func TestDeal_predefinedJokerFirstDiscard(t *testing.T) {
	a := assert.New(t)

	cards := testDeck(t, true)
	predefined := deck.PredefinedHands{Enabled: true, FirstDiscard: "0j"}

	drawPile, first, err := Deal(humans(2), cards, rng.NewSeeded(1), predefined)
	a.NoError(err)
	a.False(first.IsJoker())
	a.Equal(54-8-1, len(drawPile))
}
