package deck

import (
	"crypto/sha1" // nolint:gosec
	"encoding/hex"
	"errors"

	"recall-server/internal/rng"
)

// ErrEndOfDeck is an error when Draw() is attempted and there are no more cards
var ErrEndOfDeck = errors.New("end of deck reached")

// Deck is an ordered pile of cards, index 0 is the top
type Deck struct {
	Cards []*Card `json:"cards"`
}

// New returns a deck holding the cards in the order given
// Important! this deck is unshuffled. You must call the Shuffle() method to shuffle the cards
func New(cards []*Card) *Deck {
	cp := make([]*Card, len(cards))
	copy(cp, cards)

	return &Deck{Cards: cp}
}

// Shuffle will shuffle the deck of cards with a Fisher-Yates shuffle
func (d *Deck) Shuffle(gen rng.Generator) {
	Shuffle(d.Cards, gen)
}

// Shuffle shuffles the slice in place
func Shuffle(cards []*Card, gen rng.Generator) {
	for j := len(cards) - 1; j > 0; j-- {
		i := gen.Intn(j + 1)

		cards[i], cards[j] = cards[j], cards[i]
	}
}

// HashCode returns a SHA1 hash code of the deck order.
func (d *Deck) HashCode() string {
	hash := sha1.New() // nolint:gosec
	for _, card := range d.Cards {
		_, _ = hash.Write([]byte(CardToString(card)))
	}

	return hex.EncodeToString(hash.Sum(nil)[:])
}

// Draw will draw the next card
// If there are no more cards, an ErrEndOfDeck is returned along with a nil card.
func (d *Deck) Draw() (*Card, error) {
	if len(d.Cards) <= 0 {
		return nil, ErrEndOfDeck
	}

	card := d.Cards[0]
	d.Cards = d.Cards[1:]

	return card, nil
}

// UndoDraw puts the card back on top of the deck
func (d *Deck) UndoDraw(card *Card) {
	d.Cards = append([]*Card{card}, d.Cards...)
}

// Take removes and returns the first card matching rank and suit
// The second return value is false if no such card is left
func (d *Deck) Take(rank Rank, suit Suit) (*Card, bool) {
	for i, c := range d.Cards {
		if c.Rank == rank && c.Suit == suit {
			d.Cards = append(d.Cards[:i:i], d.Cards[i+1:]...)
			return c, true
		}
	}

	return nil, false
}

// CanDraw returns true if there are {want} cards left in the deck
func (d *Deck) CanDraw(want int) bool {
	return len(d.Cards) >= want
}

// CardsLeft returns the number of cards left in the deck
func (d *Deck) CardsLeft() int {
	return len(d.Cards)
}
