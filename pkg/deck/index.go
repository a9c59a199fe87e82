package deck

// Index resolves card IDs to full card data
// It is built once per match from the original deck and is read-only afterwards
type Index struct {
	cards map[string]*Card
}

// NewIndex returns an index of the cards
func NewIndex(cards []*Card) *Index {
	m := make(map[string]*Card, len(cards))
	for _, c := range cards {
		m[c.ID] = c.FaceUp()
	}

	return &Index{cards: m}
}

// Lookup returns a face-up copy of the card, or nil if the ID is unknown
func (i *Index) Lookup(id string) *Card {
	c, ok := i.cards[id]
	if !ok {
		return nil
	}

	return c.FaceUp()
}

// Resolve returns the full data for a card in either projection
func (i *Index) Resolve(card *Card) *Card {
	if card == nil {
		return nil
	}

	if !card.IsFaceDown() {
		return card.FaceUp()
	}

	return i.Lookup(card.ID)
}

// Len returns the number of indexed cards
func (i *Index) Len() int {
	return len(i.cards)
}
