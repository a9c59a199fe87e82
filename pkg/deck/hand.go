package deck

// Hand is an ordered set of slots
// A nil slot is a blank left behind by a played card
type Hand []*Card

// AddCard adds a card to the first blank slot, or to the end if there is none
// The slot index is returned
func (h *Hand) AddCard(card *Card) int {
	for i, c := range *h {
		if c == nil {
			(*h)[i] = card
			return i
		}
	}

	*h = append(*h, card)
	return len(*h) - 1
}

// Append adds a card to the end of the hand
func (h *Hand) Append(card *Card) int {
	*h = append(*h, card)
	return len(*h) - 1
}

// IndexOf returns the slot holding the card ID, or -1
func (h Hand) IndexOf(id string) int {
	for i, c := range h {
		if c != nil && c.ID == id {
			return i
		}
	}

	return -1
}

// HasCard returns true if the hand contains the card ID
func (h Hand) HasCard(id string) bool {
	return h.IndexOf(id) >= 0
}

// Remove blanks the slot holding the card ID and returns the removed card
func (h Hand) Remove(id string) (*Card, int) {
	i := h.IndexOf(id)
	if i < 0 {
		return nil, -1
	}

	card := h[i]
	h[i] = nil
	return card, i
}

// Replace puts card into the slot of the card ID and returns the replaced card
func (h Hand) Replace(id string, card *Card) *Card {
	i := h.IndexOf(id)
	if i < 0 {
		return nil
	}

	old := h[i]
	h[i] = card
	return old
}

// Cards returns the non-blank cards
func (h Hand) Cards() []*Card {
	cards := make([]*Card, 0, len(h))
	for _, c := range h {
		if c != nil {
			cards = append(cards, c)
		}
	}

	return cards
}

// IDs returns the IDs of the non-blank cards
func (h Hand) IDs() []string {
	ids := make([]string, 0, len(h))
	for _, c := range h {
		if c != nil {
			ids = append(ids, c.ID)
		}
	}

	return ids
}

// Len returns the number of non-blank cards
func (h Hand) Len() int {
	n := 0
	for _, c := range h {
		if c != nil {
			n++
		}
	}

	return n
}

func (h Hand) String() string {
	return CardsToString(h)
}

// Clone returns a clone of the hand
func (h Hand) Clone() Hand {
	h2 := make(Hand, len(h))
	copy(h2, h)

	return h2
}
