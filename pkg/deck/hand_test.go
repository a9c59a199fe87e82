package deck

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func testHand(ids ...string) Hand {
	h := make(Hand, len(ids))
	for i, id := range ids {
		h[i] = &Card{ID: id, faceDown: true}
	}

	return h
}

func TestHand_Remove(t *testing.T) {
	a := assert.New(t)
	h := testHand("a", "b", "c", "d")

	card, i := h.Remove("b")
	a.Equal("b", card.ID)
	a.Equal(1, i)
	a.Nil(h[1])
	a.Equal(4, len(h))
	a.Equal(3, h.Len())
	a.Equal([]string{"a", "c", "d"}, h.IDs())

	card, i = h.Remove("b")
	a.Nil(card)
	a.Equal(-1, i)
}

func TestHand_AddCard(t *testing.T) {
	a := assert.New(t)
	h := testHand("a", "b")
	h.Remove("a")

	a.Equal(0, h.AddCard(&Card{ID: "x"}))
	a.Equal(2, h.AddCard(&Card{ID: "y"}))
	a.Equal(3, h.Append(&Card{ID: "z"}))
	a.Equal([]string{"x", "b", "y", "z"}, h.IDs())
}

func TestHand_Replace(t *testing.T) {
	a := assert.New(t)
	h := testHand("a", "b")

	old := h.Replace("b", &Card{ID: "c"})
	a.Equal("b", old.ID)
	a.True(h.HasCard("c"))
	a.False(h.HasCard("b"))
	a.Nil(h.Replace("nope", &Card{ID: "d"}))

	clone := h.Clone()
	clone[0] = nil
	a.NotNil(h[0])
}
