package deck

import (
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"testing"
)

func Test_constants(t *testing.T) {
	assert.Equal(t, Rank(0), Joker)
	assert.Equal(t, Rank(1), Ace)
	assert.Equal(t, Rank(11), Jack)
	assert.Equal(t, Rank(12), Queen)
	assert.Equal(t, Rank(13), King)
}

func TestCard_String(t *testing.T) {
	assert.Equal(t, "2♡", CardFromString("2h").String())
	assert.Equal(t, "J♣", CardFromString("11c").String())
	assert.Equal(t, "Q♢", CardFromString("12d").String())
	assert.Equal(t, "K♠", CardFromString("13s").String())
	assert.Equal(t, "A♠", CardFromString("1s").String())
	assert.Equal(t, "JK", CardFromString("0j").String())
	assert.Equal(t, "??", CardFromString("1s").FaceDown().String())
}

func TestCardFromString(t *testing.T) {
	a := assert.New(t)

	jack := CardFromString("11h")
	a.Equal(Jack, jack.Rank)
	a.Equal(Hearts, jack.Suit)
	a.Equal(10, jack.Points)
	a.Equal(PowerSwapCards, jack.SpecialPower)
	a.True(jack.HasSpecialPower())

	queen := CardFromString("12s")
	a.Equal(PowerPeekAtCard, queen.SpecialPower)

	ace := CardFromString("1d")
	a.Equal(1, ace.Points)
	a.Equal(PowerNone, ace.SpecialPower)
	a.False(ace.HasSpecialPower())

	joker := CardFromString("0j")
	a.True(joker.IsJoker())
	a.Equal(0, joker.Points)

	a.Nil(CardFromString(""))
	a.Panics(func() { CardFromString("14c") })
	a.Panics(func() { CardFromString("0c") })
	a.Panics(func() { CardFromString("5j") })

	a.Equal("1h,11c,0j", CardsToString(CardsFromString("1h, 11c,0j")))
}

func TestParseRank(t *testing.T) {
	a := assert.New(t)

	for name, rank := range map[string]Rank{"ace": Ace, "2": 2, "10": 10, "jack": Jack, "Queen": Queen, "KING": King, "joker": Joker} {
		r, err := ParseRank(name)
		a.NoError(err)
		a.Equal(rank, r)
	}

	_, err := ParseRank("11")
	a.ErrorIs(err, ErrUnknownRank)
	_, err = ParseRank("1")
	a.ErrorIs(err, ErrUnknownRank)

	_, err = ParseSuit("stars")
	a.ErrorIs(err, ErrUnknownSuit)
}

func TestCard_projections(t *testing.T) {
	a := assert.New(t)

	card := CardFromString("12h")
	card.ID = "m1-abc"

	down := card.FaceDown()
	a.True(down.IsFaceDown())
	a.Equal("m1-abc", down.ID)
	a.False(down.HasSpecialPower())
	a.False(down.IsJoker())

	b, err := json.Marshal(down)
	a.NoError(err)
	a.JSONEq(`{"cardId":"m1-abc","rank":"?","suit":"?","points":0,"specialPower":"none","faceDown":true}`, string(b))

	b, err = json.Marshal(card)
	a.NoError(err)
	a.JSONEq(`{"cardId":"m1-abc","rank":"queen","suit":"hearts","points":10,"specialPower":"peek_at_card"}`, string(b))

	var decoded Card
	a.NoError(json.Unmarshal(b, &decoded))
	a.Equal(*card, decoded)

	var decodedDown Card
	a.NoError(json.Unmarshal([]byte(`{"cardId":"x","rank":"?","suit":"?"}`), &decodedDown))
	a.True(decodedDown.IsFaceDown())

	up := card.FaceUp()
	a.Equal(card, up)
	a.NotSame(card, up)
}
