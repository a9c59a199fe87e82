package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnknownRank is returned when a rank name cannot be parsed
var ErrUnknownRank = errors.New("unknown rank")

// ErrUnknownSuit is returned when a suit name cannot be parsed
var ErrUnknownSuit = errors.New("unknown suit")

// Suit represents a card suit
type Suit string

// suit constants
const (
	Hearts   Suit = "hearts"
	Clubs    Suit = "clubs"
	Diamonds Suit = "diamonds"
	Spades   Suit = "spades"
	// JokerSuit is the suit every joker carries
	JokerSuit Suit = "joker"
)

// StandardSuits are the four suits in deck order
var StandardSuits = []Suit{Hearts, Diamonds, Clubs, Spades}

// ParseSuit returns the suit for the name
func ParseSuit(s string) (Suit, error) {
	switch Suit(strings.ToLower(s)) {
	case Hearts:
		return Hearts, nil
	case Clubs:
		return Clubs, nil
	case Diamonds:
		return Diamonds, nil
	case Spades:
		return Spades, nil
	case JokerSuit:
		return JokerSuit, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownSuit, s)
}

// Rank is the rank of a card
type Rank int

// rank constants
const (
	Joker Rank = 0
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

// StandardRanks are the thirteen non-joker ranks in deck order
var StandardRanks = []Rank{Ace, 2, 3, 4, 5, 6, 7, 8, 9, 10, Jack, Queen, King}

// String returns the name used in configuration and JSON
func (r Rank) String() string {
	switch r {
	case Joker:
		return "joker"
	case Ace:
		return "ace"
	case Jack:
		return "jack"
	case Queen:
		return "queen"
	case King:
		return "king"
	}

	return strconv.Itoa(int(r))
}

// IsNumber returns true for the ranks 2 through 10
func (r Rank) IsNumber() bool {
	return r >= 2 && r <= 10
}

// MarshalText encodes the rank by name
func (r Rank) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a rank name
func (r *Rank) UnmarshalText(b []byte) error {
	rank, err := ParseRank(string(b))
	if err != nil {
		return err
	}

	*r = rank
	return nil
}

// MarshalYAML encodes the rank by name
func (r Rank) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}

// UnmarshalYAML decodes a rank name
func (r *Rank) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	return r.UnmarshalText([]byte(s))
}

// ParseRank returns the rank for a name (ace, 2..10, jack, queen, king, joker)
func ParseRank(s string) (Rank, error) {
	switch strings.ToLower(s) {
	case "joker":
		return Joker, nil
	case "ace", "a":
		return Ace, nil
	case "jack", "j":
		return Jack, nil
	case "queen", "q":
		return Queen, nil
	case "king", "k":
		return King, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 2 || n > 10 {
		return 0, fmt.Errorf("%w: %s", ErrUnknownRank, s)
	}

	return Rank(n), nil
}

// SpecialPower is the power a card grants when it is played
type SpecialPower string

// special powers
const (
	PowerNone       SpecialPower = "none"
	PowerPeekAtCard SpecialPower = "peek_at_card"
	PowerSwapCards  SpecialPower = "swap_cards"
)

// ParseSpecialPower returns the power for a name
func ParseSpecialPower(s string) (SpecialPower, error) {
	switch SpecialPower(s) {
	case "", PowerNone:
		return PowerNone, nil
	case PowerPeekAtCard:
		return PowerPeekAtCard, nil
	case PowerSwapCards:
		return PowerSwapCards, nil
	}

	return "", fmt.Errorf("unknown special power: %s", s)
}

// Card is an individual playing card
// A card either carries full data (face up) or only its ID (face down)
type Card struct {
	ID           string
	Rank         Rank
	Suit         Suit
	Points       int
	SpecialPower SpecialPower

	faceDown bool
}

type cardJSON struct {
	ID           string       `json:"cardId"`
	Rank         string       `json:"rank"`
	Suit         string       `json:"suit"`
	Points       int          `json:"points"`
	SpecialPower SpecialPower `json:"specialPower"`
	FaceDown     bool         `json:"faceDown,omitempty"`
}

const hiddenValue = "?"

// MarshalJSON masks everything but the ID of a face-down card
func (c *Card) MarshalJSON() ([]byte, error) {
	if c.faceDown {
		return json.Marshal(cardJSON{
			ID:           c.ID,
			Rank:         hiddenValue,
			Suit:         hiddenValue,
			SpecialPower: PowerNone,
			FaceDown:     true,
		})
	}

	return json.Marshal(cardJSON{
		ID:           c.ID,
		Rank:         c.Rank.String(),
		Suit:         string(c.Suit),
		Points:       c.Points,
		SpecialPower: c.SpecialPower,
	})
}

// UnmarshalJSON decodes either projection
func (c *Card) UnmarshalJSON(b []byte) error {
	var cj cardJSON
	if err := json.Unmarshal(b, &cj); err != nil {
		return err
	}

	if cj.FaceDown || cj.Rank == hiddenValue {
		*c = Card{ID: cj.ID, faceDown: true}
		return nil
	}

	rank, err := ParseRank(cj.Rank)
	if err != nil {
		return err
	}

	suit, err := ParseSuit(cj.Suit)
	if err != nil {
		return err
	}

	*c = Card{
		ID:           cj.ID,
		Rank:         rank,
		Suit:         suit,
		Points:       cj.Points,
		SpecialPower: cj.SpecialPower,
	}

	return nil
}

// FaceDown returns the ID-only projection of the card
func (c *Card) FaceDown() *Card {
	return &Card{ID: c.ID, faceDown: true}
}

// FaceUp returns a copy of the card with its full data
// Calling FaceUp on a face-down projection returns another face-down projection, use an Index to resolve it
func (c *Card) FaceUp() *Card {
	cp := *c
	return &cp
}

// IsFaceDown returns true if this is an ID-only projection
func (c *Card) IsFaceDown() bool {
	return c.faceDown
}

// IsJoker returns true if the card is a joker
func (c *Card) IsJoker() bool {
	return !c.faceDown && c.Rank == Joker
}

// HasSpecialPower returns true if playing the card opens a special window
func (c *Card) HasSpecialPower() bool {
	return !c.faceDown && c.SpecialPower != "" && c.SpecialPower != PowerNone
}

func (c *Card) String() string {
	if c.faceDown {
		return "??"
	}

	var rank string
	switch c.Rank {
	case Joker:
		return "JK"
	case Ace:
		rank = "A"
	case Jack:
		rank = "J"
	case Queen:
		rank = "Q"
	case King:
		rank = "K"
	default:
		rank = strconv.Itoa(int(c.Rank))
	}

	var suit string
	switch c.Suit {
	case Clubs:
		suit = "♣"
	case Diamonds:
		suit = "♢"
	case Hearts:
		suit = "♡"
	case Spades:
		suit = "♠"
	default:
		suit = "?"
	}

	return fmt.Sprintf("%s%s", rank, suit)
}

// Equal returns true if the cards have the same rank and suit
func (c *Card) Equal(card *Card) bool {
	return c.Suit == card.Suit && c.Rank == card.Rank
}

var cardRx = regexp.MustCompile(`(?i)^([0-9]|1[0-3])([cdhsj])\z`)

// CardFromString returns a Card from the string.
// The string must be in the format of <rank><suit> where rank is 0 (joker) or 1 (ace) through 13 (king) and suit in [cdhsj]
// Points and special powers follow the default table. The card has no ID.
func CardFromString(s string) *Card {
	if s == "" {
		return nil
	}

	match := cardRx.FindStringSubmatch(s)
	if match == nil {
		panic(fmt.Sprintf("could not parse card: %s", s))
	}

	rank, err := strconv.Atoi(match[1])
	if err != nil {
		panic(fmt.Sprintf("could not parse card `%s`: %v", s, err))
	}

	var suit Suit
	switch strings.ToLower(match[2]) {
	case "c":
		suit = Clubs
	case "d":
		suit = Diamonds
	case "h":
		suit = Hearts
	case "s":
		suit = Spades
	case "j":
		suit = JokerSuit
	}

	if (rank == 0) != (suit == JokerSuit) {
		panic(fmt.Sprintf("jokers must use rank 0 and suit j: %s", s))
	}

	return newCard("", Rank(rank), suit, DefaultPoints, DefaultSpecialPowers)
}

// CardsFromString will return a slice of cards
func CardsFromString(s string) []*Card {
	if s == "" {
		return []*Card{}
	}

	cardStrings := strings.Split(s, ",")
	cards := make([]*Card, len(cardStrings))
	for i, card := range cardStrings {
		cards[i] = CardFromString(strings.TrimSpace(card))
	}

	return cards
}

// CardToString converts a card (Jack of Clubs) to a string (11c)
func CardToString(card *Card) string {
	if card == nil {
		return ""
	}

	if card.faceDown {
		return hiddenValue
	}

	var suit string
	switch card.Suit {
	case Clubs:
		suit = "c"
	case Hearts:
		suit = "h"
	case Diamonds:
		suit = "d"
	case Spades:
		suit = "s"
	case JokerSuit:
		suit = "j"
	}

	return fmt.Sprintf("%d%s", card.Rank, suit)
}

// CardsToString will convert a slice of cards to a string in the format of 2c,3h,4s,...
func CardsToString(cards []*Card) string {
	c := make([]string, len(cards))
	for i, card := range cards {
		c[i] = CardToString(card)
	}

	return strings.Join(c, ",")
}

func newCard(id string, rank Rank, suit Suit, points map[Rank]int, powers map[Rank]SpecialPower) *Card {
	power, ok := powers[rank]
	if !ok {
		power = PowerNone
	}

	return &Card{
		ID:           id,
		Rank:         rank,
		Suit:         suit,
		Points:       points[rank],
		SpecialPower: power,
	}
}
