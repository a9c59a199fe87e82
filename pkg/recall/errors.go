package recall

import (
	"errors"
	"fmt"
)

// ErrPlayerNotFound is returned when an event names a player that is not in the match
var ErrPlayerNotFound = errors.New("player not found")

// ErrWrongPhase is returned when an event arrives in a phase that does not accept it
var ErrWrongPhase = errors.New("action not allowed in the current phase")

// ErrNotPlayersTurn is returned when it's not the player's turn
var ErrNotPlayersTurn = errors.New("not player's turn")

// ErrInvalidStatus is returned when the player's status does not allow the action
var ErrInvalidStatus = errors.New("action not allowed with the player's status")

// ErrCardNotInHand happens when the player references a card they don't hold
var ErrCardNotInHand = errors.New("card is not in player's hand")

// ErrCardNotFound is returned when a card ID cannot be resolved
var ErrCardNotFound = errors.New("card not found")

// ErrCollectionCard is returned when a collection-rank card is played or swapped
var ErrCollectionCard = errors.New("collection cards cannot be moved")

// ErrInitialPeekSelection is returned for an invalid initial peek selection
var ErrInitialPeekSelection = errors.New("select one or two different cards from your hand")

// ErrEmptyDrawPile is returned when there is nothing left to draw
var ErrEmptyDrawPile = errors.New("the draw pile is empty")

// ErrEmptyDiscardPile is returned when drawing from an empty discard pile
var ErrEmptyDiscardPile = errors.New("the discard pile is empty")

// ErrCannotCollect is returned when the top discard does not match the player's collection rank
var ErrCannotCollect = errors.New("the top discard does not match your collection rank")

// ErrRecallAlreadyCalled is returned when recall is called twice
var ErrRecallAlreadyCalled = errors.New("recall has already been called")

// ErrGameIsOver is an error when an action is attempted on an ended game
var ErrGameIsOver = errors.New("game is over")

// ErrDuplicatePlayer is returned when two players share an ID
var ErrDuplicatePlayer = errors.New("duplicate players detected")

// ErrNotEnoughCards is returned when the deck cannot cover the deal
var ErrNotEnoughCards = errors.New("not enough cards to deal")

// ErrNoScheduler is returned when a round is created without a scheduler
var ErrNoScheduler = errors.New("a scheduler is required")

// ErrUnknownEvent is returned for an event name the engine does not route
var ErrUnknownEvent = errors.New("unknown event")

// PlayerCountError is an error on the number of players in the game
type PlayerCountError struct {
	Min int
	Max int
	Got int
}

func (p PlayerCountError) Error() string {
	return fmt.Sprintf("expected %d-%d players, got %d", p.Min, p.Max, p.Got)
}

// PayloadError is returned when an inbound payload is missing or has a malformed field
type PayloadError struct {
	Event EventKind
	Field string
}

func (p PayloadError) Error() string {
	return fmt.Sprintf("%s: missing or invalid %s", p.Event, p.Field)
}

// ErrSameCard is returned when a swap names the same card twice
var ErrSameCard = errors.New("cannot swap a card with itself")

// ErrNoActiveSpecial is returned when a special power event arrives for someone else's power
var ErrNoActiveSpecial = errors.New("no special power is waiting for the player")
