package recall

import (
	"fmt"

	"recall-server/pkg/deck"
)

// Player is a participant in a match
type Player struct {
	ID          string
	DisplayName string
	IsHuman     bool
	Difficulty  Difficulty
	Status      PlayerStatus
	Connected   bool

	Hand deck.Hand
	// DrawnCard is the full card the current player is holding between draw and play
	DrawnCard        *deck.Card
	drawnFromDiscard bool

	// KnownCards maps owner ID -> card ID -> card for every card this player has legitimately seen
	KnownCards map[string]map[string]*deck.Card

	CollectionRank      deck.Rank
	CollectionRankCards []*deck.Card

	HasCompletedInitialPeek bool
	HasCalledRecall         bool
	Score                   int
}

// PlayerSpec describes a seat when creating a match
type PlayerSpec struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName"`
	IsHuman     bool       `json:"isHuman"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
}

// NewPlayer returns a player for the seat
func NewPlayer(spec PlayerSpec) *Player {
	name := spec.DisplayName
	if name == "" {
		name = spec.ID
	}

	difficulty := spec.Difficulty
	if difficulty == "" {
		difficulty = DifficultyMedium
	}

	return &Player{
		ID:          spec.ID,
		DisplayName: name,
		IsHuman:     spec.IsHuman,
		Difficulty:  difficulty,
		Status:      StatusWaiting,
		Connected:   !spec.IsHuman,
		KnownCards:  make(map[string]map[string]*deck.Card),
	}
}

func (p *Player) String() string {
	return fmt.Sprintf("Player{ID: %s, Name: %s}", p.ID, p.DisplayName)
}

// HasCollection returns true once a collection rank has been chosen
func (p *Player) HasCollection() bool {
	return len(p.CollectionRankCards) > 0
}

// IsCollectionCard returns true if the card ID is one of the player's collection cards
func (p *Player) IsCollectionCard(id string) bool {
	for _, c := range p.CollectionRankCards {
		if c.ID == id {
			return true
		}
	}

	return false
}

// Learn records that the player has seen card in owner's hand
// The player's own collection cards are never recorded
func (p *Player) Learn(ownerID string, card *deck.Card) {
	if card == nil || card.IsFaceDown() {
		return
	}

	if ownerID == p.ID && p.IsCollectionCard(card.ID) {
		return
	}

	if p.KnownCards == nil {
		p.KnownCards = make(map[string]map[string]*deck.Card)
	}

	known, ok := p.KnownCards[ownerID]
	if !ok {
		known = make(map[string]*deck.Card)
		p.KnownCards[ownerID] = known
	}

	known[card.ID] = card.FaceUp()
}

// Knows returns the known card for owner and card ID, or nil
func (p *Player) Knows(ownerID, cardID string) *deck.Card {
	if c, ok := p.KnownCards[ownerID][cardID]; ok {
		return c.FaceUp()
	}

	return nil
}

// Forget drops the card from every owner's entry
func (p *Player) Forget(cardID string) {
	for owner, known := range p.KnownCards {
		delete(known, cardID)
		if len(known) == 0 {
			delete(p.KnownCards, owner)
		}
	}
}

// moveKnowledge re-files a known card from one owner to another
func (p *Player) moveKnowledge(cardID, fromOwner, toOwner string) {
	c, ok := p.KnownCards[fromOwner][cardID]
	if !ok {
		return
	}

	delete(p.KnownCards[fromOwner], cardID)
	if len(p.KnownCards[fromOwner]) == 0 {
		delete(p.KnownCards, fromOwner)
	}

	p.Learn(toOwner, c)
}

// setCollection makes card the player's collection card
func (p *Player) setCollection(card *deck.Card) {
	p.CollectionRank = card.Rank
	p.CollectionRankCards = []*deck.Card{card.FaceUp()}
	p.Forget(card.ID)
}

// isActive returns true if the player still takes part in the round
func (p *Player) isActive() bool {
	return p.Status != StatusFinished && p.Status != StatusWinner
}
