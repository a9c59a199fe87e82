package recall

import (
	"github.com/sirupsen/logrus"

	"recall-server/pkg/deck"
)

// startTurn hands the turn to the player at index
func (r *Round) startTurn(index int) {
	st := r.state
	if st.IsOver() || st.Phase == PhaseEndingRound {
		return
	}

	st.CurrentPlayerIndex = index
	st.TurnNumber++
	st.Phase = PhasePlayerTurn
	if st.RecallCallerID != "" {
		st.Phase = PhaseRecallCalled
	}

	current := st.CurrentPlayer()
	for _, p := range st.Players {
		if p == current {
			r.setStatus(p, StatusDrawingCard, true, true)
		} else if p.isActive() && p.Status != StatusWaiting {
			r.setStatus(p, StatusWaiting, false, false)
		}
	}

	turn := st.TurnNumber
	r.cancelTimer(&r.turnTimer)
	r.turnTimer = r.schedule(r.opts.TurnTimeLimit, func() {
		r.handleTurnTimeout(turn)
	})

	r.logger.WithFields(logrus.Fields{
		"playerId": current.ID,
		"turn":     turn,
	}).Debug("turn started")

	r.emit(KeyPhase, KeyCurrentPlayer, KeyTurnNumber, KeyDrawPileCount)
	r.promptComputer(current, EventDrawCard)
}

// DrawCard takes the top card of the deck or the discard pile into the player's drawn slot
func (r *Round) DrawCard(playerID string, source DrawSource) error {
	p, err := r.currentPlayer(playerID, StatusDrawingCard)
	if err != nil {
		return err
	}

	var card *deck.Card
	switch source {
	case SourceDiscard:
		card = r.popDiscard()
		if card == nil {
			return ErrEmptyDiscardPile
		}
	case SourceDeck, "":
		source = SourceDeck
		if card = r.drawFromPile(); card == nil {
			return ErrEmptyDrawPile
		}
	default:
		return PayloadError{Event: EventDrawCard, Field: "source"}
	}

	p.DrawnCard = card
	p.drawnFromDiscard = source == SourceDiscard
	r.setStatus(p, StatusPlayingCard, true, true)

	if source == SourceDiscard {
		r.log(p.ID, "took %s from the discard pile", card)
		r.discardChanged()
	} else {
		r.log(p.ID, "drew a card")
	}

	r.emit(KeyDrawPileCount)
	r.promptComputer(p, EventPlayCard)

	return nil
}

// PlayCard discards a hand card or the drawn card
// A played hand card is replaced in its slot by the drawn card
func (r *Round) PlayCard(playerID string, cardID string) error {
	p, err := r.currentPlayer(playerID, StatusPlayingCard)
	if err != nil {
		return err
	}

	drawn := p.DrawnCard
	if drawn == nil {
		return ErrInvalidStatus
	}

	var played *deck.Card
	if cardID == drawn.ID {
		played = drawn
	} else {
		if !p.Hand.HasCard(cardID) {
			return ErrCardNotInHand
		}

		if p.IsCollectionCard(cardID) {
			return ErrCollectionCard
		}

		played = r.callback.GetCardByID(r.state, cardID)
		if played == nil {
			return ErrCardNotFound
		}

		p.Hand.Replace(cardID, drawn.FaceDown())
		p.Learn(p.ID, drawn)
		if p.drawnFromDiscard {
			for _, q := range r.state.Players {
				q.Learn(p.ID, drawn)
			}
		}
	}

	p.DrawnCard = nil
	p.drawnFromDiscard = false
	r.cancelTimer(&r.turnTimer)

	r.discard(played)
	if played.HasSpecialPower() {
		r.queueSpecial(p, played)
	}

	r.log(p.ID, "played %s", played)
	r.setStatus(p, StatusWaiting, false, false)
	r.openSameRankWindow(played.Rank)

	return nil
}

// CallRecall ends the caller's turn and gives everyone else one final turn
func (r *Round) CallRecall(playerID string) error {
	st := r.state
	if st.RecallCallerID != "" {
		return ErrRecallAlreadyCalled
	}

	p, err := r.currentPlayer(playerID, StatusDrawingCard)
	if err != nil {
		return err
	}

	st.RecallCallerID = p.ID
	p.HasCalledRecall = true
	st.Phase = PhaseRecallCalled
	r.cancelTimer(&r.turnTimer)

	r.logger.WithField("playerId", p.ID).Info("recall called")
	r.log(p.ID, "called Recall")
	r.setStatus(p, StatusWaiting, true, false)
	r.emit(KeyPhase, KeyRecallCalledBy)

	r.endTurn()
	return nil
}

// handleTurnTimeout draws and plays on behalf of the current player
func (r *Round) handleTurnTimeout(turn int) {
	st := r.state
	if st.TurnNumber != turn || !st.Phase.isTurnPhase() {
		return
	}

	p := st.CurrentPlayer()
	r.logger.WithField("playerId", p.ID).Info("turn timed out")
	r.log(p.ID, "ran out of time")

	if p.Status == StatusDrawingCard {
		if err := r.DrawCard(p.ID, SourceDeck); err != nil {
			r.logger.WithError(err).Warn("could not draw on timeout")
			r.endRound("", "no cards left to draw")
			return
		}
	}

	if p.Status == StatusPlayingCard && p.DrawnCard != nil {
		if err := r.PlayCard(p.ID, p.DrawnCard.ID); err != nil {
			r.logger.WithError(err).Error("could not play on timeout")
		}
	}
}

// endTurn moves to the next player or ends the round
func (r *Round) endTurn() {
	st := r.state
	if st.IsOver() || st.Phase == PhaseEndingRound {
		return
	}

	st.Phase = PhaseEndingTurn
	st.SameRankRank = 0
	r.cancelTimer(&r.turnTimer)
	r.emit(KeyPhase)

	for _, p := range st.Players {
		if p.Hand.Len() == 0 {
			r.endRound("", p.DisplayName+" has no cards left")
			return
		}
	}

	if !r.canDraw() {
		r.endRound("", "no cards left to draw")
		return
	}

	next := (st.CurrentPlayerIndex + 1) % len(st.Players)
	if st.RecallCallerID != "" && st.Players[next].ID == st.RecallCallerID {
		r.endRound("", "final lap complete")
		return
	}

	r.startTurn(next)
}

// currentPlayer validates that playerID holds the turn with the wanted status
func (r *Round) currentPlayer(playerID string, status PlayerStatus) (*Player, error) {
	st := r.state
	if !st.Phase.isTurnPhase() {
		return nil, ErrWrongPhase
	}

	p, ok := st.PlayerByID(playerID)
	if !ok {
		return nil, ErrPlayerNotFound
	}

	if st.CurrentPlayer() != p {
		return nil, ErrNotPlayersTurn
	}

	if p.Status != status {
		return nil, ErrInvalidStatus
	}

	return p, nil
}

func (r *Round) canDraw() bool {
	return len(r.state.DrawPile) > 0 || len(r.state.DiscardPile) > 1
}

// drawFromPile returns the full data of the top draw pile card
// An empty draw pile is refilled from the discard pile, all but the top card, shuffled
func (r *Round) drawFromPile() *deck.Card {
	st := r.state
	if len(st.DrawPile) == 0 {
		if len(st.DiscardPile) <= 1 {
			return nil
		}

		top := st.DiscardPile[len(st.DiscardPile)-1]
		refill := make([]*deck.Card, 0, len(st.DiscardPile)-1)
		for _, c := range st.DiscardPile[:len(st.DiscardPile)-1] {
			refill = append(refill, c.FaceDown())
		}

		deck.Shuffle(refill, r.rng)
		st.DrawPile = refill
		st.DiscardPile = []*deck.Card{top}

		r.logger.WithField("cards", len(refill)).Info("reshuffled discard pile into draw pile")
		r.log("", "The discard pile was shuffled into the draw pile")
		r.discardChanged()
	}

	top := st.DrawPile[0]
	st.DrawPile = st.DrawPile[1:]

	return st.Index.Resolve(top)
}

func (r *Round) popDiscard() *deck.Card {
	st := r.state
	top := st.TopDiscard()
	if top == nil {
		return nil
	}

	st.DiscardPile = st.DiscardPile[:len(st.DiscardPile)-1]
	return top.FaceUp()
}

// discard puts the card face up on the discard pile
// Nobody knows the card's position in a hand any more
func (r *Round) discard(card *deck.Card) {
	st := r.state
	st.DiscardPile = append(st.DiscardPile, st.Index.Resolve(card))
	for _, p := range st.Players {
		p.Forget(card.ID)
	}

	r.discardChanged()
}

func (r *Round) discardChanged() {
	r.callback.OnDiscardPileChanged()
	r.emit(KeyDiscardPile, KeyDrawPileCount)

	top := r.state.TopDiscard()
	if top == nil || !r.state.Phase.allowsCollection() {
		return
	}

	for _, p := range r.state.Players {
		if p.HasCollection() && p.CollectionRank == top.Rank && !top.IsJoker() {
			r.promptComputer(p, EventCollectFromDiscard)
		}
	}
}
