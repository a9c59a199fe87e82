package recall

import (
	"github.com/sirupsen/logrus"

	"recall-server/pkg/deck"
)

func (r *Round) openSameRankWindow(rank deck.Rank) {
	st := r.state
	st.Phase = PhaseSameRankWindow
	st.SameRankRank = rank

	for _, p := range st.Players {
		if p.isActive() {
			r.setStatus(p, StatusSameRankWindow, false, true)
		}
	}

	r.sameRankTimer = r.schedule(r.opts.SameRankWindow, r.closeSameRankWindow)
	r.emit(KeyPhase, KeySameRankRank)

	for _, p := range st.Players {
		if p.isActive() {
			r.promptComputer(p, EventSameRankPlay)
		}
	}
}

// SameRankPlay discards a hand card matching the rank of the last played card
// A card of the wrong rank stays in the hand and the player draws a penalty card
func (r *Round) SameRankPlay(playerID string, cardID string) error {
	st := r.state
	if st.Phase != PhaseSameRankWindow {
		return ErrWrongPhase
	}

	p, ok := st.PlayerByID(playerID)
	if !ok {
		return ErrPlayerNotFound
	}

	if p.Status != StatusSameRankWindow {
		return ErrInvalidStatus
	}

	if !p.Hand.HasCard(cardID) {
		return ErrCardNotInHand
	}

	if p.IsCollectionCard(cardID) {
		return ErrCollectionCard
	}

	card := r.callback.GetCardByID(st, cardID)
	if card == nil {
		return ErrCardNotFound
	}

	log := r.logger.WithFields(logrus.Fields{
		"playerId": p.ID,
		"card":     card.String(),
		"rank":     st.SameRankRank.String(),
	})

	if card.Rank != st.SameRankRank {
		log.Info("wrong same rank play")
		r.log(p.ID, "tried to match with %s and drew a penalty card", card)

		if penalty := r.drawFromPile(); penalty != nil {
			p.Hand.Append(penalty.FaceDown())
		}

		r.emit(KeyDrawPileCount)
		return nil
	}

	p.Hand.Remove(cardID)
	r.discard(card)
	if card.HasSpecialPower() {
		r.queueSpecial(p, card)
	}

	log.Info("same rank play")
	r.log(p.ID, "matched with %s", card)

	return nil
}

func (r *Round) closeSameRankWindow() {
	st := r.state
	if st.Phase != PhaseSameRankWindow {
		return
	}

	r.cancelTimer(&r.sameRankTimer)
	for _, p := range st.Players {
		if p.Status == StatusSameRankWindow {
			r.setStatus(p, StatusWaiting, false, false)
		}
	}

	r.processNextSpecial()
}

func (r *Round) queueSpecial(p *Player, card *deck.Card) {
	r.state.PendingSpecials = append(r.state.PendingSpecials, &PendingSpecial{
		PlayerID: p.ID,
		Card:     card.FaceUp(),
		Power:    card.SpecialPower,
	})
}

// processNextSpecial opens the window for the next queued power, or ends the turn
func (r *Round) processNextSpecial() {
	st := r.state
	for len(st.PendingSpecials) > 0 {
		s := st.PendingSpecials[0]
		st.PendingSpecials = st.PendingSpecials[1:]

		p, ok := st.PlayerByID(s.PlayerID)
		if !ok || !p.isActive() {
			continue
		}

		status, kind := StatusQueenPeek, EventQueenPeek
		if s.Power == deck.PowerSwapCards {
			status, kind = StatusJackSwap, EventJackSwap
		}

		st.ActiveSpecial = s
		st.Phase = PhaseSpecialPlayWindow
		r.setStatus(p, status, true, true)
		r.specialTimer = r.schedule(r.opts.SpecialWindow, func() {
			r.specialTimeout(s)
		})

		r.emit(KeyPhase, KeyActiveSpecial)
		r.promptComputer(p, kind)
		return
	}

	st.ActiveSpecial = nil
	r.endTurn()
}

func (r *Round) specialTimeout(s *PendingSpecial) {
	if r.state.ActiveSpecial != s {
		return
	}

	p, ok := r.state.PlayerByID(s.PlayerID)
	if !ok {
		return
	}

	if p.Status == StatusJackSwap || p.Status == StatusQueenPeek {
		r.log(p.ID, "did not use %s", s.Card)
		r.finishSpecial(p)
	}
}

func (r *Round) finishSpecial(p *Player) {
	r.cancelTimer(&r.specialTimer)
	r.state.ActiveSpecial = nil
	r.setStatus(p, StatusWaiting, false, false)
	r.processNextSpecial()
}

// activeSpecial validates that the player owns the active power with the wanted status
func (r *Round) activeSpecial(playerID string, status PlayerStatus) (*Player, error) {
	st := r.state
	if st.Phase != PhaseSpecialPlayWindow {
		return nil, ErrWrongPhase
	}

	p, ok := st.PlayerByID(playerID)
	if !ok {
		return nil, ErrPlayerNotFound
	}

	if st.ActiveSpecial == nil || st.ActiveSpecial.PlayerID != p.ID {
		return nil, ErrNoActiveSpecial
	}

	if p.Status != status {
		return nil, ErrInvalidStatus
	}

	return p, nil
}

// JackSwap swaps two hand cards, possibly between two players
// Whatever anyone knew about either card follows the card to its new owner
func (r *Round) JackSwap(playerID string, first, second CardTarget) error {
	p, err := r.activeSpecial(playerID, StatusJackSwap)
	if err != nil {
		return err
	}

	st := r.state
	ownerA, ok := st.PlayerByID(first.PlayerID)
	if !ok {
		return ErrPlayerNotFound
	}

	ownerB, ok := st.PlayerByID(second.PlayerID)
	if !ok {
		return ErrPlayerNotFound
	}

	if first.CardID == second.CardID {
		return ErrSameCard
	}

	ia := ownerA.Hand.IndexOf(first.CardID)
	ib := ownerB.Hand.IndexOf(second.CardID)
	if ia < 0 || ib < 0 {
		return ErrCardNotInHand
	}

	if ownerA.IsCollectionCard(first.CardID) || ownerB.IsCollectionCard(second.CardID) {
		return ErrCollectionCard
	}

	ownerA.Hand[ia], ownerB.Hand[ib] = ownerB.Hand[ib], ownerA.Hand[ia]
	if ownerA != ownerB {
		for _, q := range st.Players {
			q.moveKnowledge(first.CardID, ownerA.ID, ownerB.ID)
			q.moveKnowledge(second.CardID, ownerB.ID, ownerA.ID)
		}
	}

	r.logger.WithFields(logrus.Fields{
		"playerId": p.ID,
		"first":    first.PlayerID,
		"second":   second.PlayerID,
	}).Info("jack swap")

	if ownerA == ownerB {
		r.log(p.ID, "swapped two of %s's cards", ownerA.DisplayName)
	} else {
		r.log(p.ID, "swapped a card of %s with a card of %s", ownerA.DisplayName, ownerB.DisplayName)
	}

	r.finishSpecial(p)
	return nil
}

// QueenPeek reveals a hand card to the player for the peek reveal delay
func (r *Round) QueenPeek(playerID string, target CardTarget) error {
	p, err := r.activeSpecial(playerID, StatusQueenPeek)
	if err != nil {
		return err
	}

	st := r.state
	owner, ok := st.PlayerByID(target.PlayerID)
	if !ok {
		return ErrPlayerNotFound
	}

	if !owner.Hand.HasCard(target.CardID) {
		return ErrCardNotInHand
	}

	card := r.callback.GetCardByID(st, target.CardID)
	if card == nil {
		return ErrCardNotFound
	}

	p.Learn(owner.ID, card)

	active := st.ActiveSpecial
	r.cancelTimer(&r.specialTimer)
	r.setStatus(p, StatusPeeking, true, true)

	if owner == p {
		r.log(p.ID, "looked at one of their own cards")
	} else {
		r.log(p.ID, "looked at one of %s's cards", owner.DisplayName)
	}

	r.schedule(r.opts.PeekRevealDelay, func() {
		if st.ActiveSpecial == active && p.Status == StatusPeeking {
			r.finishSpecial(p)
		}
	})

	return nil
}

// SkipSpecial declines the active power
func (r *Round) SkipSpecial(playerID string) error {
	st := r.state
	if st.Phase != PhaseSpecialPlayWindow {
		return ErrWrongPhase
	}

	p, ok := st.PlayerByID(playerID)
	if !ok {
		return ErrPlayerNotFound
	}

	if st.ActiveSpecial == nil || st.ActiveSpecial.PlayerID != p.ID {
		return ErrNoActiveSpecial
	}

	if p.Status != StatusJackSwap && p.Status != StatusQueenPeek {
		return ErrInvalidStatus
	}

	r.log(p.ID, "skipped %s", st.ActiveSpecial.Card)
	r.finishSpecial(p)

	return nil
}

// CollectFromDiscard moves the top discard into the player's collection
// Completing the collection wins the game
func (r *Round) CollectFromDiscard(playerID string) error {
	st := r.state
	if !st.Phase.allowsCollection() {
		return ErrWrongPhase
	}

	p, ok := st.PlayerByID(playerID)
	if !ok {
		return ErrPlayerNotFound
	}

	top := st.TopDiscard()
	if top == nil {
		return ErrEmptyDiscardPile
	}

	if !p.HasCollection() || top.IsJoker() || top.Rank != p.CollectionRank {
		return ErrCannotCollect
	}

	card := r.popDiscard()
	p.Hand.Append(card.FaceDown())
	p.CollectionRankCards = append(p.CollectionRankCards, card)
	for _, q := range st.Players {
		q.Forget(card.ID)
	}

	r.logger.WithFields(logrus.Fields{
		"playerId":  p.ID,
		"collected": len(p.CollectionRankCards),
	}).Info("collected from discard")
	r.log(p.ID, "collected %s", card)

	r.callback.OnPlayerStatusChanged(p.Status, p.ID, true, false)
	r.discardChanged()

	if len(p.CollectionRankCards) >= CollectionSize {
		r.endRound(p.ID, p.DisplayName+" completed their collection")
	}

	return nil
}
