package ai

import (
	"recall-server/pkg/recall"
)

// SpecialPolicy chooses the targets of jack and queen powers
type SpecialPolicy interface {
	Swap(ctx *Context) recall.Decision
	Peek(ctx *Context) recall.Decision
}

// NewSpecialPolicy returns the policy for the configured name
func NewSpecialPolicy(name string) SpecialPolicy {
	if name == SpecialPeekOwn {
		return PeekOwnPolicy{}
	}

	return DeclinePolicy{}
}

// DeclinePolicy never uses a special power
type DeclinePolicy struct{}

// Swap declines
func (DeclinePolicy) Swap(*Context) recall.Decision {
	return recall.Decision{Kind: recall.EventJackSwap, Reason: "decline"}
}

// Peek declines
func (DeclinePolicy) Peek(*Context) recall.Decision {
	return recall.Decision{Kind: recall.EventQueenPeek, Reason: "decline"}
}

// PeekOwnPolicy uses queens to look at the player's own unknown cards, then at opponents' cards
// Jacks are declined
type PeekOwnPolicy struct {
	DeclinePolicy
}

// Peek targets a random unknown own card, or a random unseen opponent card
func (PeekOwnPolicy) Peek(ctx *Context) recall.Decision {
	if len(ctx.Unknown) > 0 {
		card := ctx.Unknown[ctx.intn(len(ctx.Unknown))]
		return recall.Decision{
			Kind:   recall.EventQueenPeek,
			Act:    true,
			First:  recall.CardTarget{PlayerID: ctx.Player.ID, CardID: card.ID},
			Reason: "peek_own_unknown",
		}
	}

	unseen := make([]recall.CardTarget, 0)
	for _, t := range ctx.opponentCards() {
		if ctx.Player.Knows(t.PlayerID, t.CardID) == nil {
			unseen = append(unseen, t)
		}
	}

	if len(unseen) == 0 {
		return DeclinePolicy{}.Peek(ctx)
	}

	return recall.Decision{
		Kind:   recall.EventQueenPeek,
		Act:    true,
		First:  unseen[ctx.intn(len(unseen))],
		Reason: "peek_opponent",
	}
}
