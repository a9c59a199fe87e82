package ai

import (
	"recall-server/pkg/deck"
)

// Match is the outcome of a rule evaluation
type Match struct {
	Rule string
	Card *deck.Card
}

// Evaluate returns the card chosen by the first rule whose filter matches and whose selection yields a card
func (c *Context) Evaluate(rules []Rule) (Match, bool) {
	for _, r := range rules {
		if !c.filter(r.Filter) {
			continue
		}

		if card := c.selectCard(r.Selection); card != nil {
			return Match{Rule: r.Name, Card: card}, true
		}
	}

	return Match{}, false
}

func (c *Context) filter(f Filter) bool {
	if f.RequireOptimal && !c.optimal {
		return false
	}

	if f.RequireMistake && !c.mistake {
		return false
	}

	if f.NonEmpty != "" && len(c.Set(f.NonEmpty)) == 0 {
		return false
	}

	return true
}

// selectCard applies the selection, collection cards are never candidates
func (c *Context) selectCard(s Selection) *deck.Card {
	excluded := make(map[deck.Rank]bool, len(s.ExcludeRanks))
	for _, r := range s.ExcludeRanks {
		excluded[r] = true
	}

	candidates := make([]*deck.Card, 0)
	for _, card := range c.Set(s.From) {
		if c.Collection[card.ID] {
			continue
		}

		if !card.IsFaceDown() && excluded[card.Rank] {
			continue
		}

		candidates = append(candidates, card)
	}

	if len(candidates) == 0 {
		return nil
	}

	switch s.Policy {
	case PolicyHighestPoints, PolicyLowestPoints:
		best := candidates[0]
		for _, card := range candidates[1:] {
			if s.Policy == PolicyHighestPoints && card.Points > best.Points {
				best = card
			} else if s.Policy == PolicyLowestPoints && card.Points < best.Points {
				best = card
			}
		}

		return best
	}

	return candidates[c.intn(len(candidates))]
}

// builtinPlay is used when no rule applies
// An optimal player discards an unknown card, then its highest known card that is not a jack.
// Otherwise any legal card is played.
func (c *Context) builtinPlay() Match {
	if c.optimal {
		if m, ok := c.Evaluate([]Rule{
			{Name: "builtin_unknown", Selection: Selection{From: SetUnknown, Policy: PolicyRandom}},
			{Name: "builtin_highest_known", Selection: Selection{From: SetKnown, Policy: PolicyHighestPoints, ExcludeRanks: []deck.Rank{deck.Jack}}},
		}); ok {
			return m
		}
	}

	m, _ := c.Evaluate([]Rule{
		{Name: "builtin_random", Selection: Selection{From: SetPlayable, Policy: PolicyRandom}},
	})

	return m
}

// builtinSameRank contests with a wrong card on a mistake roll, otherwise with a known matching card
func (c *Context) builtinSameRank() (Match, bool) {
	rules := []Rule{
		{Name: "builtin_matching", Selection: Selection{From: SetMatching, Policy: PolicyRandom}},
	}

	if c.mistake {
		rules = append([]Rule{{Name: "builtin_wrong", Selection: Selection{From: SetMismatched, Policy: PolicyRandom}}}, rules...)
	}

	return c.Evaluate(rules)
}
