package recall

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"recall-server/pkg/deck"
)

// CollectionSize is the number of collection cards that wins the game outright
const CollectionSize = 4

// Result is the outcome of a finished round
type Result struct {
	MatchID        string          `json:"matchId"`
	Winners        []string        `json:"winners"`
	RecallCalledBy string          `json:"recallCalledBy,omitempty"`
	Reason         string          `json:"reason"`
	Turns          int             `json:"turns"`
	StartTime      time.Time       `json:"startTime"`
	EndTime        time.Time       `json:"endTime"`
	Players        []*PlayerResult `json:"players"`
}

// PlayerResult is a player's final hand and score
type PlayerResult struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"displayName"`
	IsHuman     bool         `json:"isHuman"`
	Difficulty  Difficulty   `json:"difficulty,omitempty"`
	Score       int          `json:"score"`
	Hand        []*deck.Card `json:"hand"`
	Winner      bool         `json:"winner"`
}

// IsWinner returns true if the player ID is one of the winners
func (r *Result) IsWinner(playerID string) bool {
	for _, id := range r.Winners {
		if id == playerID {
			return true
		}
	}

	return false
}

// HandScore returns the point total of the cards in the hand plus the drawn card
func HandScore(index *deck.Index, p *Player) int {
	score := 0
	for _, c := range p.Hand.Cards() {
		if full := index.Resolve(c); full != nil {
			score += full.Points
		}
	}

	if p.DrawnCard != nil {
		score += p.DrawnCard.Points
	}

	return score
}

// DetermineWinners returns the players with the lowest score
// When the recall caller is part of a tie the caller wins alone
func DetermineWinners(scores map[string]int, order []string, recallCaller string) []string {
	if len(order) == 0 {
		return []string{}
	}

	low := scores[order[0]]
	for _, id := range order {
		if scores[id] < low {
			low = scores[id]
		}
	}

	winners := make([]string, 0)
	for _, id := range order {
		if scores[id] == low {
			winners = append(winners, id)
		}
	}

	if len(winners) > 1 && recallCaller != "" {
		for _, id := range winners {
			if id == recallCaller {
				return []string{recallCaller}
			}
		}
	}

	return winners
}

// collectionPriority breaks point ties when choosing a collection card
func collectionPriority(r deck.Rank) int {
	switch {
	case r == deck.Ace:
		return 0
	case r.IsNumber():
		return 1
	case r == deck.King:
		return 2
	case r == deck.Queen:
		return 3
	case r == deck.Jack:
		return 4
	}

	return 5
}

// chooseCollectionCard returns the card with the fewest points, jokers excluded
func chooseCollectionCard(cards []*deck.Card) *deck.Card {
	candidates := make([]*deck.Card, 0, len(cards))
	for _, c := range cards {
		if c != nil && !c.IsJoker() {
			candidates = append(candidates, c)
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Points != candidates[j].Points {
			return candidates[i].Points < candidates[j].Points
		}

		return collectionPriority(candidates[i].Rank) < collectionPriority(candidates[j].Rank)
	})

	return candidates[0]
}

// endRound scores every hand and ends the match
// A non-empty winner ends the match in that player's favor regardless of points
func (r *Round) endRound(winner string, reason string) {
	st := r.state
	if st.IsOver() || st.Phase == PhaseEndingRound {
		return
	}

	r.cancelAll()
	st.Phase = PhaseEndingRound
	st.ActiveSpecial = nil
	st.PendingSpecials = nil
	r.emit(KeyPhase)

	scores := make(map[string]int, len(st.Players))
	order := make([]string, 0, len(st.Players))
	for _, p := range st.Players {
		p.Score = HandScore(st.Index, p)
		scores[p.ID] = p.Score
		order = append(order, p.ID)
	}

	if winner != "" {
		st.Winners = []string{winner}
	} else {
		st.Winners = DetermineWinners(scores, order, st.RecallCallerID)
	}

	result := &Result{
		MatchID:        st.MatchID,
		Winners:        append([]string{}, st.Winners...),
		RecallCalledBy: st.RecallCallerID,
		Reason:         reason,
		Turns:          st.TurnNumber,
		StartTime:      st.GameStartTime,
		EndTime:        time.Now(),
		Players:        make([]*PlayerResult, 0, len(st.Players)),
	}

	st.Phase = PhaseGameEnded
	for _, p := range st.Players {
		pr := &PlayerResult{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			IsHuman:     p.IsHuman,
			Score:       p.Score,
			Hand:        make([]*deck.Card, 0, len(p.Hand)),
			Winner:      result.IsWinner(p.ID),
		}

		if !p.IsHuman {
			pr.Difficulty = p.Difficulty
		}

		for _, c := range p.Hand.Cards() {
			pr.Hand = append(pr.Hand, st.Index.Resolve(c))
		}

		result.Players = append(result.Players, pr)

		status := StatusFinished
		if pr.Winner {
			status = StatusWinner
		}

		r.setStatus(p, status, false, false)
	}

	r.result = result

	r.logger.WithFields(logrus.Fields{
		"winners": result.Winners,
		"reason":  reason,
		"turns":   result.Turns,
	}).Info("round ended")

	names := make([]string, 0, len(result.Winners))
	for _, id := range result.Winners {
		if p, ok := st.PlayerByID(id); ok {
			names = append(names, p.DisplayName)
		}
	}
	r.log("", "Game over (%s), winner: %v", reason, names)

	r.emit(KeyPhase, KeyWinners, KeyGameEnded, KeyResult)

	if r.onEnd != nil {
		r.onEnd(result)
	}
}
