package recall

// Phase is the phase of a match
type Phase string

// Phase constants
const (
	PhaseWaitingForPlayers Phase = "waiting_for_players"
	PhaseDealingCards      Phase = "dealing_cards"
	PhaseInitialPeek       Phase = "initial_peek"
	PhasePlayerTurn        Phase = "player_turn"
	PhaseSameRankWindow    Phase = "same_rank_window"
	PhaseSpecialPlayWindow Phase = "special_play_window"
	PhaseTurnPendingEvents Phase = "turn_pending_events"
	PhaseEndingTurn        Phase = "ending_turn"
	PhaseEndingRound       Phase = "ending_round"
	PhaseRecallCalled      Phase = "recall_called"
	PhaseGameEnded         Phase = "game_ended"
)

// isTurnPhase returns true for the phases in which the current player draws and plays
func (p Phase) isTurnPhase() bool {
	return p == PhasePlayerTurn || p == PhaseRecallCalled
}

// allowsCollection returns true if collecting from the discard pile is allowed in the phase
func (p Phase) allowsCollection() bool {
	switch p {
	case PhaseWaitingForPlayers, PhaseDealingCards, PhaseInitialPeek, PhaseEndingRound, PhaseGameEnded:
		return false
	}

	return true
}

// PlayerStatus is a player's position within a phase
type PlayerStatus string

// PlayerStatus constants
const (
	StatusWaiting        PlayerStatus = "waiting"
	StatusInitialPeek    PlayerStatus = "initial_peek"
	StatusDrawingCard    PlayerStatus = "drawing_card"
	StatusPlayingCard    PlayerStatus = "playing_card"
	StatusSameRankWindow PlayerStatus = "same_rank_window"
	StatusJackSwap       PlayerStatus = "jack_swap"
	StatusQueenPeek      PlayerStatus = "queen_peek"
	StatusPeeking        PlayerStatus = "peeking"
	StatusFinished       PlayerStatus = "finished"
	StatusDisconnected   PlayerStatus = "disconnected"
	StatusWinner         PlayerStatus = "winner"
)

// Difficulty is the skill tier of a computer player
type Difficulty string

// Difficulty constants
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// Difficulties lists every tier from easiest to hardest
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert}

// ParseDifficulty returns the difficulty for a name
func ParseDifficulty(s string) (Difficulty, bool) {
	for _, d := range Difficulties {
		if string(d) == s {
			return d, true
		}
	}

	return "", false
}
