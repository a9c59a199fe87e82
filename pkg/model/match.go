package model

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"recall-server/pkg/db"
	"recall-server/pkg/deck"
	"recall-server/pkg/recall"
)

const pqDuplicateKeyErrorCode pq.ErrorCode = "23505"

// ErrDuplicateMatch is returned when a match is recorded twice
var ErrDuplicateMatch = errors.New("match already recorded")

// Match is a record in the `matches` table
type Match struct {
	ID             string         `json:"id"`
	Reason         string         `json:"reason"`
	RecallCalledBy string         `json:"recallCalledBy,omitempty"`
	Turns          int            `json:"turns"`
	Started        time.Time      `json:"started"`
	Ended          time.Time      `json:"ended"`
	Created        time.Time      `json:"created"`
	Players        []*MatchPlayer `json:"players"`
}

// MatchPlayer is a record in the `match_players` table
type MatchPlayer struct {
	PlayerID    string            `json:"playerId"`
	Seat        int               `json:"seat"`
	DisplayName string            `json:"displayName"`
	IsHuman     bool              `json:"isHuman"`
	Difficulty  recall.Difficulty `json:"difficulty,omitempty"`
	Score       int               `json:"score"`
	IsWinner    bool              `json:"isWinner"`
	Hand        string            `json:"hand"`
}

// MatchRecorder stores finished matches in Postgres
type MatchRecorder struct {
	db *sql.DB
}

// NewMatchRecorder returns a recorder for the database
func NewMatchRecorder(db *sql.DB) *MatchRecorder {
	return &MatchRecorder{db: db}
}

// RecordMatch stores the result and every player's final hand
func (m *MatchRecorder) RecordMatch(ctx context.Context, result *recall.Result) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertMatch = `
INSERT INTO matches (id, reason, recall_called_by, turns, started, ended)
VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err = tx.ExecContext(ctx, insertMatch, result.MatchID, result.Reason, result.RecallCalledBy, result.Turns, result.StartTime, result.EndTime); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqDuplicateKeyErrorCode {
			return ErrDuplicateMatch
		}

		return err
	}

	const insertPlayer = `
INSERT INTO match_players (match_id, player_id, seat, display_name, is_human, difficulty, score, is_winner, hand)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for seat, p := range result.Players {
		difficulty := ""
		if !p.IsHuman {
			difficulty = string(p.Difficulty)
		}

		if _, err = tx.ExecContext(ctx, insertPlayer, result.MatchID, p.ID, seat, p.DisplayName, p.IsHuman, difficulty, p.Score, p.Winner, deck.CardsToString(p.Hand)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

const matchColumns = `
matches.id,
matches.reason,
matches.recall_called_by,
matches.turns,
matches.started,
matches.ended,
matches.created`

func getMatchByRow(row db.Scanner) (*Match, error) {
	var match Match
	if err := row.Scan(&match.ID, &match.Reason, &match.RecallCalledBy, &match.Turns, &match.Started, &match.Ended, &match.Created); err != nil {
		return nil, err
	}

	return &match, nil
}

// GetMatch returns a recorded match with its players in seat order
func (m *MatchRecorder) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	row := m.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, matchID)
	match, err := getMatchByRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}

		return nil, err
	}

	const query = `
SELECT player_id, seat, display_name, is_human, difficulty, score, is_winner, hand
FROM match_players
WHERE match_id = $1
ORDER BY seat`

	rows, err := m.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	match.Players = make([]*MatchPlayer, 0)
	for rows.Next() {
		var p MatchPlayer
		if err := rows.Scan(&p.PlayerID, &p.Seat, &p.DisplayName, &p.IsHuman, &p.Difficulty, &p.Score, &p.IsWinner, &p.Hand); err != nil {
			return nil, err
		}

		match.Players = append(match.Players, &p)
	}

	return match, rows.Err()
}
