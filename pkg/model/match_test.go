package model

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"recall-server/internal/util"
	"recall-server/pkg/db"
	"recall-server/pkg/deck"
	"recall-server/pkg/recall"
)

var cbg = context.Background()

func recorder(t *testing.T) *MatchRecorder {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN is not set")
	}

	conn, err := db.Open(cbg, dsn)
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	if !assert.NoError(t, db.Migrate(logrus.New(), conn, util.Getenv("MIGRATIONS_PATH", "../../sql"))) {
		t.FailNow()
	}

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return NewMatchRecorder(conn)
}

func TestMatchRecorder_RecordMatch(t *testing.T) {
	a := assert.New(t)
	m := recorder(t)

	start := time.Now().Add(-time.Minute).Truncate(time.Second)
	result := &recall.Result{
		MatchID:        uuid.New().String(),
		Winners:        []string{"p2"},
		RecallCalledBy: "p2",
		Reason:         "final lap complete",
		Turns:          12,
		StartTime:      start,
		EndTime:        start.Add(time.Minute),
		Players: []*recall.PlayerResult{
			{ID: "p1", DisplayName: "Player 1", IsHuman: true, Difficulty: recall.DifficultyMedium, Score: 14, Hand: deck.CardsFromString("5h,9c")},
			{ID: "p2", DisplayName: "Fuzzy Otter", Difficulty: recall.DifficultyHard, Score: 3, Hand: deck.CardsFromString("1s,2d"), Winner: true},
		},
	}

	a.NoError(m.RecordMatch(cbg, result))
	a.Equal(ErrDuplicateMatch, m.RecordMatch(cbg, result))

	match, err := m.GetMatch(cbg, result.MatchID)
	if !a.NoError(err) {
		return
	}

	a.Equal("final lap complete", match.Reason)
	a.Equal("p2", match.RecallCalledBy)
	a.Equal(12, match.Turns)
	a.True(match.Started.Equal(start))
	if a.Equal(2, len(match.Players)) {
		a.Equal(&MatchPlayer{PlayerID: "p1", Seat: 0, DisplayName: "Player 1", IsHuman: true, Score: 14, Hand: "5h,9c"}, match.Players[0])
		a.Equal(&MatchPlayer{PlayerID: "p2", Seat: 1, DisplayName: "Fuzzy Otter", Difficulty: recall.DifficultyHard, Score: 3, IsWinner: true, Hand: "1s,2d"}, match.Players[1])
	}

	_, err = m.GetMatch(cbg, uuid.New().String())
	a.Equal(ErrMatchNotFound, err)
}
