package room

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"recall-server/pkg/playable"
	"recall-server/pkg/recall"
)

// nextResponse returns the next response with the key sent to the client
func nextResponse(t *testing.T, c *Client, key string) *playable.Response {
	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg := <-c.SendChan():
			if res, ok := msg.(*playable.Response); ok && res.Key == key {
				return res
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", key)
			return nil
		}
	}
}

func TestMatch_clients(t *testing.T) {
	a := assert.New(t)

	e := newTestEngine(t, Options{})
	m, err := e.CreateMatch(MatchOptions{MatchID: "m1", Players: humans("p1", "p2")})
	if !a.NoError(err) {
		return
	}

	c1 := NewClient(nil, "p1")
	a.Equal("p1:", c1.String())
	m.AddClient(c1)
	a.Equal("p1:m1", c1.String())
	a.Equal("p1", c1.PlayerID())

	res := nextResponse(t, c1, "gameState")
	gs, ok := res.Data.(*gameState)
	if a.True(ok) {
		a.Equal("p1", gs.ViewerID)
		a.Equal(recall.PhaseInitialPeek, gs.Phase)
		a.True(len(gs.LogMessages) > 0)
	}

	a.Eventually(func() bool {
		return m.Snapshot().Players[0].Connected
	}, 2*time.Second, 5*time.Millisecond)

	c2 := NewClient(nil, "p1")
	m.AddClient(c2)
	a.Equal(2, len(m.Clients()))

	ids := handIDs(t, m, "p1")
	c1.ReceivedMessage(&playable.PayloadIn{
		Action:         "completed_initial_peek",
		AdditionalData: playable.AdditionalData{"cardIds": []interface{}{ids[0]}},
		Context:        "peek",
	})
	a.Equal(playable.OK("peek"), nextResponse(t, c1, "status"))

	c1.ReceivedMessage(&playable.PayloadIn{
		Action:         "completed_initial_peek",
		AdditionalData: playable.AdditionalData{"cardIds": []interface{}{ids[0]}},
		Context:        "again",
	})
	a.Equal(playable.ErrorResponse("again", recall.ErrInvalidStatus), nextResponse(t, c1, "error"))

	c1.ReceivedMessage(&playable.PayloadIn{
		Action:         "start_match",
		AdditionalData: playable.AdditionalData{"matchId": "m2"},
		Context:        "start",
	})
	a.Equal(playable.ErrorResponse("start", ErrStartFromSeat), nextResponse(t, c1, "error"))
	_, ok = e.Match("m2")
	a.False(ok)

	// the seat stays connected while another client is bound to it
	a.False(m.RemoveClient(c1))
	time.Sleep(20 * time.Millisecond)
	a.True(m.Snapshot().Players[0].Connected)

	a.True(m.RemoveClient(c2))
	a.Eventually(func() bool {
		return !m.Snapshot().Players[0].Connected
	}, 2*time.Second, 5*time.Millisecond)
	a.Equal(0, len(m.Clients()))

	// unbound clients ignore messages
	c3 := NewClient(nil, "p2")
	c3.ReceivedMessage(&playable.PayloadIn{Action: "draw_card"})
	a.Equal(0, len(c3.SendChan()))
}

func TestMatch_instructions(t *testing.T) {
	a := assert.New(t)

	e := newTestEngine(t, Options{})
	m, err := e.CreateMatch(MatchOptions{MatchID: "m1", Players: humans("p1", "p2")})
	if !a.NoError(err) {
		return
	}

	c := NewClient(nil, "p1")
	m.AddClient(c)

	for _, id := range []string{"p1", "p2"} {
		a.NoError(m.Handle(&recall.CompletedInitialPeekEvent{PlayerID: id, CardIDs: handIDs(t, m, id)[:1]}))
	}

	res := nextResponse(t, c, "instructions")
	a.Equal(string(recall.StatusDrawingCard), res.Value)
}

func TestMatch_addLogMessages(t *testing.T) {
	a := assert.New(t)

	e := newTestEngine(t, Options{})
	m, err := e.CreateMatch(MatchOptions{MatchID: "m1", Players: humans("p1", "p2")})
	if !a.NoError(err) {
		return
	}

	var count int
	var last string
	err = m.do(func() error {
		for i := 0; i < 30; i++ {
			m.addLogMessages(playable.SimpleLogMessageSlice("", "message %d", i))
		}

		count = len(m.logMessages)
		last = m.logMessages[count-1].Message
		return nil
	})

	a.NoError(err)
	a.Equal(25, count)
	a.Equal("message 29", last)

	err = m.do(func() error {
		m.addLogMessages([]*playable.LogMessage{
			playable.SimpleLogMessage("p1", "first"),
			playable.SimpleLogMessage("p2", "second"),
		})

		count = len(m.logMessages)
		last = fmt.Sprintf("%s %s", m.logMessages[23].Message, m.logMessages[24].Message)
		return nil
	})

	a.NoError(err)
	a.Equal(25, count)
	a.Equal("first second", last)
}

func TestMatch_do_panic(t *testing.T) {
	a := assert.New(t)

	e := newTestEngine(t, Options{})
	m, err := e.CreateMatch(MatchOptions{MatchID: "m1", Players: humans("p1", "p2")})
	if !a.NoError(err) {
		return
	}

	err = m.do(func() error {
		panic("boom")
	})
	a.ErrorIs(err, ErrPanic)

	_, err = m.View("p1")
	a.NoError(err)
}

func TestLoopScheduler(t *testing.T) {
	a := assert.New(t)

	e := newTestEngine(t, Options{})
	m, err := e.CreateMatch(MatchOptions{MatchID: "m1", Players: humans("p1", "p2")})
	if !a.NoError(err) {
		return
	}

	ran := make(chan bool, 2)
	s := loopScheduler{m: m}
	s.AfterFunc(time.Millisecond, func() { ran <- true })
	cancel := s.AfterFunc(time.Hour, func() { ran <- false })
	cancel()

	select {
	case v := <-ran:
		a.True(v)
	case <-time.After(time.Second):
		a.Fail("scheduled function did not run")
	}
}
