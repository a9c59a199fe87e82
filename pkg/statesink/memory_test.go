package statesink

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var cbg = context.Background()

func TestMemory_Merge(t *testing.T) {
	a := assert.New(t)

	m := NewMemory()
	st, err := m.Get(cbg, "m1")
	a.NoError(err)
	a.Equal(0, len(st))

	a.NoError(m.Merge(cbg, "m1", map[string]interface{}{"phase": "initial_peek", "turnNumber": 0}))
	a.NoError(m.Merge(cbg, "m1", map[string]interface{}{"phase": "player_turn", "winners": []string{"p1"}}))

	st, err = m.Get(cbg, "m1")
	a.NoError(err)
	a.Equal(State{
		"phase":      json.RawMessage(`"player_turn"`),
		"turnNumber": json.RawMessage(`0`),
		"winners":    json.RawMessage(`["p1"]`),
	}, st)

	// the returned state is a copy
	st["phase"] = json.RawMessage(`"x"`)
	st, _ = m.Get(cbg, "m1")
	a.Equal(json.RawMessage(`"player_turn"`), st["phase"])

	a.Error(m.Merge(cbg, "m1", map[string]interface{}{"bad": make(chan int)}))

	a.NoError(m.Delete(cbg, "m1"))
	st, _ = m.Get(cbg, "m1")
	a.Equal(0, len(st))
}

func TestMemory_Subscribe(t *testing.T) {
	a := assert.New(t)

	m := NewMemory()
	ch, cancel := m.Subscribe("m1")
	other, cancelOther := m.Subscribe("m2")
	defer cancelOther()

	a.NoError(m.Merge(cbg, "m1", map[string]interface{}{"phase": "player_turn"}))
	a.NoError(m.Publish(cbg, "m1", Event{Kind: "actionError", PlayerID: "p1", Message: "bad"}))

	msg := <-ch
	a.Equal(MessageState, msg.Kind)
	a.Equal("m1", msg.MatchID)
	a.Equal(json.RawMessage(`"player_turn"`), msg.State["phase"])

	msg = <-ch
	a.Equal(MessageEvent, msg.Kind)
	if a.NotNil(msg.Event) {
		a.Equal("p1", msg.Event.PlayerID)
		a.Equal("bad", msg.Event.Message)
	}

	select {
	case <-other:
		a.Fail("m2 should not receive m1 messages")
	default:
	}

	cancel()
	cancel()
	_, ok := <-ch
	a.False(ok)

	// nothing is sent after cancel
	a.NoError(m.Merge(cbg, "m1", map[string]interface{}{"phase": "game_ended"}))
}

func TestMemory_slowSubscriber(t *testing.T) {
	a := assert.New(t)

	m := NewMemory()
	ch, cancel := m.Subscribe("m1")
	defer cancel()

	done := make(chan bool)
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			_ = m.Publish(cbg, "m1", Event{Kind: "tick"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		a.Fail("publish blocked on a slow subscriber")
	}

	a.Equal(subscriberBuffer, len(ch))
}

func TestMemory_Close(t *testing.T) {
	a := assert.New(t)

	m := NewMemory()
	ch, cancel := m.Subscribe("m1")
	a.NoError(m.Close())

	_, ok := <-ch
	a.False(ok)

	// cancelling after close is safe
	cancel()

	ch, cancel = m.Subscribe("m1")
	a.NoError(m.Delete(cbg, "m1"))
	_, ok = <-ch
	a.False(ok)
	cancel()
}
