package room

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"recall-server/pkg/playable"
)

const clientSendBuffer = 256

// Client is a player connected to a match via websockets
type Client struct {
	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// send is a channel for sending messages to the client
	send chan interface{}

	// Close is a channel for closing the client
	Close chan string

	// CloseError contains the reason why the connection was closed
	CloseError error

	closeOnce sync.Once

	match    *Match
	playerID string
}

// NewClient returns a new client object for the player's seat
func NewClient(conn *websocket.Conn, playerID string) *Client {
	return &Client{
		Conn:     conn,
		send:     make(chan interface{}, clientSendBuffer),
		Close:    make(chan string, 1),
		playerID: playerID,
	}
}

// PlayerID returns the ID of the seat the client is bound to
func (c *Client) PlayerID() string {
	return c.playerID
}

// Send send a message to the web client
// The message is dropped if the client is not keeping up
func (c *Client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// SendChan returns a read-only channel
func (c *Client) SendChan() <-chan interface{} {
	return c.send
}

// String returns a traceable identifier for the player and match
func (c *Client) String() string {
	matchID := ""
	if c.match != nil {
		matchID = c.match.id
	}

	return fmt.Sprintf("%s:%s", c.playerID, matchID)
}

func (c *Client) closeWithReason(reason string) {
	c.closeOnce.Do(func() {
		c.Close <- reason
	})
}

// ReceivedMessage is called when the server receives a message from a connected client
// The action is the event name, the response carries the message's context back
func (c *Client) ReceivedMessage(msg *playable.PayloadIn) {
	if c.match == nil {
		logrus.WithField("msg", msg).Warn("received message, but match not found")
		return
	}

	if err := c.match.engine.SubmitFromSeat(c.match.id, c.playerID, msg.Action, msg.AdditionalData); err != nil {
		c.Send(playable.ErrorResponse(msg.Context, err))
		return
	}

	c.Send(playable.OK(msg.Context))
}
