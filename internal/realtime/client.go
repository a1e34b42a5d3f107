package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 8 * 1024
)

// envelope is the wire frame for every event in both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Events the client may send.
const (
	evJoin        = "join"
	evSendMessage = "send_message"
	evTaskUpdated = "task_updated"
)

// Events the server pushes.
const (
	evReceiveMessage   = "receive_message"
	evTaskNotification = "task_notification"
)

// Client is one live websocket connection. The identity it belongs to is
// fixed at upgrade time from the session token; the join event merely
// activates the registry entry.
type Client struct {
	conn       *websocket.Conn
	reg        *Registry
	identityID string
	joined     bool
	send       chan []byte
	closeOnce  sync.Once
}

func newClient(reg *Registry, identityID string, conn *websocket.Conn) *Client {
	return &Client{conn: conn, reg: reg, identityID: identityID, send: make(chan []byte, 256)}
}

// readPump consumes inbound frames until the connection dies, dispatching
// each event. Closing the connection unregisters it.
func (c *Client) readPump() {
	defer c.Close()
	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Printf("realtime: bad frame from %s: %v", c.identityID, err)
			continue
		}
		c.handleEvent(env)
	}
}

func (c *Client) handleEvent(env envelope) {
	switch env.Event {
	case evJoin:
		// The directory entry appears only after an explicit join. The
		// joined id must match the session identity; clients cannot
		// register a handle for someone else.
		var id string
		if err := json.Unmarshal(env.Data, &id); err != nil || id != c.identityID {
			log.Printf("realtime: join rejected for session %s", c.identityID)
			return
		}
		c.joined = true
		c.reg.Register(c.identityID, c)

	case evSendMessage:
		if !c.joined {
			return
		}
		var p struct {
			RecipientID string          `json:"recipientId"`
			Message     json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal(env.Data, &p); err != nil || p.RecipientID == "" {
			return
		}
		// Best-effort relay; the message itself was already persisted via
		// the HTTP send endpoint.
		c.reg.Push(p.RecipientID, evReceiveMessage, p.Message)

	case evTaskUpdated:
		if !c.joined {
			return
		}
		var p struct {
			AssignedTo string          `json:"assignedTo"`
			Task       json.RawMessage `json:"task"`
		}
		if err := json.Unmarshal(env.Data, &p); err != nil || p.AssignedTo == "" {
			return
		}
		c.reg.Push(p.AssignedTo, evTaskNotification, p.Task)
	}
}

// writePump drains the send buffer and keeps the connection alive with
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() { ticker.Stop(); c.conn.Close() }()
	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close tears the connection down and removes its directory entry. Safe
// to call from both pumps and from the registry on a slow consumer.
func (c *Client) Close() {
	// send is never closed: a concurrent Push may still hold a reference.
	// Closing the underlying conn makes writePump's next write fail and
	// exit instead.
	c.closeOnce.Do(func() {
		c.reg.Unregister(c)
		_ = c.conn.Close()
	})
}
