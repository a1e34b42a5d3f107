// Package realtime maintains the live directory of connected sessions and
// pushes message and task events to the right connection. Pushes are
// best-effort: everything pushed here is already durably stored, so a
// recipient who is offline simply sees the data on their next fetch.
package realtime

import (
	"encoding/json"
	"sync"
)

// Registry maps an identity ID to its live connection. It is owned by the
// websocket server instance and injected where pushes originate; nothing
// here is global state. At most one connection per identity is tracked:
// a new registration for the same identity overwrites the old handle
// (last connection wins).
//
// In a multi-process deployment this process-local directory would have
// to be replaced by a shared pub/sub keyed by identity; a message can
// only reach recipients connected to this process.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Client)}
}

// Register binds an identity to a connection, displacing any prior one.
func (r *Registry) Register(identityID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[identityID] = c
}

// Lookup returns the live connection for an identity, if any.
func (r *Registry) Lookup(identityID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[identityID]
	return c, ok
}

// Unregister removes whatever entry points at the given connection. The
// disconnect event only identifies the connection, so this is a reverse
// lookup by value; if the identity has since reconnected with a newer
// handle, that newer entry is left untouched.
func (r *Registry) Unregister(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, conn := range r.conns {
		if conn == c {
			delete(r.conns, id)
		}
	}
}

// Push sends an event to the identity's live connection. Returns false
// when the identity is not connected or its send buffer is full; callers
// never treat that as an error.
func (r *Registry) Push(identityID, event string, payload any) bool {
	r.mu.RLock()
	c, ok := r.conns[identityID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	b, err := json.Marshal(envelope{Event: event, Data: mustRaw(payload)})
	if err != nil {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		// Slow consumer; drop the push rather than block the sender.
		go c.Close()
		return false
	}
}

func mustRaw(payload any) json.RawMessage {
	b, err := json.Marshal(payload)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
