package realtime

import (
	"encoding/json"
	"testing"
)

func testClient() *Client {
	return &Client{send: make(chan []byte, 4)}
}

func TestRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	c := testClient()
	c.reg = reg
	reg.Register("id-1", c)

	got, ok := reg.Lookup("id-1")
	if !ok || got != c {
		t.Fatal("registered client not found")
	}
	if _, ok := reg.Lookup("id-2"); ok {
		t.Fatal("unknown identity should not resolve")
	}
}

func TestLastConnectionWins(t *testing.T) {
	reg := NewRegistry()
	old := testClient()
	old.reg = reg
	reg.Register("id-1", old)

	fresh := testClient()
	fresh.reg = reg
	reg.Register("id-1", fresh)

	got, ok := reg.Lookup("id-1")
	if !ok || got != fresh {
		t.Fatal("newest connection should win")
	}
}

func TestUnregisterByConnection(t *testing.T) {
	reg := NewRegistry()
	c := testClient()
	c.reg = reg
	reg.Register("id-1", c)

	reg.Unregister(c)
	if _, ok := reg.Lookup("id-1"); ok {
		t.Fatal("entry should be gone after unregister")
	}
	// Unregistering an unknown connection is a harmless no-op.
	reg.Unregister(testClient())
}

func TestUnregisterStaleConnectionKeepsNewer(t *testing.T) {
	reg := NewRegistry()
	old := testClient()
	old.reg = reg
	reg.Register("id-1", old)

	fresh := testClient()
	fresh.reg = reg
	reg.Register("id-1", fresh)

	// The old connection's disconnect fires after the identity already
	// reconnected; the newer handle must survive.
	reg.Unregister(old)
	got, ok := reg.Lookup("id-1")
	if !ok || got != fresh {
		t.Fatal("newer connection should survive stale disconnect")
	}
}

func TestPushDeliversEnvelope(t *testing.T) {
	reg := NewRegistry()
	c := testClient()
	c.reg = reg
	reg.Register("id-1", c)

	if !reg.Push("id-1", "receive_message", map[string]string{"content": "hi"}) {
		t.Fatal("push to connected identity should succeed")
	}
	raw := <-c.send
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	if env.Event != "receive_message" {
		t.Fatalf("event = %q", env.Event)
	}
	var payload map[string]string
	if err := json.Unmarshal(env.Data, &payload); err != nil || payload["content"] != "hi" {
		t.Fatalf("payload = %s", env.Data)
	}
}

func TestPushToOfflineIdentityDropsSilently(t *testing.T) {
	reg := NewRegistry()
	if reg.Push("ghost", "receive_message", "hello") {
		t.Fatal("push to offline identity should report false")
	}
}
