package model

import "testing"

func TestConversationParticipants(t *testing.T) {
	c := Conversation{ParticipantA: "alice", ParticipantB: "bob"}

	if !c.HasParticipant("alice") || !c.HasParticipant("bob") {
		t.Fatal("both participants should be recognized")
	}
	if c.HasParticipant("mallory") {
		t.Fatal("outsider should not be a participant")
	}

	if got := c.Other("alice"); got != "bob" {
		t.Fatalf("Other(alice) = %q, want bob", got)
	}
	if got := c.Other("bob"); got != "alice" {
		t.Fatalf("Other(bob) = %q, want alice", got)
	}
	if got := c.Other("mallory"); got != "" {
		t.Fatalf("Other(outsider) = %q, want empty", got)
	}
}

func TestValidTaskStatus(t *testing.T) {
	for _, s := range []string{TaskPending, TaskInProgress, TaskCompleted, TaskCancelled} {
		if !ValidTaskStatus(s) {
			t.Fatalf("%q should be a valid status", s)
		}
	}
	for _, s := range []string{"", "done", "PENDING", "in_progress"} {
		if ValidTaskStatus(s) {
			t.Fatalf("%q should not be a valid status", s)
		}
	}
}
