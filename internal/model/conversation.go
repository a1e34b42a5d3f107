package model

import "time"

// Conversation is a direct-message thread between exactly two identities,
// as stored in the `conversations` table.  Its primary key is the
// canonical id derived from the sorted participant pair, so the same two
// people always share a single row no matter who starts the thread.
//
// Fields:
//  ID            – canonical id, "<lowerID>_<higherID>".
//  ParticipantA  – participant in original (initiation) order.
//  ParticipantB  – the other participant.
//  LastContent   – content snapshot of the most recent message.
//  LastSenderID  – sender of the most recent message.
//  LastMessageAt – timestamp of the most recent message; null until the
//                  first message is sent, which makes empty conversations
//                  sort after active ones in the DESC listing.
//  CreatedAt     – creation timestamp.
type Conversation struct {
    ID            string     // conversations.id
    ParticipantA  string     // conversations.participant_a
    ParticipantB  string     // conversations.participant_b
    LastContent   string     // conversations.last_content (empty when no messages)
    LastSenderID  string     // conversations.last_sender_id (empty when no messages)
    LastMessageAt *time.Time // conversations.last_message_at (nullable)
    CreatedAt     time.Time  // conversations.created_at
}

// HasParticipant reports whether id is one of the two participants.
func (c Conversation) HasParticipant(id string) bool {
    return c.ParticipantA == id || c.ParticipantB == id
}

// Other returns the participant that is not self.  It returns an empty
// string when self is not a participant at all.
func (c Conversation) Other(self string) string {
    switch self {
    case c.ParticipantA:
        return c.ParticipantB
    case c.ParticipantB:
        return c.ParticipantA
    }
    return ""
}

// Message is a single direct message, immutable once created, as stored
// in the `messages` table.  Ordering within a conversation is by
// CreatedAt with the auto-increment Seq as tie-breaker, so two messages
// written in the same millisecond still list deterministically.
//
// Fields:
//  ID             – UUID assigned at creation.
//  Seq            – auto-increment insertion counter, used only for ordering ties.
//  ConversationID – canonical conversation id.
//  SenderID       – identity that wrote the message.
//  RecipientID    – identity the message is addressed to.
//  Content        – message body.
//  ReadBy         – identity IDs that have read the message; the sender is
//                   included at creation.
//  CreatedAt      – creation timestamp.
type Message struct {
    ID             string    // messages.id
    Seq            uint64    // messages.seq
    ConversationID string    // messages.conversation_id
    SenderID       string    // messages.sender_id
    RecipientID    string    // messages.recipient_id
    Content        string    // messages.content
    ReadBy         []string  // messages.read_by (JSON array column)
    CreatedAt      time.Time // messages.created_at
}
