package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/employee-task-hub/internal/model"
)

// MessageRepo persists direct messages in the 'messages' table. Messages
// are immutable once written; only the read_by set ever changes.
type MessageRepo struct{ DB *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{DB: db} }

// Create inserts a message with the sender pre-seeded in the read set and
// returns the stored record.
func (r *MessageRepo) Create(ctx context.Context, conversationID, senderID, recipientID, content string) (model.Message, error) {
	m := model.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Content:        content,
		ReadBy:         []string{senderID},
		CreatedAt:      time.Now().UTC(),
	}
	readBy, err := json.Marshal(m.ReadBy)
	if err != nil {
		return model.Message{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO messages (id, conversation_id, sender_id, recipient_id, content, read_by, created_at) VALUES (?,?,?,?,?,?,?)",
		m.ID, m.ConversationID, m.SenderID, m.RecipientID, m.Content, readBy, m.CreatedAt)
	if err != nil {
		return model.Message{}, err
	}
	if seq, err := res.LastInsertId(); err == nil {
		m.Seq = uint64(seq)
	}
	return m, nil
}

// ListByConversation returns a conversation's messages in ascending
// creation order, ties broken by insertion sequence.
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]model.Message, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, seq, conversation_id, sender_id, recipient_id, content, read_by, created_at FROM messages WHERE conversation_id=? ORDER BY created_at ASC, seq ASC",
		conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var (
			m      model.Message
			readBy []byte
		)
		if err := rows.Scan(&m.ID, &m.Seq, &m.ConversationID, &m.SenderID, &m.RecipientID, &m.Content, &readBy, &m.CreatedAt); err != nil {
			return nil, err
		}
		if len(readBy) > 0 {
			if err := json.Unmarshal(readBy, &m.ReadBy); err != nil {
				return nil, err
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkRead adds readerID to the read set of every message in the
// conversation addressed to them. JSON_ARRAY_APPEND is guarded by
// JSON_CONTAINS so re-reading a conversation stays idempotent.
func (r *MessageRepo) MarkRead(ctx context.Context, conversationID, readerID string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE messages SET read_by = JSON_ARRAY_APPEND(read_by, '$', ?)
		 WHERE conversation_id=? AND recipient_id=? AND NOT JSON_CONTAINS(read_by, JSON_QUOTE(?))`,
		readerID, conversationID, readerID, readerID)
	return err
}
