package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/employee-task-hub/internal/model"
)

// ConversationRepo persists direct-message threads in the 'conversations'
// table, keyed by the canonical id of the participant pair.
type ConversationRepo struct{ DB *sql.DB }

func NewConversationRepo(db *sql.DB) *ConversationRepo { return &ConversationRepo{DB: db} }

// CanonicalID derives the conversation key for a pair of identities.
// The ids are joined lexicographically smaller-first, so the result is the
// same no matter which side initiates: CanonicalID(a,b) == CanonicalID(b,a).
func CanonicalID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}

const convCols = "id,participant_a,participant_b,last_content,last_sender_id,last_message_at,created_at"

// GetOrCreate returns the conversation between a and b, creating it when
// absent. INSERT IGNORE on the canonical primary key makes first contact
// race-free: when both sides create simultaneously exactly one row wins
// and both callers read it back.
func (r *ConversationRepo) GetOrCreate(ctx context.Context, a, b string) (model.Conversation, error) {
	id := CanonicalID(a, b)
	// Participants are stored in initiation order, not sorted order.
	if _, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO conversations (id, participant_a, participant_b) VALUES (?,?,?)",
		id, a, b); err != nil {
		return model.Conversation{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches a conversation by its canonical id.
func (r *ConversationRepo) GetByID(ctx context.Context, id string) (model.Conversation, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+convCols+" FROM conversations WHERE id=? LIMIT 1", id)
	return scanConversation(row)
}

// SetLastMessage updates the conversation's snapshot of its most recent
// message. Callers must persist the message first so the snapshot never
// points at a message that does not exist yet.
func (r *ConversationRepo) SetLastMessage(ctx context.Context, id, content, senderID string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE conversations SET last_content=?, last_sender_id=?, last_message_at=? WHERE id=?",
		content, senderID, at, id)
	return err
}

// ListForIdentity returns every conversation the identity participates in,
// most recently active first. MySQL sorts NULL lowest, so conversations
// that have no messages yet (last_message_at IS NULL) land at the end of
// the DESC ordering.
func (r *ConversationRepo) ListForIdentity(ctx context.Context, identityID string) ([]model.Conversation, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+convCols+" FROM conversations WHERE participant_a=? OR participant_b=? ORDER BY last_message_at DESC, created_at DESC",
		identityID, identityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Conversation
	for rows.Next() {
		var (
			c      model.Conversation
			lastC  sql.NullString
			lastS  sql.NullString
			lastAt sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.ParticipantA, &c.ParticipantB, &lastC, &lastS, &lastAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.LastContent = lastC.String
		c.LastSenderID = lastS.String
		if lastAt.Valid {
			t := lastAt.Time
			c.LastMessageAt = &t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanConversation(row *sql.Row) (model.Conversation, error) {
	var (
		c      model.Conversation
		lastC  sql.NullString
		lastS  sql.NullString
		lastAt sql.NullTime
	)
	err := row.Scan(&c.ID, &c.ParticipantA, &c.ParticipantB, &lastC, &lastS, &lastAt, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	if err != nil {
		return c, err
	}
	c.LastContent = lastC.String
	c.LastSenderID = lastS.String
	if lastAt.Valid {
		t := lastAt.Time
		c.LastMessageAt = &t
	}
	return c, nil
}
