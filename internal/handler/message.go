package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/employee-task-hub/internal/model"
	"github.com/iliyamo/employee-task-hub/internal/realtime"
	"github.com/iliyamo/employee-task-hub/internal/repository"
)

// MessageHandler bundles dependencies for direct-message endpoints.
type MessageHandler struct {
	Conversations *repository.ConversationRepo
	Messages      *repository.MessageRepo
	Identities    *repository.IdentityRepo
	Registry      *realtime.Registry
}

func NewMessageHandler(convs *repository.ConversationRepo, msgs *repository.MessageRepo, ids *repository.IdentityRepo, reg *realtime.Registry) *MessageHandler {
	return &MessageHandler{Conversations: convs, Messages: msgs, Identities: ids, Registry: reg}
}

type sendMessageReq struct {
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
}

type startConversationReq struct {
	ParticipantID string `json:"participantId"`
}

type messagePart struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	RecipientID    string    `json:"recipientId"`
	Content        string    `json:"content"`
	ReadBy         []string  `json:"readBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

type conversationPart struct {
	ID               string     `json:"id"`
	OtherParticipant *userPart  `json:"otherParticipant"`
	LastContent      string     `json:"lastMessage"`
	LastSenderID     string     `json:"lastSenderId,omitempty"`
	LastMessageAt    *time.Time `json:"lastMessageAt"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func toMessagePart(m model.Message) messagePart {
	return messagePart{
		ID: m.ID, ConversationID: m.ConversationID,
		SenderID: m.SenderID, RecipientID: m.RecipientID,
		Content: m.Content, ReadBy: m.ReadBy, CreatedAt: m.CreatedAt,
	}
}

// Send persists a message and relays it to the recipient's live connection.
// The conversation row is created on first contact and its summary is
// updated only after the message itself is stored.
func (h *MessageHandler) Send(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	recipientID := strings.TrimSpace(req.RecipientID)
	content := strings.TrimSpace(req.Content)
	if recipientID == "" || content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "recipientId and content are required"})
	}
	if recipientID == callerID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot message yourself"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Identities.GetByID(ctx, recipientID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "recipient not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	conv, err := h.Conversations.GetOrCreate(ctx, callerID, recipientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "conversation lookup failed"})
	}

	msg, err := h.Messages.Create(ctx, conv.ID, callerID, recipientID, content)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "send failed"})
	}
	if err := h.Conversations.SetLastMessage(ctx, conv.ID, content, callerID, msg.CreatedAt); err != nil {
		// message is already durable; the summary catches up on the next send
		c.Logger().Warnf("conversation summary update failed: %v", err)
	}

	h.Registry.Push(recipientID, "receive_message", toMessagePart(msg))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    toMessagePart(msg),
	})
}

// Start ensures a conversation with the recipient exists and returns it.
func (h *MessageHandler) Start(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req startConversationReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.ParticipantID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "participantId is required"})
	}
	recipientID := strings.TrimSpace(req.ParticipantID)
	if recipientID == callerID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot message yourself"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	other, err := h.Identities.GetByID(ctx, recipientID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "recipient not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	conv, err := h.Conversations.GetOrCreate(ctx, callerID, recipientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "conversation lookup failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"conversation": h.toConversationPart(conv, &other),
	})
}

// ListConversations lists the caller's conversations newest-activity first,
// with the other participant's details joined in.
func (h *MessageHandler) ListConversations(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	convs, err := h.Conversations.ListForIdentity(ctx, callerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	parts := make([]conversationPart, 0, len(convs))
	for _, conv := range convs {
		otherID := conv.Other(callerID)
		var other *model.Identity
		if id, err := h.Identities.GetByID(ctx, otherID); err == nil {
			other = &id
		}
		parts = append(parts, h.toConversationPart(conv, other))
	}
	return c.JSON(http.StatusOK, echo.Map{"conversations": parts})
}

// ConversationMessages returns a conversation's messages oldest first and
// marks them read for the caller. Only participants may read.
func (h *MessageHandler) ConversationMessages(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	conv, err := h.Conversations.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "conversation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !conv.HasParticipant(callerID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant in this conversation"})
	}

	msgs, err := h.Messages.ListByConversation(ctx, conv.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Messages.MarkRead(ctx, conv.ID, callerID); err != nil {
		c.Logger().Warnf("mark read failed: %v", err)
	}

	parts := make([]messagePart, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, toMessagePart(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": parts})
}

// Contacts lists everyone the caller can start a conversation with.
func (h *MessageHandler) Contacts(c echo.Context) error {
	callerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	contacts, err := h.Identities.ListContacts(ctx, callerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	parts := make([]userPart, 0, len(contacts))
	for _, id := range contacts {
		parts = append(parts, toUserPart(id))
	}
	return c.JSON(http.StatusOK, echo.Map{"contacts": parts})
}

func (h *MessageHandler) toConversationPart(conv model.Conversation, other *model.Identity) conversationPart {
	part := conversationPart{
		ID:            conv.ID,
		LastContent:   conv.LastContent,
		LastSenderID:  conv.LastSenderID,
		LastMessageAt: conv.LastMessageAt,
		CreatedAt:     conv.CreatedAt,
	}
	if other != nil {
		up := toUserPart(*other)
		part.OtherParticipant = &up
	}
	return part
}
