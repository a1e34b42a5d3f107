// Package queue defines message payloads exchanged over the message broker.
package queue

// NotifyQueueName is the durable queue carrying access-code deliveries.
const NotifyQueueName = "notify.dispatch"

// NotificationEvent is published when an access code must reach a user.
// The delivery worker consuming the queue owns the actual transport
// (SMTP gateway, SMS provider); the API process only publishes.
type NotificationEvent struct {
	Channel     string `json:"channel"`     // "email" or "sms"
	Destination string `json:"destination"` // email address or phone number
	Code        string `json:"code"`        // the 6-digit access code
	Purpose     string `json:"purpose"`     // "login", "confirmation"
	RequestedAt string `json:"requested_at"`
}
