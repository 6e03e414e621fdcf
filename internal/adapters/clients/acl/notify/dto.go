// Package notify holds DTOs and translators for the notification service API.
package notify

// NotificationRequestDTO is the request body for dispatching a notification.
type NotificationRequestDTO struct {
	Kind      string         `json:"kind"`
	Recipient string         `json:"recipient"`
	Payload   map[string]any `json:"payload,omitempty"`
}
