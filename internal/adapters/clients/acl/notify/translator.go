package notify

import "github.com/laurensbos/webstability-backend/internal/ports"

// ToNotificationRequest builds the dispatch request for a notification event.
func ToNotificationRequest(kind ports.NotificationKind, recipient string, payload map[string]any) NotificationRequestDTO {
	return NotificationRequestDTO{
		Kind:      string(kind),
		Recipient: recipient,
		Payload:   payload,
	}
}
