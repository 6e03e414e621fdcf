package acl

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/laurensbos/webstability-backend/internal/adapters/clients/acl/notify"
	"github.com/laurensbos/webstability-backend/internal/platform/httpclient"
	"github.com/laurensbos/webstability-backend/internal/ports"
)

// Compile-time interface check.
var _ ports.Notifier = (*NotifyClient)(nil)

// NotifyClient is the outbound adapter for the notification service. It
// implements [ports.Notifier].
//
// Delivery is best-effort from the caller's point of view; this adapter
// still reports errors so callers can log them.
type NotifyClient struct {
	req *Requester
}

// NewNotifyClient creates a NotifyClient that sends requests through the
// given [httpclient.Client].
func NewNotifyClient(client *httpclient.Client, logger *slog.Logger) *NotifyClient {
	return &NotifyClient{req: NewRequester(client, logger)}
}

// Send dispatches a notification via POST /api/v1/notifications. The service
// accepts the event for asynchronous delivery with 202.
func (c *NotifyClient) Send(ctx context.Context, kind ports.NotificationKind, recipient string, payload map[string]any) error {
	reqDTO := notify.ToNotificationRequest(kind, recipient, payload)
	return c.req.Do(ctx, http.MethodPost, "/api/v1/notifications", http.StatusAccepted, reqDTO, nil)
}
