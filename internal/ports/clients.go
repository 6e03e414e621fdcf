package ports

import (
	"context"

	"github.com/laurensbos/webstability-backend/internal/domain/project"
)

// Checkout is the result of creating a payment link with the provider.
type Checkout struct {
	URL       string
	Reference string
}

// PaymentGateway is the client port for the external payment provider
// (Mollie or equivalent). The core never awaits payment completion through
// this port; confirmations arrive later as webhook-driven mutation calls.
type PaymentGateway interface {
	// CreateCheckout creates a hosted checkout for the given amount and
	// returns its URL and provider reference.
	CreateCheckout(ctx context.Context, p *project.Project, amountCents int64) (*Checkout, error)
}

// NotificationKind labels the event a notification describes.
type NotificationKind string

const (
	NotifyPhaseChanged     NotificationKind = "phase_changed"
	NotifyChangeCompleted  NotificationKind = "change_completed"
	NotifyReferralIssued   NotificationKind = "referral_issued"
	NotifyPaymentLinkReady NotificationKind = "payment_link_ready"
)

// Notifier is the client port for outbound client/developer notifications
// (email or equivalent). Delivery is best-effort: callers log failures and
// never let them block a state mutation.
type Notifier interface {
	Send(ctx context.Context, kind NotificationKind, recipient string, payload map[string]any) error
}
