package acl

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/laurensbos/webstability-backend/internal/adapters/clients/acl/payment"
	"github.com/laurensbos/webstability-backend/internal/domain/project"
	"github.com/laurensbos/webstability-backend/internal/platform/httpclient"
	"github.com/laurensbos/webstability-backend/internal/ports"
)

// Compile-time interface check.
var _ ports.PaymentGateway = (*PaymentClient)(nil)

// PaymentClient is the outbound adapter for the hosted-checkout payment
// provider. It implements [ports.PaymentGateway].
//
// Requests and responses are translated between domain types and the
// provider's representations by the [payment] subpackage; HTTP errors are
// mapped to domain errors by [TranslateHTTPError]. The underlying
// [httpclient.Client] provides circuit breaking, retry with exponential
// backoff, OpenTelemetry tracing, and health checking for every call.
type PaymentClient struct {
	req *Requester
}

// NewPaymentClient creates a PaymentClient that sends requests through the
// given [httpclient.Client]. The client's BaseURL should point to the
// provider API root.
func NewPaymentClient(client *httpclient.Client, logger *slog.Logger) *PaymentClient {
	return &PaymentClient{req: NewRequester(client, logger)}
}

// CreateCheckout creates a hosted checkout via POST /v2/payments and returns
// its URL and provider reference. Returns [domain.ErrValidation] if the
// provider rejects the payload.
func (c *PaymentClient) CreateCheckout(ctx context.Context, p *project.Project, amountCents int64) (*ports.Checkout, error) {
	reqDTO := payment.ToCreatePaymentRequest(p, amountCents)

	// Keyed on the project so a retried POST cannot create a second payment.
	ctx = httpclient.WithIdempotencyKey(ctx, p.ID)

	var respDTO payment.PaymentDTO
	if err := c.req.Do(ctx, http.MethodPost, "/v2/payments", http.StatusCreated, reqDTO, &respDTO); err != nil {
		return nil, err
	}
	return payment.ToCheckout(&respDTO), nil
}
