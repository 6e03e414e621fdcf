// Package payment holds DTOs and translators for the hosted-checkout
// payment provider API.
package payment

// AmountDTO is the provider's decimal-string money representation.
type AmountDTO struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

// MetadataDTO carries our identifiers through the provider round-trip so
// webhook callbacks can be correlated back to a project.
type MetadataDTO struct {
	ProjectID string `json:"project_id"`
}

// CreatePaymentRequestDTO is the request body for creating a hosted checkout.
type CreatePaymentRequestDTO struct {
	Amount      AmountDTO   `json:"amount"`
	Description string      `json:"description"`
	Metadata    MetadataDTO `json:"metadata"`
}

// PaymentDTO is the provider's representation of a created payment.
type PaymentDTO struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Links  LinksDTO `json:"_links"`
}

// LinksDTO holds the hypermedia links attached to a payment.
type LinksDTO struct {
	Checkout HrefDTO `json:"checkout"`
}

// HrefDTO is a single hypermedia link.
type HrefDTO struct {
	Href string `json:"href"`
}
