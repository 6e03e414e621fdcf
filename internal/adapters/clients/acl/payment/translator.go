package payment

import (
	"fmt"

	"github.com/laurensbos/webstability-backend/internal/domain/project"
	"github.com/laurensbos/webstability-backend/internal/ports"
)

// ToCreatePaymentRequest builds the provider request for a project checkout.
// Amounts are carried in euro cents internally and rendered as the provider's
// decimal string.
func ToCreatePaymentRequest(p *project.Project, amountCents int64) CreatePaymentRequestDTO {
	return CreatePaymentRequestDTO{
		Amount: AmountDTO{
			Currency: "EUR",
			Value:    FormatAmount(amountCents),
		},
		Description: fmt.Sprintf("Webstability %s (%s)", p.Package, p.ProjectID),
		Metadata:    MetadataDTO{ProjectID: p.ID},
	}
}

// ToCheckout translates a created payment into the domain checkout result.
func ToCheckout(dto *PaymentDTO) *ports.Checkout {
	return &ports.Checkout{
		URL:       dto.Links.Checkout.Href,
		Reference: dto.ID,
	}
}

// FormatAmount renders euro cents as the provider's "123.45" decimal string.
func FormatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
