package project

// PaymentStatus tracks the one-off build payment for a project.
// "paid" is set-once: it never reverts except through an explicit refund.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentAwaiting PaymentStatus = "awaiting_payment"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// IsValid returns true if the status is one of the defined constants.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentAwaiting, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (s PaymentStatus) String() string {
	return string(s)
}
