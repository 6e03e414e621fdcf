package project

// Phase is a named stage in a project's delivery lifecycle. Which phases
// exist and how they connect is owned by the configured phase graph; this
// package only defines the vocabulary.
type Phase string

// Client-portal lifecycle phases.
const (
	PhaseOnboarding Phase = "onboarding"
	PhaseDesign     Phase = "design"
	PhaseFeedback   Phase = "feedback"
	PhaseRevisie    Phase = "revisie"
	PhasePayment    Phase = "payment"
	PhaseDomain     Phase = "domain"
	PhaseLive       Phase = "live"
)

// Developer-dashboard lifecycle phases (alternate vocabulary; shares
// onboarding, design and live with the client graph).
const (
	PhaseDesignApproved Phase = "design_approved"
	PhaseDevelopment    Phase = "development"
	PhaseReview         Phase = "review"
)

// IsValid returns true if the phase belongs to either vocabulary.
func (p Phase) IsValid() bool {
	switch p {
	case PhaseOnboarding, PhaseDesign, PhaseFeedback, PhaseRevisie,
		PhasePayment, PhaseDomain, PhaseLive,
		PhaseDesignApproved, PhaseDevelopment, PhaseReview:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (p Phase) String() string {
	return string(p)
}
