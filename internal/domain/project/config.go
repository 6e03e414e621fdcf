package project

import "time"

// TransferStatus tracks a domain transfer from the client's current
// registrar to ours.
type TransferStatus string

const (
	TransferNotStarted       TransferStatus = "not_started"
	TransferInstructionsSent TransferStatus = "instructions_sent"
	TransferPending          TransferStatus = "pending"
	TransferInProgress       TransferStatus = "in_progress"
	TransferCompleted        TransferStatus = "completed"
	TransferNotNeeded        TransferStatus = "not_needed"
)

// IsValid returns true if the status is one of the defined constants.
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferNotStarted, TransferInstructionsSent, TransferPending,
		TransferInProgress, TransferCompleted, TransferNotNeeded:
		return true
	default:
		return false
	}
}

// EmailSetupStatus tracks provisioning of business email for the client.
type EmailSetupStatus string

const (
	EmailSetupNotStarted EmailSetupStatus = "not_started"
	EmailSetupPending    EmailSetupStatus = "pending"
	EmailSetupInProgress EmailSetupStatus = "in_progress"
	EmailSetupCompleted  EmailSetupStatus = "completed"
	EmailSetupNotNeeded  EmailSetupStatus = "not_needed"
)

// IsValid returns true if the status is one of the defined constants.
func (s EmailSetupStatus) IsValid() bool {
	switch s {
	case EmailSetupNotStarted, EmailSetupPending, EmailSetupInProgress,
		EmailSetupCompleted, EmailSetupNotNeeded:
		return true
	default:
		return false
	}
}

// DomainInfo captures the client's domain situation as stated during
// onboarding. HasDomain and WantsNewDomain drive which checklist gates are
// mandatory before go-live.
type DomainInfo struct {
	HasDomain       bool           `json:"has_domain"`
	WantsNewDomain  bool           `json:"wants_new_domain"`
	DomainName      string         `json:"domain_name,omitempty"`
	CurrentProvider string         `json:"current_provider,omitempty"`
	AuthCode        string         `json:"auth_code,omitempty"`
	TransferStatus  TransferStatus `json:"transfer_status"`
}

// EmailInfo captures the client's business-email preference.
type EmailInfo struct {
	WantsWebstabilityEmail bool             `json:"wants_webstability_email"`
	WantsEmailForwarding   bool             `json:"wants_email_forwarding"`
	ForwardingAddress      string           `json:"forwarding_address,omitempty"`
	EmailSetupStatus       EmailSetupStatus `json:"email_setup_status"`
}

// LegalInfo holds company registration details used for invoices and the
// generated legal pages.
type LegalInfo struct {
	CompanyName string `json:"company_name,omitempty"`
	KvkNumber   string `json:"kvk_number,omitempty"`
	VatNumber   string `json:"vat_number,omitempty"`
}

// BusinessInfo holds contact details for the client's business.
type BusinessInfo struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// ChecklistGate is a single pre-live gate: a boolean with an optional
// completion timestamp.
type ChecklistGate struct {
	Done        bool       `json:"done"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Set marks the gate done (or not) and stamps the completion time on the
// done edge. Clearing a gate also clears its timestamp.
func (g *ChecklistGate) Set(done bool, at time.Time) {
	g.Done = done
	if done {
		g.CompletedAt = &at
	} else {
		g.CompletedAt = nil
	}
}

// PreLiveChecklist is the set of conditional gates evaluated before a
// project may enter the live phase. Which gates are mandatory depends on the
// client's domain and email choices; see the checklist package.
type PreLiveChecklist struct {
	PaymentReceived          ChecklistGate `json:"payment_received"`
	AuthCodeProvided         ChecklistGate `json:"auth_code_provided"`
	DomainTransferCompleted  ChecklistGate `json:"domain_transfer_completed"`
	PrivacyPolicyProvided    ChecklistGate `json:"privacy_policy_provided"`
	TermsConditionsProvided  ChecklistGate `json:"terms_conditions_provided"`
	EmailPreferenceConfirmed ChecklistGate `json:"email_preference_confirmed"`
	EmailSetupCompleted      ChecklistGate `json:"email_setup_completed"`
	AnalyticsAgreed          ChecklistGate `json:"analytics_agreed"`
	FinalApprovalGiven       ChecklistGate `json:"final_approval_given"`
}
