// Package checklist evaluates the pre-live checklist: the conditional gates
// that must be satisfied before a project may move from domain to live.
//
// The policy is a conditional AND, not a flat list: which gates are
// mandatory depends on the client's stated domain and email choices. A
// client bringing an existing domain must complete the transfer; a client
// who ordered a brand-new domain has no transfer to complete; a client who
// declined business email vacuously satisfies the email-setup gate.
package checklist

import (
	"github.com/laurensbos/webstability-backend/internal/domain/project"
)

// Gate names as reported in evaluation results. These match the JSON field
// names of project.PreLiveChecklist so UI layers can highlight the exact
// missing items.
const (
	GatePaymentReceived          = "payment_received"
	GateDomainTransferCompleted  = "domain_transfer_completed"
	GatePrivacyPolicyProvided    = "privacy_policy_provided"
	GateTermsConditionsProvided  = "terms_conditions_provided"
	GateEmailPreferenceConfirmed = "email_preference_confirmed"
	GateEmailSetupCompleted      = "email_setup_completed"
	GateFinalApprovalGiven       = "final_approval_given"
)

// Result is the outcome of a checklist evaluation. Missing lists the
// mandatory gates that are not yet satisfied, in a stable order.
type Result struct {
	Complete bool
	Missing  []string
}

// Engine computes checklist completeness. It is stateless; every call
// re-derives the mandatory gate set from the project's current domain and
// email choices, so flipping a gate or a choice is reflected immediately.
type Engine struct{}

// New creates a checklist engine.
func New() Engine {
	return Engine{}
}

// Evaluate determines the mandatory gates for the project and reports which
// are missing.
func (Engine) Evaluate(p *project.Project) Result {
	type gate struct {
		name string
		done bool
	}
	cl := &p.Checklist

	gates := []gate{
		{GatePaymentReceived, cl.PaymentReceived.Done},
		{GatePrivacyPolicyProvided, cl.PrivacyPolicyProvided.Done},
		{GateTermsConditionsProvided, cl.TermsConditionsProvided.Done},
		{GateEmailPreferenceConfirmed, cl.EmailPreferenceConfirmed.Done},
		{GateFinalApprovalGiven, cl.FinalApprovalGiven.Done},
	}

	// A transfer is only required when the client brings an existing domain.
	// A brand-new domain is provisioned directly, nothing to transfer.
	if p.DomainInfo.HasDomain && !p.DomainInfo.WantsNewDomain {
		gates = append(gates, gate{GateDomainTransferCompleted, cl.DomainTransferCompleted.Done})
	}

	// Email setup only gates go-live when the client asked for it.
	if p.EmailInfo.WantsWebstabilityEmail || p.EmailInfo.WantsEmailForwarding {
		gates = append(gates, gate{GateEmailSetupCompleted, cl.EmailSetupCompleted.Done})
	}

	var missing []string
	for _, g := range gates {
		if !g.done {
			missing = append(missing, g.name)
		}
	}

	return Result{Complete: len(missing) == 0, Missing: missing}
}

// IsComplete reports whether every mandatory gate is satisfied.
func (e Engine) IsComplete(p *project.Project) bool {
	return e.Evaluate(p).Complete
}
