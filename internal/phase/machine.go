package phase

import (
	"time"

	"github.com/laurensbos/webstability-backend/internal/checklist"
	"github.com/laurensbos/webstability-backend/internal/domain"
	"github.com/laurensbos/webstability-backend/internal/domain/project"
)

// Machine validates and applies phase transitions for a project against a
// configured phase graph.
//
// Guards run in a fixed order; the first failing guard decides the returned
// reason:
//
//  1. target must be a direct successor of the current phase, unless the
//     caller is a developer override
//  2. payment-gated phases require paymentStatus=paid (never overridable)
//  3. domain → live requires the pre-live checklist to be complete (never
//     overridable)
//  4. leaving a feedback phase requires no unresolved negative feedback,
//     unless overridden
//
// Guard failures are business-rule results, returned as *domain.TransitionError
// wrapping the guard's sentinel; the machine never panics on them.
type Machine struct {
	graph     Graph
	checklist checklist.Engine
}

// NewMachine creates a state machine over the given graph.
func NewMachine(graph Graph, cl checklist.Engine) *Machine {
	return &Machine{graph: graph, checklist: cl}
}

// Graph returns the configured phase graph.
func (m *Machine) Graph() Graph {
	return m.graph
}

// CanTransition checks all guards for moving the project to target.
// It returns nil when the transition is allowed, or a *domain.TransitionError
// naming the failed precondition. Override marks a developer-initiated
// transition, which bypasses adjacency and the feedback guard only.
func (m *Machine) CanTransition(p *project.Project, target project.Phase, override bool) error {
	blocked := func(reason error, missing []string) error {
		return &domain.TransitionError{
			From:    string(p.Phase),
			To:      string(target),
			Reason:  reason,
			Missing: missing,
		}
	}

	if !target.IsValid() || !m.graph.Contains(target) {
		return blocked(domain.ErrInvalidTransition, nil)
	}

	// Guard 1: adjacency in the configured graph.
	if !override && !m.graph.IsSuccessor(p.Phase, target) {
		return blocked(domain.ErrInvalidTransition, nil)
	}

	// Guard 2: payment gate. Entering the payment phase itself is always
	// allowed; everything behind the gate needs a confirmed payment.
	if m.graph.PaymentGated[target] && target != project.PhasePayment {
		if p.PaymentStatus != project.PaymentPaid {
			return blocked(domain.ErrPaymentRequired, nil)
		}
	}

	// Guard 3: go-live requires the conditional checklist.
	if target == project.PhaseLive {
		if res := m.checklist.Evaluate(p); !res.Complete {
			return blocked(domain.ErrChecklistIncomplete, res.Missing)
		}
	}

	// Guard 4: unresolved negative feedback pins the project in the
	// feedback phases.
	if !override && m.graph.FeedbackPhases[p.Phase] && p.UnresolvedNegativeFeedback() {
		return blocked(domain.ErrUnresolvedFeedback, nil)
	}

	return nil
}

// Apply transitions the project to target after re-checking all guards.
// On success it updates the phase and UpdatedAt, and stamps the live date
// when entering live for the first time (an existing live date is kept).
func (m *Machine) Apply(p *project.Project, target project.Phase, override bool, now time.Time) error {
	if err := m.CanTransition(p, target, override); err != nil {
		return err
	}

	p.Phase = target
	p.UpdatedAt = now
	if target == project.PhaseLive {
		p.MarkLive(now)
	}
	return nil
}
