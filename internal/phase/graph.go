// Package phase implements the project lifecycle state machine over a
// pluggable phase graph. The graph is injected at construction so that the
// client-portal vocabulary and the developer-dashboard vocabulary (or a test
// graph) can drive the same machine.
package phase

import (
	"github.com/laurensbos/webstability-backend/internal/domain/project"
)

// Graph is a directed graph of allowed phase transitions plus the set of
// phases that require payment before entry. Graphs are immutable after
// construction; the machine never mutates them.
type Graph struct {
	Name       string
	Start      project.Phase
	Successors map[project.Phase][]project.Phase
	// PaymentGated marks phases that require paymentStatus=paid to enter.
	// Entering the payment phase itself is never gated.
	PaymentGated map[project.Phase]bool
	// FeedbackPhases marks phases that unresolved negative feedback blocks
	// leaving.
	FeedbackPhases map[project.Phase]bool
}

// Contains reports whether the phase is a node of this graph.
func (g *Graph) Contains(p project.Phase) bool {
	if p == g.Start {
		return true
	}
	for _, succs := range g.Successors {
		for _, s := range succs {
			if s == p {
				return true
			}
		}
	}
	_, ok := g.Successors[p]
	return ok
}

// IsSuccessor reports whether target directly follows from in the graph.
func (g *Graph) IsSuccessor(from, target project.Phase) bool {
	for _, s := range g.Successors[from] {
		if s == target {
			return true
		}
	}
	return false
}

// ClientGraph is the canonical seven-phase client-portal lifecycle:
// onboarding → design → feedback → revisie → payment → domain → live.
func ClientGraph() Graph {
	return Graph{
		Name:  "client",
		Start: project.PhaseOnboarding,
		Successors: map[project.Phase][]project.Phase{
			project.PhaseOnboarding: {project.PhaseDesign},
			project.PhaseDesign:     {project.PhaseFeedback},
			project.PhaseFeedback:   {project.PhaseRevisie, project.PhasePayment},
			project.PhaseRevisie:    {project.PhasePayment},
			project.PhasePayment:    {project.PhaseDomain},
			project.PhaseDomain:     {project.PhaseLive},
		},
		PaymentGated: map[project.Phase]bool{
			project.PhaseDomain: true,
			project.PhaseLive:   true,
		},
		FeedbackPhases: map[project.Phase]bool{
			project.PhaseFeedback: true,
			project.PhaseRevisie:  true,
		},
	}
}

// DeveloperGraph is the six-phase developer-dashboard lifecycle:
// onboarding → design → design_approved → development → review → live.
func DeveloperGraph() Graph {
	return Graph{
		Name:  "developer",
		Start: project.PhaseOnboarding,
		Successors: map[project.Phase][]project.Phase{
			project.PhaseOnboarding:     {project.PhaseDesign},
			project.PhaseDesign:         {project.PhaseDesignApproved},
			project.PhaseDesignApproved: {project.PhaseDevelopment},
			project.PhaseDevelopment:    {project.PhaseReview},
			project.PhaseReview:         {project.PhaseLive},
		},
		PaymentGated: map[project.Phase]bool{
			project.PhaseDevelopment: true,
			project.PhaseReview:      true,
			project.PhaseLive:        true,
		},
		FeedbackPhases: map[project.Phase]bool{},
	}
}

// GraphByName returns a named preset graph. Recognized names are "client"
// and "developer"; anything else falls back to the client graph.
func GraphByName(name string) Graph {
	if name == "developer" {
		return DeveloperGraph()
	}
	return ClientGraph()
}
