// Package quota computes the remaining monthly change-request allowance for
// a project given its package and usage counter. The allowance table is
// injected configuration, not a hard-coded global, so deployments and tests
// can override it. Monthly counter resets are an external scheduled job;
// this package only reads and increments the counter.
package quota

import (
	"fmt"

	"github.com/laurensbos/webstability-backend/internal/domain"
	"github.com/laurensbos/webstability-backend/internal/domain/project"
)

// UnlimitedThreshold is the sentinel: any allowance at or above this value
// means the package has no monthly cap.
const UnlimitedThreshold = 999

// Table maps packages to their monthly change-request allowance.
type Table map[project.Package]int

// DefaultTable returns the standard per-package allowances.
func DefaultTable() Table {
	return Table{
		project.PackageStarter:      2,
		project.PackageProfessional: 5,
		project.PackageWebshop:      10,
		project.PackageBusiness:     UnlimitedThreshold,
	}
}

// Tracker answers quota questions for projects against a fixed table.
type Tracker struct {
	table Table
}

// NewTracker creates a tracker over the given allowance table.
func NewTracker(table Table) *Tracker {
	return &Tracker{table: table}
}

// Remaining returns the number of change requests left this month and
// whether the package is unlimited. For limited packages the count is
// clamped at zero; unknown packages have no allowance.
func (t *Tracker) Remaining(pkg project.Package, used int) (remaining int, unlimited bool) {
	allowance, ok := t.table[pkg]
	if !ok {
		return 0, false
	}
	if allowance >= UnlimitedThreshold {
		return 0, true
	}
	remaining = allowance - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, false
}

// CanConsume reports whether the project may submit one more change request
// this month.
func (t *Tracker) CanConsume(pkg project.Package, used int) bool {
	remaining, unlimited := t.Remaining(pkg, used)
	return unlimited || remaining > 0
}

// Consume increments the project's monthly counter by one. It fails with
// domain.ErrQuotaExceeded when no allowance remains at call time. Callers
// are responsible for persisting the project under their concurrency
// control; the check and increment here operate on the caller's snapshot.
func (t *Tracker) Consume(p *project.Project) error {
	if !t.CanConsume(p.Package, p.ChangesThisMonth) {
		return fmt.Errorf("%w: package %s", domain.ErrQuotaExceeded, p.Package)
	}
	p.ChangesThisMonth++
	return nil
}
