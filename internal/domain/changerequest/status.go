package changerequest

// Status represents the handling state of a ChangeRequest. Transitions are
// driven only by developer action: pending and in_progress may move between
// each other, either may move to completed, and completed is terminal.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// IsValid returns true if the status is one of the defined constants.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo reports whether moving from s to target is an allowed
// status transition.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusInProgress || target == StatusCompleted
	case StatusInProgress:
		return target == StatusPending || target == StatusCompleted
	case StatusCompleted:
		return false
	default:
		return false
	}
}

// Normalize maps legacy status aliases seen in older clients to the
// canonical vocabulary. Unknown values pass through unchanged so validation
// can reject them with the original spelling.
func Normalize(raw string) Status {
	switch raw {
	case "done", "resolved":
		return StatusCompleted
	case "open", "new":
		return StatusPending
	case "busy", "in-progress":
		return StatusInProgress
	default:
		return Status(raw)
	}
}
