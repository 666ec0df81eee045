package domain

// ResolvedStatusName is the terminal status the resolution engine drives toward.
const ResolvedStatusName = "Resolved"

// UnassignedDisplayName is rendered when an issue has no assignee.
const UnassignedDisplayName = "Unassigned"

// Issue is an immutable snapshot of a tracker issue, fetched on demand.
type Issue struct {
	Key                 string
	Type                string
	Summary             string
	Status              string
	Assignee            *string
	TimeEstimateSeconds *int64
	URL                 string
}

// AssigneeDisplay returns the assignee name, defaulting to "Unassigned".
func (i Issue) AssigneeDisplay() string {
	if i.Assignee == nil || *i.Assignee == "" {
		return UnassignedDisplayName
	}
	return *i.Assignee
}

// IsResolved reports whether the issue already sits in the terminal status.
func (i Issue) IsResolved() bool {
	return i.Status == ResolvedStatusName
}

// Transition is a tracker-offered move out of an issue's current status.
// The set is issue- and status-dependent and must be re-fetched each time.
type Transition struct {
	ID           string
	TargetStatus string
}

// ResolutionRequest captures one resolve/wontfix invocation.
type ResolutionRequest struct {
	IssueKey   string
	Resolution string
	Comment    string
}

// Resolution labels for the two named closing policies.
const (
	ResolutionFixed   = "Fixed"
	ResolutionWontFix = "Won't Fix"
)
