package models

// Grievance lifecycle. Submitted → Assigned → Accepted → In Progress →
// Completed; Rejected and Closed are absorbing side exits.
const (
	StatusSubmitted  = "Submitted"
	StatusAssigned   = "Assigned"
	StatusAccepted   = "Accepted"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusRejected   = "Rejected"
	StatusClosed     = "Closed"
)

// Default remarks written to the status log when the caller supplies none.
const (
	RemarkRegistered = "Complaint registered"
	RemarkAssigned   = "Assigned by admin"
	RemarkAccepted   = "Work accepted"
	RemarkStarted    = "Work started"
	RemarkCompleted  = "Work completed"
	RemarkRejected   = "Complaint rejected"
	RemarkClosed     = "Complaint closed"
)

type transition struct {
	from string
	to   string
}

// Who may move a grievance between which statuses. The admin owns triage
// (assignment, rejection, closing); the assigned worker owns the work
// progression.
var allowed = map[string]map[transition]bool{
	RoleAdmin: {
		{StatusSubmitted, StatusAssigned}: true,
		{StatusSubmitted, StatusRejected}: true,
		{StatusAssigned, StatusClosed}:    true,
	},
	RoleWorker: {
		{StatusAssigned, StatusAccepted}:    true,
		{StatusAccepted, StatusInProgress}:  true,
		{StatusInProgress, StatusCompleted}: true,
	},
}

// CanTransition reports whether role may move a grievance from → to.
func CanTransition(role, from, to string) bool {
	return allowed[role][transition{from, to}]
}

// DefaultRemarks returns the canonical log remark for a target status.
func DefaultRemarks(to string) string {
	switch to {
	case StatusSubmitted:
		return RemarkRegistered
	case StatusAssigned:
		return RemarkAssigned
	case StatusAccepted:
		return RemarkAccepted
	case StatusInProgress:
		return RemarkStarted
	case StatusCompleted:
		return RemarkCompleted
	case StatusRejected:
		return RemarkRejected
	case StatusClosed:
		return RemarkClosed
	}
	return ""
}

// RequiresWorker reports whether a status implies a non-empty assignee.
func RequiresWorker(status string) bool {
	switch status {
	case StatusAssigned, StatusAccepted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s string) bool {
	switch s {
	case StatusSubmitted, StatusAssigned, StatusAccepted, StatusInProgress,
		StatusCompleted, StatusRejected, StatusClosed:
		return true
	}
	return false
}
