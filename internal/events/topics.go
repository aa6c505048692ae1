package events

// Topic names mirror the list views that subscribe to them.
const (
	TopicUnassigned     = "grievances:unassigned"
	TopicWorkerRequests = "worker-requests:pending"
	TopicSignupRequests = "signup-requests:pending"
)

func TopicUserGrievances(userID string) string { return "grievances:user:" + userID }

func TopicWorkerGrievances(workerID string) string { return "grievances:worker:" + workerID }

func TopicTimeline(grievanceID string) string { return "timeline:" + grievanceID }
