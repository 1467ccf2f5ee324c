package domain

type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
)

// Rank orders statuses for queue sorting: pending < preparing < ready < completed.
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusPreparing:
		return 1
	case StatusReady:
		return 2
	case StatusCompleted:
		return 3
	default:
		return 4
	}
}

// Next returns the status that follows s in the lifecycle. completed is
// terminal and maps to itself; advancing a completed order is not an error.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusPreparing
	case StatusPreparing:
		return StatusReady
	case StatusReady:
		return StatusCompleted
	default:
		return StatusCompleted
	}
}

func (s Status) Terminal() bool { return s == StatusCompleted }

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusCompleted:
		return true
	}
	return false
}
