package scheduler

// State is the lifecycle stage of a Scheduler.
type State int

const (
	NotStarted State = iota
	Running
	Paused
	Complete
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}
