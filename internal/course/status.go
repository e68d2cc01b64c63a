package course

// Status is a module's position in the progression lifecycle.
type Status string

const (
	StatusLocked     Status = "locked"
	StatusUnlocked   Status = "unlocked"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// AllStatuses returns every lifecycle status in progression order.
func AllStatuses() []Status {
	return []Status{StatusLocked, StatusUnlocked, StatusInProgress, StatusCompleted, StatusFailed}
}

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusLocked, StatusUnlocked, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Label returns the display name for s.
func (s Status) Label() string {
	if s == StatusInProgress {
		return "in progress"
	}
	return string(s)
}
