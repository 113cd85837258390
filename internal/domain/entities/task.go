package entities

import "strings"

// Priority is the task priority level
type Priority string

const (
	PriorityLow  Priority = "Low"
	PriorityHigh Priority = "High"
)

// NormalizePriority maps arbitrary provider or user input onto exactly High
// or Low. Matching is trimmed and case-insensitive; anything that is not
// "high" becomes Low.
func NormalizePriority(raw string) Priority {
	if strings.EqualFold(strings.TrimSpace(raw), "high") {
		return PriorityHigh
	}
	return PriorityLow
}

// IsValid checks if the priority is one of the two supported levels
func (p Priority) IsValid() bool {
	return p == PriorityLow || p == PriorityHigh
}

// Task is a user-owned unit of work. Ownership is set at creation and never
// changes. Deadline is an ISO date string as stored by the gateway; empty
// means no deadline.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Deadline    string   `json:"deadline"`
	Completed   bool     `json:"completed"`
	User        string   `json:"user"`
	Created     string   `json:"created"`
	Updated     string   `json:"updated"`
}

// NewTask creates a task with defaults applied. A task is only constructed
// once every required field has a value, so no partial task ever reaches the
// gateway.
func NewTask(title, description string, priority Priority, deadline, user string) *Task {
	if title == "" {
		title = "Untitled Task"
	}
	if !priority.IsValid() {
		priority = PriorityLow
	}
	return &Task{
		Title:       title,
		Description: description,
		Priority:    priority,
		Deadline:    deadline,
		Completed:   false,
		User:        user,
	}
}

// Validate validates task data before any remote call is issued
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if t.User == "" {
		return ErrMissingOwner
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	return nil
}
