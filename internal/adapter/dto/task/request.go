package task

// CreateTaskRequest represents a request to create a task
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=4000"`
	Priority    string `json:"priority" validate:"omitempty"`
	Deadline    string `json:"deadline" validate:"omitempty"`
}
