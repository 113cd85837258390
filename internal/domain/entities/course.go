package entities

import "time"

// Course is an active course as exposed by the classroom provider
type Course struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Section     string `json:"section,omitempty"`
	Description string `json:"description,omitempty"`
}

// CourseAssignment is a published assignment projected into task-shaped
// fields. OriginalID keys selection toggling; Deadline is nil when the
// assignment carries no due date.
type CourseAssignment struct {
	OriginalID  string     `json:"original_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CourseName  string     `json:"course_name"`
	Priority    Priority   `json:"priority"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Selected    bool       `json:"selected"`
}

// User is the authenticated account record returned by the gateway
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Verified bool   `json:"verified"`
	Created  string `json:"created"`
	Updated  string `json:"updated"`
}
