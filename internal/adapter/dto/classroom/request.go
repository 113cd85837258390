package classroom

// SelectCourseRequest picks a course from the session's course list
type SelectCourseRequest struct {
	CourseID string `json:"course_id" validate:"required"`
}

// ToggleAssignmentRequest flips one assignment's import selection
type ToggleAssignmentRequest struct {
	AssignmentID string `json:"assignment_id" validate:"required"`
}
