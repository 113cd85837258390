package classroom

import (
	"sync"

	"golang.org/x/oauth2"

	"github.com/acadease/backend/internal/domain/entities"
)

// State is the import flow position. Transitions only happen through the
// manager while the session mutex is held.
type State string

const (
	StateNeedsAuth           State = "NEEDS_AUTH"
	StateAuthenticating      State = "AUTHENTICATING"
	StateFetchingCourses     State = "FETCHING_COURSES"
	StateShowCourses         State = "SHOW_COURSES"
	StateFetchingAssignments State = "FETCHING_ASSIGNMENTS"
	StateShowAssignments     State = "SHOW_ASSIGNMENTS"
	StateError               State = "ERROR"
)

// Session is one user's import flow. All fields behind mu; operations on a
// session are serialized so a slow fetch cannot interleave with a toggle or
// an import.
type Session struct {
	mu sync.Mutex

	ID     string
	UserID string

	state        State
	errorMessage string
	infoMessage  string

	token *oauth2.Token

	courses        []entities.Course
	selectedCourse *entities.Course
	assignments    []entities.CourseAssignment
	selected       map[string]bool
}

// View is an immutable snapshot of a session, safe to hand to the transport
// layer after the mutex is released
type View struct {
	SessionID     string                      `json:"session_id"`
	State         State                       `json:"state"`
	Error         string                      `json:"error,omitempty"`
	Info          string                      `json:"info,omitempty"`
	Courses       []entities.Course           `json:"courses,omitempty"`
	CourseName    string                      `json:"course_name,omitempty"`
	Assignments   []entities.CourseAssignment `json:"assignments,omitempty"`
	SelectedCount int                         `json:"selected_count"`
	AuthURL       string                      `json:"auth_url,omitempty"`
}

func newSession(id, userID string) *Session {
	return &Session{
		ID:       id,
		UserID:   userID,
		state:    StateNeedsAuth,
		selected: make(map[string]bool),
	}
}

// snapshot builds a View of the current session state. Caller must hold mu.
func (s *Session) snapshot() *View {
	v := &View{
		SessionID: s.ID,
		State:     s.state,
		Error:     s.errorMessage,
		Info:      s.infoMessage,
	}

	switch s.state {
	case StateShowCourses:
		v.Courses = append([]entities.Course(nil), s.courses...)
	case StateShowAssignments, StateFetchingAssignments:
		if s.selectedCourse != nil {
			v.CourseName = s.selectedCourse.Name
		}
		v.Assignments = make([]entities.CourseAssignment, 0, len(s.assignments))
		for _, a := range s.assignments {
			a.Selected = s.selected[a.OriginalID]
			v.Assignments = append(v.Assignments, a)
			if a.Selected {
				v.SelectedCount++
			}
		}
	}
	return v
}

// reset clears everything bound to the Google account. Caller must hold mu.
func (s *Session) reset(keepError bool) {
	s.token = nil
	s.courses = nil
	s.selectedCourse = nil
	s.assignments = nil
	s.selected = make(map[string]bool)
	s.state = StateNeedsAuth
	s.infoMessage = ""
	if !keepError {
		s.errorMessage = ""
	}
}

// clearCourseSelection drops the selected course and its assignments but
// keeps the sign-in. Caller must hold mu.
func (s *Session) clearCourseSelection() {
	s.selectedCourse = nil
	s.assignments = nil
	s.selected = make(map[string]bool)
}

func (s *Session) selectedAssignments() []entities.CourseAssignment {
	picked := make([]entities.CourseAssignment, 0)
	for _, a := range s.assignments {
		if s.selected[a.OriginalID] {
			picked = append(picked, a)
		}
	}
	return picked
}
