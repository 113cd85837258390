package classroom

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	apperrors "github.com/acadease/backend/errors"
	"github.com/acadease/backend/internal/domain/entities"
	infra "github.com/acadease/backend/internal/infrastructure/external/classroom"
	"github.com/acadease/backend/internal/usecase/auth"
	"github.com/acadease/backend/internal/usecase/task"
	"github.com/acadease/backend/pkg/metrics"
)

const (
	msgSignInCancelled = "Google Sign-In was cancelled."
	msgNoCourses       = "No active Google Classroom courses found."
	msgNoAssignments   = "No assignments found for this course."
)

// CourseProvider is the slice of the Google integration the import flow
// needs. Satisfied by infra.GoogleProvider.
type CourseProvider interface {
	GetAuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	RevokeToken(ctx context.Context, accessToken string) error
	ListActiveCourses(ctx context.Context, token *oauth2.Token) ([]entities.Course, error)
	ListPublishedAssignments(ctx context.Context, token *oauth2.Token, courseID, courseName string) ([]entities.CourseAssignment, error)
}

// Manager owns every live import session. Sessions are keyed by id, scoped
// to their owning user, and dropped when that user signs out of the app.
type Manager struct {
	provider CourseProvider
	states   *infra.StateManager
	tokens   *infra.TokenStore
	tasks    task.Service
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager constructs the session manager and subscribes it to auth state
// changes so a signed-out user's sessions and stored Google tokens are
// discarded immediately
func NewManager(provider CourseProvider, states *infra.StateManager, tokens *infra.TokenStore, tasks task.Service, notifier *auth.Notifier, logger *zap.Logger) *Manager {
	m := &Manager{
		provider: provider,
		states:   states,
		tokens:   tokens,
		tasks:    tasks,
		logger:   logger,
		sessions: make(map[string]*Session),
	}

	if notifier != nil {
		notifier.Subscribe(func(ev auth.Event) {
			if ev.Type == auth.EventSignedOut {
				m.dropUserSessions(ev.UserID)
			}
		})
	}

	return m
}

// OpenSession starts a fresh import flow for the user
func (m *Manager) OpenSession(_ context.Context, userID string) *View {
	session := newSession(uuid.New().String(), userID)

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.Info("classroom session opened",
		zap.String("session_id", session.ID),
		zap.String("user_id", userID),
	)

	session.mu.Lock()
	defer session.mu.Unlock()
	return session.snapshot()
}

// CloseSession discards a session regardless of its state
func (m *Manager) CloseSession(_ context.Context, userID, sessionID string) error {
	session, err := m.lookup(userID, sessionID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.sessions, session.ID)
	m.mu.Unlock()

	m.logger.Info("classroom session closed", zap.String("session_id", sessionID))
	return nil
}

// SessionView returns the current snapshot without touching any state. The
// client polls this after opening the consent URL to observe the callback's
// outcome.
func (m *Manager) SessionView(_ context.Context, userID, sessionID string) (*View, error) {
	session, err := m.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	return session.snapshot(), nil
}

// BeginSignIn moves the session into AUTHENTICATING and returns the Google
// consent URL the client must open
func (m *Manager) BeginSignIn(ctx context.Context, userID, sessionID string) (*View, error) {
	session, err := m.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	state, err := m.states.GenerateState(ctx, session.ID)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	session.state = StateAuthenticating
	session.errorMessage = ""
	session.infoMessage = ""

	v := session.snapshot()
	v.AuthURL = m.provider.GetAuthURL(state)
	return v, nil
}

// CompleteSignIn handles the OAuth callback. A user-cancelled consent is not
// a failure; the session simply returns to NEEDS_AUTH. On success the token
// is stored for later silent recovery and the course list is fetched right
// away.
func (m *Manager) CompleteSignIn(ctx context.Context, state, code, errParam string) (*View, error) {
	sessionID, ok := m.states.ValidateState(ctx, state)
	if !ok {
		return nil, apperrors.ErrClassroomSessionInvalid("unknown or expired sign-in state")
	}

	m.mu.Lock()
	session, exists := m.sessions[sessionID]
	m.mu.Unlock()
	if !exists {
		return nil, apperrors.ErrClassroomSessionInvalid("session no longer exists")
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if errParam != "" {
		if errParam == "access_denied" {
			session.reset(false)
			session.infoMessage = msgSignInCancelled
			return session.snapshot(), nil
		}
		session.state = StateError
		session.errorMessage = fmt.Sprintf("Google Sign-In failed: %s", errParam)
		return session.snapshot(), nil
	}

	token, err := m.provider.ExchangeCode(ctx, code)
	if err != nil {
		m.logger.Warn("code exchange failed", zap.String("session_id", session.ID), zap.Error(err))
		session.state = StateError
		session.errorMessage = fmt.Sprintf("Google Sign-In failed: %s", err.Error())
		return session.snapshot(), nil
	}

	session.token = token
	if err := m.tokens.Save(ctx, session.UserID, token); err != nil {
		m.logger.Warn("failed to persist google token", zap.Error(err))
	}

	m.fetchCoursesLocked(ctx, session)
	return session.snapshot(), nil
}

// RefreshCourses re-fetches whatever list the session is looking at: the
// assignment list when a course is selected, the course list otherwise. A
// session without a token first tries the user's stored token, refreshing
// it when it has gone stale; only when that fails does the client need
// another interactive sign-in.
func (m *Manager) RefreshCourses(ctx context.Context, userID, sessionID string) (*View, error) {
	session, err := m.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.token == nil {
		token, found, err := m.tokens.Load(ctx, session.UserID)
		if err != nil || !found {
			session.reset(false)
			return session.snapshot(), nil
		}
		if !token.Valid() && token.RefreshToken != "" {
			refreshed, err := m.provider.RefreshToken(ctx, token.RefreshToken)
			if err != nil {
				m.signOutLocked(ctx, session, false)
				return session.snapshot(), nil
			}
			if refreshed.RefreshToken == "" {
				refreshed.RefreshToken = token.RefreshToken
			}
			if err := m.tokens.Save(ctx, session.UserID, refreshed); err != nil {
				m.logger.Warn("failed to store refreshed google token", zap.Error(err))
			}
			token = refreshed
		}
		session.token = token
	}

	if session.selectedCourse != nil {
		m.fetchAssignmentsLocked(ctx, session)
	} else {
		m.fetchCoursesLocked(ctx, session)
	}
	return session.snapshot(), nil
}

// SelectCourse fetches the published assignments of one course and moves the
// session to SHOW_ASSIGNMENTS. Selecting a course always clears any previous
// assignment selection.
func (m *Manager) SelectCourse(ctx context.Context, userID, sessionID, courseID string) (*View, error) {
	session, err := m.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.token == nil {
		return nil, apperrors.ErrClassroomSessionInvalid("no Google sign-in for this session")
	}

	var course *entities.Course
	for i := range session.courses {
		if session.courses[i].ID == courseID {
			course = &session.courses[i]
			break
		}
	}
	if course == nil {
		return nil, apperrors.ErrInvalidArgument("unknown course id")
	}

	session.clearCourseSelection()
	session.selectedCourse = course
	m.fetchAssignmentsLocked(ctx, session)
	return session.snapshot(), nil
}

// BackToCourses returns from the assignment list to the course list without
// touching the sign-in
func (m *Manager) BackToCourses(_ context.Context, userID, sessionID string) (*View, error) {
	session, err := m.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	session.clearCourseSelection()
	session.state = StateShowCourses
	session.errorMessage = ""
	session.infoMessage = ""
	return session.snapshot(), nil
}

// ToggleAssignment flips one assignment's selection
func (m *Manager) ToggleAssignment(_ context.Context, userID, sessionID, originalID string) (*View, error) {
	session, err := m.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.state != StateShowAssignments {
		return nil, apperrors.ErrClassroomSessionInvalid("no assignment list to select from")
	}

	found := false
	for _, a := range session.assignments {
		if a.OriginalID == originalID {
			found = true
			break
		}
	}
	if !found {
		return nil, apperrors.ErrInvalidArgument("unknown assignment id")
	}

	session.selected[originalID] = !session.selected[originalID]
	return session.snapshot(), nil
}

// ImportSelected creates one task per selected assignment through the task
// service and then returns the session to the course list, keeping the
// Google sign-in alive for further imports
func (m *Manager) ImportSelected(ctx context.Context, userID, sessionID, gatewayToken string) (*View, error) {
	session, err := m.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	picked := session.selectedAssignments()
	if len(picked) == 0 {
		return nil, apperrors.ErrInvalidArgument("Please select at least one assignment to import.")
	}

	imported := 0
	for _, a := range picked {
		deadline := ""
		if a.Deadline != nil {
			deadline = a.Deadline.Format(time.RFC3339)
		}
		_, err := m.tasks.CreateTask(ctx, gatewayToken, task.CreateInput{
			Title:       a.Title,
			Description: a.Description,
			Priority:    string(a.Priority),
			Deadline:    deadline,
		})
		if err != nil {
			m.logger.Error("assignment import failed",
				zap.String("session_id", session.ID),
				zap.String("assignment_id", a.OriginalID),
				zap.Error(err),
			)
			session.state = StateError
			session.errorMessage = fmt.Sprintf("Imported %d of %d assignments before a create failed.", imported, len(picked))
			return session.snapshot(), apperrors.ErrClassroomImportFailed(err)
		}
		imported++
		metrics.ImportedTasks.Inc()
	}

	m.logger.Info("assignments imported",
		zap.String("session_id", session.ID),
		zap.Int("count", imported),
	)

	session.clearCourseSelection()
	session.state = StateShowCourses
	session.errorMessage = ""
	session.infoMessage = fmt.Sprintf("%d task(s) have been imported.", imported)
	return session.snapshot(), nil
}

// SignOut revokes and discards the session's Google credentials. Revocation
// is best effort; local state is cleared no matter what.
func (m *Manager) SignOut(ctx context.Context, userID, sessionID string) (*View, error) {
	session, err := m.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	m.signOutLocked(ctx, session, false)
	return session.snapshot(), nil
}

// Retry leaves the ERROR state: it re-runs the fetch that failed when still
// signed in, back to NEEDS_AUTH otherwise
func (m *Manager) Retry(ctx context.Context, userID, sessionID string) (*View, error) {
	session, err := m.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	session.errorMessage = ""
	if session.token == nil {
		session.reset(false)
		return session.snapshot(), nil
	}

	if session.selectedCourse != nil {
		m.fetchAssignmentsLocked(ctx, session)
	} else {
		m.fetchCoursesLocked(ctx, session)
	}
	return session.snapshot(), nil
}

// fetchCoursesLocked fetches the active course list. An empty list is a
// valid outcome and still lands in SHOW_COURSES with an informational
// message. Caller must hold the session mutex.
func (m *Manager) fetchCoursesLocked(ctx context.Context, session *Session) {
	session.state = StateFetchingCourses
	session.errorMessage = ""
	session.infoMessage = ""

	courses, err := m.provider.ListActiveCourses(ctx, session.token)
	if err != nil {
		m.failFetchLocked(ctx, session, "courses", err)
		return
	}

	session.courses = courses
	if len(courses) == 0 {
		session.infoMessage = msgNoCourses
	}
	session.state = StateShowCourses
}

// fetchAssignmentsLocked fetches the published assignments of the selected
// course. On a re-fetch the selection is pruned to the assignments that are
// still published. Caller must hold the session mutex.
func (m *Manager) fetchAssignmentsLocked(ctx context.Context, session *Session) {
	course := session.selectedCourse
	session.state = StateFetchingAssignments
	session.errorMessage = ""
	session.infoMessage = ""

	assignments, err := m.provider.ListPublishedAssignments(ctx, session.token, course.ID, course.Name)
	if err != nil {
		m.failFetchLocked(ctx, session, "assignments", err)
		return
	}

	session.assignments = assignments
	kept := make(map[string]bool)
	for _, a := range assignments {
		if session.selected[a.OriginalID] {
			kept[a.OriginalID] = true
		}
	}
	session.selected = kept
	if len(assignments) == 0 {
		session.infoMessage = msgNoAssignments
	}
	session.state = StateShowAssignments
}

// failFetchLocked maps a provider failure to the right terminal state. A
// credential rejection means the stored token is dead, so the whole Google
// session is torn down; any other failure lands in ERROR with the session
// intact. Caller must hold the session mutex.
func (m *Manager) failFetchLocked(ctx context.Context, session *Session, what string, err error) {
	m.logger.Warn("classroom fetch failed",
		zap.String("session_id", session.ID),
		zap.String("what", what),
		zap.Error(err),
	)

	if infra.IsAuthError(err) {
		m.signOutLocked(ctx, session, true)
		session.errorMessage = fmt.Sprintf("Failed to fetch %s: %s", what, err.Error())
		return
	}

	session.state = StateError
	session.errorMessage = fmt.Sprintf("Failed to fetch %s: %s", what, err.Error())
}

// signOutLocked revokes the token, clears the stored copy and resets the
// session. Caller must hold the session mutex.
func (m *Manager) signOutLocked(ctx context.Context, session *Session, keepError bool) {
	if session.token != nil && session.token.AccessToken != "" {
		if err := m.provider.RevokeToken(ctx, session.token.AccessToken); err != nil {
			m.logger.Warn("token revocation failed", zap.String("session_id", session.ID), zap.Error(err))
		}
	}
	if err := m.tokens.Clear(ctx, session.UserID); err != nil {
		m.logger.Warn("failed to clear stored google token", zap.Error(err))
	}
	session.reset(keepError)
}

// dropUserSessions discards every session and stored token of a user. Runs
// when the user signs out of the app itself.
func (m *Manager) dropUserSessions(userID string) {
	m.mu.Lock()
	for id, session := range m.sessions {
		if session.UserID == userID {
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.tokens.Clear(ctx, userID); err != nil {
		m.logger.Warn("failed to clear google token on sign-out", zap.String("user_id", userID), zap.Error(err))
	}

	m.logger.Info("dropped classroom sessions for signed-out user", zap.String("user_id", userID))
}

func (m *Manager) lookup(userID, sessionID string) (*Session, error) {
	m.mu.Lock()
	session, exists := m.sessions[sessionID]
	m.mu.Unlock()

	if !exists {
		return nil, apperrors.ErrNotFound("classroom session")
	}
	if session.UserID != userID {
		return nil, apperrors.ErrClassroomSessionInvalid("session does not belong to the caller")
	}
	return session, nil
}
