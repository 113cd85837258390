package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/acadease/backend/errors"
	classroomdto "github.com/acadease/backend/internal/adapter/dto/classroom"
	"github.com/acadease/backend/internal/usecase/auth"
	"github.com/acadease/backend/internal/usecase/classroom"
)

// Classroom handles the Google Classroom import flow
type Classroom struct {
	manager     *classroom.Manager
	authService auth.Service
	logger      *zap.Logger
}

// NewClassroom creates a new classroom handler
func NewClassroom(manager *classroom.Manager, authService auth.Service, logger *zap.Logger) *Classroom {
	return &Classroom{
		manager:     manager,
		authService: authService,
		logger:      logger,
	}
}

// userID resolves the caller from the gateway token
func (h *Classroom) userID(c echo.Context) (string, string, error) {
	token := ExtractToken(c)
	if token == "" {
		return "", "", apperrors.ErrUnauthenticated()
	}
	claims, err := h.authService.CurrentUser(token)
	if err != nil {
		return "", "", err
	}
	return claims.RecordID, token, nil
}

// Open starts a new import session
// POST /v1/classroom/sessions
func (h *Classroom) Open(c echo.Context) error {
	userID, _, err := h.userID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	view := h.manager.OpenSession(c.Request().Context(), userID)
	return HandleSuccess(h.logger, c, view)
}

// Get returns the session's current state
// GET /v1/classroom/sessions/:id
func (h *Classroom) Get(c echo.Context) error {
	userID, _, err := h.userID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	view, err := h.manager.SessionView(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, view)
}

// Close discards a session
// DELETE /v1/classroom/sessions/:id
func (h *Classroom) Close(c echo.Context) error {
	userID, _, err := h.userID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.manager.CloseSession(c.Request().Context(), userID, c.Param("id")); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, nil)
}

// SignIn returns the Google consent URL for this session
// POST /v1/classroom/sessions/:id/signin
func (h *Classroom) SignIn(c echo.Context) error {
	userID, _, err := h.userID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	view, err := h.manager.BeginSignIn(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, view)
}

// Callback handles the OAuth redirect from Google. Reached by the browser,
// not the API client, so it is not authenticated with a gateway token; the
// state parameter routes it to the right session.
// GET /v1/classroom/callback
func (h *Classroom) Callback(c echo.Context) error {
	state := c.QueryParam("state")
	if state == "" {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("missing state parameter"))
	}

	view, err := h.manager.CompleteSignIn(
		c.Request().Context(),
		state,
		c.QueryParam("code"),
		c.QueryParam("error"),
	)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, view)
}

// Refresh re-fetches the course list
// POST /v1/classroom/sessions/:id/courses/refresh
func (h *Classroom) Refresh(c echo.Context) error {
	userID, _, err := h.userID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	view, err := h.manager.RefreshCourses(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, view)
}

// SelectCourse fetches the assignments of one course
// POST /v1/classroom/sessions/:id/courses/select
func (h *Classroom) SelectCourse(c echo.Context) error {
	userID, _, err := h.userID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req classroomdto.SelectCourseRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err))
	}

	view, err := h.manager.SelectCourse(c.Request().Context(), userID, c.Param("id"), req.CourseID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, view)
}

// Back returns from the assignment list to the course list
// POST /v1/classroom/sessions/:id/courses/back
func (h *Classroom) Back(c echo.Context) error {
	userID, _, err := h.userID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	view, err := h.manager.BackToCourses(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, view)
}

// Toggle flips one assignment's import selection
// POST /v1/classroom/sessions/:id/assignments/toggle
func (h *Classroom) Toggle(c echo.Context) error {
	userID, _, err := h.userID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req classroomdto.ToggleAssignmentRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err))
	}

	view, err := h.manager.ToggleAssignment(c.Request().Context(), userID, c.Param("id"), req.AssignmentID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, view)
}

// Import creates tasks for the selected assignments
// POST /v1/classroom/sessions/:id/import
func (h *Classroom) Import(c echo.Context) error {
	userID, token, err := h.userID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	view, err := h.manager.ImportSelected(c.Request().Context(), userID, c.Param("id"), token)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, view)
}

// SignOut revokes the session's Google credentials
// POST /v1/classroom/sessions/:id/signout
func (h *Classroom) SignOut(c echo.Context) error {
	userID, _, err := h.userID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	view, err := h.manager.SignOut(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, view)
}

// Retry leaves the error state
// POST /v1/classroom/sessions/:id/retry
func (h *Classroom) Retry(c echo.Context) error {
	userID, _, err := h.userID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	view, err := h.manager.Retry(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, view)
}
