package classroom

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	classroomapi "google.golang.org/api/classroom/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/acadease/backend/internal/domain/entities"
	"github.com/acadease/backend/pkg/config"
)

// GoogleProvider handles Google sign-in and course data access for the
// classroom import flow
type GoogleProvider struct {
	config *oauth2.Config
}

// NewGoogleProvider creates a provider with read-only classroom scopes
func NewGoogleProvider(cfg *config.GoogleConfig) *GoogleProvider {
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes: []string{
			classroomapi.ClassroomCoursesReadonlyScope,
			classroomapi.ClassroomCourseworkMeReadonlyScope,
			"https://www.googleapis.com/auth/userinfo.email",
		},
		Endpoint: google.Endpoint,
	}

	return &GoogleProvider{
		config: oc,
	}
}

// GetAuthURL returns the OAuth authorization URL
func (g *GoogleProvider) GetAuthURL(state string) string {
	return g.config.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// ExchangeCode exchanges the authorization code for tokens
func (g *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return token, nil
}

// RefreshToken refreshes the access token using the refresh token
func (g *GoogleProvider) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	token := &oauth2.Token{
		RefreshToken: refreshToken,
	}

	tokenSource := g.config.TokenSource(ctx, token)
	newToken, err := tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	return newToken, nil
}

// RevokeToken invalidates the token with Google. Revocation failures are
// returned but sign-out proceeds regardless; the caller clears local state
// either way.
func (g *GoogleProvider) RevokeToken(ctx context.Context, accessToken string) error {
	form := url.Values{}
	form.Set("token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://oauth2.googleapis.com/revoke", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token revocation returned status %d", resp.StatusCode)
	}
	return nil
}

// ListActiveCourses returns the courses the token's owner is enrolled in
// that are currently active
func (g *GoogleProvider) ListActiveCourses(ctx context.Context, token *oauth2.Token) ([]entities.Course, error) {
	srv, err := g.service(ctx, token)
	if err != nil {
		return nil, err
	}

	resp, err := srv.Courses.List().
		CourseStates("ACTIVE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	courses := make([]entities.Course, 0, len(resp.Courses))
	for _, c := range resp.Courses {
		courses = append(courses, entities.Course{
			ID:          c.Id,
			Name:        c.Name,
			Section:     c.Section,
			Description: c.DescriptionHeading,
		})
	}
	return courses, nil
}

// ListPublishedAssignments returns published assignment-type coursework for
// a course, ordered by due date, projected into task-shaped fields
func (g *GoogleProvider) ListPublishedAssignments(ctx context.Context, token *oauth2.Token, courseID, courseName string) ([]entities.CourseAssignment, error) {
	srv, err := g.service(ctx, token)
	if err != nil {
		return nil, err
	}

	resp, err := srv.Courses.CourseWork.List(courseID).
		CourseWorkStates("PUBLISHED").
		OrderBy("dueDate asc").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	assignments := make([]entities.CourseAssignment, 0, len(resp.CourseWork))
	for _, cw := range resp.CourseWork {
		if cw.WorkType != "ASSIGNMENT" {
			continue
		}
		assignments = append(assignments, entities.CourseAssignment{
			OriginalID:  cw.Id,
			Title:       cw.Title,
			Description: fmt.Sprintf("From: %s\n%s", courseName, cw.Description),
			CourseName:  courseName,
			Priority:    entities.PriorityLow,
			Deadline:    dueTime(cw),
		})
	}
	return assignments, nil
}

// IsAuthError reports whether the provider rejected the credentials, which
// means the stored token is no longer usable and a full sign-out is required
func IsAuthError(err error) bool {
	var ge *googleapi.Error
	if errors.As(err, &ge) {
		return ge.Code == http.StatusUnauthorized
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return true
	}
	return strings.Contains(err.Error(), "Invalid Credentials")
}

func (g *GoogleProvider) service(ctx context.Context, token *oauth2.Token) (*classroomapi.Service, error) {
	srv, err := classroomapi.NewService(ctx,
		option.WithTokenSource(g.config.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create classroom service: %w", err)
	}
	return srv, nil
}

// dueTime combines the coursework due date and optional due time into a
// local timestamp. A date with no time defaults to end of day.
func dueTime(cw *classroomapi.CourseWork) *time.Time {
	if cw.DueDate == nil {
		return nil
	}

	hours, minutes := 23, 59
	if cw.DueTime != nil {
		hours = int(cw.DueTime.Hours)
		minutes = int(cw.DueTime.Minutes)
	}

	t := time.Date(
		int(cw.DueDate.Year), time.Month(cw.DueDate.Month), int(cw.DueDate.Day),
		hours, minutes, 0, 0, time.Local,
	)
	return &t
}
