package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lumen-lms/lumenlms/internal/lti"
)

// NotFound is returned for lookups that match no row.
var NotFound = errors.New("catalog: not found")

// SQLStore backs the launch flow's entity lookups. It implements
// lti.LaunchResolver: every resolution is a local read, never a network call.
type SQLStore struct {
	DB *sql.DB
}

// CreateCourse inserts a course and returns it with its assigned id.
func (s *SQLStore) CreateCourse(ctx context.Context, c Course) (Course, error) {
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO courses (token, display_name, slug, run)
		VALUES ($1,$2,$3,$4) RETURNING id`,
		c.Token, c.DisplayName, c.Slug, c.Run).Scan(&c.ID)
	return c, err
}

// CreateUser inserts a user, minting the anon id when absent.
func (s *SQLStore) CreateUser(ctx context.Context, u User) (User, error) {
	if u.AnonID == "" {
		u.AnonID = uuid.NewString()
	}
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO users (username, email, anon_id)
		VALUES ($1,$2,$3) RETURNING id`,
		u.Username, u.Email, u.AnonID).Scan(&u.ID)
	return u, err
}

// Enroll records an active enrollment.
func (s *SQLStore) Enroll(ctx context.Context, userID, courseID int64) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO enrollments (user_id, course_id, active) VALUES ($1,$2,$3)`,
		userID, courseID, true)
	return err
}

// CreateToolView inserts an embedding. The resource link id is generated
// here, exactly once; the LTI spec requires it to stay stable for the life
// of the embedding and be unique platform-wide.
func (s *SQLStore) CreateToolView(ctx context.Context, v ToolView) (ToolView, error) {
	if v.ResourceLinkID == "" {
		v.ResourceLinkID = uuid.NewString()
	}
	if v.LaunchType == "" {
		v.LaunchType = string(lti.LaunchIframe)
	}
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO tool_views
		  (course_id, client_id, resource_link_id, launch_type,
		   custom_target_uri, append_custom_target, return_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		v.CourseID, v.ClientID, v.ResourceLinkID, v.LaunchType,
		v.CustomTargetURI, v.AppendCustomTarget, v.ReturnURL).Scan(&v.ID)
	return v, err
}

// UserByUsername looks up a user for login.
func (s *SQLStore) UserByUsername(ctx context.Context, username string) (lti.UserRef, error) {
	var u lti.UserRef
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, username, email, anon_id FROM users WHERE username=$1`, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.AnonID)
	if errors.Is(err, sql.ErrNoRows) {
		return lti.UserRef{}, NotFound
	}
	return u, err
}

// UserByID implements lti.LaunchResolver.
func (s *SQLStore) UserByID(ctx context.Context, userID int64) (lti.UserRef, error) {
	var u lti.UserRef
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, username, email, anon_id FROM users WHERE id=$1`, userID).
		Scan(&u.ID, &u.Username, &u.Email, &u.AnonID)
	if errors.Is(err, sql.ErrNoRows) {
		return lti.UserRef{}, NotFound
	}
	return u, err
}

// Enrolled implements lti.LaunchResolver.
func (s *SQLStore) Enrolled(ctx context.Context, userID, courseID int64) (bool, error) {
	var active bool
	err := s.DB.QueryRowContext(ctx, `
		SELECT active FROM enrollments WHERE user_id=$1 AND course_id=$2`,
		userID, courseID).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return active, err
}

// ResolveView implements lti.LaunchResolver: load the launch context for one
// embedding within its course.
func (s *SQLStore) ResolveView(ctx context.Context, courseID, viewID int64) (lti.LaunchContext, error) {
	return s.launchContext(ctx, courseID, viewID)
}

// ResolveHint implements lti.LaunchResolver: map a decoded hint back to live
// entities. The course, the embedding and the user must all still exist, and
// the embedding must still belong to the hinted course.
func (s *SQLStore) ResolveHint(ctx context.Context, hint lti.LoginHint) (lti.LaunchContext, lti.UserRef, error) {
	lc, err := s.launchContext(ctx, hint.CourseID, hint.ToolViewID)
	if err != nil {
		return lti.LaunchContext{}, lti.UserRef{}, err
	}

	var u lti.UserRef
	err = s.DB.QueryRowContext(ctx,
		`SELECT id, username, email, anon_id FROM users WHERE anon_id=$1`, hint.UserAnonID).
		Scan(&u.ID, &u.Username, &u.Email, &u.AnonID)
	if errors.Is(err, sql.ErrNoRows) {
		return lti.LaunchContext{}, lti.UserRef{}, NotFound
	}
	if err != nil {
		return lti.LaunchContext{}, lti.UserRef{}, err
	}
	return lc, u, nil
}

func (s *SQLStore) launchContext(ctx context.Context, courseID, viewID int64) (lti.LaunchContext, error) {
	var (
		lc           lti.LaunchContext
		launchType   string
		customTarget string
		appendMode   bool
		toolLaunch   string
	)
	err := s.DB.QueryRowContext(ctx, `
		SELECT v.id, c.id, c.token, c.display_name, v.client_id,
		       v.resource_link_id, v.launch_type,
		       v.custom_target_uri, v.append_custom_target, v.return_url,
		       t.launch_uri
		FROM tool_views v
		JOIN courses c ON c.id = v.course_id
		JOIN external_tools t ON t.client_id = v.client_id
		WHERE v.id=$1 AND v.course_id=$2`, viewID, courseID).
		Scan(&lc.ToolViewID, &lc.CourseID, &lc.CourseToken, &lc.CourseTitle, &lc.ClientID,
			&lc.ResourceLinkID, &launchType,
			&customTarget, &appendMode, &lc.ReturnURL,
			&toolLaunch)
	if errors.Is(err, sql.ErrNoRows) {
		return lti.LaunchContext{}, NotFound
	}
	if err != nil {
		return lti.LaunchContext{}, err
	}

	switch launchType {
	case string(lti.LaunchWindow):
		lc.LaunchType = lti.LaunchWindow
	case string(lti.LaunchIframe):
		lc.LaunchType = lti.LaunchIframe
	default:
		return lti.LaunchContext{}, fmt.Errorf("catalog: view %d has unknown launch type %q", viewID, launchType)
	}

	if customTarget != "" {
		if appendMode {
			lc.CustomTargetURI = toolLaunch + customTarget
		} else {
			lc.CustomTargetURI = customTarget
		}
	}
	return lc, nil
}
