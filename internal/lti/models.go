package lti

import "context"

/*
Value objects and collaborator interfaces for the LumenLMS LTI 1.3 Platform.

Terminology (LTI 1.3):
  - "platform" is the LMS hosting an external tool: LumenLMS.
  - "tool" is the external application launched inside a course unit.

The launch flow is stateless between the two OIDC hops: no in-process memory
is shared between the login-initiation request and the tool's callback. All
continuation state crosses the network embedded in login_hint,
lti_message_hint, nonce and state.
*/

// UsernameField selects which user identity becomes the id_token subject.
type UsernameField string

const (
	SubUsername UsernameField = "USERNAME"
	SubEmail    UsernameField = "EMAIL"
	SubAnonID   UsernameField = "ANON_ID"
)

// LaunchType is the presentation target the tool is asked to render into.
type LaunchType string

const (
	LaunchWindow LaunchType = "window"
	LaunchIframe LaunchType = "iframe"
)

// ToolConfig is the registered configuration for one external tool.
// Immutable during a launch; mutated only by administrators.
type ToolConfig struct {
	Name          string
	ClientID      string // opaque, unique across the platform
	Issuer        string // platform base URL as presented to this tool
	DeploymentID  string
	LoginURL      string // OIDC login initiation endpoint on the tool
	LaunchURI     string // the single registered redirect/launch URI
	UsernameField UsernameField
	KeyID         string // signing-key reference ("" = platform default)
}

// UserRef is the slice of a platform user the launch flow needs.
type UserRef struct {
	ID       int64
	Username string
	Email    string
	AnonID   string // stable pseudonymous identifier (UUID)
}

// Sub derives the id_token subject from the tool's username_field selector.
// Exactly one identity is ever disclosed per launch.
func (t ToolConfig) Sub(u UserRef) (string, error) {
	switch t.UsernameField {
	case SubUsername:
		return u.Username, nil
	case SubEmail:
		return u.Email, nil
	case SubAnonID, "":
		return u.AnonID, nil
	}
	return "", &ConfigError{Reason: "unknown username_field " + string(t.UsernameField)}
}

// LaunchContext describes one embedding of a tool in a course unit.
type LaunchContext struct {
	CourseID    int64
	CourseToken string // short course token, used as the context id and label
	CourseTitle string

	ToolViewID int64  // the embedding ("tool view") the hint round-trips
	ClientID   string // client_id of the tool the view references

	// ResourceLinkID is generated once when the embedding is created and
	// never changes. The LTI spec requires it to be platform-wide unique so
	// tools can distinguish links across contexts.
	ResourceLinkID string

	LaunchType LaunchType

	// CustomTargetURI overrides the tool's default launch URI as the
	// target_link_uri when set.
	CustomTargetURI string

	// ReturnURL links back to the originating course unit, when known.
	ReturnURL string
}

// TargetLinkURI is the launch destination for this embedding.
func (c LaunchContext) TargetLinkURI(tool ToolConfig) string {
	if c.CustomTargetURI != "" {
		return c.CustomTargetURI
	}
	return tool.LaunchURI
}

// ToolRegistry looks up registered tool configurations. Read-only at request
// time; owned by the surrounding admin CRUD system.
type ToolRegistry interface {
	// ToolByClientID resolves a client_id to exactly one registered tool.
	ToolByClientID(ctx context.Context, clientID string) (ToolConfig, error)
}

// LaunchResolver maps hints and route parameters to live platform entities.
// Implementations resolve against already-loaded local state; no network
// calls happen during validation.
type LaunchResolver interface {
	// ResolveHint maps a decoded login hint back to the course, embedding
	// and user it was minted for. It must fail when any of the three no
	// longer exists.
	ResolveHint(ctx context.Context, hint LoginHint) (LaunchContext, UserRef, error)

	// ResolveView loads the launch context for one embedding of a tool.
	ResolveView(ctx context.Context, courseID, viewID int64) (LaunchContext, error)

	// UserByID loads a platform user.
	UserByID(ctx context.Context, userID int64) (UserRef, error)

	// Enrolled reports whether the user has an active enrollment in the course.
	Enrolled(ctx context.Context, userID, courseID int64) (bool, error)
}
