package catalog

// Course is the slice of a course the launch flow reads: the token feeds
// the LTI context claim, the display name its title.
type Course struct {
	ID          int64
	Token       string
	DisplayName string
	Slug        string
	Run         string
}

// User is a platform account. AnonID is the stable pseudonymous identifier
// round-tripped in login hints and, depending on tool configuration,
// disclosed as the id_token subject.
type User struct {
	ID       int64
	Username string
	Email    string
	AnonID   string
}

// ToolView is one embedding of an external tool in a course unit. Its
// resource link id is minted once at creation and never changes.
type ToolView struct {
	ID       int64
	CourseID int64
	ClientID string

	ResourceLinkID string
	LaunchType     string // "window" or "iframe"

	// CustomTargetURI points at a specific resource inside the tool. When
	// AppendCustomTarget is set it is appended to the tool's default launch
	// URI instead of replacing it.
	CustomTargetURI    string
	AppendCustomTarget bool

	// ReturnURL links back to the course unit hosting this view.
	ReturnURL string
}
