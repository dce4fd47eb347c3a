package tools

import (
	"time"

	"github.com/lumen-lms/lumenlms/internal/lti"
)

// Tool is a registered external tool provider as stored by the admin API.
// The launch flow consumes it through the read-only lti.ToolConfig view.
type Tool struct {
	ClientID      string            `json:"client_id"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	LoginURL      string            `json:"login_url"`
	LaunchURI     string            `json:"launch_uri"`
	DeploymentID  string            `json:"deployment_id"`
	UsernameField lti.UsernameField `json:"username_field"`
	KeyID         string            `json:"key_id,omitempty"`
	Active        bool              `json:"active"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Config maps the row onto the launch-flow view. issuer is the platform
// base URL, identical for every tool on this single-tenant deployment.
func (t Tool) Config(issuer string) lti.ToolConfig {
	return lti.ToolConfig{
		Name:          t.Name,
		ClientID:      t.ClientID,
		Issuer:        issuer,
		DeploymentID:  t.DeploymentID,
		LoginURL:      t.LoginURL,
		LaunchURI:     t.LaunchURI,
		UsernameField: t.UsernameField,
		KeyID:         t.KeyID,
	}
}

func validUsernameField(f lti.UsernameField) bool {
	switch f {
	case lti.SubUsername, lti.SubEmail, lti.SubAnonID:
		return true
	}
	return false
}
