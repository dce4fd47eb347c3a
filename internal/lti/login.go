package lti

import "net/url"

/*
Login initiation (first leg of the OIDC third-party-initiated flow).

The platform redirects the user's browser to the tool's login endpoint with
a hybrid OIDC + LTI parameter set. The tool then calls back to the platform
authorization endpoint, returning login_hint and lti_message_hint unaltered.
*/

// BuildLoginURL builds the first-leg redirect URL for one launch attempt.
// It is a pure function of its inputs; nothing is written anywhere.
func BuildLoginURL(user UserRef, lc LaunchContext, tool ToolConfig) (string, error) {
	if tool.LoginURL == "" {
		return "", &ConfigError{Reason: "tool " + tool.ClientID + " has no login URL"}
	}
	if tool.LaunchURI == "" {
		return "", &ConfigError{Reason: "tool " + tool.ClientID + " has no launch URI"}
	}

	hint := LoginHint{
		CourseID:   lc.CourseID,
		ToolViewID: lc.ToolViewID,
		UserAnonID: user.AnonID,
	}.Encode()

	q := url.Values{}
	q.Set("iss", tool.Issuer)
	q.Set("login_hint", hint)
	q.Set("target_link_uri", lc.TargetLinkURI(tool))
	// lti_message_hint mirrors login_hint; both must round-trip unaltered.
	q.Set("lti_message_hint", hint)
	q.Set("lti_deployment_id", tool.DeploymentID)
	q.Set("client_id", tool.ClientID)

	return tool.LoginURL + "?" + q.Encode(), nil
}
