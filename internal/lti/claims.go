package lti

import (
	"fmt"
	"time"
)

// IMS Global claim and vocabulary URIs used in the id_token.
const (
	ClaimDeploymentID       = "https://purl.imsglobal.org/spec/lti/claim/deployment_id"
	ClaimMessageType        = "https://purl.imsglobal.org/spec/lti/claim/message_type"
	ClaimVersion            = "https://purl.imsglobal.org/spec/lti/claim/version"
	ClaimRoles              = "https://purl.imsglobal.org/spec/lti/claim/roles"
	ClaimContext            = "https://purl.imsglobal.org/spec/lti/claim/context"
	ClaimResourceLink       = "https://purl.imsglobal.org/spec/lti/claim/resource_link"
	ClaimToolPlatform       = "https://purl.imsglobal.org/spec/lti/claim/tool_platform"
	ClaimTargetLinkURI      = "https://purl.imsglobal.org/spec/lti/claim/target_link_uri"
	ClaimLaunchPresentation = "https://purl.imsglobal.org/spec/lti/claim/launch_presentation"
	ClaimCustom             = "https://purl.imsglobal.org/spec/lti/claim/custom"

	ContextTypeCourseOffering = "http://purl.imsglobal.org/vocab/lis/v2/course#CourseOffering"

	// RoleStudent is the single role the platform asserts today. The role
	// model is extensible but currently every launch user is a student.
	RoleStudent = "http://purl.imsglobal.org/vocab/lis/v2/institution/person#Student"

	msgTypeResourceLink = "LtiResourceLinkRequest"
	ltiVersion          = "1.3.0"
)

// Token TTL bounds, in seconds. Out-of-range values are a configuration
// error and are rejected when the builder is constructed, never at launch.
const (
	DefaultTokenTTLSeconds = 1000
	MaxTokenTTLSeconds     = 100000
)

// PlatformInfo feeds the tool_platform claim.
type PlatformInfo struct {
	GUID         string
	Name         string
	URL          string
	ContactEmail string
	Description  string
}

// ClaimsBuilder assembles the full LTI 1.3 claim set for a launch. One
// builder serves any number of concurrent launches; it holds no per-launch
// state.
type ClaimsBuilder struct {
	TTL      time.Duration
	Platform PlatformInfo

	// Now overrides the clock in tests.
	Now func() time.Time
}

// NewClaimsBuilder validates the TTL and returns a builder. ttlSeconds <= 0
// selects the default; values outside (0, 100000] are rejected.
func NewClaimsBuilder(ttlSeconds int, platform PlatformInfo) (*ClaimsBuilder, error) {
	if ttlSeconds == 0 {
		ttlSeconds = DefaultTokenTTLSeconds
	}
	if ttlSeconds < 0 || ttlSeconds > MaxTokenTTLSeconds {
		return nil, &ConfigError{
			Reason: fmt.Sprintf("token TTL %d out of range (0, %d]", ttlSeconds, MaxTokenTTLSeconds),
		}
	}
	return &ClaimsBuilder{
		TTL:      time.Duration(ttlSeconds) * time.Second,
		Platform: platform,
	}, nil
}

// Build constructs the flat claim map for one launch. Every launch gets a
// fresh iat/exp and echoes the tool's nonce verbatim; the platform never
// invents its own. No claim is ever null-valued: optional values are
// omitted instead.
func (b *ClaimsBuilder) Build(tool ToolConfig, lc LaunchContext, user UserRef, req ToolAuthRequest) (map[string]any, error) {
	sub, err := tool.Sub(user)
	if err != nil {
		return nil, err
	}

	now := b.now()
	iat := now.Unix()
	exp := now.Add(b.TTL).Unix()

	claims := map[string]any{
		"iss":   tool.Issuer,
		"aud":   tool.ClientID,
		"sub":   sub,
		"iat":   iat,
		"exp":   exp,
		"nonce": req.Nonce,

		ClaimDeploymentID: tool.DeploymentID,
		ClaimMessageType:  msgTypeResourceLink,
		ClaimVersion:      ltiVersion,
		ClaimRoles:        []string{RoleStudent},
		ClaimContext: map[string]any{
			"id":    lc.CourseToken,
			"label": lc.CourseToken,
			"title": lc.CourseTitle,
			"type":  []string{ContextTypeCourseOffering},
		},
		// resource_link.id is stable across repeated launches of the same
		// embedding and unique platform-wide; tools rely on both.
		ClaimResourceLink: map[string]any{
			"id": lc.ResourceLinkID,
		},
		ClaimTargetLinkURI: lc.TargetLinkURI(tool),
		ClaimCustom: map[string]any{
			"lms_username": user.Username,
		},
	}

	presentation := map[string]any{
		"document_target": string(lc.LaunchType),
	}
	if lc.ReturnURL != "" {
		presentation["return_url"] = lc.ReturnURL
	}
	claims[ClaimLaunchPresentation] = presentation

	if b.Platform != (PlatformInfo{}) {
		claims[ClaimToolPlatform] = map[string]any{
			"guid":          b.Platform.GUID,
			"name":          b.Platform.Name,
			"url":           b.Platform.URL,
			"contact_email": b.Platform.ContactEmail,
			"description":   b.Platform.Description,
		}
	}

	return claims, nil
}

func (b *ClaimsBuilder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now().UTC()
}
