package lti

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

/*
Tool callback validation (second leg of the OIDC flow).

After login initiation the tool calls back to the platform authorization
endpoint, GET or POST form-encoded. The request is parsed into a transient
ToolAuthRequest and validated in a fixed order; every mismatch fails closed.
Everything resolves against registered configuration and local lookups —
no network calls are made here.
*/

// ToolAuthRequest is the transient value parsed from the tool's callback.
// It exists only for the duration of one HTTP request.
type ToolAuthRequest struct {
	ClientID     string
	RedirectURI  string
	LoginHint    string
	MessageHint  string // optional; opaque to the tool
	Nonce        string
	State        string
	Scope        string
	ResponseType string
	ResponseMode string
}

// ParseAuthRequest extracts the callback parameters from a GET query or a
// POST form body.
func ParseAuthRequest(r *http.Request) (ToolAuthRequest, error) {
	var params url.Values
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			return ToolAuthRequest{}, &ValidationError{Code: "bad_request", Reason: "unparseable form body"}
		}
		params = r.PostForm
	} else {
		params = r.URL.Query()
	}
	get := func(k string) string { return strings.TrimSpace(params.Get(k)) }
	return ToolAuthRequest{
		ClientID:     get("client_id"),
		RedirectURI:  get("redirect_uri"),
		LoginHint:    get("login_hint"),
		MessageHint:  get("lti_message_hint"),
		Nonce:        get("nonce"),
		State:        get("state"),
		Scope:        get("scope"),
		ResponseType: get("response_type"),
		ResponseMode: get("response_mode"),
	}, nil
}

// Validator checks a parsed callback against the registry and live entities.
type Validator struct {
	Registry ToolRegistry
	Launches LaunchResolver
}

// Validate runs the callback checks in order. Each step is a hard failure;
// the HTTP layer maps every ValidationError and DecodeError to 400 with a
// uniform surface (unknown client_id is deliberately indistinguishable from
// other failures, to avoid leaking which client_ids exist).
func (v *Validator) Validate(ctx context.Context, req ToolAuthRequest) (ToolConfig, LaunchContext, UserRef, error) {
	fail := func(code, reason string) (ToolConfig, LaunchContext, UserRef, error) {
		return ToolConfig{}, LaunchContext{}, UserRef{}, &ValidationError{Code: code, Reason: reason}
	}

	// 1. Required fields.
	switch {
	case req.ClientID == "":
		return fail("missing_field", "client_id required")
	case req.RedirectURI == "":
		return fail("missing_field", "redirect_uri required")
	case req.LoginHint == "":
		return fail("missing_field", "login_hint required")
	case req.Nonce == "":
		return fail("missing_field", "nonce required")
	case req.State == "":
		return fail("missing_field", "state required")
	}

	// OIDC fixed values; pass-through otherwise.
	if !scopeIncludesOpenID(req.Scope) {
		return fail("bad_scope", "scope must include openid")
	}
	if !strings.EqualFold(req.ResponseType, "id_token") {
		return fail("bad_response_type", "response_type must be id_token")
	}
	if !strings.EqualFold(req.ResponseMode, "form_post") {
		return fail("bad_response_mode", "response_mode must be form_post")
	}

	// 2. client_id resolves to exactly one registered tool.
	tool, err := v.Registry.ToolByClientID(ctx, req.ClientID)
	if err != nil {
		return fail("unknown_tool", "client_id "+req.ClientID+" is not registered")
	}

	// 3. redirect_uri equals the registered launch URI exactly. String
	// equality, no normalization: a trailing slash is a different URI.
	if req.RedirectURI != tool.LaunchURI {
		return fail("redirect_mismatch", "redirect_uri does not match registered launch URI")
	}

	// 4. login_hint decodes.
	hint, err := DecodeLoginHint(req.LoginHint)
	if err != nil {
		return ToolConfig{}, LaunchContext{}, UserRef{}, err
	}

	// 5. The triple resolves to live entities, and the embedding still
	// references this same tool.
	lc, user, err := v.Launches.ResolveHint(ctx, hint)
	if err != nil {
		return fail("stale_context", "login hint does not resolve to a live launch context")
	}
	if lc.ClientID != tool.ClientID {
		return fail("stale_context", "embedding no longer references this tool")
	}

	return tool, lc, user, nil
}

func scopeIncludesOpenID(scope string) bool {
	for _, s := range strings.Fields(scope) {
		if s == "openid" {
			return true
		}
	}
	return false
}
