package lti

import (
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

/*
HTTP boundary for the launch flow.

Per launch attempt the state machine is
INITIATED -> CALLBACK_RECEIVED -> VALIDATED|REJECTED -> CLAIMS_BUILT ->
SIGNED -> DELIVERED, computed synchronously within a single
request/response pair. Nothing is stored between hops; "state" exists only
as the encoded login_hint and the OIDC state/nonce values passed opaquely
through the tool. Once validation succeeds, claims generation and signing
complete or fail within the same request.
*/

// LaunchServer wires the launch flow components to HTTP.
type LaunchServer struct {
	Registry ToolRegistry
	Launches LaunchResolver
	Claims   *ClaimsBuilder
	Signing  *SigningContext

	// CurrentUserID extracts the authenticated platform user from the
	// launch-initiation request (session middleware sets it).
	CurrentUserID func(*http.Request) (int64, error)
}

// InitiationHandler starts the third-party-initiated flow: it builds the
// tool login URL for the requested embedding and redirects the browser.
func (s *LaunchServer) InitiationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.CurrentUserID(r)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "authentication required")
			return
		}
		courseID, err1 := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
		viewID, err2 := strconv.ParseInt(chi.URLParam(r, "viewID"), 10, 64)
		if err1 != nil || err2 != nil {
			writeErr(w, http.StatusBadRequest, "bad course or view id")
			return
		}

		ctx := r.Context()
		user, err := s.Launches.UserByID(ctx, userID)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "unknown user")
			return
		}
		enrolled, err := s.Launches.Enrolled(ctx, userID, courseID)
		if err != nil || !enrolled {
			writeErr(w, http.StatusForbidden, "not enrolled in course")
			return
		}
		lc, err := s.Launches.ResolveView(ctx, courseID, viewID)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "unknown tool view")
			return
		}
		tool, err := s.Registry.ToolByClientID(ctx, lc.ClientID)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "tool view has no registered tool")
			return
		}

		loginURL, err := BuildLoginURL(user, lc, tool)
		if err != nil {
			// Incomplete tool configuration is an operator problem, not a
			// launch-user problem.
			log.Printf("lti: initiation for view %d: %v", viewID, err)
			writeErr(w, http.StatusInternalServerError, "tool is not fully configured")
			return
		}
		http.Redirect(w, r, loginURL, http.StatusFound)
	}
}

// AuthorizeRedirectHandler handles the tool's OIDC callback: validate,
// build claims, sign, and deliver the id_token via an auto-submitting form.
func (s *LaunchServer) AuthorizeRedirectHandler() http.HandlerFunc {
	v := &Validator{Registry: s.Registry, Launches: s.Launches}
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := ParseAuthRequest(r)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "unable to parse authorization request")
			return
		}

		tool, lc, user, err := v.Validate(r.Context(), req)
		if err != nil {
			// Forged callbacks and replayed hints land here; keep the
			// error surface uniform (always 400) but log the specifics.
			log.Printf("lti: callback rejected (client_id=%q): %v", req.ClientID, err)
			writeErr(w, http.StatusBadRequest, "invalid authorization request")
			return
		}

		claims, err := s.Claims.Build(tool, lc, user, req)
		if err != nil {
			log.Printf("lti: claims for view %d: %v", lc.ToolViewID, err)
			writeErr(w, http.StatusInternalServerError, "unable to build launch claims")
			return
		}

		idToken, err := SignIDToken(claims, s.Signing)
		if err != nil {
			log.Printf("lti: signing for view %d: %v", lc.ToolViewID, err)
			writeErr(w, http.StatusInternalServerError, "unable to sign launch token")
			return
		}

		writeLaunchForm(w, tool.LaunchURI, req.State, idToken, lc.ToolViewID)
	}
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

var launchFormTpl = template.Must(template.New("launch").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Launching external tool</title></head>
<body onload="document.forms[0].submit()">
<form id="external-tool-launch-{{.ViewID}}" method="post" action="{{.Action}}">
  <input type="hidden" name="state" value="{{.State}}">
  <input type="hidden" name="id_token" value="{{.IDToken}}">
  <noscript><button type="submit">Continue to external tool</button></noscript>
</form>
</body></html>`))

// writeLaunchForm delivers the signed token: an auto-submitting POST back to
// the tool's launch URI with exactly the state and id_token fields.
func writeLaunchForm(w http.ResponseWriter, action, state, idToken string, viewID int64) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = launchFormTpl.Execute(w, map[string]any{
		"Action":  action,
		"State":   state,
		"IDToken": idToken,
		"ViewID":  viewID,
	})
}
