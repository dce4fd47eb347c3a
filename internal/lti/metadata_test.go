package lti_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lumen-lms/lumenlms/internal/lti"
)

func TestOpenIDConfiguration(t *testing.T) {
	s := &lti.MetadataServer{
		Issuer:        "https://lms.example.edu/",
		AuthorizePath: "/lti/authorize_redirect",
		JWKSPath:      "/lti/security/jwks",
		ProductName:   "LumenLMS",
		PlatformGUID:  "urn:lumenlms:platform:lms.example.edu",
	}
	w := httptest.NewRecorder()
	s.OpenIDConfiguration()(w, httptest.NewRequest("GET", "/.well-known/openid-configuration", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Cache-Control"), "max-age=3600") {
		t.Errorf("cache-control = %q", w.Header().Get("Cache-Control"))
	}

	var cfg map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg["issuer"] != "https://lms.example.edu" {
		t.Errorf("issuer = %v (trailing slash must be trimmed)", cfg["issuer"])
	}
	if cfg["authorization_endpoint"] != "https://lms.example.edu/lti/authorize_redirect" {
		t.Errorf("authorization_endpoint = %v", cfg["authorization_endpoint"])
	}
	if cfg["jwks_uri"] != "https://lms.example.edu/lti/security/jwks" {
		t.Errorf("jwks_uri = %v", cfg["jwks_uri"])
	}

	assertSingle := func(key, want string) {
		t.Helper()
		vals, ok := cfg[key].([]any)
		if !ok || len(vals) != 1 || vals[0] != want {
			t.Errorf("%s = %v, want [%s]", key, cfg[key], want)
		}
	}
	assertSingle("response_types_supported", "id_token")
	assertSingle("response_modes_supported", "form_post")
	assertSingle("scopes_supported", "openid")
	assertSingle("id_token_signing_alg_values_supported", "RS256")

	ext, ok := cfg["https://purl.imsglobal.org/spec/lti-platform-configuration"].(map[string]any)
	if !ok {
		t.Fatalf("platform configuration extension missing: %v", cfg)
	}
	if ext["guid"] != "urn:lumenlms:platform:lms.example.edu" {
		t.Errorf("guid = %v", ext["guid"])
	}
}

func TestOpenIDConfigurationNoIssuer(t *testing.T) {
	s := &lti.MetadataServer{}
	w := httptest.NewRecorder()
	s.OpenIDConfiguration()(w, httptest.NewRequest("GET", "/.well-known/openid-configuration", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", w.Code)
	}
}
