package lti

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

/*
OpenID Provider Discovery (".well-known/openid-configuration").

Tools use this document during registration to learn the platform issuer,
authorization endpoint, JWKS URI and supported algorithms. The platform is
single-tenant: every value derives from the configured public base URL.
This handler only emits discovery metadata; the endpoints themselves live
in handlers.go and jwks.go.
*/

// MetadataServer serves the discovery document.
type MetadataServer struct {
	// Issuer is the platform base URL, e.g. "https://lms.example.edu".
	Issuer string

	// Paths of the advertised endpoints, relative to Issuer.
	AuthorizePath string // e.g. "/lti/authorize_redirect"
	JWKSPath      string // e.g. "/lti/security/jwks"

	ProductName  string
	PlatformGUID string

	// CacheMaxAge defaults to 1h.
	CacheMaxAge time.Duration
}

// OpenIDConfiguration returns the handler for the discovery route.
func (s *MetadataServer) OpenIDConfiguration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		iss := strings.TrimSuffix(s.Issuer, "/")
		if iss == "" {
			http.Error(w, "metadata: issuer not configured", http.StatusInternalServerError)
			return
		}

		cfg := map[string]any{
			"issuer":                                iss,
			"authorization_endpoint":                iss + s.AuthorizePath,
			"jwks_uri":                              iss + s.JWKSPath,
			"response_types_supported":              []string{"id_token"},
			"response_modes_supported":              []string{"form_post"},
			"scopes_supported":                      []string{"openid"},
			"subject_types_supported":               []string{"public", "pairwise"},
			"id_token_signing_alg_values_supported": []string{"RS256"},
			"claims_supported":                      []string{"iss", "aud", "sub", "iat", "exp", "nonce"},
		}
		if s.ProductName != "" || s.PlatformGUID != "" {
			cfg["https://purl.imsglobal.org/spec/lti-platform-configuration"] = map[string]any{
				"product_family_code": s.ProductName,
				"guid":                s.PlatformGUID,
				"messages_supported": []map[string]any{
					{"type": msgTypeResourceLink},
				},
			}
		}

		maxAge := int(s.cacheAge().Seconds())
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(maxAge))
		w.Header().Set("Access-Control-Allow-Origin", "*")
		_ = json.NewEncoder(w).Encode(cfg)
	}
}

func (s *MetadataServer) cacheAge() time.Duration {
	if s.CacheMaxAge > 0 {
		return s.CacheMaxAge
	}
	return time.Hour
}
