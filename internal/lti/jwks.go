package lti

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"
)

/*
JWKS endpoint (platform side).

Tools fetch the platform public key set rarely but need it available with
high uptime, so the response carries explicit caching directives
(max-age, stale-while-revalidate, stale-if-error) plus a permissive CORS
header. For a fixed key the document is fully deterministic: same n, e and
kid on every request.
*/

// JWKS is a JSON Web Key Set, i.e. { "keys": [ JWK, ... ] }.
type JWKS struct {
	Keys []map[string]any `json:"keys"`
}

// JWKSHandler serves the platform key set.
type JWKSHandler struct {
	// Signing provides the published key; nil serves an empty set.
	Signing *SigningContext

	// MaxAge controls all three caching directives (default 1h).
	MaxAge time.Duration
}

func (h *JWKSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	set := JWKS{Keys: []map[string]any{}}
	if pub := h.Signing.PublicKey(); pub != nil {
		set.Keys = append(set.Keys, RSAPublicJWK(pub, h.Signing.KID()))
	}

	payload, err := json.Marshal(set)
	if err != nil {
		http.Error(w, "jwks: marshal error", http.StatusInternalServerError)
		return
	}

	maxAge := int(h.maxAge().Seconds())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Cache-Control", fmt.Sprintf(
		"public, max-age=%d, stale-while-revalidate=%d, stale-if-error=%d",
		maxAge, maxAge, maxAge))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (h *JWKSHandler) maxAge() time.Duration {
	if h.MaxAge > 0 {
		return h.MaxAge
	}
	return time.Hour
}

// RSAPublicJWK builds the public JWK map (RFC 7517) for an RSA signing key.
// n and e are the unsigned big-endian key parameters, base64url encoded
// without padding.
func RSAPublicJWK(pub *rsa.PublicKey, kid string) map[string]any {
	if pub == nil || pub.N == nil || pub.E == 0 {
		return nil
	}
	return map[string]any{
		"kty": "RSA",
		"kid": kid,
		"alg": "RS256",
		"use": "sig",
		"n":   bigIntToB64(pub.N),
		"e":   bigIntToB64(big.NewInt(int64(pub.E))),
	}
}

func bigIntToB64(n *big.Int) string {
	if n == nil {
		return ""
	}
	return b64url(n.FillBytes(make([]byte, (n.BitLen()+7)/8)))
}

// b64url encodes bytes using base64url without padding.
func b64url(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
