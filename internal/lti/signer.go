package lti

import (
	"github.com/golang-jwt/jwt/v5"
)

// SignIDToken produces the signed id_token (RS256 compact JWS) from a built
// claim set. The claim map is not mutated; signing is CPU-bound and
// side-effect-free, so any number of launches may sign concurrently.
func SignIDToken(claims map[string]any, sc *SigningContext) (string, error) {
	if sc == nil || sc.key == nil {
		return "", &SigningError{Reason: "no private key configured"}
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims(claims))
	tok.Header["kid"] = sc.kid
	signed, err := tok.SignedString(sc.key)
	if err != nil {
		// The jwt error text never includes key bytes, only the failure kind.
		return "", &SigningError{Reason: "token signing failed: " + err.Error()}
	}
	return signed, nil
}
