package lti

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
)

/*
Signing context for the platform key pair.

The signing key is loaded once at startup from externally supplied PEM
material and passed by reference into the signer and the JWKS publisher.
There is no hidden global: key rotation means constructing a new
SigningContext and swapping it at the wiring layer.
*/

// DefaultKID is the stable key identifier published in JWKS and stamped
// into every id_token header.
const DefaultKID = "lti1.3-key"

// SigningContext holds the platform RSA key pair and its identifier.
type SigningContext struct {
	kid string
	key *rsa.PrivateKey
}

// NewSigningContext parses a PEM-encoded RSA private key (PKCS#1 or PKCS#8).
// kid may be empty to use DefaultKID. Errors never include key material.
func NewSigningContext(pemData []byte, kid string) (*SigningContext, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, &SigningError{Reason: "key material is not PEM"}
	}
	var key *rsa.PrivateKey
	switch block.Type {
	case "RSA PRIVATE KEY":
		k, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, &SigningError{Reason: "unparseable PKCS#1 private key"}
		}
		key = k
	case "PRIVATE KEY":
		k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, &SigningError{Reason: "unparseable PKCS#8 private key"}
		}
		rsaKey, ok := k.(*rsa.PrivateKey)
		if !ok {
			return nil, &SigningError{Reason: "private key is not RSA"}
		}
		key = rsaKey
	default:
		return nil, &SigningError{Reason: "unsupported PEM block " + block.Type}
	}
	if kid == "" {
		kid = DefaultKID
	}
	return &SigningContext{kid: kid, key: key}, nil
}

// GenerateSigningContext creates an ephemeral RSA-2048 context. Intended for
// dev and tests; tokens signed with it do not survive a restart.
func GenerateSigningContext(kid string) (*SigningContext, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, &SigningError{Reason: "rsa key generation failed"}
	}
	if kid == "" {
		kid = DefaultKID
	}
	return &SigningContext{kid: kid, key: key}, nil
}

// KID returns the stable key identifier.
func (sc *SigningContext) KID() string { return sc.kid }

// PublicKey exposes the verification half for JWKS publication.
func (sc *SigningContext) PublicKey() *rsa.PublicKey {
	if sc == nil || sc.key == nil {
		return nil
	}
	return &sc.key.PublicKey
}
