package lti_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lumen-lms/lumenlms/internal/lti"
)

func testSigningContext(t *testing.T) *lti.SigningContext {
	t.Helper()
	sc, err := lti.GenerateSigningContext("")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return sc
}

func TestSignIDTokenVerifiable(t *testing.T) {
	sc := testSigningContext(t)
	b := testBuilder(t)
	b.Now = func() time.Time { return time.Now().UTC() }

	claims, err := b.Build(testTool(), testLaunchContext(), testUser(), validAuthRequest())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	signed, err := lti.SignIDToken(claims, sc)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parsed, err := jwt.Parse(signed, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodRS256 {
			t.Errorf("alg = %v, want RS256", tok.Method.Alg())
		}
		return sc.PublicKey(), nil
	})
	if err != nil {
		t.Fatalf("parse signed token: %v", err)
	}
	if kid := parsed.Header["kid"]; kid != lti.DefaultKID {
		t.Errorf("kid = %v, want %q", kid, lti.DefaultKID)
	}
	got := parsed.Claims.(jwt.MapClaims)
	if got["iss"] != "https://lms.example.edu" || got["nonce"] != "sample-nonce" {
		t.Errorf("claims did not round-trip: iss=%v nonce=%v", got["iss"], got["nonce"])
	}
}

func TestSignIDTokenDoesNotMutateClaims(t *testing.T) {
	sc := testSigningContext(t)
	claims := map[string]any{"iss": "https://lms.example.edu", "sub": "u"}
	if _, err := lti.SignIDToken(claims, sc); err != nil {
		t.Fatalf("sign: %v", err)
	}
	if len(claims) != 2 || claims["iss"] != "https://lms.example.edu" || claims["sub"] != "u" {
		t.Errorf("claims mutated: %v", claims)
	}
}

func TestSignIDTokenNoKey(t *testing.T) {
	_, err := lti.SignIDToken(map[string]any{"iss": "x"}, nil)
	var se *lti.SigningError
	if !errors.As(err, &se) {
		t.Fatalf("got %T (%v), want SigningError", err, err)
	}
}

func TestNewSigningContextPKCS1(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	pemData := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	sc, err := lti.NewSigningContext(pemData, "custom-kid")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if sc.KID() != "custom-kid" {
		t.Errorf("kid = %q", sc.KID())
	}
	if sc.PublicKey() == nil || sc.PublicKey().N.Cmp(key.N) != 0 {
		t.Error("public key does not match loaded key")
	}
}

func TestNewSigningContextPKCS8(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatal(err)
	}
	pemData := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	sc, err := lti.NewSigningContext(pemData, "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if sc.KID() != lti.DefaultKID {
		t.Errorf("kid = %q, want default", sc.KID())
	}
}

func TestNewSigningContextBadMaterial(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		[]byte("not pem at all"),
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{1, 2, 3}}),
		pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: []byte{1, 2, 3}}),
	} {
		_, err := lti.NewSigningContext(data, "")
		var se *lti.SigningError
		if !errors.As(err, &se) {
			t.Errorf("material %q: got %T (%v), want SigningError", data, err, err)
		}
	}
}
