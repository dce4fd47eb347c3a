package config

import "testing"

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("addr = %q", cfg.HTTPAddr)
	}
	if cfg.PublicURL != "http://localhost:8080" {
		t.Errorf("public url = %q", cfg.PublicURL)
	}
	if cfg.TokenTTLSeconds != 1000 {
		t.Errorf("ttl = %d", cfg.TokenTTLSeconds)
	}
	if cfg.JWKSMaxAgeSeconds != 3600 {
		t.Errorf("jwks max-age = %d", cfg.JWKSMaxAgeSeconds)
	}
	if cfg.KeyID != "lti1.3-key" {
		t.Errorf("key id = %q", cfg.KeyID)
	}
	if cfg.PlatformGUID != "urn:lumenlms:platform:localhost:8080" {
		t.Errorf("guid = %q", cfg.PlatformGUID)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("driver = %q", cfg.DBDriver)
	}
}

func TestFromEnvTTLBounds(t *testing.T) {
	cases := []struct {
		val string
		ok  bool
	}{
		{"1", true},
		{"1000", true},
		{"100000", true},
		{"0", false},
		{"-5", false},
		{"100001", false},
		{"nope", false},
	}
	for _, tc := range cases {
		t.Run(tc.val, func(t *testing.T) {
			t.Setenv("LTI_TOKEN_TTL_SEC", tc.val)
			_, err := FromEnv()
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected startup failure")
			}
		})
	}
}

func TestFromEnvTrimsPublicURL(t *testing.T) {
	t.Setenv("PUBLIC_URL", "https://lms.example.edu/")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PublicURL != "https://lms.example.edu" {
		t.Errorf("public url = %q", cfg.PublicURL)
	}
	if cfg.PlatformGUID != "urn:lumenlms:platform:lms.example.edu" {
		t.Errorf("guid = %q", cfg.PlatformGUID)
	}
}

func TestFromEnvCORSList(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com ,")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "https://a.example.com" || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("cors = %v", cfg.CORSOrigins)
	}
}
