package lti

import "fmt"

// Error taxonomy for the launch flow. Each boundary detects and surfaces its
// own class; nothing is retried because every step is a single-shot redirect.

// ConfigError means a tool or platform is incompletely configured (missing
// login URL, launch URI, out-of-range token TTL). Surfaced to administrators,
// not launch users.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "lti: config: " + e.Reason }

// DecodeError means a login hint could not be deconstructed. Indicates either
// tampering or a foreign hint; the request fails closed with 400.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string { return "lti: decode login hint: " + e.Reason }

// ValidationError covers callback validation failures: unknown client_id,
// redirect URI mismatch, stale launch context. These are the primary attack
// surface and are logged as security-relevant events by the HTTP layer.
type ValidationError struct {
	Code   string // e.g. "unknown_tool", "redirect_mismatch", "stale_context"
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("lti: validate: %s: %s", e.Code, e.Reason)
}

// SigningError means the private key is absent or unusable. Fatal (500-class).
// The message must never carry key material.
type SigningError struct {
	Reason string
}

func (e *SigningError) Error() string { return "lti: sign: " + e.Reason }
