package core

// ClientIdentity is the result of a successful key resolution.
type ClientIdentity struct {
	// Site is the platform that issued the key.
	Site SiteCode `json:"site"`

	// ExternalID is the platform-native user identifier.
	ExternalID string `json:"external_id"`
}

// SiteVerifier validates the site-specific part of a key.
// Implementations hold only immutable configuration and must be safe for concurrent use.
type SiteVerifier interface {
	// Identify checks the payload signature and returns the external user id.
	// It fails with ErrMalformedPayload or ErrSignatureMismatch.
	Identify(payload string) (string, error)
}
