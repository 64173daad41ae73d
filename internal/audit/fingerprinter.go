package audit

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/darmiel/cpd/internal/core"
)

// fingerprintSeparator joins the site prefix and the payload fingerprint.
const fingerprintSeparator = ":"

// FingerprintKey returns what is stored for a presented key: its site prefix and a
// SHA-256 fingerprint of the payload, e.g. "ok:3q2+7w...". The same key always
// yields the same fingerprint, so repeated use stays traceable.
func FingerprintKey(key string) string {
	if key == "" {
		return ""
	}
	prefix, payload, ok := core.SplitKey(key)
	if !ok {
		prefix, payload = "", key
	}
	return prefix + fingerprintSeparator + calculateFingerprint(payload)
}

// KeySite returns the site prefix of a stored key fingerprint.
func KeySite(stored string) string {
	prefix, _, _ := strings.Cut(stored, fingerprintSeparator)
	return prefix
}

func calculateFingerprint(payload string) string {
	hash := sha256.Sum256([]byte(payload))
	return base64.StdEncoding.EncodeToString(hash[:])
}
