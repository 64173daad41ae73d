// Package sites implements the key verification schemes of the supported platforms.
package sites

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/darmiel/cpd/internal/core"
)

const (
	fieldSeparator = "-"
	payloadFields  = 3
)

var errEmptySecret = errors.New("secret must not be empty")

// splitPayload splits into exactly three fields. The last field keeps any further separators.
func splitPayload(payload string) ([payloadFields]string, error) {
	var fields [payloadFields]string
	parts := strings.SplitN(payload, fieldSeparator, payloadFields)
	if len(parts) < payloadFields {
		return fields, fmt.Errorf("%w: expected %d fields, got %d", core.ErrMalformedPayload, payloadFields, len(parts))
	}
	copy(fields[:], parts)
	return fields, nil
}

// joinPayload is the inverse of splitPayload. Only the last field may contain the separator.
func joinPayload(fields ...string) (string, error) {
	for _, f := range fields[:len(fields)-1] {
		if strings.Contains(f, fieldSeparator) {
			return "", fmt.Errorf("%w: field '%s' must not contain '%s'", core.ErrMalformedPayload, f, fieldSeparator)
		}
	}
	return strings.Join(fields, fieldSeparator), nil
}

// md5Hex returns the lowercase hex MD5 digest of the concatenated parts.
func md5Hex(parts ...string) string {
	h := md5.New()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// verifySignature compares in constant time.
func verifySignature(presented, expected string) error {
	if subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
		return core.ErrSignatureMismatch
	}
	return nil
}
