package sites

import (
	"fmt"

	"github.com/darmiel/cpd/internal/core"
)

var _ core.SiteVerifier = Device{}

// DeviceIDLength matches the ids generated by the browser bootstrap: 64 hex digits.
const DeviceIDLength = 64

// Device accepts unsigned, client-generated device ids for clients running outside any site.
// It carries no secret, so binding it means trusting the client with its own id.
type Device struct{}

func (Device) Identify(payload string) (string, error) {
	if len(payload) != DeviceIDLength {
		return "", fmt.Errorf("%w: device id must be %d characters, got %d",
			core.ErrMalformedPayload, DeviceIDLength, len(payload))
	}
	for _, c := range payload {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("%w: device id must be lowercase hex", core.ErrMalformedPayload)
		}
	}
	return payload, nil
}
