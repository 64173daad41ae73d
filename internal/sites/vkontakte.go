package sites

import "github.com/darmiel/cpd/internal/core"

var _ core.SiteVerifier = (*VKontakte)(nil)

// VKontakte verifies keys of the form "auth_key-api_id-viewer_id".
type VKontakte struct {
	secret string
}

func NewVKontakte(secret string) (*VKontakte, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	return &VKontakte{secret: secret}, nil
}

func (v *VKontakte) Identify(payload string) (string, error) {
	fields, err := splitPayload(payload)
	if err != nil {
		return "", err
	}
	authKey, apiID, viewerID := fields[0], fields[1], fields[2]

	if err := verifySignature(authKey, md5Hex(apiID, viewerID, v.secret)); err != nil {
		return "", err
	}
	return viewerID, nil
}

func (v *VKontakte) Sign(apiID, viewerID string) (string, error) {
	return joinPayload(md5Hex(apiID, viewerID, v.secret), apiID, viewerID)
}
