package sites

import "github.com/darmiel/cpd/internal/core"

var _ core.SiteVerifier = (*MailRu)(nil)

// MailRu verifies keys of the form "sig-vid-params".
// The signature covers the sorted query parameters and the application secret.
type MailRu struct {
	secret string
}

func NewMailRu(secret string) (*MailRu, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	return &MailRu{secret: secret}, nil
}

func (m *MailRu) Identify(payload string) (string, error) {
	fields, err := splitPayload(payload)
	if err != nil {
		return "", err
	}
	sig, vid, params := fields[0], fields[1], fields[2]

	if err := verifySignature(sig, md5Hex(params, m.secret)); err != nil {
		return "", err
	}
	return vid, nil
}

// Sign builds a payload for vid as the platform would.
func (m *MailRu) Sign(vid, params string) (string, error) {
	return joinPayload(md5Hex(params, m.secret), vid, params)
}
