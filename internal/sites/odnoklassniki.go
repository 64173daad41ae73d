package sites

import "github.com/darmiel/cpd/internal/core"

var _ core.SiteVerifier = (*Odnoklassniki)(nil)

// Odnoklassniki verifies keys of the form "auth_sig-logged_user_id-session_key".
type Odnoklassniki struct {
	secret string
}

func NewOdnoklassniki(secret string) (*Odnoklassniki, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	return &Odnoklassniki{secret: secret}, nil
}

func (o *Odnoklassniki) Identify(payload string) (string, error) {
	fields, err := splitPayload(payload)
	if err != nil {
		return "", err
	}
	authSig, loggedUserID, sessionKey := fields[0], fields[1], fields[2]

	if err := verifySignature(authSig, md5Hex(loggedUserID, sessionKey, o.secret)); err != nil {
		return "", err
	}
	return loggedUserID, nil
}

func (o *Odnoklassniki) Sign(loggedUserID, sessionKey string) (string, error) {
	return joinPayload(md5Hex(loggedUserID, sessionKey, o.secret), loggedUserID, sessionKey)
}
