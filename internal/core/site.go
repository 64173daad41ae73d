package core

import (
	"fmt"
	"strings"
)

// SiteCode identifies a third-party platform that issues client keys.
type SiteCode int

const (
	SiteNO SiteCode = iota // no site, locally generated device id
	SiteOK                 // Odnoklassniki
	SiteVK                 // VKontakte
	SiteMM                 // Mail.ru (My World)
	SiteFB                 // Facebook
	SiteYA                 // Yandex Games
)

// PrefixLength is the number of leading key characters that select the site.
const PrefixLength = 2

type siteInfo struct {
	prefix string
	name   string
}

var siteTable = map[SiteCode]siteInfo{
	SiteNO: {prefix: "no", name: "none"},
	SiteOK: {prefix: "ok", name: "odnoklassniki"},
	SiteVK: {prefix: "vk", name: "vkontakte"},
	SiteMM: {prefix: "mm", name: "mail.ru"},
	SiteFB: {prefix: "fb", name: "facebook"},
	SiteYA: {prefix: "ya", name: "yandex"},
}

// Sites returns all known site codes in declaration order.
func Sites() []SiteCode {
	return []SiteCode{SiteNO, SiteOK, SiteVK, SiteMM, SiteFB, SiteYA}
}

// ParseSite maps a 2-character key prefix to its SiteCode.
func ParseSite(prefix string) (SiteCode, error) {
	switch prefix {
	case "no":
		return SiteNO, nil
	case "ok":
		return SiteOK, nil
	case "vk":
		return SiteVK, nil
	case "mm":
		return SiteMM, nil
	case "fb":
		return SiteFB, nil
	case "ya":
		return SiteYA, nil
	}
	return 0, fmt.Errorf("%w: '%s'", ErrUnknownSite, prefix)
}

// Prefix returns the textual key prefix of the site.
func (s SiteCode) Prefix() string {
	if info, ok := siteTable[s]; ok {
		return info.prefix
	}
	return ""
}

// Name returns a human-readable name of the site.
func (s SiteCode) Name() string {
	if info, ok := siteTable[s]; ok {
		return info.name
	}
	return "unknown"
}

func (s SiteCode) String() string {
	if p := s.Prefix(); p != "" {
		return strings.ToUpper(p)
	}
	return fmt.Sprintf("SiteCode(%d)", int(s))
}

// MarshalText encodes the site as its key prefix. Used by both JSON and YAML.
func (s SiteCode) MarshalText() ([]byte, error) {
	p := s.Prefix()
	if p == "" {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSite, int(s))
	}
	return []byte(p), nil
}

// UnmarshalText accepts the key prefix in any case.
func (s *SiteCode) UnmarshalText(text []byte) error {
	code, err := ParseSite(strings.ToLower(strings.TrimSpace(string(text))))
	if err != nil {
		return err
	}
	*s = code
	return nil
}

// SplitKey splits a key after its first PrefixLength characters.
// ok is false if nothing follows the prefix.
func SplitKey(key string) (prefix, payload string, ok bool) {
	n := 0
	for i := range key {
		if n == PrefixLength {
			return key[:i], key[i:], true
		}
		n++
	}
	return key, "", false
}
