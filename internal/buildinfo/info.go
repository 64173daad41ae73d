package buildinfo

import "runtime/debug"

// set via -ldflags at build time
var (
	Version    = "v0.1.0"
	CommitHash = "unknown"
)

type Info struct {
	About      string `json:"about,omitempty"`
	Service    string `json:"service,omitempty"`
	Version    string `json:"version,omitempty"`
	CommitHash string `json:"commit_hash,omitempty"`
}

func GetBuildInfo() Info {
	return Info{
		About:      "https://github.com/darmiel/cpd",
		Service:    "cpd",
		Version:    Version,
		CommitHash: commitHash(),
	}
}

// commitHash falls back to the vcs revision stamped by the go tool when no ldflags were given.
func commitHash() string {
	if CommitHash != "unknown" {
		return CommitHash
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return CommitHash
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return CommitHash
}
