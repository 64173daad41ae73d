package core

import "time"

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "key.identify")
	Action string `json:"action"`

	// Key is the fingerprint of the presented key, see audit.FingerprintKey
	Key string `json:"key,omitempty"`

	// Identity is set when the key was resolved
	Identity *ClientIdentity `json:"identity,omitempty"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// Stacktrace holds the internal failure reason. Never returned to the presenter of the key.
	Stacktrace string `json:"stacktrace,omitempty"`
}

type Auditor interface {
	Log(entry AuditEntry) error
	Close() error
}

// AuditReader is implemented by auditors that keep entries queryable.
type AuditReader interface {
	GetRecent(limit int) ([]AuditEntry, error)
	Find(filter func(entry AuditEntry) bool, limit int) ([]AuditEntry, error)
}
