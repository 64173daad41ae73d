package audit

import (
	"sync"

	"github.com/darmiel/cpd/internal/core"
)

var (
	_ core.Auditor     = (*InMemoryAuditor)(nil)
	_ core.AuditReader = (*InMemoryAuditor)(nil)
)

// DefaultMemoryCapacity is the number of entries an InMemoryAuditor keeps by default.
const DefaultMemoryCapacity = 10_000

// InMemoryAuditor keeps the most recent audit entries in a ring buffer.
// Once full, the oldest entry is overwritten.
type InMemoryAuditor struct {
	mu      sync.Mutex
	entries []core.AuditEntry
	next    int // slot the next entry is written to
	count   int
}

func NewInMemoryAuditor() *InMemoryAuditor {
	return NewInMemoryAuditorWithCapacity(DefaultMemoryCapacity)
}

func NewInMemoryAuditorWithCapacity(capacity int) *InMemoryAuditor {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &InMemoryAuditor{
		entries: make([]core.AuditEntry, capacity),
	}
}

func (i *InMemoryAuditor) Log(entry core.AuditEntry) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.entries[i.next] = entry
	i.next = (i.next + 1) % len(i.entries)
	if i.count < len(i.entries) {
		i.count++
	}
	return nil
}

// at returns the n-th stored entry, oldest first. Callers hold the lock.
func (i *InMemoryAuditor) at(n int) core.AuditEntry {
	oldest := (i.next - i.count + len(i.entries)) % len(i.entries)
	return i.entries[(oldest+n)%len(i.entries)]
}

func (i *InMemoryAuditor) GetRecent(limit int) ([]core.AuditEntry, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if limit < 0 || limit > i.count {
		limit = i.count
	}
	entries := make([]core.AuditEntry, 0, limit)
	for n := i.count - limit; n < i.count; n++ {
		entries = append(entries, i.at(n))
	}
	return entries, nil
}

func (i *InMemoryAuditor) Find(filter func(entry core.AuditEntry) bool, limit int) ([]core.AuditEntry, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	var matches []core.AuditEntry
	for n := 0; n < i.count; n++ {
		if entry := i.at(n); filter(entry) {
			matches = append(matches, entry)
		}
	}

	if limit >= 0 && len(matches) > limit {
		matches = matches[len(matches)-limit:]
	}

	return matches, nil
}

func (i *InMemoryAuditor) Close() error {
	return nil // nothing to close :)
}
