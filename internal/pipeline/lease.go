package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Lease is a time-bounded mutual-exclusion guard keeping ingestion runs
// single-flight. At most one caller holds a valid token at a time; the TTL is
// the crash backstop, so a holder that dies without releasing never blocks
// ingestion for longer than one TTL.
type Lease struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	token   string
	expires time.Time
}

// NewLease creates a Lease using the given clock.
func NewLease(clock clockwork.Clock) *Lease {
	return &Lease{clock: clock}
}

// Acquire attempts to take the lease for ttl. It returns an opaque holder
// token and true on success, or "" and false when a non-expired holder exists.
func (l *Lease) Acquire(ttl time.Duration) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if l.token != "" && now.Before(l.expires) {
		return "", false
	}

	l.token = uuid.NewString()
	l.expires = now.Add(ttl)
	return l.token, true
}

// Release frees the lease if token still holds it. A stale token — expired,
// never issued, or superseded by a newer holder — is a reported no-op, so a
// run that outlives its own TTL cannot release the next holder's lease.
func (l *Lease) Release(token string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if token == "" || token != l.token {
		return false
	}
	if !l.clock.Now().Before(l.expires) {
		return false
	}

	l.token = ""
	l.expires = time.Time{}
	return true
}

// Held reports whether a non-expired holder currently exists.
func (l *Lease) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.token != "" && l.clock.Now().Before(l.expires)
}
