// Package attemptlog records the outcome of every block check.
//
// The log is append-only for the life of the process. Ids come from an
// atomic counter, so two appends never share an id whatever the clock
// resolution.
package attemptlog

import (
	"sync"
	"sync/atomic"
	"time"
)

const UnknownUserAgent = "Unknown"

// Entry is one block check. Entries are never mutated after Append.
type Entry struct {
	ID          uint64    `json:"id"`
	IP          string    `json:"ipAddress"`
	CountryCode string    `json:"countryCode"`
	Blocked     bool      `json:"isBlocked"`
	Timestamp   time.Time `json:"timestamp"`
	UserAgent   string    `json:"userAgent"`
}

type Log struct {
	seq atomic.Uint64

	mu      sync.RWMutex
	entries []Entry
}

func New() *Log {
	return &Log{}
}

// Append stores e and returns its id. Any id set by the caller is
// overwritten. An empty user agent is recorded as UnknownUserAgent.
func (l *Log) Append(e Entry) uint64 {
	if e.UserAgent == "" {
		e.UserAgent = UnknownUserAgent
	}

	l.mu.Lock()
	// assigned under the lock so entries stay in id order
	e.ID = l.seq.Add(1)
	l.entries = append(l.entries, e)
	l.mu.Unlock()

	return e.ID
}

// Snapshot copies the log in append order. The result is never nil.
func (l *Log) Snapshot() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
