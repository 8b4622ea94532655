package registry

import (
	"strings"
	"time"
)

// Mode tells whether a block expires.
type Mode int

const (
	Permanent Mode = iota + 1
	Temporary
)

func (m Mode) String() string {
	switch m {
	case Permanent:
		return "permanent"
	case Temporary:
		return "temporary"
	default:
		return "unknown"
	}
}

// MarshalText renders the mode as its lowercase name in JSON payloads.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Entry is one blocked country. Entries are immutable once stored.
type Entry struct {
	Code            string    `json:"countryCode"`
	Mode            Mode      `json:"mode"`
	DurationMinutes int       `json:"durationMinutes"`
	CreatedAt       time.Time `json:"createdAt"`
	ExpiresAt       time.Time `json:"expiresAt,omitzero"`
}

// IsTemporary reports whether the sweeper may evict the entry.
func (e Entry) IsTemporary() bool {
	return e.Mode == Temporary
}

// Expired reports whether a temporary entry is due for eviction at now.
func (e Entry) Expired(now time.Time) bool {
	return e.Mode == Temporary && !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// NormalizeCode trims and uppercases a country code. It does not validate.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
