// Package registry holds the in-memory set of blocked countries.
//
// Each code maps to a pointer to an immutable Entry. Writers only ever
// insert-if-absent, delete-if-present or compare-and-delete on that pointer,
// so concurrent block, unblock and expiry never lose or resurrect an entry.
package registry

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

const (
	MinDurationMinutes = 1
	MaxDurationMinutes = 1440
)

// Registry is safe for concurrent use. The zero value is not usable, use New.
type Registry struct {
	entries sync.Map // string -> *Entry
	now     func() time.Time
}

type Option func(*Registry)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now returns the registry clock.
func (r *Registry) Now() time.Time {
	return r.now()
}

// Add blocks code. durationMinutes is ignored for Permanent blocks.
// Validation errors are returned before the registry is consulted.
func (r *Registry) Add(code string, mode Mode, durationMinutes int) (Entry, error) {
	code = NormalizeCode(code)
	if err := ValidateCode(code); err != nil {
		return Entry{}, err
	}

	now := r.now()
	e := &Entry{Code: code, Mode: mode, CreatedAt: now}

	switch mode {
	case Permanent:
	case Temporary:
		if durationMinutes < MinDurationMinutes || durationMinutes > MaxDurationMinutes {
			return Entry{}, invalid("durationMinutes", "must be between 1 and 1440")
		}
		e.DurationMinutes = durationMinutes
		e.ExpiresAt = now.Add(time.Duration(durationMinutes) * time.Minute)
	default:
		return Entry{}, invalid("mode", "unknown block mode")
	}

	if _, loaded := r.entries.LoadOrStore(code, e); loaded {
		return Entry{}, ErrConflict
	}
	return *e, nil
}

// Remove unblocks code, returning the entry that was removed.
func (r *Registry) Remove(code string) (Entry, error) {
	code = NormalizeCode(code)
	if err := ValidateCode(code); err != nil {
		return Entry{}, err
	}

	v, ok := r.entries.LoadAndDelete(code)
	if !ok {
		return Entry{}, ErrNotFound
	}
	return *v.(*Entry), nil
}

// Ref is an observed registry value. It is only meaningful to RemoveIfSame.
type Ref struct {
	Entry
	ptr *Entry
}

// Refs returns the current entries together with their identity, sorted by
// code.
func (r *Registry) Refs() []Ref {
	refs := make([]Ref, 0)
	r.entries.Range(func(_, v any) bool {
		e := v.(*Entry)
		refs = append(refs, Ref{Entry: *e, ptr: e})
		return true
	})
	slices.SortFunc(refs, func(a, b Ref) int { return cmp.Compare(a.Code, b.Code) })
	return refs
}

// RemoveIfSame deletes the entry only if the live value is still the one
// observed in ref. It reports false if the code was unblocked, or unblocked
// and blocked again, since ref was taken.
func (r *Registry) RemoveIfSame(ref Ref) bool {
	if ref.ptr == nil {
		return false
	}
	return r.entries.CompareAndDelete(ref.Code, ref.ptr)
}

func (r *Registry) Contains(code string) bool {
	_, ok := r.entries.Load(NormalizeCode(code))
	return ok
}

func (r *Registry) Get(code string) (Entry, bool) {
	v, ok := r.entries.Load(NormalizeCode(code))
	if !ok {
		return Entry{}, false
	}
	return *v.(*Entry), true
}

// Snapshot copies the current entries sorted by code. The result is never
// nil.
func (r *Registry) Snapshot() []Entry {
	refs := r.Refs()
	out := make([]Entry, len(refs))
	for i, ref := range refs {
		out[i] = ref.Entry
	}
	return out
}

func (r *Registry) Len() int {
	n := 0
	r.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// ValidateCode checks an already normalized code: two ASCII letters.
func ValidateCode(code string) error {
	if code == "" {
		return invalid("countryCode", "is required")
	}
	if len(code) != 2 {
		return invalid("countryCode", "must be a two letter ISO 3166-1 alpha-2 code")
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return invalid("countryCode", "must contain only letters")
		}
	}
	return nil
}
