package registry

import (
	"cmp"
	"strings"

	"github.com/caasmo/countryblock/query"
)

// SortKey enumerates the orders the blocked list supports.
type SortKey int

const (
	SortByCode SortKey = iota + 1
	SortByDuration
	SortByExpiration
)

// ParseSortKey maps the sortBy query parameter, case-insensitively.
func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "code", "countrycode":
		return SortByCode, true
	case "duration", "durationminutes":
		return SortByDuration, true
	case "expiration", "expiresat":
		return SortByExpiration, true
	}
	return 0, false
}

// QuerySpec searches the code. Without a recognized sortBy the snapshot
// order, code ascending, is kept.
var QuerySpec = query.Spec[Entry, SortKey]{
	SearchFields: func(e Entry) []string { return []string{e.Code} },
	ParseSort:    ParseSortKey,
	Sorts: map[SortKey]query.Less[Entry]{
		SortByCode: func(a, b Entry) int { return cmp.Compare(a.Code, b.Code) },
		SortByDuration: func(a, b Entry) int {
			return cmp.Compare(a.DurationMinutes, b.DurationMinutes)
		},
		// Permanent entries have no expiry and sort after every temporary one.
		SortByExpiration: func(a, b Entry) int {
			switch {
			case a.ExpiresAt.IsZero() && b.ExpiresAt.IsZero():
				return 0
			case a.ExpiresAt.IsZero():
				return 1
			case b.ExpiresAt.IsZero():
				return -1
			}
			return a.ExpiresAt.Compare(b.ExpiresAt)
		},
	},
}

// Query runs the blocked list pipeline over a fresh snapshot.
func (r *Registry) Query(p query.Params) query.Page[Entry] {
	return query.Run(r.Snapshot(), p, QuerySpec)
}
