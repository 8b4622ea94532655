package attemptlog

import (
	"cmp"
	"strings"

	"github.com/caasmo/countryblock/query"
)

type SortKey int

const (
	SortByTimestamp SortKey = iota + 1
	SortByCountryCode
	SortByIP
)

// ParseSortKey maps the sortBy query parameter, case-insensitively.
func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "timestamp":
		return SortByTimestamp, true
	case "countrycode":
		return SortByCountryCode, true
	case "ipaddress", "ip":
		return SortByIP, true
	}
	return 0, false
}

// byTimestamp breaks ties on id so entries with the same timestamp keep
// their append order.
func byTimestamp(a, b Entry) int {
	if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// QuerySpec searches country code, ip and user agent. Without a recognized
// sortBy the newest attempts come first.
var QuerySpec = query.Spec[Entry, SortKey]{
	SearchFields: func(e Entry) []string {
		return []string{e.CountryCode, e.IP, e.UserAgent}
	},
	ParseSort: ParseSortKey,
	Sorts: map[SortKey]query.Less[Entry]{
		SortByTimestamp:   byTimestamp,
		SortByCountryCode: func(a, b Entry) int { return cmp.Compare(a.CountryCode, b.CountryCode) },
		SortByIP:          func(a, b Entry) int { return cmp.Compare(a.IP, b.IP) },
	},
	Fallback: &query.Order[SortKey]{Key: SortByTimestamp, Descending: true},
}

// Query runs the attempts pipeline over a fresh snapshot.
func (l *Log) Query(p query.Params) query.Page[Entry] {
	return query.Run(l.Snapshot(), p, QuerySpec)
}
