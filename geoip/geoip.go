// Package geoip resolves IP addresses to countries.
package geoip

import (
	"context"
	"errors"
	"fmt"
)

// UnknownCountry is reported when the upstream answers without a country.
const UnknownCountry = "??"

var (
	// ErrUpstream covers every lookup failure. Callers map it to a 500 and
	// never retry.
	ErrUpstream = errors.New("geoip: upstream lookup failed")

	// ErrBudgetExhausted is returned without calling the upstream when the
	// outbound request budget is spent. It matches ErrUpstream.
	ErrBudgetExhausted = fmt.Errorf("%w: outbound request budget exhausted", ErrUpstream)
)

// Info is the geolocation record of one address.
type Info struct {
	IP            string  `json:"ip"`
	Network       string  `json:"network,omitempty"`
	City          string  `json:"city,omitempty"`
	Region        string  `json:"region,omitempty"`
	CountryCode   string  `json:"countryCode"`
	CountryName   string  `json:"countryName,omitempty"`
	ContinentCode string  `json:"continentCode,omitempty"`
	Latitude      float64 `json:"latitude,omitempty"`
	Longitude     float64 `json:"longitude,omitempty"`
	Timezone      string  `json:"timezone,omitempty"`
	Org           string  `json:"org,omitempty"`
	ASN           string  `json:"asn,omitempty"`
}

// Lookup resolves ip. Every failure wraps ErrUpstream.
type Lookup interface {
	Lookup(ctx context.Context, ip string) (Info, error)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(ctx context.Context, ip string) (Info, error)

func (f LookupFunc) Lookup(ctx context.Context, ip string) (Info, error) {
	return f(ctx, ip)
}
