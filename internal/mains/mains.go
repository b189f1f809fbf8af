// Package mains resolves the local electrical mains frequency.
//
// Lecture theatres are full of hum sources (fluorescent ballasts, HVAC,
// projector supplies) that leak into room recordings at the grid frequency
// and its harmonics. The hum notch in the loudness chain needs to know
// whether the recording environment runs at 50 or 60 Hz; the system
// timezone is a good-enough proxy for where the recording was made.
package mains

import (
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// Frequency returns the local mains frequency in Hz (50 or 60), falling
// back to 50 Hz when the timezone cannot be resolved.
func Frequency() float64 {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return 50
	}
	return FrequencyForTimezone(timezone)
}

// FrequencyForTimezone maps an IANA timezone to a mains frequency.
// UTC, GMT and the Etc/ zones have no country association and default
// to 50 Hz, the globally more common grid.
func FrequencyForTimezone(timezone string) float64 {
	if timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return 50
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return 50
	}
	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return 50
	}

	// Japan splits 50/60 Hz by region; the Tokyo half is 50 Hz and more
	// populous, so that is the default.
	if country == "Japan" {
		return 50
	}
	if hz60Countries[country] {
		return 60
	}
	return 50
}

// Harmonics returns the fundamental and its first n-1 harmonics, the
// center frequencies the hum notch should reject. n <= 0 yields nil.
func Harmonics(fundamental float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	freqs := make([]float64, n)
	for i := range freqs {
		freqs[i] = fundamental * float64(i+1)
	}
	return freqs
}

// hz60Countries lists the countries on a 60 Hz grid; everywhere else is
// treated as 50 Hz. Source: Wikipedia, "Mains electricity by country".
var hz60Countries = map[string]bool{
	"United States": true,
	"Canada":        true,
	"Mexico":        true,

	"Belize":      true,
	"Costa Rica":  true,
	"El Salvador": true,
	"Guatemala":   true,
	"Honduras":    true,
	"Nicaragua":   true,
	"Panama":      true,

	"Bahamas":             true,
	"Barbados":            true,
	"Cayman Islands":      true,
	"Cuba":                true,
	"Dominican Republic":  true,
	"Haiti":               true,
	"Jamaica":             true,
	"Puerto Rico":         true,
	"Trinidad and Tobago": true,
	"U.S. Virgin Islands": true,

	// Most of South America is 50 Hz; these are the exceptions
	// (Brazil has mixed regions, 60 Hz predominant).
	"Brazil":    true,
	"Colombia":  true,
	"Ecuador":   true,
	"Guyana":    true,
	"Peru":      true,
	"Suriname":  true,
	"Venezuela": true,

	"South Korea":  true,
	"Taiwan":       true,
	"Philippines":  true,
	"Saudi Arabia": true,

	"Guam":             true,
	"American Samoa":   true,
	"Marshall Islands": true,
	"Micronesia":       true,
	"Palau":            true,
}
