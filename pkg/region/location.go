package region

import (
	"strings"

	"github.com/aretw0/epsilon/pkg/locale"
)

// Location is the geolocation summary returned by GET /api/ip.
// Unknown fields are empty strings, never absent.
type Location struct {
	CountryCode string `json:"country_code"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Region      string `json:"region"`
	Timezone    string `json:"timezone"`
	UTCOffset   string `json:"utc_offset"`
}

var spanishRegions = map[string]bool{
	"AR": true, "BO": true, "CL": true, "CO": true, "CR": true,
	"CU": true, "DO": true, "EC": true, "SV": true, "GT": true,
	"HN": true, "MX": true, "NI": true, "PA": true, "PY": true,
	"PE": true, "PR": true, "UY": true, "VE": true, "ES": true,
}

// LocaleFor maps an ISO country code to a catalog language. Case-insensitive.
func LocaleFor(countryCode string) string {
	if spanishRegions[strings.ToUpper(strings.TrimSpace(countryCode))] {
		return locale.Spanish
	}
	return locale.English
}
