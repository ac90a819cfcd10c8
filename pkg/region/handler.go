package region

import (
	"encoding/json"
	"net"
	"net/http"
)

// Handler serves GET /api/ip. It always answers 200: a failed lookup yields
// a Location of empty strings.
func Handler(locator Locator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc, err := locator.Lookup(r.Context(), ClientIP(r))
		if err != nil {
			loc = Location{}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(loc)
	}
}

// ClientIP returns the public address of the request's client, or "" when the
// client is local (loopback, private or link-local), in which case the lookup
// service geolocates the server itself.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip := net.ParseIP(host)
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
