package region

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/epsilon/internal/logging"
)

const (
	DefaultEndpoint = "https://ipwho.is/"
	DefaultTimeout  = 3 * time.Second
)

// ErrLookupFailed is returned when the lookup service answers without a location.
var ErrLookupFailed = errors.New("location lookup failed")

// Detector geolocates IP addresses through an ipwho.is compatible endpoint.
type Detector struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithEndpoint overrides the lookup endpoint.
func WithEndpoint(endpoint string) DetectorOption {
	return func(d *Detector) {
		if endpoint != "" {
			d.endpoint = endpoint
		}
	}
}

// WithTimeout bounds every lookup.
func WithTimeout(timeout time.Duration) DetectorOption {
	return func(d *Detector) {
		if timeout > 0 {
			d.client.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the HTTP client (its Timeout is kept as is).
func WithHTTPClient(client *http.Client) DetectorOption {
	return func(d *Detector) {
		if client != nil {
			d.client = client
		}
	}
}

// WithLogger configures a logger for the Detector.
func WithLogger(logger *slog.Logger) DetectorOption {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDetector creates a Detector.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// lookupResponse covers both ipwho.is timezone shapes (object or bare string).
type lookupResponse struct {
	Success     *bool           `json:"success"`
	Message     string          `json:"message"`
	CountryCode string          `json:"country_code"`
	Country     string          `json:"country"`
	City        string          `json:"city"`
	Region      string          `json:"region"`
	RegionName  string          `json:"region_name"`
	Timezone    json.RawMessage `json:"timezone"`
}

type timezoneObject struct {
	ID  string `json:"id"`
	UTC string `json:"utc"`
}

// Lookup geolocates ip. An empty ip lets the service use the caller's address.
func (d *Detector) Lookup(ctx context.Context, ip string) (Location, error) {
	url := d.endpoint
	if ip != "" {
		url = strings.TrimSuffix(url, "/") + "/" + ip
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Location{}, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := d.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("lookup %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("%w: status %d", ErrLookupFailed, resp.StatusCode)
	}

	var raw lookupResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&raw); err != nil {
		return Location{}, fmt.Errorf("decode lookup response: %w", err)
	}
	if raw.Success != nil && !*raw.Success {
		return Location{}, fmt.Errorf("%w: %s", ErrLookupFailed, raw.Message)
	}

	loc := Location{
		CountryCode: raw.CountryCode,
		Country:     raw.Country,
		City:        raw.City,
		Region:      raw.Region,
	}
	if loc.Region == "" {
		loc.Region = raw.RegionName
	}

	var tz timezoneObject
	var tzName string
	switch {
	case json.Unmarshal(raw.Timezone, &tz) == nil:
		loc.Timezone, loc.UTCOffset = tz.ID, tz.UTC
	case json.Unmarshal(raw.Timezone, &tzName) == nil:
		loc.Timezone = tzName
	}

	d.logger.Debug("Location resolved", "ip", ip, "country_code", loc.CountryCode)
	return loc, nil
}
