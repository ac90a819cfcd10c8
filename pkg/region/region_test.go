package region_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/epsilon/pkg/adapters/memory"
	"github.com/aretw0/epsilon/pkg/locale"
	"github.com/aretw0/epsilon/pkg/region"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocaleFor(t *testing.T) {
	for _, cc := range []string{"AR", "BO", "CL", "CO", "CR", "CU", "DO", "EC", "SV", "GT",
		"HN", "MX", "NI", "PA", "PY", "PE", "PR", "UY", "VE", "ES"} {
		assert.Equal(t, locale.Spanish, region.LocaleFor(cc), cc)
	}
	assert.Equal(t, locale.Spanish, region.LocaleFor("mx"), "case-insensitive")
	assert.Equal(t, locale.English, region.LocaleFor("US"))
	assert.Equal(t, locale.English, region.LocaleFor("BR"))
	assert.Equal(t, locale.English, region.LocaleFor(""))
}

func ipwhoServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDetector_Lookup(t *testing.T) {
	srv := ipwhoServer(t, `{
		"success": true,
		"country_code": "AR",
		"country": "Argentina",
		"city": "Córdoba",
		"region": "Cordoba",
		"timezone": {"id": "America/Argentina/Cordoba", "utc": "-03:00"}
	}`, http.StatusOK)

	d := region.NewDetector(region.WithEndpoint(srv.URL + "/"))
	loc, err := d.Lookup(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, region.Location{
		CountryCode: "AR",
		Country:     "Argentina",
		City:        "Córdoba",
		Region:      "Cordoba",
		Timezone:    "America/Argentina/Cordoba",
		UTCOffset:   "-03:00",
	}, loc)
}

func TestDetector_Lookup_AlternateShapes(t *testing.T) {
	srv := ipwhoServer(t, `{"country_code":"US","region_name":"Ohio","timezone":"America/New_York"}`, http.StatusOK)

	loc, err := region.NewDetector(region.WithEndpoint(srv.URL)).Lookup(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "Ohio", loc.Region)
	assert.Equal(t, "America/New_York", loc.Timezone)
	assert.Empty(t, loc.UTCOffset)
}

func TestDetector_Lookup_ForwardsIP(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"success":true,"country_code":"ES"}`))
	}))
	defer srv.Close()

	_, err := region.NewDetector(region.WithEndpoint(srv.URL+"/")).Lookup(context.Background(), "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, "/8.8.8.8", path)
}

func TestDetector_Lookup_Failures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"unsuccessful", `{"success": false, "message": "Reserved range"}`, http.StatusOK},
		{"bad status", `{}`, http.StatusTooManyRequests},
		{"bad json", `not json`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := ipwhoServer(t, tt.body, tt.status)
			loc, err := region.NewDetector(region.WithEndpoint(srv.URL)).Lookup(context.Background(), "")
			assert.Error(t, err)
			assert.Equal(t, region.Location{}, loc)
		})
	}
}

func TestDetector_Lookup_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	d := region.NewDetector(region.WithEndpoint(srv.URL), region.WithTimeout(20*time.Millisecond))
	_, err := d.Lookup(context.Background(), "")
	assert.Error(t, err)
}

type stubLocator struct {
	loc   region.Location
	err   error
	calls int
}

func (s *stubLocator) Lookup(ctx context.Context, ip string) (region.Location, error) {
	s.calls++
	return s.loc, s.err
}

func TestResolver_DetectsAndPersists(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	loc := &stubLocator{loc: region.Location{CountryCode: "MX"}}
	r := region.NewResolver(store, loc)

	assert.Equal(t, locale.Spanish, r.Resolve(ctx, "client-1", ""))
	assert.Equal(t, locale.Spanish, r.Resolve(ctx, "client-1", ""))
	assert.Equal(t, 1, loc.calls, "second resolve reads the stored preference")

	stored, err := store.Load(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, locale.Spanish, stored)
}

func TestResolver_PreferenceWins(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	loc := &stubLocator{loc: region.Location{CountryCode: "MX"}}
	r := region.NewResolver(store, loc)

	lang, err := r.Set(ctx, "client-2", "EN")
	require.NoError(t, err)
	assert.Equal(t, locale.English, lang)

	assert.Equal(t, locale.English, r.Resolve(ctx, "client-2", ""))
	assert.Zero(t, loc.calls)

	_, err = r.Set(ctx, "client-2", "klingon")
	assert.Error(t, err)
}

func TestResolver_FailureFallsBackWithoutPersisting(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	r := region.NewResolver(store, &stubLocator{err: errors.New("offline")})

	assert.Equal(t, locale.English, r.Resolve(ctx, "client-3", ""))

	clients, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, clients)

	r = region.NewResolver(nil, nil, region.WithFallback("es"))
	assert.Equal(t, locale.Spanish, r.Resolve(ctx, "", ""))
	assert.Equal(t, locale.Spanish, r.Fallback())
}

func TestHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := region.Handler(&stubLocator{loc: region.Location{CountryCode: "CL", Country: "Chile"}})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/api/ip", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		var got map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "CL", got["country_code"])
		assert.Equal(t, "Chile", got["country"])
		assert.Contains(t, got, "utc_offset")
	})

	t.Run("failure yields empty strings", func(t *testing.T) {
		h := region.Handler(&stubLocator{err: errors.New("boom")})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/api/ip", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"country_code":"","country":"","city":"","region":"","timezone":"","utc_offset":""}`, rec.Body.String())
	})
}

func TestClientIP(t *testing.T) {
	tests := map[string]string{
		"127.0.0.1:5000": "",
		"10.1.2.3:80":    "",
		"192.168.1.1:80": "",
		"[::1]:80":       "",
		"8.8.8.8:1234":   "8.8.8.8",
		"203.0.113.7":    "203.0.113.7",
		"not-an-ip":      "",
	}
	for addr, want := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = addr
		assert.Equal(t, want, region.ClientIP(r), addr)
	}
}
