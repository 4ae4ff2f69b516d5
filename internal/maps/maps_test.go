package maps

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weatherbeats/internal/resilience"
)

func TestStaticMapClient_Image(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		q := r.URL.Query()
		if q.Get("center") != "51.5072,-0.1276" || q.Get("markers") != "color:red|label:C|51.5072,-0.1276" || q.Get("key") != "maps-key" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}))
	defer srv.Close()

	backoff := resilience.BackoffConfig{InitialInterval: time.Millisecond}
	c := NewStaticMapClient(srv.Client(), "maps-key", backoff).WithBaseURL(srv.URL)

	got, err := c.Image(context.Background(), 51.5072, -0.1276)
	if err != nil {
		t.Fatalf("unexpected error (query %s): %v", gotQuery, err)
	}
	raw, err := base64.StdEncoding.DecodeString(got)
	if err != nil {
		t.Fatalf("not base64: %v", err)
	}
	if !bytes.Equal(raw, png) {
		t.Fatalf("unexpected image bytes %v", raw)
	}
	for _, want := range []string{"zoom=4", "size=700x700", "maptype=roadmap"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestStaticMapClient_Errors(t *testing.T) {
	c := NewStaticMapClient(http.DefaultClient, "", resilience.DefaultBackoff())
	if _, err := c.Image(context.Background(), 1, 2); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c = NewStaticMapClient(srv.Client(), "key", resilience.DefaultBackoff()).WithBaseURL(srv.URL)
	if _, err := c.Image(context.Background(), 1, 2); !errors.Is(err, resilience.ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus, got %v", err)
	}
}

func TestRenderInteractive(t *testing.T) {
	html, err := RenderInteractive(40.7128, -74.006)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"setView([40.7128, -74.006]",
		"L.marker([40.7128, -74.006])",
		"tile.openstreetmap.org",
		"leaflet.js",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("fragment missing %q:\n%s", want, html)
		}
	}

	other, err := RenderInteractive(40.7128, -74.006)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other == html {
		t.Errorf("expected a fresh element id per render")
	}
}

func TestGeocoder_Lookup(t *testing.T) {
	g := NewGeocoder("geo-key", time.Second)
	var gotCity string
	g.lookup = func(a geocoder.Address) (geocoder.Location, error) {
		gotCity = a.City
		if geocoder.ApiKey != "geo-key" {
			t.Errorf("api key not applied")
		}
		return geocoder.Location{Latitude: 35.6762, Longitude: 139.6503}, nil
	}

	loc, err := g.Lookup(context.Background(), "Tokyo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCity != "Tokyo" || loc.City != "Tokyo" || loc.Lat != 35.6762 || loc.Lon != 139.6503 {
		t.Fatalf("unexpected location %+v", loc)
	}

	boom := errors.New("ZERO_RESULTS")
	g.lookup = func(geocoder.Address) (geocoder.Location, error) { return geocoder.Location{}, boom }
	if _, err := g.Lookup(context.Background(), "Atlantis"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}

	if _, err := NewGeocoder("", time.Second).Lookup(context.Background(), "Tokyo"); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestGeocoder_LookupTimesOut(t *testing.T) {
	g := NewGeocoder("geo-key", 50*time.Millisecond)
	release := make(chan struct{})
	defer close(release)
	g.lookup = func(geocoder.Address) (geocoder.Location, error) {
		<-release
		return geocoder.Location{}, nil
	}

	for _, city := range []string{"Atlantis", "Lemuria"} {
		start := time.Now()
		_, err := g.Lookup(context.Background(), city)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("%s: expected DeadlineExceeded, got %v", city, err)
		}
		if took := time.Since(start); took > time.Second {
			t.Fatalf("%s: lookup returned after %v", city, took)
		}
	}
}
