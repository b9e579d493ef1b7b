package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	nominatimURL = "https://nominatim.openstreetmap.org/search"
	userAgent    = "GlobApp/1.0"

	avgSpeedMph     = 25.0
	baseMinutes     = 2.0
	fallbackMiles   = 2.6
	fallbackMinutes = 8.0
)

// Resolver estimates distance and duration between two street addresses by
// geocoding them through Nominatim. Geocoding is best-effort: on any failure
// the resolver falls back to a conservative default estimate rather than
// failing the request.
type Resolver struct {
	client *http.Client
}

// NewResolver creates a resolver with a bounded request timeout.
func NewResolver() *Resolver {
	return &Resolver{client: &http.Client{Timeout: 10 * time.Second}}
}

// DistanceDuration returns (miles, minutes) between pickup and dropoff.
func (r *Resolver) DistanceDuration(ctx context.Context, pickup, dropoff string) (float64, float64) {
	pLat, pLng, err := r.geocode(ctx, pickup)
	if err != nil {
		log.Printf("[geo] geocode pickup failed: %v", err)
		return fallbackMiles, fallbackMinutes
	}
	dLat, dLng, err := r.geocode(ctx, dropoff)
	if err != nil {
		log.Printf("[geo] geocode dropoff failed: %v", err)
		return fallbackMiles, fallbackMinutes
	}

	miles := HaversineMiles(pLat, pLng, dLat, dLng)
	if miles < 0.1 {
		return fallbackMiles, fallbackMinutes
	}
	minutes := miles/avgSpeedMph*60 + baseMinutes
	return round(miles, 2), round(minutes, 1)
}

// Geocode resolves a street address to coordinates.
func (r *Resolver) Geocode(ctx context.Context, address string) (lat, lng float64, err error) {
	return r.geocode(ctx, address)
}

func (r *Resolver) geocode(ctx context.Context, address string) (lat, lng float64, err error) {
	q := url.Values{
		"q":            {address},
		"format":       {"json"},
		"limit":        {"1"},
		"countrycodes": {"us"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, nominatimURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocode status %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("no geocode results for %q", address)
	}

	lat, err = strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, err
	}
	lng, err = strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}

// HaversineMiles is the great-circle distance between two points.
func HaversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	const R = 3959.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return R * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
