// Package geocode resolves place names to coordinates (and back) via the
// OpenStreetMap Nominatim API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Result holds the geocoding output for a query.
type Result struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
}

// Client geocodes place names via Nominatim.
type Client interface {
	// Search resolves a free-form place query to coordinates.
	Search(ctx context.Context, query string) (*Result, error)

	// Reverse resolves coordinates to a place label.
	Reverse(ctx context.Context, lat, lon float64) (*Result, error)
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithBaseURL overrides the Nominatim endpoint (used in tests).
func WithBaseURL(u string) Option {
	return func(g *geocoder) { g.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) { g.httpClient = hc }
}

// WithUserAgent sets the User-Agent header. Nominatim's usage policy
// requires an identifying agent.
func WithUserAgent(ua string) Option {
	return func(g *geocoder) { g.userAgent = ua }
}

type geocoder struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
}

// NewClient creates a Nominatim Client. Requests are limited to 1/s per the
// public instance's usage policy.
func NewClient(opts ...Option) Client {
	g := &geocoder{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		userAgent:  "cityscope-cli/1.0",
		limiter:    rate.NewLimiter(1, 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (g *geocoder) Search(ctx context.Context, query string) (*Result, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", g.baseURL, url.QueryEscape(query))

	var places []nominatimPlace
	if err := g.get(ctx, endpoint, &places); err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, eris.Errorf("geocode: no match for %q", query)
	}
	return placeToResult(places[0])
}

func (g *geocoder) Reverse(ctx context.Context, lat, lon float64) (*Result, error) {
	endpoint := fmt.Sprintf("%s/reverse?lat=%.6f&lon=%.6f&format=json", g.baseURL, lat, lon)

	var place nominatimPlace
	if err := g.get(ctx, endpoint, &place); err != nil {
		return nil, err
	}
	if place.DisplayName == "" {
		return nil, eris.Errorf("geocode: no place at %.4f,%.4f", lat, lon)
	}
	return placeToResult(place)
}

func (g *geocoder) get(ctx context.Context, endpoint string, out any) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "geocode: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return eris.Wrap(err, "geocode: create request")
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "geocode: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return eris.Wrap(err, "geocode: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "geocode: decode response")
	}
	return nil
}

func placeToResult(p nominatimPlace) (*Result, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: parse latitude")
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: parse longitude")
	}
	return &Result{Latitude: lat, Longitude: lon, DisplayName: p.DisplayName}, nil
}
