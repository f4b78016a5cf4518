package provider

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/cityscope/cityscope-cli/internal/fetcher"
)

const defaultAirQualityBaseURL = "https://air-quality-api.open-meteo.com"

// AirQuality fetches the European AQI from the Open-Meteo air quality API
// and normalizes it to the engine's 0–100 higher-is-cleaner scale.
type AirQuality struct {
	client  *fetcher.Client
	baseURL string
}

// NewAirQuality creates the air quality provider.
func NewAirQuality(client *fetcher.Client, baseURL string) *AirQuality {
	if baseURL == "" {
		baseURL = defaultAirQualityBaseURL
	}
	return &AirQuality{client: client, baseURL: baseURL}
}

func (p *AirQuality) Name() string { return "open-meteo-air-quality" }

func (p *AirQuality) SuppliedFields() []Field {
	return []Field{FieldAirQuality}
}

type airQualityResponse struct {
	Current struct {
		EuropeanAQI *float64 `json:"european_aqi"`
	} `json:"current"`
}

func (p *AirQuality) Fetch(ctx context.Context, loc Coordinates) (Reading, error) {
	url := fmt.Sprintf(
		"%s/v1/air-quality?latitude=%.4f&longitude=%.4f&current=european_aqi",
		p.baseURL, loc.Latitude, loc.Longitude,
	)

	var resp airQualityResponse
	if err := p.client.GetJSON(ctx, url, &resp); err != nil {
		return Reading{}, eris.Wrap(err, "air-quality: fetch current aqi")
	}
	if resp.Current.EuropeanAQI == nil {
		return Reading{}, eris.New("air-quality: response missing european_aqi")
	}

	// European AQI: 0 is pristine, 100+ is hazardous. Invert onto the
	// engine's cleanliness scale and clamp.
	score := 100 - *resp.Current.EuropeanAQI
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Reading{
		Provider: p.Name(),
		Fields:   map[Field]float64{FieldAirQuality: score},
	}, nil
}
