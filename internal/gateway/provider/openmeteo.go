package provider

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/cityscope/cityscope-cli/internal/fetcher"
)

const defaultForecastBaseURL = "https://api.open-meteo.com"

// OpenMeteo fetches current weather conditions from the Open-Meteo forecast
// API (no API key required).
type OpenMeteo struct {
	client  *fetcher.Client
	baseURL string
}

// NewOpenMeteo creates the forecast provider. baseURL overrides the public
// endpoint when non-empty (used in tests).
func NewOpenMeteo(client *fetcher.Client, baseURL string) *OpenMeteo {
	if baseURL == "" {
		baseURL = defaultForecastBaseURL
	}
	return &OpenMeteo{client: client, baseURL: baseURL}
}

func (p *OpenMeteo) Name() string { return "open-meteo" }

func (p *OpenMeteo) SuppliedFields() []Field {
	return []Field{
		FieldTemperature, FieldPrecipitation, FieldHumidity,
		FieldWindSpeed, FieldCloudCover,
	}
}

type openMeteoResponse struct {
	Current struct {
		Temperature2m      *float64 `json:"temperature_2m"`
		RelativeHumidity2m *float64 `json:"relative_humidity_2m"`
		Precipitation      *float64 `json:"precipitation"`
		WindSpeed10m       *float64 `json:"wind_speed_10m"`
		CloudCover         *float64 `json:"cloud_cover"`
	} `json:"current"`
}

func (p *OpenMeteo) Fetch(ctx context.Context, loc Coordinates) (Reading, error) {
	url := fmt.Sprintf(
		"%s/v1/forecast?latitude=%.4f&longitude=%.4f&current=temperature_2m,relative_humidity_2m,precipitation,wind_speed_10m,cloud_cover&wind_speed_unit=ms",
		p.baseURL, loc.Latitude, loc.Longitude,
	)

	var resp openMeteoResponse
	if err := p.client.GetJSON(ctx, url, &resp); err != nil {
		return Reading{}, eris.Wrap(err, "open-meteo: fetch current weather")
	}

	fields := make(map[Field]float64)
	if v := resp.Current.Temperature2m; v != nil {
		fields[FieldTemperature] = *v
	}
	if v := resp.Current.RelativeHumidity2m; v != nil {
		fields[FieldHumidity] = *v
	}
	if v := resp.Current.Precipitation; v != nil {
		fields[FieldPrecipitation] = *v
	}
	if v := resp.Current.WindSpeed10m; v != nil {
		fields[FieldWindSpeed] = *v
	}
	if v := resp.Current.CloudCover; v != nil {
		fields[FieldCloudCover] = *v
	}
	if len(fields) == 0 {
		return Reading{}, eris.New("open-meteo: response contained no usable fields")
	}

	return Reading{Provider: p.Name(), Fields: fields}, nil
}
