package provider

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/cityscope/cityscope-cli/internal/fetcher"
)

const defaultPowerBaseURL = "https://power.larc.nasa.gov"

// powerMissing is the sentinel NASA POWER uses for unavailable values.
const powerMissing = -999

// NASAPower fetches earth skin temperature and root-zone soil wetness from
// the NASA POWER daily point API. Soil wetness (0–1) stands in for the
// vegetation fraction; both track green cover closely enough for scoring.
type NASAPower struct {
	client  *fetcher.Client
	baseURL string
	now     func() time.Time
}

// NewNASAPower creates the NASA POWER provider.
func NewNASAPower(client *fetcher.Client, baseURL string) *NASAPower {
	if baseURL == "" {
		baseURL = defaultPowerBaseURL
	}
	return &NASAPower{client: client, baseURL: baseURL, now: time.Now}
}

// WithNow fixes the clock for testing.
func (p *NASAPower) WithNow(now func() time.Time) *NASAPower {
	p.now = now
	return p
}

func (p *NASAPower) Name() string { return "nasa-power" }

func (p *NASAPower) SuppliedFields() []Field {
	return []Field{FieldSurfaceTemperature, FieldVegetation}
}

type powerResponse struct {
	Properties struct {
		Parameter map[string]map[string]float64 `json:"parameter"`
	} `json:"properties"`
}

func (p *NASAPower) Fetch(ctx context.Context, loc Coordinates) (Reading, error) {
	// POWER publishes with a few days of lag; request a window and take the
	// most recent non-missing value.
	end := p.now().UTC()
	start := end.AddDate(0, 0, -10)
	url := fmt.Sprintf(
		"%s/api/temporal/daily/point?parameters=TS,GWETROOT&community=RE&latitude=%.4f&longitude=%.4f&start=%s&end=%s&format=JSON",
		p.baseURL, loc.Latitude, loc.Longitude,
		start.Format("20060102"), end.Format("20060102"),
	)

	var resp powerResponse
	if err := p.client.GetJSON(ctx, url, &resp); err != nil {
		return Reading{}, eris.Wrap(err, "nasa-power: fetch daily point")
	}

	fields := make(map[Field]float64)
	if ts, ok := latestValue(resp.Properties.Parameter["TS"]); ok {
		fields[FieldSurfaceTemperature] = ts
	}
	if wet, ok := latestValue(resp.Properties.Parameter["GWETROOT"]); ok {
		if wet < 0 {
			wet = 0
		}
		if wet > 1 {
			wet = 1
		}
		fields[FieldVegetation] = wet
	}
	if len(fields) == 0 {
		return Reading{}, eris.New("nasa-power: no non-missing values in window")
	}

	return Reading{Provider: p.Name(), Fields: fields}, nil
}

// latestValue returns the most recent non-missing value from a POWER
// date-keyed series (keys are YYYYMMDD, so lexical order is date order).
func latestValue(series map[string]float64) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	dates := make([]string, 0, len(series))
	for d := range series {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	for _, d := range dates {
		if v := series[d]; v != powerMissing {
			return v, true
		}
	}
	return 0, false
}
