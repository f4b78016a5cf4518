package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityscope/cityscope-cli/internal/fetcher"
)

func testClient() *fetcher.Client {
	return fetcher.NewClient(fetcher.Options{Timeout: 2 * time.Second})
}

func coords() Coordinates {
	return Coordinates{Latitude: 23.8103, Longitude: 90.4125}
}

func TestOpenMeteoFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "23.8103", q.Get("latitude"))
		assert.Equal(t, "ms", q.Get("wind_speed_unit"))
		w.Write([]byte(`{"current":{"temperature_2m":31.2,"relative_humidity_2m":74,"precipitation":0.4,"wind_speed_10m":2.8,"cloud_cover":63}}`))
	}))
	defer srv.Close()

	reading, err := NewOpenMeteo(testClient(), srv.URL).Fetch(context.Background(), coords())
	require.NoError(t, err)

	assert.Equal(t, "open-meteo", reading.Provider)
	assert.InDelta(t, 31.2, reading.Fields[FieldTemperature], 1e-9)
	assert.InDelta(t, 74, reading.Fields[FieldHumidity], 1e-9)
	assert.InDelta(t, 0.4, reading.Fields[FieldPrecipitation], 1e-9)
	assert.InDelta(t, 2.8, reading.Fields[FieldWindSpeed], 1e-9)
	assert.InDelta(t, 63, reading.Fields[FieldCloudCover], 1e-9)
}

func TestOpenMeteoPartialResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current":{"temperature_2m":28.5}}`))
	}))
	defer srv.Close()

	reading, err := NewOpenMeteo(testClient(), srv.URL).Fetch(context.Background(), coords())
	require.NoError(t, err)
	require.Len(t, reading.Fields, 1)
	assert.InDelta(t, 28.5, reading.Fields[FieldTemperature], 1e-9)
}

func TestOpenMeteoEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current":{}}`))
	}))
	defer srv.Close()

	_, err := NewOpenMeteo(testClient(), srv.URL).Fetch(context.Background(), coords())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable fields")
}

func TestAirQualityInvertsAQI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/air-quality", r.URL.Path)
		w.Write([]byte(`{"current":{"european_aqi":35}}`))
	}))
	defer srv.Close()

	reading, err := NewAirQuality(testClient(), srv.URL).Fetch(context.Background(), coords())
	require.NoError(t, err)
	assert.InDelta(t, 65, reading.Fields[FieldAirQuality], 1e-9)
}

func TestAirQualityClampsHazardousAQI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current":{"european_aqi":140}}`))
	}))
	defer srv.Close()

	reading, err := NewAirQuality(testClient(), srv.URL).Fetch(context.Background(), coords())
	require.NoError(t, err)
	assert.InDelta(t, 0, reading.Fields[FieldAirQuality], 1e-9)
}

func TestAirQualityMissingAQI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"current":{}}`))
	}))
	defer srv.Close()

	_, err := NewAirQuality(testClient(), srv.URL).Fetch(context.Background(), coords())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing european_aqi")
}

func TestNASAPowerFetchLatestNonMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/temporal/daily/point", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "TS,GWETROOT", q.Get("parameters"))
		assert.Equal(t, "20260722", q.Get("start"))
		assert.Equal(t, "20260801", q.Get("end"))
		// The most recent day is the -999 sentinel; the day before has data.
		w.Write([]byte(`{"properties":{"parameter":{
			"TS":{"20260730":37.4,"20260731":38.1,"20260801":-999},
			"GWETROOT":{"20260730":0.42,"20260731":-999,"20260801":-999}
		}}}`))
	}))
	defer srv.Close()

	now := func() time.Time { return time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC) }
	reading, err := NewNASAPower(testClient(), srv.URL).WithNow(now).Fetch(context.Background(), coords())
	require.NoError(t, err)

	assert.InDelta(t, 38.1, reading.Fields[FieldSurfaceTemperature], 1e-9)
	assert.InDelta(t, 0.42, reading.Fields[FieldVegetation], 1e-9)
}

func TestNASAPowerClampsSoilWetness(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"properties":{"parameter":{"GWETROOT":{"20260801":1.7}}}}`))
	}))
	defer srv.Close()

	reading, err := NewNASAPower(testClient(), srv.URL).Fetch(context.Background(), coords())
	require.NoError(t, err)
	assert.InDelta(t, 1, reading.Fields[FieldVegetation], 1e-9)
}

func TestNASAPowerAllMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"properties":{"parameter":{"TS":{"20260801":-999},"GWETROOT":{"20260801":-999}}}}`))
	}))
	defer srv.Close()

	_, err := NewNASAPower(testClient(), srv.URL).Fetch(context.Background(), coords())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no non-missing values")
}

func TestLatestValue(t *testing.T) {
	_, ok := latestValue(nil)
	assert.False(t, ok)

	v, ok := latestValue(map[string]float64{"20260101": 5, "20260102": 7})
	assert.True(t, ok)
	assert.InDelta(t, 7, v, 1e-9)

	v, ok = latestValue(map[string]float64{"20260101": 5, "20260102": -999})
	assert.True(t, ok)
	assert.InDelta(t, 5, v, 1e-9)
}

func TestSuppliedFieldsDeclared(t *testing.T) {
	c := testClient()
	assert.ElementsMatch(t,
		[]Field{FieldTemperature, FieldPrecipitation, FieldHumidity, FieldWindSpeed, FieldCloudCover},
		NewOpenMeteo(c, "").SuppliedFields())
	assert.ElementsMatch(t, []Field{FieldAirQuality}, NewAirQuality(c, "").SuppliedFields())
	assert.ElementsMatch(t,
		[]Field{FieldSurfaceTemperature, FieldVegetation},
		NewNASAPower(c, "").SuppliedFields())
}
