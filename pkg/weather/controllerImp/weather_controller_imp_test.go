package controllerImp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriyield/entities"
	"agriyield/pkg/apperr"
	"agriyield/pkg/climate"
	"agriyield/pkg/session"
)

type fakeWeather struct {
	snap *entities.WeatherSnapshot
	err  error
	got  entities.Location
}

func (f *fakeWeather) Snapshot(ctx context.Context, loc entities.Location) (*entities.WeatherSnapshot, error) {
	f.got = loc
	return f.snap, f.err
}

func frostySnapshot() *entities.WeatherSnapshot {
	return &entities.WeatherSnapshot{
		Current: entities.CurrentConditions{Temp: 3, Description: "clear sky", Icon: "01d"},
		Forecast: []entities.ForecastDay{
			{Date: "Mon, Jun 3", TempMax: 10, TempMin: 1, Description: "clear sky"},
			{Date: "Tue, Jun 4", TempMax: 12, TempMin: 5, Description: "thunderstorm"},
		},
	}
}

func do(t *testing.T, h echo.HandlerFunc, method, body string) (*httptest.ResponseRecorder, session.View) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/weather/location", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("uid", "u1")
	require.NoError(t, h(c))
	var v session.View
	_ = json.Unmarshal(rec.Body.Bytes(), &v)
	return rec, v
}

func TestSetLocationStoresSnapshotAndAlerts(t *testing.T) {
	svc := &fakeWeather{snap: frostySnapshot()}
	store := session.NewStore()
	h := NewWeatherController(svc, climate.NewEngine(climate.DefaultThresholds()), store)

	rec, v := do(t, h.SetLocation, http.MethodPost, `{"lat":48.85,"lon":2.35}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lat: 48.8500, Lng: 2.3500", v.Location)
	require.NotNil(t, v.Weather)
	assert.Equal(t, []string{
		"Frost Risk: Low temperatures below 2°C expected on Mon.",
		"Severe Weather: Potential storms forecasted. (thunderstorm on Tue)",
	}, v.Alerts)
	assert.True(t, svc.got.HasCoords())

	rec, v = do(t, h.Get, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, v.Alerts, 2)
}

func TestSetLocationParsesText(t *testing.T) {
	svc := &fakeWeather{snap: frostySnapshot()}
	h := NewWeatherController(svc, climate.NewEngine(climate.DefaultThresholds()), session.NewStore())

	_, _ = do(t, h.SetLocation, http.MethodPost, `{"location":"Lat: 10.5, Lng: -3.25"}`)
	require.True(t, svc.got.HasCoords())
	assert.Equal(t, 10.5, *svc.got.Lat)

	_, _ = do(t, h.SetLocation, http.MethodPost, `{"location":"Nairobi"}`)
	assert.Equal(t, "Nairobi", svc.got.Query)
}

func TestSetLocationFailure(t *testing.T) {
	svc := &fakeWeather{err: apperr.WeatherService("Weather API request failed with status 500", nil)}
	h := NewWeatherController(svc, climate.NewEngine(climate.DefaultThresholds()), session.NewStore())

	rec, v := do(t, h.SetLocation, http.MethodPost, `{"location":"Atlantis"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, session.WeatherFailedMessage, v.WeatherError)
	assert.Nil(t, v.Weather)
	assert.Empty(t, v.Alerts)
}

func TestSetLocationRequiresLocation(t *testing.T) {
	h := NewWeatherController(&fakeWeather{}, climate.NewEngine(climate.DefaultThresholds()), session.NewStore())
	rec, _ := do(t, h.SetLocation, http.MethodPost, `{"location":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearLocation(t *testing.T) {
	store := session.NewStore()
	h := NewWeatherController(&fakeWeather{snap: frostySnapshot()}, climate.NewEngine(climate.DefaultThresholds()), store)
	_, _ = do(t, h.SetLocation, http.MethodPost, `{"location":"Paris"}`)

	rec, v := do(t, h.ClearLocation, http.MethodDelete, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, v.Weather)
	assert.Empty(t, v.Alerts)
	assert.Nil(t, store.Get("u1").Snapshot())
}

func TestAlertsIsPure(t *testing.T) {
	store := session.NewStore()
	h := NewWeatherController(&fakeWeather{}, climate.NewEngine(climate.DefaultThresholds()), store)

	body, _ := json.Marshal(frostySnapshot())
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/alerts", strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Alerts(e.NewContext(req, rec)))

	var out map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out["alerts"], 2)
	assert.Nil(t, store.Get("u1").Snapshot())

	req = httptest.NewRequest(http.MethodPost, "/alerts", strings.NewReader(`null`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	require.NoError(t, h.Alerts(e.NewContext(req, rec)))
	assert.JSONEq(t, `{"alerts":[]}`, rec.Body.String())
}
