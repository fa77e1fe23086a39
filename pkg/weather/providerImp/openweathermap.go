package providerImp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"agriyield/entities"
	"agriyield/pkg/apperr"
	"agriyield/pkg/httpx"
	"agriyield/pkg/weather/provider"
)

const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

type openWeatherMap struct {
	apiKey  string
	baseURL string
	client  *httpx.Client
}

// NewOpenWeatherMap returns the 5 day / 3 hour forecast client. A nil client gets a default one.
func NewOpenWeatherMap(apiKey, baseURL string, client *httpx.Client) provider.Provider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	if client == nil {
		client = httpx.New(nil, "openweathermap", "AgriYield/1.0")
	}
	return &openWeatherMap{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (p *openWeatherMap) Name() string { return "OpenWeatherMap" }

// cod comes back as "200" on success but as a number on some errors.
type owmCode string

func (c *owmCode) UnmarshalJSON(b []byte) error {
	*c = owmCode(strings.Trim(string(bytes.TrimSpace(b)), `"`))
	return nil
}

type owmForecast struct {
	Cod     owmCode `json:"cod"`
	Message any     `json:"message"`
	List    []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp *float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
	} `json:"list"`
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
}

func (p *openWeatherMap) FetchSamples(ctx context.Context, loc entities.Location) ([]entities.RawSample, error) {
	if p.apiKey == "" {
		return nil, apperr.WeatherService("weather API key is not configured", nil)
	}
	if loc.IsZero() {
		return nil, apperr.Validation("location is required", nil)
	}

	params := url.Values{}
	if loc.HasCoords() {
		params.Set("lat", strconv.FormatFloat(*loc.Lat, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(*loc.Lon, 'f', -1, 64))
	} else {
		params.Set("q", loc.Query)
	}
	params.Set("units", "metric")
	params.Set("appid", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/forecast?"+params.Encode(), nil)
	if err != nil {
		return nil, apperr.WeatherService("failed to create request", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperr.WeatherService("weather request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.WeatherService("failed to read response body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.WeatherService(fmt.Sprintf("Weather API request failed with status %d", resp.StatusCode), nil)
	}

	var payload owmForecast
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperr.MalformedForecast("failed to parse forecast response", err)
	}
	if payload.Cod != "200" {
		return nil, apperr.WeatherService(fmt.Sprintf("Weather API error: %v", payload.Message), nil)
	}

	samples := make([]entities.RawSample, 0, len(payload.List))
	for _, it := range payload.List {
		s := entities.RawSample{Timestamp: time.Unix(it.Dt, 0).UTC(), Temp: it.Main.Temp}
		if len(it.Weather) > 0 {
			s.Description = it.Weather[0].Description
			s.Icon = it.Weather[0].Icon
		}
		samples = append(samples, s)
	}
	return samples, nil
}
