package entities

import "time"

// RawSample is one provider sample, typically every 3 hours.
type RawSample struct {
	Timestamp   time.Time `json:"timestamp"`
	Temp        *float64  `json:"temp"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}

type ForecastDay struct {
	Date        string  `json:"date"` // "Mon, Jan 2"
	TempMax     float64 `json:"temp_max"`
	TempMin     float64 `json:"temp_min"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

type CurrentConditions struct {
	Temp        float64 `json:"temp"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// WeatherSnapshot is the normalized current + horizon forecast. Treat as read-only.
type WeatherSnapshot struct {
	Current  CurrentConditions `json:"current"`
	Forecast []ForecastDay     `json:"forecast"`
}

// Location is either a coordinate pair or a free-text place name.
type Location struct {
	Lat   *float64 `json:"lat,omitempty"`
	Lon   *float64 `json:"lon,omitempty"`
	Query string   `json:"query,omitempty"`
}

func (l Location) HasCoords() bool { return l.Lat != nil && l.Lon != nil }

func (l Location) IsZero() bool { return !l.HasCoords() && l.Query == "" }
