package climate

import (
	"fmt"
	"strconv"
	"strings"

	"agriyield/entities"
)

type Category string

const (
	Frost    Category = "Frost"
	Heatwave Category = "Heatwave"
	Storm    Category = "Storm"
)

// categoryOrder is the emission order of alerts.
var categoryOrder = []Category{Frost, Heatwave, Storm}

type Alert struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
}

type AlertEngine interface {
	// Derive returns at most one alert per category, Frost then Heatwave then Storm.
	Derive(*entities.WeatherSnapshot) []Alert
	Messages(*entities.WeatherSnapshot) []string
	Thresholds() Thresholds
}

type engine struct {
	th       Thresholds
	keywords []string
}

func NewEngine(th Thresholds) AlertEngine {
	e := &engine{th: th}
	for _, k := range th.StormKeywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			e.keywords = append(e.keywords, k)
		}
	}
	return e
}

var defaultEngine = NewEngine(DefaultThresholds())

// DeriveAlerts evaluates the snapshot against the default thresholds.
func DeriveAlerts(s *entities.WeatherSnapshot) []string {
	return defaultEngine.Messages(s)
}

func (e *engine) Thresholds() Thresholds { return e.th }

type stormDay struct{ day, desc string }

func (e *engine) Derive(s *entities.WeatherSnapshot) []Alert {
	out := []Alert{}
	if s == nil || len(s.Forecast) == 0 {
		return out
	}

	var frostDays, heatDays []string
	var storms []stormDay
	for _, d := range s.Forecast {
		label := dayLabel(d.Date)
		if d.TempMin <= e.th.FrostC {
			frostDays = append(frostDays, label)
		}
		if d.TempMax >= e.th.HeatwaveC {
			heatDays = append(heatDays, label)
		}
		if e.isStorm(d.Description) {
			storms = append(storms, stormDay{day: label, desc: d.Description})
		}
	}

	messages := make(map[Category]string, len(categoryOrder))
	if len(frostDays) > 0 {
		messages[Frost] = fmt.Sprintf("Frost Risk: Low temperatures below %s°C expected on %s.",
			formatTemp(e.th.FrostC), strings.Join(frostDays, ", "))
	}
	if len(heatDays) > 0 {
		messages[Heatwave] = fmt.Sprintf("Heatwave Warning: High temperatures above %s°C expected on %s.",
			formatTemp(e.th.HeatwaveC), strings.Join(heatDays, ", "))
	}
	if len(storms) > 0 {
		parts := make([]string, len(storms))
		for i, sd := range storms {
			parts[i] = sd.desc + " on " + sd.day
		}
		messages[Storm] = fmt.Sprintf("Severe Weather: Potential storms forecasted. (%s)", strings.Join(parts, "; "))
	}

	seen := make(map[string]struct{}, len(messages))
	for _, c := range categoryOrder {
		msg, ok := messages[c]
		if !ok {
			continue
		}
		if _, dup := seen[msg]; dup {
			continue
		}
		seen[msg] = struct{}{}
		out = append(out, Alert{Category: c, Message: msg})
	}
	return out
}

func (e *engine) Messages(s *entities.WeatherSnapshot) []string {
	alerts := e.Derive(s)
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.Message
	}
	return out
}

func (e *engine) isStorm(description string) bool {
	lower := strings.ToLower(description)
	for _, k := range e.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// dayLabel keeps the part of a "Mon, Jan 2" label before the first comma.
func dayLabel(date string) string {
	if i := strings.Index(date, ","); i >= 0 {
		return date[:i]
	}
	return date
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
