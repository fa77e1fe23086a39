// Package weather turns provider samples into the snapshot consumed by the
// alert engine and the prediction prompt.
package weather

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"agriyield/entities"
	"agriyield/pkg/apperr"
)

// Horizon is the number of calendar days kept in a snapshot.
const Horizon = 5

// DayLabelLayout renders ForecastDay.Date. The alert engine reads the part before the comma.
const DayLabelLayout = "Mon, Jan 2"

type dayBucket struct {
	key     string
	label   string
	samples []entities.RawSample
}

// Normalize groups samples by calendar date in loc (UTC when nil), keeps the
// first Horizon dates and reduces each to a ForecastDay. Current conditions
// come from the earliest sample. Nothing partial is returned on error.
func Normalize(samples []entities.RawSample, loc *time.Location) (*entities.WeatherSnapshot, error) {
	if len(samples) == 0 {
		return nil, apperr.MalformedForecast("forecast contains no samples", nil)
	}
	if loc == nil {
		loc = time.UTC
	}

	byKey := map[string]*dayBucket{}
	earliest := -1
	for i, s := range samples {
		if s.Temp == nil {
			return nil, apperr.MalformedForecast(fmt.Sprintf("sample %d has no temperature", i), nil)
		}
		if strings.TrimSpace(s.Description) == "" {
			return nil, apperr.MalformedForecast(fmt.Sprintf("sample %d has no description", i), nil)
		}
		if s.Timestamp.IsZero() {
			return nil, apperr.MalformedForecast(fmt.Sprintf("sample %d has no timestamp", i), nil)
		}
		if earliest < 0 || s.Timestamp.Before(samples[earliest].Timestamp) {
			earliest = i
		}

		local := s.Timestamp.In(loc)
		key := local.Format("2006-01-02")
		b, ok := byKey[key]
		if !ok {
			b = &dayBucket{key: key, label: local.Format(DayLabelLayout)}
			byKey[key] = b
		}
		b.samples = append(b.samples, s)
	}

	days := make([]*dayBucket, 0, len(byKey))
	for _, b := range byKey {
		days = append(days, b)
	}
	// ISO dates sort chronologically.
	sort.Slice(days, func(i, j int) bool { return days[i].key < days[j].key })
	if len(days) > Horizon {
		days = days[:Horizon]
	}

	out := &entities.WeatherSnapshot{Forecast: make([]entities.ForecastDay, 0, len(days))}
	for _, b := range days {
		out.Forecast = append(out.Forecast, summarizeDay(b))
	}

	first := samples[earliest]
	out.Current = entities.CurrentConditions{
		Temp:        math.Round(*first.Temp),
		Description: first.Description,
		Icon:        first.Icon,
	}
	return out, nil
}

func summarizeDay(b *dayBucket) entities.ForecastDay {
	hi, lo := math.Inf(-1), math.Inf(1)
	counts := map[string]int{}
	var order []string
	for _, s := range b.samples {
		hi = math.Max(hi, *s.Temp)
		lo = math.Min(lo, *s.Temp)
		if counts[s.Description] == 0 {
			order = append(order, s.Description)
		}
		counts[s.Description]++
	}

	// strictly greater keeps the first-encountered description on ties
	winner := order[0]
	for _, d := range order[1:] {
		if counts[d] > counts[winner] {
			winner = d
		}
	}
	icon := ""
	for _, s := range b.samples {
		if s.Description == winner {
			icon = s.Icon
			break
		}
	}

	return entities.ForecastDay{
		Date:        b.label,
		TempMax:     math.Round(hi),
		TempMin:     math.Round(lo),
		Description: winner,
		Icon:        icon,
	}
}
