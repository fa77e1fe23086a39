// Package analytics aggregates a browser's prediction history for the dashboard.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"agriyield/entities"
	"agriyield/pkg/weather"
)

type CropCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type YieldPoint struct {
	Name           string  `json:"name"`
	PredictedYield float64 `json:"predictedYield"`
	YieldUnit      string  `json:"yieldUnit"`
}

// FieldPoint is a history entry whose location was picked on the map.
type FieldPoint struct {
	ID             string  `json:"id"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	CropType       string  `json:"cropType"`
	PredictedYield float64 `json:"predictedYield"`
	YieldUnit      string  `json:"yieldUnit"`
}

type Summary struct {
	Count            int          `json:"count"`
	AverageYield     float64      `json:"averageYield"`
	CropDistribution []CropCount  `json:"cropDistribution"`
	YieldSeries      []YieldPoint `json:"yieldSeries"`
	Points           []FieldPoint `json:"points"`
}

// Summarize expects history most recent first, as the history store returns it.
// The yield series runs oldest to newest; each label keeps the entry's
// position in the most-recent-first list.
func Summarize(history []entities.HistoricalPrediction) Summary {
	s := Summary{
		Count:            len(history),
		CropDistribution: []CropCount{},
		YieldSeries:      make([]YieldPoint, len(history)),
		Points:           []FieldPoint{},
	}
	if len(history) == 0 {
		return s
	}

	counts := map[string]int{}
	total := 0.0
	for i, h := range history {
		counts[h.FormData.CropType]++
		total += h.Result.PredictedYield

		s.YieldSeries[len(history)-1-i] = YieldPoint{
			Name:           fmt.Sprintf("%s (%s) #%d", truncate(h.FormData.CropType, 10), year(h.Date), i+1),
			PredictedYield: h.Result.PredictedYield,
			YieldUnit:      h.Result.YieldUnit,
		}
		if lat, lng, ok := weather.ParseCoords(h.FormData.Location); ok {
			s.Points = append(s.Points, FieldPoint{
				ID: h.ID, Lat: lat, Lng: lng,
				CropType:       h.FormData.CropType,
				PredictedYield: h.Result.PredictedYield,
				YieldUnit:      h.Result.YieldUnit,
			})
		}
	}
	s.AverageYield = total / float64(len(history))

	for name, n := range counts {
		s.CropDistribution = append(s.CropDistribution, CropCount{Name: name, Value: n})
	}
	sort.Slice(s.CropDistribution, func(i, j int) bool {
		a, b := s.CropDistribution[i], s.CropDistribution[j]
		if a.Value != b.Value {
			return a.Value > b.Value
		}
		return a.Name < b.Name
	})
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func year(date string) string {
	t, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return "?"
	}
	return fmt.Sprint(t.Year())
}
