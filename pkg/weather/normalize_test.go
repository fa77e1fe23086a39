package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriyield/entities"
	"agriyield/pkg/apperr"
)

func f(v float64) *float64 { return &v }

func sample(ts time.Time, temp float64, desc, icon string) entities.RawSample {
	return entities.RawSample{Timestamp: ts, Temp: f(temp), Description: desc, Icon: icon}
}

func TestNormalizeFifteenThreeHourlySamplesGiveThreeDays(t *testing.T) {
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	var samples []entities.RawSample
	for i := 0; i < 15; i++ {
		samples = append(samples, sample(start.Add(time.Duration(i)*3*time.Hour), 10+float64(i%5), "clear sky", "01d"))
	}

	snap, err := Normalize(samples, time.UTC)
	require.NoError(t, err)
	require.Len(t, snap.Forecast, 3)
	assert.Equal(t, []string{"Mon, Jun 3", "Tue, Jun 4", "Wed, Jun 5"},
		[]string{snap.Forecast[0].Date, snap.Forecast[1].Date, snap.Forecast[2].Date})
	for _, d := range snap.Forecast {
		assert.LessOrEqual(t, d.TempMin, d.TempMax)
	}
}

func TestNormalizeKeepsFirstFiveDates(t *testing.T) {
	start := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	var samples []entities.RawSample
	for d := 6; d >= 0; d-- {
		samples = append(samples, sample(start.AddDate(0, 0, d), float64(d), "few clouds", "02d"))
	}

	snap, err := Normalize(samples, nil)
	require.NoError(t, err)
	require.Len(t, snap.Forecast, Horizon)
	assert.Equal(t, "Mon, Jun 3", snap.Forecast[0].Date)
	assert.Equal(t, "Fri, Jun 7", snap.Forecast[4].Date)
	// current is the earliest sample, not the first in the list
	assert.Equal(t, 0.0, snap.Current.Temp)
}

func TestNormalizeDayReduction(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	samples := []entities.RawSample{
		sample(day.Add(0*time.Hour), 1.4, "light rain", "10n"),
		sample(day.Add(3*time.Hour), -0.6, "clear sky", "01n"),
		sample(day.Add(6*time.Hour), 4.5, "light rain", "10d"),
		sample(day.Add(9*time.Hour), 7.49, "clear sky", "01d"),
	}

	snap, err := Normalize(samples, time.UTC)
	require.NoError(t, err)
	require.Len(t, snap.Forecast, 1)
	d := snap.Forecast[0]
	assert.Equal(t, "Mon, Jan 15", d.Date)
	assert.Equal(t, 7.0, d.TempMax)
	assert.Equal(t, -1.0, d.TempMin)
	// tie between light rain and clear sky goes to the first encountered
	assert.Equal(t, "light rain", d.Description)
	assert.Equal(t, "10n", d.Icon)

	assert.Equal(t, entities.CurrentConditions{Temp: 1, Description: "light rain", Icon: "10n"}, snap.Current)
}

func TestNormalizeMostFrequentDescriptionWins(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	samples := []entities.RawSample{
		sample(day, 5, "clear sky", "01d"),
		sample(day.Add(3*time.Hour), 5, "thunderstorm", "11d"),
		sample(day.Add(6*time.Hour), 5, "thunderstorm", "11n"),
	}
	snap, err := Normalize(samples, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "thunderstorm", snap.Forecast[0].Description)
	assert.Equal(t, "11d", snap.Forecast[0].Icon)
}

func TestNormalizeGroupsInLocationZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	// 20:00 UTC on Jun 3 is 05:00 on Jun 4 in Tokyo
	samples := []entities.RawSample{
		sample(time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC), 20, "clear sky", "01d"),
		sample(time.Date(2024, 6, 3, 20, 0, 0, 0, time.UTC), 15, "clear sky", "01n"),
	}

	utc, err := Normalize(samples, time.UTC)
	require.NoError(t, err)
	assert.Len(t, utc.Forecast, 1)

	local, err := Normalize(samples, tokyo)
	require.NoError(t, err)
	require.Len(t, local.Forecast, 2)
	assert.Equal(t, "Tue, Jun 4", local.Forecast[1].Date)
}

func TestNormalizeRejectsMalformedInput(t *testing.T) {
	ts := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	cases := map[string][]entities.RawSample{
		"empty":          nil,
		"no temperature": {{Timestamp: ts, Description: "clear sky"}},
		"no description": {sample(ts, 10, "clear sky", "01d"), {Timestamp: ts, Temp: f(3), Description: "  "}},
		"no timestamp":   {{Temp: f(3), Description: "clear sky"}},
	}
	for name, samples := range cases {
		t.Run(name, func(t *testing.T) {
			snap, err := Normalize(samples, time.UTC)
			assert.Nil(t, snap)
			assert.ErrorIs(t, err, apperr.ErrMalformedForecast)
		})
	}
}
