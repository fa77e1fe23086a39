package serviceImp

import (
	"context"

	"agriyield/entities"
	"agriyield/pkg/apperr"
	"agriyield/pkg/logger"
	"agriyield/pkg/weather"
	"agriyield/pkg/weather/provider"
	"agriyield/pkg/weather/service"
)

type weatherSvc struct{ p provider.Provider }

func NewWeatherService(p provider.Provider) service.WeatherService { return &weatherSvc{p} }

func (s *weatherSvc) Snapshot(ctx context.Context, loc entities.Location) (*entities.WeatherSnapshot, error) {
	samples, err := s.p.FetchSamples(ctx, loc)
	if err != nil {
		logger.WarnF("[weather] %s fetch %s: %v", s.p.Name(), weather.LocationKey(loc), err)
		if apperr.KindOf(err) == "" {
			return nil, apperr.WeatherService("weather fetch failed", err)
		}
		return nil, err
	}
	snap, err := weather.Normalize(samples, weather.ZoneFor(loc))
	if err != nil {
		logger.WarnF("[weather] normalize %s: %v", weather.LocationKey(loc), err)
		return nil, err
	}
	return snap, nil
}
