package providerImp

import (
	"context"

	"golang.org/x/time/rate"

	"agriyield/entities"
	"agriyield/pkg/apperr"
	"agriyield/pkg/weather/provider"
)

// RateLimitedProvider waits on a token bucket before each upstream fetch.
type RateLimitedProvider struct {
	source  provider.Provider
	limiter *rate.Limiter
}

func NewRateLimited(source provider.Provider, rps float64, burst int) *RateLimitedProvider {
	return &RateLimitedProvider{source: source, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (r *RateLimitedProvider) Name() string { return r.source.Name() + " [Rate Limited]" }

func (r *RateLimitedProvider) FetchSamples(ctx context.Context, loc entities.Location) ([]entities.RawSample, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, apperr.WeatherService("rate limit wait canceled", err)
	}
	return r.source.FetchSamples(ctx, loc)
}

var _ provider.Provider = (*RateLimitedProvider)(nil)
