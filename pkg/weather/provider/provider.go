package provider

import (
	"context"

	"agriyield/entities"
)

// Provider fetches raw forecast samples for a location.
type Provider interface {
	Name() string
	FetchSamples(ctx context.Context, loc entities.Location) ([]entities.RawSample, error)
}
