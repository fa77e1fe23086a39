package service

import (
	"context"

	"agriyield/entities"
)

type WeatherService interface {
	// Snapshot fetches and normalizes the forecast for loc.
	Snapshot(ctx context.Context, loc entities.Location) (*entities.WeatherSnapshot, error)
}
