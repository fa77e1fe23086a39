package service

import (
	"context"

	"agriyield/entities"
)

type PredictionService interface {
	// Validate checks form without side effects. It returns an apperr Validation error.
	Validate(form entities.PredictionFormData) error
	// Predict validates form, asks the generator for a schema-conforming result and
	// records it in uid's history. snap may be nil.
	Predict(ctx context.Context, uid string, form entities.PredictionFormData, snap *entities.WeatherSnapshot) (*entities.PredictionResult, error)
	CropInfo(ctx context.Context, cropName string) (*entities.CropInfo, error)
}
