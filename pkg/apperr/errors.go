// Package apperr holds the error taxonomy shared by the weather, prediction and
// history paths. Callers match on Kind with errors.Is against the Err* sentinels.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation        Kind = "validation"
	KindMalformedForecast Kind = "malformed_forecast"
	KindWeatherService    Kind = "weather_service"
	KindPredictionParse   Kind = "prediction_parse"
	KindPredictionService Kind = "prediction_service"
	KindPersistence       Kind = "persistence"
)

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrMalformedForecast = &Error{Kind: KindMalformedForecast}
	ErrWeatherService    = &Error{Kind: KindWeatherService}
	ErrPredictionParse   = &Error{Kind: KindPredictionParse}
	ErrPredictionService = &Error{Kind: KindPredictionService}
	ErrPersistence       = &Error{Kind: KindPersistence}
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string, err error) *Error {
	return New(KindValidation, message, err)
}

func MalformedForecast(message string, err error) *Error {
	return New(KindMalformedForecast, message, err)
}

func WeatherService(message string, err error) *Error {
	return New(KindWeatherService, message, err)
}

func PredictionParse(message string, err error) *Error {
	return New(KindPredictionParse, message, err)
}

func PredictionService(message string, err error) *Error {
	return New(KindPredictionService, message, err)
}

func Persistence(message string, err error) *Error {
	return New(KindPersistence, message, err)
}

// KindOf returns the Kind of the first *Error in the chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HTTPStatus maps an error chain to a response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindMalformedForecast, KindWeatherService, KindPredictionParse, KindPredictionService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
