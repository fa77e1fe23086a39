package controllerImp

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"agriyield/entities"
	"agriyield/pkg/apperr"
	"agriyield/pkg/prediction/controller"
	"agriyield/pkg/prediction/service"
	"agriyield/pkg/session"
)

const invalidFormMessage = "Please enter a valid location and cultivation area."

type predictionCtrl struct {
	svc      service.PredictionService
	sessions *session.Store
}

func NewPredictionController(svc service.PredictionService, sessions *session.Store) controller.PredictionController {
	return &predictionCtrl{svc: svc, sessions: sessions}
}

func (h *predictionCtrl) Predict(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	var form entities.PredictionFormData
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}

	if err := h.svc.Validate(form); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": invalidFormMessage, "details": details(err)})
	}

	s := h.sessions.Get(uid)
	t, snap := s.BeginPrediction(form)
	res, err := h.svc.Predict(c.Request().Context(), uid, form, snap)
	if !s.CompletePrediction(t, res, err) {
		return c.JSON(http.StatusConflict, map[string]string{"error": "superseded by a newer prediction request"})
	}
	if err != nil {
		return c.JSON(apperr.HTTPStatus(err), s.View())
	}
	return c.JSON(http.StatusOK, s.View())
}

func details(err error) string {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

// Reset clears the whole prediction page: weather, alerts and result.
func (h *predictionCtrl) Reset(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	s := h.sessions.Get(uid)
	s.Reset()
	return c.JSON(http.StatusOK, s.View())
}

func (h *predictionCtrl) Crops(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{
		"crops":           entities.CropTypes,
		"soilTypes":       entities.SoilTypes,
		"fertilizerTypes": entities.FertilizerTypes,
	})
}

func (h *predictionCtrl) CropInfo(c echo.Context) error {
	name, err := url.PathUnescape(c.Param("name"))
	if err != nil {
		name = c.Param("name")
	}
	info, err := h.svc.CropInfo(c.Request().Context(), name)
	if err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "crop name is required"})
		}
		return c.JSON(apperr.HTTPStatus(err), map[string]string{
			"error": fmt.Sprintf("Failed to load information for %s. Please try again later.", name),
		})
	}
	return c.JSON(http.StatusOK, info)
}
