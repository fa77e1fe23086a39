package controllerImp

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"agriyield/entities"
	"agriyield/pkg/climate"
	"agriyield/pkg/session"
	"agriyield/pkg/weather"
	"agriyield/pkg/weather/controller"
	"agriyield/pkg/weather/service"
)

type weatherCtrl struct {
	svc      service.WeatherService
	engine   climate.AlertEngine
	sessions *session.Store
}

func NewWeatherController(svc service.WeatherService, engine climate.AlertEngine, sessions *session.Store) controller.WeatherController {
	return &weatherCtrl{svc: svc, engine: engine, sessions: sessions}
}

// setLocationReq carries either a typed location string or a picked map point.
type setLocationReq struct {
	Location string   `json:"location"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
}

func (h *weatherCtrl) SetLocation(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	var req setLocationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}

	var loc entities.Location
	label := strings.TrimSpace(req.Location)
	switch {
	case req.Lat != nil && req.Lon != nil:
		loc = entities.Location{Lat: req.Lat, Lon: req.Lon}
		label = weather.FormatCoords(*req.Lat, *req.Lon)
	case label != "":
		loc = weather.ParseLocation(label)
	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "location is required"})
	}

	s := h.sessions.Get(uid)
	t := s.BeginWeather(label)
	snap, err := h.svc.Snapshot(c.Request().Context(), loc)
	var alerts []string
	if err == nil {
		alerts = h.engine.Messages(snap)
	}
	s.CompleteWeather(t, snap, alerts, err)

	v := s.View()
	if err != nil {
		return c.JSON(http.StatusBadGateway, v)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *weatherCtrl) ClearLocation(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	s := h.sessions.Get(uid)
	s.ClearLocation()
	return c.JSON(http.StatusOK, s.View())
}

func (h *weatherCtrl) Get(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	return c.JSON(http.StatusOK, h.sessions.Get(uid).View())
}

// Alerts derives alert messages for a posted snapshot without touching the session.
func (h *weatherCtrl) Alerts(c echo.Context) error {
	var snap *entities.WeatherSnapshot
	if err := c.Bind(&snap); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	return c.JSON(http.StatusOK, map[string][]string{"alerts": h.engine.Messages(snap)})
}
