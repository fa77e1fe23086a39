package controller

import "github.com/labstack/echo/v4"

type WeatherController interface {
	SetLocation(c echo.Context) error
	ClearLocation(c echo.Context) error
	Get(c echo.Context) error
	Alerts(c echo.Context) error
}
