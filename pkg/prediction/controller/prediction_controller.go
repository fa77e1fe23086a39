package controller

import "github.com/labstack/echo/v4"

type PredictionController interface {
	Predict(c echo.Context) error
	Reset(c echo.Context) error
	Crops(c echo.Context) error
	CropInfo(c echo.Context) error
}
