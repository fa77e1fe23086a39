package router

import (
	"github.com/labstack/echo/v4"

	"agriyield/pkg/middleware"
)

type (
	authRoutes interface {
		DevLogin(echo.Context) error
		WhoAmI(echo.Context) error
	}
	weatherRoutes interface {
		SetLocation(echo.Context) error
		ClearLocation(echo.Context) error
		Get(echo.Context) error
		Alerts(echo.Context) error
	}
	predictionRoutes interface {
		Predict(echo.Context) error
		Reset(echo.Context) error
		Crops(echo.Context) error
		CropInfo(echo.Context) error
	}
	historyRoutes interface {
		List(echo.Context) error
		Clear(echo.Context) error
	}
	kbRoutes interface {
		IngestText(echo.Context) error
		IngestURL(echo.Context) error
		Search(echo.Context) error
	}
)

// Controllers bundles every handler group the server mounts.
type Controllers struct {
	Auth       authRoutes
	Weather    weatherRoutes
	Prediction predictionRoutes
	History    historyRoutes
	Analytics  interface{ Summary(echo.Context) error }
	KB         kbRoutes
	Health     interface{ Health(echo.Context) error }
}

func New(e *echo.Echo, c Controllers) *echo.Echo {
	e.GET("/health", c.Health.Health)

	api := e.Group("", middleware.Identity())

	api.GET("/whoami", c.Auth.WhoAmI)
	api.GET("/devlogin", c.Auth.DevLogin)

	api.POST("/weather/location", c.Weather.SetLocation)
	api.DELETE("/weather/location", c.Weather.ClearLocation)
	api.GET("/weather", c.Weather.Get)
	api.POST("/alerts", c.Weather.Alerts)

	api.POST("/predictions", c.Prediction.Predict)
	api.POST("/predictions/reset", c.Prediction.Reset)
	api.GET("/crops", c.Prediction.Crops)
	api.GET("/crops/:name", c.Prediction.CropInfo)

	api.GET("/history", c.History.List)
	api.DELETE("/history", c.History.Clear)
	api.GET("/analytics", c.Analytics.Summary)

	api.POST("/kb/ingest", c.KB.IngestText)
	api.POST("/kb/ingest/url", c.KB.IngestURL)
	api.GET("/kb/search", c.KB.Search)
	return e
}
