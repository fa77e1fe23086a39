package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"agriyield/pkg/analytics"
	"agriyield/pkg/history/service"
)

type AnalyticsCtrl struct{ history service.HistoryService }

func New(history service.HistoryService) *AnalyticsCtrl { return &AnalyticsCtrl{history} }

func (h *AnalyticsCtrl) Summary(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	return c.JSON(http.StatusOK, analytics.Summarize(h.history.List(uid)))
}
