package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"agriyield/pkg/history/controller"
	"agriyield/pkg/history/service"
)

type historyCtrl struct{ svc service.HistoryService }

func NewHistoryController(svc service.HistoryService) controller.HistoryController {
	return &historyCtrl{svc}
}

func (h *historyCtrl) List(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	return c.JSON(http.StatusOK, h.svc.List(uid))
}

func (h *historyCtrl) Clear(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	h.svc.Clear(uid)
	return c.NoContent(http.StatusNoContent)
}
