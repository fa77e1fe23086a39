package controllerImp

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"agriyield/pkg/auth/controller"
	"agriyield/pkg/middleware"
)

type authCtrl struct{}

func NewAuthController() controller.AuthController { return &authCtrl{} }

// DevLogin switches the browser to the id given in ?uid=, which lets a tester
// look at someone else's history.
func (h *authCtrl) DevLogin(c echo.Context) error {
	uid := strings.TrimSpace(c.QueryParam("uid"))
	if uid == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "uid is required"})
	}
	middleware.SetUID(c, uid)
	return c.JSON(http.StatusOK, map[string]string{"uid": uid})
}

func (h *authCtrl) WhoAmI(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	return c.JSON(http.StatusOK, map[string]string{"uid": uid})
}
