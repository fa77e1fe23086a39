package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CookieName holds the browser id that keys history and page state.
const CookieName = "AGRI_UID"

const cookieMaxAge = 365 * 24 * time.Hour

// SetUID pins uid to the browser.
func SetUID(c echo.Context, uid string) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    uid,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Identity resolves the browser id from the cookie, then ?uid=, and otherwise
// issues a fresh one. The id is stored under "uid" in the echo context.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := ""
			if ck, err := c.Cookie(CookieName); err == nil {
				uid = strings.TrimSpace(ck.Value)
			}
			if uid == "" {
				if q := strings.TrimSpace(c.QueryParam("uid")); q != "" {
					uid = q
				} else {
					uid = uuid.NewString()
				}
				SetUID(c, uid)
			}
			c.Set("uid", uid)
			return next(c)
		}
	}
}
