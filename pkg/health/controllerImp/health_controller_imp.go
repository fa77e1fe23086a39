package controllerImp

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var appStart = time.Now()

// Breaker is an upstream client that can report its circuit state.
type Breaker interface {
	State() string
}

type HealthCtrl struct {
	db       *gorm.DB
	breakers map[string]Breaker
}

// NewHealthCtrl reports on db and on every named upstream breaker. Only the
// database decides the status code; an open breaker degrades, it does not fail.
func NewHealthCtrl(db *gorm.DB, breakers map[string]Breaker) *HealthCtrl {
	return &HealthCtrl{db: db, breakers: breakers}
}

type sub struct {
	OK    bool   `json:"ok"`
	State string `json:"state,omitempty"`
	Err   string `json:"err,omitempty"`
}

func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	dbCheck := sub{OK: true}
	if h.db == nil {
		dbCheck = sub{Err: "gorm db is nil"}
	} else if sqlDB, err := h.db.DB(); err != nil {
		dbCheck = sub{Err: "db.DB(): " + err.Error()}
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbCheck = sub{Err: "ping: " + err.Error()}
	}

	checks := map[string]sub{"database": dbCheck}
	degraded := []string{}
	for name, b := range h.breakers {
		st := b.State()
		checks[name] = sub{OK: st != "open", State: st}
		if st == "open" {
			degraded = append(degraded, name)
		}
	}
	sort.Strings(degraded)

	status := http.StatusOK
	if !dbCheck.OK {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, map[string]any{
		"status":     map[string]any{"ok": dbCheck.OK, "degraded": degraded},
		"uptime_sec": int(time.Since(appStart).Seconds()),
		"checks":     checks,
		"time":       time.Now().Format(time.RFC3339),
	})
}
