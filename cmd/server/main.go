package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"agriyield/config"
	"agriyield/database"
	"agriyield/router"

	"agriyield/pkg/ai"
	"agriyield/pkg/climate"
	"agriyield/pkg/httpx"
	"agriyield/pkg/logger"
	"agriyield/pkg/session"

	// Auth + Health
	authCtrlImp "agriyield/pkg/auth/controllerImp"
	healthCtrlImp "agriyield/pkg/health/controllerImp"

	// Weather
	weatherCtrlImp "agriyield/pkg/weather/controllerImp"
	weatherProvider "agriyield/pkg/weather/providerImp"
	weatherSvcImp "agriyield/pkg/weather/serviceImp"

	// History + Analytics
	analyticsCtrlImp "agriyield/pkg/analytics/controllerImp"
	historyCtrlImp "agriyield/pkg/history/controllerImp"
	historyRepoImp "agriyield/pkg/history/repositoryImp"
	historySvcImp "agriyield/pkg/history/serviceImp"

	// KB
	kbCtrlImp "agriyield/pkg/kb/controllerImp"
	kbEmbedder "agriyield/pkg/kb/embedder"
	kbRepoImp "agriyield/pkg/kb/repositoryImp"
	kbSvcImp "agriyield/pkg/kb/serviceImp"

	// Prediction
	predCtrlImp "agriyield/pkg/prediction/controllerImp"
	predSvcImp "agriyield/pkg/prediction/serviceImp"
)

const userAgent = "AgriYield/1.0"

func main() {
	// 1) Config + logging
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	if err := logger.Setup(zl); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	logger.InfoF("[cfg] %s", cfg)

	// 2) DB (sqlite) + automigrate
	db, err := database.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.ErrorF("[db] open %s: %v", cfg.DBPath, err)
		os.Exit(1)
	}

	// 3) Alert rules: env thresholds, optionally overlaid by a CSV/XLSX file
	th := climate.Thresholds{
		FrostC:        cfg.FrostThresholdC,
		HeatwaveC:     cfg.HeatwaveThresholdC,
		StormKeywords: cfg.StormKeywords,
	}
	if cfg.AlertRulesFile != "" {
		loaded, err := climate.LoadThresholds(cfg.AlertRulesFile, th)
		if err != nil {
			logger.WarnF("[rules] %s: %v, using env thresholds", cfg.AlertRulesFile, err)
		} else {
			th = loaded
		}
	}
	engine := climate.NewEngine(th)

	// 4) Upstream clients, one breaker each
	weatherHTTP := httpx.New(&http.Client{Timeout: 10 * time.Second}, "weather", userAgent)
	llmHTTP := httpx.New(&http.Client{Timeout: 60 * time.Second}, "llm", userAgent)
	kbHTTP := httpx.New(&http.Client{Timeout: 15 * time.Second}, "kb", userAgent)

	// 5) Weather: OpenWeatherMap -> rate limit -> cache
	owm := weatherProvider.NewOpenWeatherMap(cfg.WeatherAPIKey, cfg.WeatherBaseURL, weatherHTTP)
	limited := weatherProvider.NewRateLimited(owm, cfg.WeatherRPS, cfg.WeatherBurst)
	cached := weatherProvider.NewCached(limited, cfg.WeatherCacheTTL)
	weatherSvc := weatherSvcImp.NewWeatherService(cached)
	if cfg.WeatherAPIKey == "" {
		logger.Warn("[weather] OPENWEATHER_API_KEY is empty; location lookups will fail")
	}

	// 6) Structured generation (mock fallback)
	var gen ai.Generator
	switch {
	case !cfg.LLMConfigured():
		if cfg.LLMProvider != ai.ProviderMock {
			logger.WarnF("[ai] %s needs LLM_API_KEY (and LLM_ENDPOINT, LLM_MODEL for openai); using mock", cfg.LLMProvider)
		}
		gen = ai.NewMock()
	case cfg.LLMProvider == ai.ProviderOpenAI:
		gen = ai.NewOpenAI(cfg.LLMEndpoint, cfg.LLMAPIKey, cfg.LLMModel, llmHTTP)
	default:
		gen = ai.NewGemini(cfg.LLMEndpoint, cfg.LLMAPIKey, cfg.LLMModel, llmHTTP)
	}
	logger.InfoF("[ai] using %s", gen.Name())

	// 7) KB (nil embedder means keyword search)
	emb := kbEmbedder.New(cfg.EmbEndpoint, cfg.EmbAPIKey, cfg.EmbModel, kbHTTP)
	kbSvc := kbSvcImp.New(kbRepoImp.New(db), emb, kbSvcImp.Options{
		AllowedDomains:  cfg.KBAllowedDomains,
		MaxBytesPerPage: int64(cfg.KBMaxBytesPage),
		Client:          kbHTTP,
	})

	// 8) History, sessions, prediction
	historySvc := historySvcImp.NewHistoryService(historyRepoImp.NewSQLite(db))
	sessions := session.NewStore()
	predSvc := predSvcImp.NewPredictionService(predSvcImp.Deps{
		Generator:  gen,
		History:    historySvc,
		Weather:    weatherSvc,
		References: kbSvc,
	})

	// 9) Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			logger.DebugF("[http] %s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	if _, err := os.Stat("static/index.html"); err == nil {
		e.Static("/static", "static")
		e.File("/", "static/index.html")
	}

	r := router.New(e, router.Controllers{
		Auth:       authCtrlImp.NewAuthController(),
		Weather:    weatherCtrlImp.NewWeatherController(weatherSvc, engine, sessions),
		Prediction: predCtrlImp.NewPredictionController(predSvc, sessions),
		History:    historyCtrlImp.NewHistoryController(historySvc),
		Analytics:  analyticsCtrlImp.New(historySvc),
		KB:         kbCtrlImp.New(kbSvc),
		Health: healthCtrlImp.NewHealthCtrl(db, map[string]healthCtrlImp.Breaker{
			"weather": weatherHTTP,
			"llm":     llmHTTP,
			"kb":      kbHTTP,
		}),
	})

	// 10) Start
	logger.InfoF("listening on :%s", cfg.Port)
	if err := r.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		logger.ErrorF("server: %v", err)
		os.Exit(1)
	}
}
