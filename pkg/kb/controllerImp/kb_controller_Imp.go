package controllerImp

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"agriyield/pkg/kb/controller"
	"agriyield/pkg/kb/service"
	"agriyield/pkg/logger"
)

type KBCtrl struct{ s service.KBService }

func New(s service.KBService) controller.KBController { return &KBCtrl{s: s} }

type ingestReq struct {
	Title     string  `json:"title"`
	Tags      string  `json:"tags"`
	Text      string  `json:"text"`
	SourceURL *string `json:"source_url"`
}

func (h *KBCtrl) IngestText(c echo.Context) error {
	var req ingestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad json"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title is required"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "text is required"})
	}
	src := ""
	if req.SourceURL != nil {
		src = *req.SourceURL
	}
	doc, n, err := h.s.Ingest(c.Request().Context(), service.IngestInput{Title: req.Title, Tags: req.Tags, Text: req.Text, SourceURL: src})
	if err != nil {
		logger.ErrorF("[kb] ingest %q: %v", req.Title, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "ingest failed"})
	}
	return c.JSON(http.StatusCreated, map[string]any{"doc": doc, "chunks": n})
}

func (h *KBCtrl) IngestURL(c echo.Context) error {
	var body struct {
		URL   string `json:"url"`
		Title string `json:"title"`
		Tags  string `json:"tags"`
	}
	if err := c.Bind(&body); err != nil || strings.TrimSpace(body.URL) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "url required"})
	}
	doc, n, err := h.s.IngestURL(c.Request().Context(), body.URL, body.Title, body.Tags)
	switch {
	case errors.Is(err, service.ErrDomainNotAllowed):
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrPageTooLarge), errors.Is(err, service.ErrUnsupportedType):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case err != nil:
		logger.WarnF("[kb] ingest url %s: %v", body.URL, err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, map[string]any{"doc": doc, "chunks": n})
}

func (h *KBCtrl) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "q required"})
	}
	k := 6
	if v, err := strconv.Atoi(c.QueryParam("k")); err == nil && v > 0 && v <= 50 {
		k = v
	}
	hits, err := h.s.Search(c.Request().Context(), q, k)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if hits == nil {
		return c.JSON(http.StatusOK, []any{})
	}
	return c.JSON(http.StatusOK, hits)
}
