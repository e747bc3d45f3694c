package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"regexp"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/paolopast/LangNerd/internal/pipeline"
)

// Pipeline is what the handlers need from the orchestrator.
type Pipeline interface {
	SubmitQuestion(ctx context.Context, req pipeline.Request) (pipeline.QAResult, error)
	SubmitGuideRequest(ctx context.Context, req pipeline.Request) (pipeline.GuideResult, error)
}

// GuidesHandler exposes the qa and guide operations.
type GuidesHandler struct {
	Pipeline Pipeline
	Timeout  time.Duration
	Logger   *log.Logger
}

func (h *GuidesHandler) Register(g *echo.Group) {
	g.POST("/qa", h.qa)
	g.POST("/guide", h.guide)
}

func (h *GuidesHandler) requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	ctx := c.Request().Context()
	if h.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, h.Timeout)
}

func (h *GuidesHandler) qa(c echo.Context) error {
	var payload QuestionPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	res, err := h.Pipeline.SubmitQuestion(ctx, pipeline.Request{
		Question: payload.Question,
		Game:     payload.Game,
		Focus:    payload.Focus,
		Language: payload.Language,
	})
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *GuidesHandler) guide(c echo.Context) error {
	var payload GuidePayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	res, err := h.Pipeline.SubmitGuideRequest(ctx, pipeline.Request{
		Game:     payload.Game,
		Focus:    payload.Focus,
		Extra:    payload.Extra,
		Language: payload.Language,
	})
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, res)
}

// mapError classifies pipeline failures onto HTTP statuses. Internal detail
// is logged, never surfaced.
func (h *GuidesHandler) mapError(err error) error {
	switch {
	case errors.Is(err, pipeline.ErrInvalidRequest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	// Timeouts beat the upstream classification: a generation call that
	// dies on the request deadline carries both in its chain.
	case errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusGatewayTimeout, "request timed out")
	case errors.Is(err, pipeline.ErrUpstreamUnavailable):
		if h.Logger != nil {
			h.Logger.Printf("upstream failure: %v", err)
		}
		return echo.NewHTTPError(http.StatusBadGateway, "reasoning backend unavailable")
	case errors.Is(err, pipeline.ErrGenerationFailed):
		if h.Logger != nil {
			h.Logger.Printf("generation failure: %v", err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not generate a response")
	default:
		if h.Logger != nil {
			h.Logger.Printf("unclassified failure: %v", err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// Exported names are slug_timestamp_uuid8.html; anything else (path
// separators, dots, traversal) is rejected outright.
var documentNameRe = regexp.MustCompile(`^[\p{L}\p{N}_]+\.html$`)

// DocumentsHandler serves previously exported documents by name. Read-only,
// no generation side effects.
type DocumentsHandler struct {
	Dir string
}

func (h *DocumentsHandler) Register(g *echo.Group) {
	g.GET("/:name", h.get)
}

func (h *DocumentsHandler) get(c echo.Context) error {
	name := c.Param("name")
	if !documentNameRe.MatchString(name) {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	return c.File(filepath.Join(h.Dir, name))
}
