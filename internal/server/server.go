package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paolopast/LangNerd/config"
	"github.com/paolopast/LangNerd/internal/export"
	"github.com/paolopast/LangNerd/internal/llm"
	"github.com/paolopast/LangNerd/internal/pipeline"
	"github.com/paolopast/LangNerd/tools/web_search"
)

// Run wires the whole service and blocks serving HTTP.
func Run(cfg *config.Config) error {
	if err := cfg.LLM.Validate(); err != nil {
		return err
	}
	if err := cfg.Search.Validate(); err != nil {
		return err
	}
	if err := cfg.Export.Validate(); err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(os.Stdout, "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	orch, err := buildOrchestrator(cfg)
	if err != nil {
		return err
	}

	gh := &GuidesHandler{
		Pipeline: orch,
		Timeout:  cfg.General.MaxProcessingTime,
		Logger:   log.New(os.Stdout, "[API] ", log.LstdFlags),
	}
	gh.Register(e.Group("/api"))

	dh := &DocumentsHandler{Dir: cfg.Export.OutputDir}
	dh.Register(e.Group(publicPath(cfg)))

	addr := cfg.Server.Address
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// buildOrchestrator assembles the pipeline from configuration.
func buildOrchestrator(cfg *config.Config) (*pipeline.Orchestrator, error) {
	searcher, err := web_search.NewWebSearcher(web_search.Provider(cfg.Search.Provider), cfg.Search.APIKey)
	if err != nil {
		return nil, fmt.Errorf("search provider: %w", err)
	}
	limited := web_search.NewLimited(searcher, cfg.Search.RatePerSecond, cfg.Search.RateBurst)

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}

	// Document URLs are built from the externally reachable base URL, when
	// one is configured, plus the public fetch path.
	exporter, err := export.NewExporter(cfg.Export.OutputDir, strings.TrimSuffix(cfg.Server.BaseURL, "/")+publicPath(cfg))
	if err != nil {
		return nil, err
	}

	planner := pipeline.NewPlanner(cfg.Search, cfg.General.DefaultLanguage)
	searchLogger := log.New(os.Stdout, "[SEARCH] ", log.LstdFlags)
	genLogger := log.New(os.Stdout, "[GEN] ", log.LstdFlags)
	orchLogger := log.New(os.Stdout, "[ORCH] ", log.LstdFlags)

	aggregator := pipeline.NewAggregator(limited, cfg.Search, searchLogger)
	answers := pipeline.NewAnswerGenerator(provider, genLogger)
	guides := pipeline.NewGuideGenerator(provider, genLogger)

	return pipeline.NewOrchestrator(planner, aggregator, answers, guides, exporter, orchLogger), nil
}

func publicPath(cfg *config.Config) string {
	p := cfg.Export.PublicPath
	if p == "" {
		p = "/generated"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimSuffix(p, "/")
}
