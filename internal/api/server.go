package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/zflorman/Hillpulse-v3/internal/ingest"
)

type Server struct {
	pipeline *ingest.Pipeline
	secret   string
	echo     *echo.Echo
	logger   *slog.Logger
}

func NewServer(pipeline *ingest.Pipeline, secret string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	server := &Server{
		pipeline: pipeline,
		secret:   secret,
		echo:     e,
		logger:   logger,
	}
	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.POST("/ingest", s.handleIngest, s.requireSecret)
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying mux for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// requireSecret enforces the shared ingestion secret when one is configured.
// The secret may arrive either raw in X-HillPulse-Key or Bearer-prefixed in
// Authorization.
func (s *Server) requireSecret(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.secret == "" {
			return next(c)
		}
		presented := c.Request().Header.Get("X-HillPulse-Key")
		if presented == "" {
			presented = strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		}
		if presented != s.secret {
			return c.JSON(http.StatusUnauthorized, ingestResponse{OK: false, Error: "Unauthorized"})
		}
		return next(c)
	}
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.String(http.StatusOK, "HillPulse relay is running")
}

type tweetPayload struct {
	TweetID string `json:"tweet_id"`
	ID      string `json:"id"`
	URL     string `json:"url"`
	Author  string `json:"author"`
	Text    string `json:"text"`
}

type ingestPayload struct {
	Data *tweetPayload `json:"data"`
	// Tweet is the legacy field name still used by older webhook senders.
	Tweet *tweetPayload `json:"tweet"`
}

type ingestResponse struct {
	OK        bool   `json:"ok"`
	Duplicate bool   `json:"duplicate"`
	Filtered  bool   `json:"filtered,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Pushed    *bool  `json:"pushed,omitempty"`
	Emailed   *bool  `json:"emailed,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (s *Server) handleIngest(c echo.Context) error {
	var payload ingestPayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, ingestResponse{OK: false, Error: "invalid JSON payload"})
	}

	data := payload.Data
	if data == nil {
		data = payload.Tweet
	}
	if data == nil {
		return c.JSON(http.StatusBadRequest, ingestResponse{OK: false, Error: "missing data payload"})
	}

	tweetID := data.TweetID
	if tweetID == "" {
		tweetID = data.ID
	}

	result, err := s.pipeline.Process(c.Request().Context(), ingest.Request{
		TweetID: tweetID,
		URL:     data.URL,
		Author:  data.Author,
		Text:    data.Text,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	if result.Duplicate {
		return c.JSON(http.StatusOK, ingestResponse{OK: true, Duplicate: true})
	}
	if result.Filtered {
		return c.JSON(http.StatusOK, ingestResponse{OK: true, Filtered: true})
	}
	return c.JSON(http.StatusOK, ingestResponse{
		OK:      true,
		Summary: result.Summary,
		Pushed:  &result.Pushed,
		Emailed: &result.Emailed,
	})
}

func (s *Server) respondError(c echo.Context, err error) error {
	var validationErr *ingest.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, ingestResponse{OK: false, Error: validationErr.Error()})
	}
	var configErr *ingest.ConfigurationError
	if errors.As(err, &configErr) {
		return c.JSON(http.StatusInternalServerError, ingestResponse{OK: false, Error: configErr.Error()})
	}
	var upstreamErr *ingest.UpstreamError
	if errors.As(err, &upstreamErr) {
		return c.JSON(http.StatusInternalServerError, ingestResponse{OK: false, Error: upstreamErr.Error()})
	}
	s.logger.Error("unexpected ingest failure", "error", err)
	return c.JSON(http.StatusInternalServerError, ingestResponse{OK: false, Error: "internal error"})
}
