// Package collector is a local stand-in for the Measurement Protocol
// endpoint. It accepts hits the way the real service does, validates them,
// and keeps the recent ones in memory so they can be inspected.
package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/elex-project/dokkaebi/pkg/protocol"
)

// maxBody is the largest payload the destination accepts for a single hit.
const maxBody = 8 << 10

type Server struct {
	e       *echo.Echo
	store   *Store
	logger  *slog.Logger
	observe func(StoredHit)
}

type Option func(*Server)

// WithStore sets where received hits are kept.
func WithStore(store *Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithObserver registers a callback invoked for every recorded hit.
func WithObserver(observe func(StoredHit)) Option {
	return func(s *Server) {
		s.observe = observe
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("200K"))

	s := &Server{
		e:      e,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = NewStore(DefaultTTL)
	}

	// Record a hit
	e.GET("/collect", s.collect)
	e.POST("/collect", s.collect)
	// Record several newline-separated hits
	e.POST("/batch", s.batch)
	// Validate a hit without recording it
	e.GET("/debug/collect", s.debugCollect)
	e.POST("/debug/collect", s.debugCollect)

	// Inspect and reset what was received
	e.GET("/hits", s.listHits)
	e.DELETE("/hits", s.clearHits)

	// Health check endpoint
	e.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return s
}

// Handler returns the collector's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.e
}

// Store returns where received hits are kept.
func (s *Server) Store() *Store {
	return s.store
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})
	defer stop()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Failed to start collector", "error", err)
		return err
	}

	return nil
}

// The destination always answers 200 to collection requests, whatever their
// content. Problems only surface through the debug endpoint.
func (s *Server) collect(c echo.Context) error {
	payload, err := readPayload(c)
	if err != nil {
		s.logger.Warn("Failed to read hit", "error", err)
		return c.NoContent(http.StatusOK)
	}
	s.record(c, payload)
	return c.NoContent(http.StatusOK)
}

func (s *Server) batch(c echo.Context) error {
	payload, err := readPayload(c)
	if err != nil {
		s.logger.Warn("Failed to read batch", "error", err)
		return c.NoContent(http.StatusOK)
	}
	for line := range strings.Lines(payload) {
		if line = strings.TrimSpace(line); line != "" {
			s.record(c, line)
		}
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) record(c echo.Context, payload string) {
	if len(payload) > maxBody {
		s.logger.Warn("Dropping oversized hit", "size", len(payload))
		return
	}

	hit, err := protocol.Decode(payload)
	if err != nil {
		s.logger.Warn("Dropping malformed hit", "error", err)
		return
	}

	problems := protocol.Validate(hit)
	if s.store.SeenCacheBuster(hit, true) {
		problems = append(problems, duplicateProblem(hit))
	}

	stored := s.store.Add(StoredHit{
		Received:  time.Now(),
		UserAgent: c.Request().UserAgent(),
		Hit:       hit,
		Problems:  problems,
	})

	s.logger.Debug("Hit received",
		"seq", stored.Seq,
		"hit_type", hit.Type(),
		"tracking_id", hit[protocol.FieldTrackingID],
		"valid", !protocol.HasErrors(problems),
	)
	for _, p := range problems {
		s.logger.Debug("Hit problem", "seq", stored.Seq, "problem", p.String())
	}

	if s.observe != nil {
		s.observe(stored)
	}
}

type parsingResult struct {
	Valid         bool               `json:"valid"`
	Hit           string             `json:"hit"`
	ParserMessage []protocol.Problem `json:"parserMessage"`
}

type debugResponse struct {
	HitParsingResult []parsingResult   `json:"hitParsingResult"`
	ParserMessage    []protocol.Problem `json:"parserMessage"`
}

func (s *Server) debugCollect(c echo.Context) error {
	payload, err := readPayload(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result := parsingResult{
		Hit:           c.Request().URL.Path + "?" + payload,
		ParserMessage: []protocol.Problem{},
	}

	hit, err := protocol.Decode(payload)
	if err != nil {
		result.ParserMessage = append(result.ParserMessage, protocol.Problem{
			Severity:    protocol.SeverityError,
			Description: err.Error(),
		})
	} else {
		result.ParserMessage = append(result.ParserMessage, protocol.Validate(hit)...)
		if s.store.SeenCacheBuster(hit, false) {
			result.ParserMessage = append(result.ParserMessage, duplicateProblem(hit))
		}
	}
	if len(payload) > maxBody {
		result.ParserMessage = append(result.ParserMessage, protocol.Problem{
			Severity:    protocol.SeverityError,
			Description: fmt.Sprintf("The hit payload exceeds %d bytes.", maxBody),
		})
	}
	result.Valid = !protocol.HasErrors(result.ParserMessage)

	return c.JSON(http.StatusOK, debugResponse{
		HitParsingResult: []parsingResult{result},
		ParserMessage: []protocol.Problem{{
			Severity:    protocol.SeverityInfo,
			Description: "Found 1 hit in the request.",
		}},
	})
}

func (s *Server) listHits(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.List())
}

func (s *Server) clearHits(c echo.Context) error {
	s.store.Clear()
	return c.NoContent(http.StatusNoContent)
}

// readPayload returns the hit parameters from the body of a POST or the query
// string of a GET.
func readPayload(c echo.Context) (string, error) {
	req := c.Request()
	if req.Method == http.MethodGet {
		return req.URL.RawQuery, nil
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return "", fmt.Errorf("reading request body: %w", err)
	}
	return string(body), nil
}

func duplicateProblem(h protocol.Hit) protocol.Problem {
	return protocol.Problem{
		Severity:    protocol.SeverityWarn,
		Parameter:   protocol.FieldCacheBuster,
		Description: fmt.Sprintf("The cache buster %s was already used by this client.", url.QueryEscape(h[protocol.FieldCacheBuster])),
	}
}
