package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ibchat/game-scout-sub001/internal/db"
	"github.com/ibchat/game-scout-sub001/internal/emerging"
	"github.com/ibchat/game-scout-sub001/internal/globaltime"
	"github.com/ibchat/game-scout-sub001/internal/heartbeat"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	pool     *db.Pool
	emerging *emerging.Service
	monitor  *heartbeat.Monitor
	logger   zerolog.Logger
	opts     Options
}

// NewServer wires the read-only API. monitor may be nil when no redis is
// configured; the liveness endpoint then reports every worker as unknown.
func NewServer(pool *db.Pool, emergingSvc *emerging.Service, monitor *heartbeat.Monitor, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8090
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &Server{
		pool:     pool,
		emerging: emergingSvc,
		monitor:  monitor,
		logger:   logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.buildEcho()

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("gamescout api started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("gamescout api stopped")
	return nil
}

func (s *Server) buildEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/emerging", s.handleEmerging)
	api.GET("/events", s.handleEvents)
	api.GET("/apps/:steam_app_id/aliases", s.handleAppAliases)
	api.GET("/workers/:worker/liveness", s.handleWorkerLiveness)

	return e
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"service": "gamescout",
		"time":    globaltime.UTC(),
	})
}

func (s *Server) handleEmerging(c echo.Context) error {
	limit, err := parsePositiveInt(c.QueryParam("limit"), 0, 0, 10000)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}
	passedOnly := strings.EqualFold(c.QueryParam("passed_only"), "true")

	result, err := s.emerging.ScanAll(c.Request().Context(), limit, passedOnly)
	if err != nil {
		s.logger.Error().Err(err).Msg("emerging scan failed")
		return internalError(c, "Failed to compute emerging reports")
	}

	return success(c, map[string]any{
		"apps_scanned": result.AppsScanned,
		"emerging":     result.Emerging,
		"items":        result.Reports,
	})
}

func (s *Server) handleEvents(c echo.Context) error {
	limit, err := parsePositiveInt(c.QueryParam("limit"), defaultListLimit, 1, maxListLimit)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}
	matchedOnly := strings.EqualFold(c.QueryParam("matched_only"), "true")

	events, err := s.pool.ListEvents(c.Request().Context(), matchedOnly, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("query events failed")
		return internalError(c, "Failed to load events")
	}

	return success(c, map[string]any{
		"items": events,
		"limit": limit,
	})
}

func (s *Server) handleAppAliases(c echo.Context) error {
	steamAppID, err := strconv.ParseInt(c.Param("steam_app_id"), 10, 64)
	if err != nil || steamAppID <= 0 {
		return failValidation(c, map[string]string{"steam_app_id": "must be a positive integer"})
	}

	aliases, err := s.pool.ListAppAliases(c.Request().Context(), steamAppID)
	if err != nil {
		s.logger.Error().Err(err).Int64("steam_app_id", steamAppID).Msg("query app aliases failed")
		return internalError(c, "Failed to load aliases")
	}

	return success(c, map[string]any{
		"steam_app_id": steamAppID,
		"items":        aliases,
	})
}

func (s *Server) handleWorkerLiveness(c echo.Context) error {
	worker := strings.TrimSpace(c.Param("worker"))
	if worker == "" {
		return failValidation(c, map[string]string{"worker": "must not be empty"})
	}

	status := heartbeat.StatusUnknown
	if s.monitor != nil {
		status = s.monitor.CheckLiveness(c.Request().Context(), worker)
	}

	return success(c, map[string]any{
		"worker": worker,
		"status": status,
	})
}

func parsePositiveInt(raw string, fallback, min, max int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if value < min || value > max {
		return 0, fmt.Errorf("must be between %d and %d", min, max)
	}
	return value, nil
}
