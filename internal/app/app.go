// Package app contains the web front-end.
package app

import (
	"embed"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/stolasapp/janua/internal/config"
	"github.com/stolasapp/janua/internal/sec"
	"github.com/stolasapp/janua/internal/storage"
)

//go:embed static
var staticFiles embed.FS

// New creates a web front-end server.
func New(cfg *config.Config, logger *slog.Logger, users storage.Users) *echo.Echo {
	srv := echo.New()

	srv.HideBanner = true
	srv.HidePort = true
	srv.Logger.SetLevel(log.OFF)
	srv.Renderer = newRenderer()

	if cfg.DevMode {
		srv.Debug = true
		srv.Use(logRequests(logger))
	}

	srv.Use(
		middleware.Recover(),
		middleware.Decompress(),
		middleware.Gzip(),
		middleware.Secure(),
		middleware.RequestID(),
	)

	h := handler{
		users:    users,
		sessions: sec.NewSessions(cfg.SecretKey),
	}
	srv.Use(h.resolveIdentity)
	h.register(srv)

	staticFS := echo.MustSubFS(staticFiles, "static")
	srv.StaticFS("/static/", staticFS)
	srv.FileFS("/robots.txt", "robots.txt", staticFS)
	return srv
}

func logRequests(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("uri", req.RequestURI),
				slog.String("route", c.Path()),
				slog.Duration("latency", latency),
				slog.Int("status", res.Status),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			logger.LogAttrs(
				req.Context(),
				slog.LevelDebug,
				"request handled",
				attrs...,
			)
			return err
		}
	}
}
