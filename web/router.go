package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cozy-labs/cozy-pokedex/core"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server holds the listening options of the pokedex API.
type Server struct {
	Host     string
	Port     int
	CertFile string
	KeyFile  string

	Logger  *slog.Logger
	Service *core.Service
}

// ListenAndServe serves the pokedex API until the process receives SIGINT
// or SIGTERM, then lets the pending requests finish for up to a minute.
func (s *Server) ListenAndServe() error {
	e := Handler(s)
	log := s.Logger.With(slog.String("nspace", "http"))
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed := make(chan error, 1)
	go func() {
		var err error
		if s.CertFile != "" && s.KeyFile != "" {
			log.Info("Pokedex listening with TLS", slog.String("addr", addr))
			err = e.StartTLS(addr, s.CertFile, s.KeyFile)
		} else {
			log.Info("Pokedex listening", slog.String("addr", addr))
			err = e.Start(addr)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	select {
	case err := <-failed:
		log.Error("Cannot serve the pokedex", slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
		log.Info("Shutting down the pokedex")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// Handler returns the echo handler for HTTP requests.
func Handler(s *Server) *echo.Echo {
	log := s.Logger.With(slog.String("nspace", "http"))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			msg := string(stack)
			log.Error(msg, slog.Bool("panic", true))
			return nil
		},
	}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(core.WithRequestID(req.Context(), id)))
		},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("Request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("req_id", v.RequestID),
			)
			return nil
		},
		Skipper: func(c echo.Context) bool {
			path := c.Path()
			return path == "/status"
		},
	}))

	e.GET("/status", s.Status)
	e.HEAD("/status", s.Status)

	e.POST("/pokemon", s.CreatePokemon)
	e.GET("/pokemon", s.GetAllPokemons)
	e.GET("/pokemon/:term", s.GetPokemon)
	e.PATCH("/pokemon/:term", s.UpdatePokemon)
	e.DELETE("/pokemon/:id", s.DeletePokemon)

	return e
}

// Status responds with the status of the service:
// - 200 if everything if OK
// - 500 if the document store is not available
func (s *Server) Status(c echo.Context) error {
	err := s.Service.Ping(c.Request().Context())
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"status": "OK"})
	default:
		s.Logger.Warn("Cannot ping the document store",
			slog.String("nspace", "status"),
			slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "KO"})
	}
}

// errorResponse maps the errors of the service to HTTP responses.
func errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, core.ErrDuplicateEntity), errors.Is(err, core.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  kindOf(err),
			"reason": err.Error(),
		})
	case errors.Is(err, core.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error":  kindOf(err),
			"reason": err.Error(),
		})
	case errors.Is(err, core.ErrInternalFailure):
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":  kindOf(err),
			"reason": err.Error(),
		})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":  "internal_server_error",
			"reason": err.Error(),
		})
	}
}

func kindOf(err error) string {
	var svcErr *core.Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind.Error()
	}
	return "internal_server_error"
}

func badRequest(c echo.Context, reason string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"error":  "bad_request",
		"reason": reason,
	})
}
