package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-analyzer/internal/logger"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewApp builds the fiber application with middleware and routes.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "statement-analyzer",
		BodyLimit:             h.bodyLimit(),
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(h.Logger),
	})

	origins := corsOrigins(h.Config.AllowedOrigins)
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(requestLogger(h.Logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: origins != "*",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
	}))

	h.RegisterRoutes(app)
	return app
}

// corsOrigins joins the configured origins for the cors middleware. A
// wildcard anywhere in the list, or an empty list, allows every origin and
// then credentials must stay disabled.
func corsOrigins(origins []string) string {
	list := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			return "*"
		}
		if o != "" {
			list = append(list, o)
		}
	}
	if len(list) == 0 {
		return "*"
	}
	return strings.Join(list, ",")
}

// Serve runs app on addr until ctx is cancelled, then shuts it down.
func Serve(ctx context.Context, app *fiber.App, addr string, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting API server")
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	return app.ShutdownWithTimeout(30 * time.Second)
}

// requestLogger logs one line per request and hands a request-scoped
// logger to the handlers through the user context.
func requestLogger(base zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqLog := logger.WithFields(base, map[string]interface{}{
			"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
		})
		c.SetUserContext(logger.WithContext(c.UserContext(), reqLog))

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		reqLog.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("remote_addr", c.IP()).
			Msg("HTTP request")
		return err
	}
}

func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else {
			log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
		}
		return c.Status(code).JSON(ErrorResponse{Error: msg})
	}
}
