package middleware

import (
	"errors"
	"net/http"
	"strings"

	"techshop/pkg/logger"
	jsonres "techshop/pkg/response"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// ErrorHandler renders errors that escape handlers in the shared envelope.
// Anything that is not an *echo.HTTPError is a 500 and only its log line
// carries the detail.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(status)
		}
	} else {
		logger.Error("unhandled error", "path", c.Path(), "error", err)
	}

	code := strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, jsonres.Error(code, message, nil))
	}
	if err != nil {
		logger.Error("failed to write error response", err)
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger() echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
				"remote_ip", v.RemoteIP,
			}
			if v.RequestID != "" {
				args = append(args, "request_id", v.RequestID)
			}
			if v.Error != nil {
				args = append(args, "error", v.Error.Error())
				logger.Warn("request", args...)
				return nil
			}
			logger.Info("request", args...)
			return nil
		},
	})
}
