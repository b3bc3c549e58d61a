package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"scriptdna/internal/logging"
	"scriptdna/internal/pipeline"
	"scriptdna/internal/services"
	"scriptdna/internal/stages"
)

var errSessionNotFound = errors.New("session not found")

// statusFor maps an error onto an HTTP status code.
func statusFor(err error) int {
	if errors.Is(err, errSessionNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, pipeline.ErrDiscarded) {
		return http.StatusConflict
	}
	switch services.Classify(err) {
	case services.KindPrerequisite, services.KindBusy:
		return http.StatusConflict
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindConfiguration:
		return http.StatusServiceUnavailable
	case services.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// messageFor returns the text shown to clients. Stage failures expose only
// their one-line message, never the wrapped provider error.
func messageFor(err error) string {
	var stageErr *stages.StageError
	if errors.As(err, &stageErr) {
		return stageErr.Error()
	}
	return err.Error()
}

func (s *Server) writeError(c echo.Context, err error) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(s.logger, "request failed", "api_request_failed",
			logging.String("path", c.Path()),
			logging.String("session", c.Param("id")),
			logging.Int("status", status),
			logging.Error(err),
		)
	}
	return c.JSON(status, ErrorResponse{
		Error:     messageFor(err),
		Kind:      services.Classify(err),
		Retryable: services.Retryable(err),
	})
}

func (s *Server) handleEchoError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if text, ok := httpErr.Message.(string); ok {
			message = text
		}
		_ = c.JSON(httpErr.Code, ErrorResponse{Error: message, Kind: "http"})
		return
	}
	_ = s.writeError(c, err)
}
