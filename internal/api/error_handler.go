package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/usermanagement/user-api/internal/api/handler"
	"github.com/usermanagement/user-api/internal/core/domain"
)

const genericErrorMessage = "an unexpected error occurred"

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders *domain.AppError with its own code, status and details.
//   - Maps repository sentinels and Echo's own errors to the matching code.
//   - Logs unexpected errors internally without leaking details to the client.
//
// Every response uses the envelope {"success":false,"error":{...}}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, handler.ErrorResponse{Error: body})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorBody) {
	if appErr, ok := domain.AsAppError(err); ok {
		if appErr.Cause != nil {
			log.Debug().Err(appErr.Cause).Str("code", string(appErr.Code)).Str("path", c.Path()).Msg("request rejected")
		}
		return appErr.HTTPStatus, handler.ErrorBody{Code: appErr.Code, Message: appErr.Message, Details: appErr.Details}
	}

	// Echo's own errors (unknown route, wrong method, body too large, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		return he.Code, handler.ErrorBody{Code: codeForStatus(he.Code), Message: fmt.Sprint(he.Message)}
	}

	// Sentinels that escaped a service without being classified.
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, handler.ErrorBody{Code: domain.CodeNotFound, Message: "user not found"}
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, handler.ErrorBody{Code: domain.CodeConflict, Message: "email is already registered"}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorBody{Code: domain.CodeInternal, Message: genericErrorMessage}
}

func codeForStatus(status int) domain.ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return domain.CodeValidation
	case http.StatusUnauthorized:
		return domain.CodeUnauthorized
	case http.StatusForbidden:
		return domain.CodeForbidden
	case http.StatusNotFound:
		return domain.CodeNotFound
	case http.StatusConflict:
		return domain.CodeConflict
	}
	if text := http.StatusText(status); text != "" && status < http.StatusInternalServerError {
		return domain.ErrorCode(strings.ToUpper(strings.ReplaceAll(text, " ", "_")))
	}
	return domain.CodeInternal
}
