package http

import (
	"errors"
	"net/http"

	"agri-credit-engine/internal/domain/apperr"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Map domain errors → HTTP codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrInsufficientFunds),
		errors.Is(err, apperr.ErrThreshold):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrStateConflict),
		errors.Is(err, apperr.ErrConcurrentUpdate):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c echo.Context, log *zap.Logger, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
		msg = "internal error"
	}
	return c.JSON(status, ErrorResponse{Error: msg, Code: apperr.Kind(err)})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: "bad_request"})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Code:    apperr.Kind(apperr.ErrValidation),
		Details: ToFieldErrors(err),
	})
}

// bindAndValidate binds the request body into req and runs the registered
// validator. It writes the error response itself and reports whether the
// handler should go on.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, badRequest(c, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}
