package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/RonaldoMorales/perla-metro-tickets-service/entity"
	"github.com/RonaldoMorales/perla-metro-tickets-service/pkg/log"
)

type errorResponse struct {
	Message string `json:"message"`
}

// errorHandler maps domain errors to status codes. Anything outside the
// taxonomy is logged with full detail and reported as an opaque 500.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpError *echo.HTTPError
	if errors.As(err, &httpError) {
		// bind/route errors raised by echo itself
		_ = c.JSON(httpError.Code, errorResponse{Message: http.StatusText(httpError.Code)})
		return
	}

	switch {
	case errors.Is(err, entity.ErrValidation):
		_ = c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	case errors.Is(err, entity.ErrConflict):
		_ = c.JSON(http.StatusConflict, errorResponse{Message: err.Error()})
	case errors.Is(err, entity.ErrNotFound):
		_ = c.JSON(http.StatusNotFound, errorResponse{Message: err.Error()})
	default:
		log.FromContext(c.Request().Context()).WithError(err).Error("unhandled error in HTTP handler")
		_ = c.JSON(http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}
