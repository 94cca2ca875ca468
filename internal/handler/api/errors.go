package api

import (
	"context"
	"errors"

	"StockDash/internal/domain/models"
	"StockDash/internal/usecase"
	xhttp "StockDash/pkg/http"
)

// ToAppError maps use case errors onto HTTP errors. Anything unrecognised
// is a 500 that keeps the cause for logging but not for the client.
func ToAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, models.ErrUnknownView):
		return xhttp.NotFoundError("view not found").WithError(err)
	case errors.Is(err, usecase.ErrNoChart):
		return xhttp.NotFoundError("this view has no chart").WithError(err)
	case errors.Is(err, usecase.ErrUnknownMonth):
		return xhttp.BadRequestError("month not present in the data").WithField("month").WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.TimeoutError("query timed out").WithError(err)
	default:
		return xhttp.InternalError("failed to load data").WithError(err)
	}
}
