package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/notes/internal/logging"
	"github.com/Skotchmaster/notes/internal/service"
)

type ErrorResponse struct {
	Title      string              `json:"title"`
	StatusCode int                 `json:"statusCode"`
	Details    string              `json:"details"`
	Errors     map[string][]string `json:"errors"`
}

// HTTPErrorHandler renders every handler error as an ErrorResponse.
// Validation failures become 422, missing resources 404 and anything the
// handlers did not classify 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	resp := toErrorResponse(err)
	if resp.StatusCode >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("unhandled error", "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(resp.StatusCode)
	} else {
		werr = c.JSON(resp.StatusCode, resp)
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("write error response", "error", werr)
	}
}

func toErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Errors: map[string][]string{}}

	var he *echo.HTTPError
	switch {
	case errors.Is(err, service.ErrValidation):
		resp.Title = "Validation Failure"
		resp.StatusCode = http.StatusUnprocessableEntity
		resp.Details = "One or more validation errors occurred"
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			resp.Errors = fieldErrors(verrs)
		}
	case errors.Is(err, service.ErrNotFound):
		resp.Title = "Not Found"
		resp.StatusCode = http.StatusNotFound
		resp.Details = "The requested resource was not found"
	case errors.As(err, &he):
		resp.Title = http.StatusText(he.Code)
		resp.StatusCode = he.Code
		resp.Details = fmt.Sprint(he.Message)
	default:
		resp.Title = "Server Error"
		resp.StatusCode = http.StatusInternalServerError
		resp.Details = "An unexpected error occurred"
	}
	return resp
}

func fieldErrors(verrs validation.Errors) map[string][]string {
	out := make(map[string][]string, len(verrs))
	for field, err := range verrs {
		if err != nil {
			out[field] = append(out[field], err.Error())
		}
	}
	return out
}

func validationError(field string, err error) error {
	return fmt.Errorf("%w: %w", service.ErrValidation, validation.Errors{field: err})
}
