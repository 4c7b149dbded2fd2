package response

import (
	"errors"
	"net/http"

	"github.com/alimikegami/point-of-sales/payment-bridge/pkg/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
}

type ErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Errors  interface{} `json:"errors"`
}

func WriteSuccessResponse(c echo.Context, message string, data interface{}) error {
	resp := SuccessResponse{}
	resp.Status = "success"
	resp.Data = data
	resp.Message = message

	return c.JSON(http.StatusOK, resp)
}

// WriteErrorResponse renders err with the status and message of the registered error it
// wraps. Anything unregistered is reported as an internal server error.
func WriteErrorResponse(c echo.Context, err error, errors interface{}) error {
	target, statusCode := errs.Lookup(err)
	resp := ErrorResponse{}
	resp.Status = "error"
	resp.Message = target.Error()
	resp.Errors = errors

	return c.JSON(statusCode, resp)
}

// ValidationErrors lists the failed fields of a validator error wrapped in err.
func ValidationErrors(err error) []ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	result := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		result = append(result, ValidationError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
		})
	}

	return result
}

// HTTPErrorHandler renders errors returned by handlers and middleware in the same
// envelope as WriteErrorResponse.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			message = m
		}
		c.JSON(he.Code, ErrorResponse{Status: "error", Message: message})
		return
	}

	WriteErrorResponse(c, err, nil)
}
