package errors

import (
	"net/http"

	"github.com/snapfield/sf-order/pkg/status"
)

// AppError carries the HTTP status and application status code alongside the
// message, so handlers can destructure one error value into a response
// envelope.
type AppError struct {
	HTTPStatusCode int
	Status         string
	Message        string
}

func (e *AppError) Error() string {
	return e.Message
}

func New(httpStatusCode int, appStatus string, message string) error {
	return &AppError{
		HTTPStatusCode: httpStatusCode,
		Status:         appStatus,
		Message:        message,
	}
}

// Destruct resolves any error into an AppError. Errors raised outside this
// package are treated as internal.
func Destruct(err error) AppError {
	if ae, ok := err.(*AppError); ok {
		return *ae
	}

	return AppError{
		HTTPStatusCode: http.StatusInternalServerError,
		Status:         status.INTERNAL_SERVER_ERROR,
		Message:        err.Error(),
	}
}
