package v1

import (
	"errors"
	"net/http"

	"github.com/pocketledger/backend/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"there is no Category matching your query"`
}

// status returns the appropriate status for a database error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	return http.StatusBadRequest
}

var (
	errMonthNotSetInQuery = errors.New("the month query parameter must be set")
	errDaysOutOfRange     = errors.New("the days query parameter must be between 1 and 90")
)

// Recurrence errors
var errStartDateImmutable = errors.New("the start date of a recurrence cannot be changed")
