package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionInvalid       = errors.New("session is not valid")
	ErrTransport            = errors.New("transport failure")
	ErrRequestTimeout       = errors.New("request timed out")
	ErrMalformedResponse    = errors.New("malformed response")
	ErrSubmissionInProgress = errors.New("submission in progress")
	ErrNoSelection          = errors.New("no entity selected")
	ErrNoExportPayload      = errors.New("no export payload")
	ErrInvalidRange         = errors.New("invalid period range")
	ErrBasePeriodLocked     = errors.New("base period is not editable in this comparison mode")
	ErrUnknownReport        = errors.New("unknown report type")
	ErrInvalidScope         = errors.New("invalid space scope")
)

// APIError is a non-2xx backend answer. Description is a translation key such as
// "API.INVALID_REPORTING_PERIOD_START_DATETIME".
type APIError struct {
	StatusCode  int
	Title       string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Description)
}

// NotificationKey picks the translation key used to tell the user about err.
func NotificationKey(err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Description != "":
		return apiErr.Description
	case errors.Is(err, ErrRequestTimeout):
		return "ERR_REQUEST_TIMEOUT"
	case errors.Is(err, ErrMalformedResponse):
		return "ERR_MALFORMED_RESPONSE"
	case errors.Is(err, ErrTransport):
		return "ERR_NETWORK"
	case errors.Is(err, ErrSubmissionInProgress):
		return "ERR_SUBMISSION_IN_PROGRESS"
	case errors.Is(err, ErrNoSelection):
		return "ERR_NO_SELECTION"
	case errors.Is(err, ErrInvalidRange):
		return "ERR_INVALID_RANGE"
	case errors.Is(err, ErrBasePeriodLocked):
		return "ERR_BASE_PERIOD_LOCKED"
	case errors.Is(err, ErrInvalidScope):
		return "ERR_INVALID_SCOPE"
	case errors.Is(err, ErrNoExportPayload):
		return "ERR_NO_EXPORT_PAYLOAD"
	case errors.Is(err, ErrUnknownReport):
		return "ERR_UNKNOWN_REPORT"
	case errors.Is(err, ErrSessionInvalid):
		return "ERR_SESSION_INVALID"
	}
	return "ERR_UNKNOWN"
}
