package errors

const (
	HttpInternalError        = "internal_error"
	HttpInvalidRequestError  = "invalid_request"
	HttpInvalidRRuleError    = "invalid_rrule"
	HttpSeriesNotFoundError  = "series_not_found"
	HttpSeriesNotActiveError = "series_not_active"
	HttpDuplicateSeriesError = "duplicate_series"
)

// ErrorResponse is the error response body for every API error.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
