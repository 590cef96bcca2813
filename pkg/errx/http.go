package errx

// HTTPErrorResponse is the JSON body returned for failed requests.
type HTTPErrorResponse struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"error"`
	Type       string                 `json:"type"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"status"`
	Cause      string                 `json:"underlying_error,omitempty"`
	RequestID  string                 `json:"request_id,omitempty"`
}

// ToHTTPResponse converts an Error to an HTTPErrorResponse. The cause is
// included only when withCause is set.
func (e *Error) ToHTTPResponse(withCause bool) HTTPErrorResponse {
	resp := HTTPErrorResponse{
		Code:       e.Code,
		Message:    e.Message,
		Type:       string(e.Type),
		StatusCode: e.HTTPStatus,
	}
	if len(e.Details) > 0 {
		resp.Details = e.Details
	}
	if withCause && e.Err != nil {
		resp.Cause = e.Err.Error()
	}
	return resp
}

// From returns err as an *Error, wrapping foreign errors as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if As(err, &e) {
		if e.HTTPStatus == 0 {
			e.HTTPStatus = typeToHTTPStatus(e.Type)
		}
		return e
	}
	e = Wrap(err, "An unexpected error occurred", TypeInternal)
	e.Code = "INTERNAL_ERROR"
	return e
}
